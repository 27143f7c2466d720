package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/service"
)

type createCourseRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description"`
	Format       string `json:"format" validate:"required,oneof=live recorded"`
	SeminarDayID string `json:"seminar_day_id" validate:"required"`
	IsActive     *bool  `json:"is_active"`
}

func (s *Server) createCourse(c echo.Context) error {
	var req createCourseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	course, err := s.services.Courses.CreateCourse(c.Request().Context(), currentUserID(c), service.CreateCourseInput{
		Title:        req.Title,
		Description:  req.Description,
		Format:       model.CourseFormat(req.Format),
		SeminarDayID: req.SeminarDayID,
		IsActive:     isActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, course)
}

func (s *Server) listCourses(c echo.Context) error {
	courses, err := s.services.Courses.ListCourses(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, courses)
}

func (s *Server) getCourse(c echo.Context) error {
	course, err := s.services.Courses.GetCourse(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, course)
}

type updateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (s *Server) updateCourse(c echo.Context) error {
	var req updateCourseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	course, err := s.services.Courses.UpdateCourse(c.Request().Context(), c.Param("id"), service.CourseUpdate{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, course)
}

type addModuleRequest struct {
	Title  string  `json:"title" validate:"required,max=200"`
	SlotID *string `json:"slot_id"`
}

func (s *Server) addCourseModule(c echo.Context) error {
	var req addModuleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	module, err := s.services.Courses.AddModule(c.Request().Context(), c.Param("id"), req.Title, req.SlotID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, module)
}

package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/service"
)

type createSeminarDayRequest struct {
	Weekday     string `json:"weekday" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	IsActive    *bool  `json:"is_active"`
	Description string `json:"description"`
}

func (s *Server) createSeminarDay(c echo.Context) error {
	var req createSeminarDayRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	day, err := s.services.Seminars.CreateSeminarDay(c.Request().Context(), req.Weekday, isActive, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, day)
}

func (s *Server) listSeminarDays(c echo.Context) error {
	days, err := s.services.Seminars.ListSeminarDays(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, days)
}

type updateSeminarDayRequest struct {
	Weekday     *string `json:"weekday" validate:"omitempty,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	IsActive    *bool   `json:"is_active"`
	Description *string `json:"description"`
}

func (s *Server) updateSeminarDay(c echo.Context) error {
	var req updateSeminarDayRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	day, err := s.services.Seminars.UpdateSeminarDay(c.Request().Context(), c.Param("id"), service.SeminarDayUpdate{
		Weekday:     req.Weekday,
		IsActive:    req.IsActive,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, day)
}

func (s *Server) deactivateSeminarDay(c echo.Context) error {
	if err := s.services.Seminars.DeactivateSeminarDay(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Времена слотов ходят по проводу строками вида "09:30"
type createSlotRequest struct {
	StartTime  model.TimeOfDay `json:"start_time"`
	EndTime    model.TimeOfDay `json:"end_time"`
	IsActive   *bool           `json:"is_active"`
	SlotNumber *int            `json:"slot_number"`
}

func (s *Server) createSlot(c echo.Context) error {
	var req createSlotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	slot, err := s.services.Seminars.CreateSlot(c.Request().Context(), c.Param("id"), req.StartTime, req.EndTime, isActive, req.SlotNumber)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, slot)
}

type updateSlotRequest struct {
	StartTime  *model.TimeOfDay `json:"start_time"`
	EndTime    *model.TimeOfDay `json:"end_time"`
	IsActive   *bool            `json:"is_active"`
	SlotNumber *int             `json:"slot_number"`
}

func (s *Server) updateSlot(c echo.Context) error {
	var req updateSlotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	slot, err := s.services.Seminars.UpdateSlot(c.Request().Context(), c.Param("id"), model.SlotUpdate{
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		IsActive:   req.IsActive,
		SlotNumber: req.SlotNumber,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slot)
}

func (s *Server) deactivateSlot(c echo.Context) error {
	if err := s.services.Seminars.DeactivateSlot(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

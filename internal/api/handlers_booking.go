package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seminarhub/backend/internal/service"
)

type createBookingRequest struct {
	CourseID string   `json:"course_id" validate:"required"`
	DeviceID string   `json:"device_id"`
	SlotIDs  []string `json:"slot_ids"`
}

func (s *Server) createBooking(c echo.Context) error {
	var req createBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	booking, err := s.services.Bookings.BookCourse(c.Request().Context(), service.BookCourseInput{
		UserID:   currentUserID(c),
		CourseID: req.CourseID,
		DeviceID: req.DeviceID,
		SlotIDs:  req.SlotIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, booking)
}

func (s *Server) listUserBookings(c echo.Context) error {
	bookings, err := s.services.Bookings.UserBookings(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookings)
}

func (s *Server) cancelBooking(c echo.Context) error {
	if err := s.services.Bookings.CancelBooking(c.Request().Context(), currentUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) bookingStatistics(c echo.Context) error {
	stats, err := s.services.Bookings.Statistics(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

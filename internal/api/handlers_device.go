package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type registerRoomRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

func (s *Server) registerTrainingRoom(c echo.Context) error {
	var req registerRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	room, err := s.services.Devices.RegisterTrainingRoom(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, room)
}

type deviceLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) sharedDeviceLogin(c echo.Context) error {
	var req deviceLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := s.services.Devices.SharedDeviceLogin(c.Request().Context(), c.Param("id"), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, session)
}

func (s *Server) logoutDevice(c echo.Context) error {
	if err := s.services.Devices.LogoutDevice(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deviceBookingEnabled(c echo.Context) error {
	enabled, err := s.services.Devices.BookingEnabled(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"booking_enabled": enabled})
}

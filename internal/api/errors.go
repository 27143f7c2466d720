package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
}

// httpErrorHandler переводит доменные ошибки в HTTP-статусы.
// Внутренние ошибки наружу не раскрываются.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		_ = c.JSON(httpErr.Code, errorResponse{Error: msg})
		return
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status := statusForKind(appErr.Kind)
		msg := appErr.Message
		if status == http.StatusInternalServerError {
			s.logger.Error("Request failed", zap.Error(err), zap.String("path", c.Path()))
			msg = "internal server error"
		}
		_ = c.JSON(status, errorResponse{Error: msg})
		return
	}

	s.logger.Error("Request failed", zap.Error(err), zap.String("path", c.Path()))
	_ = c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidOperation, apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindPermissionDenied:
		return http.StatusForbidden
	case apperr.KindTransactionFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/apperr"
	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/notify"
	"github.com/seminarhub/backend/internal/service"
)

// Services собирает зависимости HTTP-сервера
type Services struct {
	Users    *service.UserService
	Boards   *service.BoardService
	Cards    *service.CardService
	Seminars *service.SeminarService
	Courses  *service.CourseService
	Bookings *service.BookingService
	Devices  *service.DeviceService
}

type Server struct {
	echo      *echo.Echo
	services  Services
	hub       *notify.Hub
	jwtSecret string
	logger    *zap.Logger
}

func NewServer(services Services, hub *notify.Hub, jwtSecret string, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		services:  services,
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    logger,
	}

	e.HTTPErrorHandler = s.httpErrorHandler
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(middleware.Recover())
	e.Use(s.requestLogger)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.health)

	v1 := s.echo.Group("/v1")

	v1.POST("/auth/register", s.register)
	v1.POST("/auth/login", s.login)

	auth := v1.Group("", s.authMiddleware)

	auth.GET("/users", s.listUsers)
	auth.GET("/users/:id", s.getUser)
	auth.DELETE("/users/:id", s.deactivateUser, requireRole(model.RoleAdmin))

	auth.POST("/boards", s.createBoard)
	auth.GET("/boards", s.listBoards)
	auth.GET("/boards/:id", s.getBoard)
	auth.PATCH("/boards/:id", s.updateBoard)
	auth.DELETE("/boards/:id", s.deleteBoard)
	auth.GET("/boards/:id/cards/search", s.searchCards)
	auth.POST("/boards/:id/lists", s.createList)
	auth.PATCH("/lists/:id", s.renameList)

	auth.POST("/lists/:id/cards", s.createCard)
	auth.GET("/cards/:id", s.getCard)
	auth.POST("/cards/:id/move", s.moveCard)
	auth.PATCH("/cards/:id", s.updateCard)
	auth.DELETE("/cards/:id", s.deleteCard)
	auth.POST("/cards/:id/comments", s.addComment)
	auth.PUT("/cards/:id/assignees", s.assignUsers)
	auth.POST("/cards/:id/attachments", s.addAttachment)

	auth.GET("/activity", s.recentActivity)

	staff := requireRole(model.RoleInstructor, model.RoleAdmin)
	auth.POST("/seminar-days", s.createSeminarDay, staff)
	auth.GET("/seminar-days", s.listSeminarDays)
	auth.PATCH("/seminar-days/:id", s.updateSeminarDay, staff)
	auth.DELETE("/seminar-days/:id", s.deactivateSeminarDay, staff)
	auth.POST("/seminar-days/:id/slots", s.createSlot, staff)
	auth.PATCH("/slots/:id", s.updateSlot, staff)
	auth.DELETE("/slots/:id", s.deactivateSlot, staff)

	auth.POST("/courses", s.createCourse, staff)
	auth.GET("/courses", s.listCourses)
	auth.GET("/courses/:id", s.getCourse)
	auth.PATCH("/courses/:id", s.updateCourse, staff)
	auth.POST("/courses/:id/modules", s.addCourseModule, staff)

	auth.POST("/bookings", s.createBooking)
	auth.GET("/bookings", s.listUserBookings)
	auth.DELETE("/bookings/:id", s.cancelBooking)
	auth.GET("/bookings/statistics", s.bookingStatistics, requireRole(model.RoleAdmin))

	auth.POST("/devices", s.registerTrainingRoom, requireRole(model.RoleAdmin))
	auth.GET("/devices/:id/booking-enabled", s.deviceBookingEnabled)
	auth.POST("/devices/:id/logout", s.logoutDevice)
	v1.POST("/devices/:id/login", s.sharedDeviceLogin)

	auth.GET("/events", s.streamEvents)
}

// Start запускает HTTP-сервер и блокируется до его остановки
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown мягко останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger пишет строку на каждый запрос
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		s.logger.Debug("Request handled",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
		)
		return err
	}
}

// requestValidator прогоняет входные структуры через go-playground/validator
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return apperr.Validation("%s", err.Error())
	}
	return nil
}

// bindAndValidate привязывает тело запроса и валидирует его
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("malformed request body")
	}
	return c.Validate(req)
}

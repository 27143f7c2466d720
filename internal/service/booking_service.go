package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/apperr"
	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/notify"
)

// BookingService записывает студентов на курсы. Инвариант: у пользователя
// нет двух подтверждённых записей на один и тот же слот семинарского дня.
type BookingService struct {
	store   BookingStore
	devices DeviceStore
	events  notify.Broadcaster
	logger  *zap.Logger
}

func NewBookingService(store BookingStore, devices DeviceStore, events notify.Broadcaster, logger *zap.Logger) *BookingService {
	return &BookingService{
		store:   store,
		devices: devices,
		events:  events,
		logger:  logger,
	}
}

type BookCourseInput struct {
	UserID   string
	CourseID string
	// DeviceID общего устройства, с которого делается запись. Пустая
	// строка — личное устройство, без проверки флага.
	DeviceID string
	// SlotIDs выбранные слоты, только для recorded-курсов
	SlotIDs []string
}

// BookCourse записывает пользователя на курс. Для live-курса слоты берутся
// из модулей курса, для recorded их выбирает студент. Проверка занятости
// слотов и вставка записи выполняются в одной транзакции под блокировкой
// пользователя.
func (s *BookingService) BookCourse(ctx context.Context, input BookCourseInput) (*model.Booking, error) {
	user, err := s.store.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	if input.DeviceID != "" {
		if err := s.checkDeviceBookingEnabled(ctx, input.DeviceID); err != nil {
			return nil, err
		}
	}

	course, err := s.store.GetCourse(ctx, input.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, apperr.NotFound("course not found")
	}
	if !course.IsActive {
		return nil, apperr.InvalidOperation("course is not open for booking")
	}

	slotIDs, err := s.resolveSlots(ctx, course, input.SlotIDs)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		ID:       uuid.NewString(),
		UserID:   input.UserID,
		CourseID: input.CourseID,
		Status:   model.BookingStatusConfirmed,
	}
	if course.Format == model.CourseFormatRecorded {
		booking.SlotIDs = slotIDs
	}

	err = withTxRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.store.InBookingTx(ctx, input.UserID, func(tx BookingTx) error {
			booked, err := tx.GetBookedSlotIDs(ctx, input.UserID, course.SeminarDayID)
			if err != nil {
				return err
			}
			for _, slotID := range slotIDs {
				if booked[slotID] {
					return apperr.Conflict("time slot %s is already booked", slotID)
				}
			}
			return tx.CreateBooking(ctx, booking)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("user_id", input.UserID),
		zap.String("course_id", input.CourseID),
	)

	booking.Course = course
	s.events.Publish(notify.Event{Type: notify.EventBookingCreated, Payload: booking})

	return booking, nil
}

// resolveSlots определяет слоты, которые займёт запись
func (s *BookingService) resolveSlots(ctx context.Context, course *model.Course, requested []string) ([]string, error) {
	switch course.Format {
	case model.CourseFormatLive:
		// Слоты фиксированы модулями курса, выбор студента игнорируется
		var slotIDs []string
		for _, module := range course.Modules {
			if module.SlotID != nil {
				slotIDs = append(slotIDs, *module.SlotID)
			}
		}
		return slotIDs, nil

	case model.CourseFormatRecorded:
		if len(requested) == 0 {
			return nil, apperr.InvalidOperation("recorded course booking requires at least one slot")
		}
		for _, slotID := range requested {
			slot, err := s.store.GetSlot(ctx, slotID)
			if err != nil {
				return nil, fmt.Errorf("get slot: %w", err)
			}
			if slot == nil {
				return nil, apperr.NotFound("slot not found")
			}
			if !slot.IsActive {
				return nil, apperr.InvalidOperation("slot is not active")
			}
			if slot.SeminarDayID != course.SeminarDayID {
				return nil, apperr.InvalidOperation("slot does not belong to the course seminar day")
			}
		}
		return requested, nil

	default:
		return nil, apperr.InvalidOperation("unknown course format")
	}
}

// checkDeviceBookingEnabled отклоняет запись с общего устройства, на
// котором запись выключена. Просроченный флаг считается снятым.
func (s *BookingService) checkDeviceBookingEnabled(ctx context.Context, deviceID string) error {
	state, err := s.devices.GetDeviceBookingState(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("get device booking state: %w", err)
	}
	if state == nil {
		return nil
	}
	if !state.BookingEnabled && state.ExpiresAt.After(time.Now()) {
		return apperr.PermissionDenied("booking is disabled on this shared device")
	}
	return nil
}

// CancelBooking отменяет запись. Чужую запись может отменить только админ.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID string) error {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return apperr.NotFound("booking not found")
	}

	if booking.UserID != userID {
		user, err := s.store.GetUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if user == nil || user.Role != model.RoleAdmin {
			return apperr.PermissionDenied("cannot cancel another user's booking")
		}
	}

	if booking.Status == model.BookingStatusCancelled {
		return apperr.InvalidOperation("booking is already cancelled")
	}

	if err := s.store.UpdateBookingStatus(ctx, bookingID, model.BookingStatusCancelled); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}

	s.logger.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("user_id", userID),
	)
	return nil
}

// UserBookings возвращает записи пользователя вместе с курсами
func (s *BookingService) UserBookings(ctx context.Context, userID string) ([]*model.Booking, error) {
	bookings, err := s.store.GetUserBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	for _, booking := range bookings {
		course, err := s.store.GetCourse(ctx, booking.CourseID)
		if err != nil {
			return nil, fmt.Errorf("get course: %w", err)
		}
		booking.Course = course
	}

	return bookings, nil
}

// Statistics возвращает агрегаты по записям, только для админов
func (s *BookingService) Statistics(ctx context.Context, userID string) (*model.BookingStatistics, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	if user.Role != model.RoleAdmin {
		return nil, apperr.PermissionDenied("statistics are available to admins only")
	}

	return s.store.BookingStatistics(ctx)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/seminarhub/backend/internal/apperr"
	"github.com/seminarhub/backend/internal/model"
)

// DeviceService сессии на общих устройствах в учебных аудиториях.
// Пока на устройстве висит сессия, запись на курсы с него выключена,
// чтобы чужой вход не бронировал слоты от имени владельца сессии.
// Состояние живёт в базе с TTL, просроченное выметает фоновый процесс.
type DeviceService struct {
	store      DeviceStore
	sessionTTL time.Duration
	logger     *zap.Logger
}

func NewDeviceService(store DeviceStore, sessionTTL time.Duration, logger *zap.Logger) *DeviceService {
	return &DeviceService{
		store:      store,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// RegisterTrainingRoom регистрирует общее устройство аудитории
func (s *DeviceService) RegisterTrainingRoom(ctx context.Context, name string) (*model.TrainingRoom, error) {
	room := &model.TrainingRoom{
		ID:       uuid.NewString(),
		Name:     name,
		IsShared: true,
	}
	if err := s.store.CreateTrainingRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("create training room: %w", err)
	}

	s.logger.Info("Training room registered",
		zap.String("room_id", room.ID),
		zap.String("name", name),
	)
	return room, nil
}

// SharedDeviceLogin открывает сессию пользователя на общем устройстве
// и выключает на нём запись до выхода или истечения TTL
func (s *DeviceService) SharedDeviceLogin(ctx context.Context, deviceID, email, password string) (*model.DeviceSession, error) {
	room, err := s.store.GetTrainingRoom(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("get training room: %w", err)
	}
	if room == nil {
		return nil, apperr.NotFound("training room not found")
	}
	if !room.IsShared {
		return nil, apperr.InvalidOperation("device is not registered as shared")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}

	expiresAt := time.Now().Add(s.sessionTTL)
	session := &model.DeviceSession{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: expiresAt,
	}

	if err := s.store.CreateDeviceSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create device session: %w", err)
	}
	if err := s.store.SetDeviceBookingState(ctx, deviceID, false, expiresAt); err != nil {
		return nil, fmt.Errorf("disable booking for device: %w", err)
	}

	s.logger.Info("Shared device login",
		zap.String("device_id", deviceID),
		zap.String("user_id", user.ID),
		zap.Time("expires_at", expiresAt),
	)

	return session, nil
}

// LogoutDevice закрывает все сессии устройства и возвращает ему запись
func (s *DeviceService) LogoutDevice(ctx context.Context, deviceID string) error {
	room, err := s.store.GetTrainingRoom(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("get training room: %w", err)
	}
	if room == nil {
		return apperr.NotFound("training room not found")
	}

	if err := s.store.DeleteDeviceSessions(ctx, deviceID); err != nil {
		return fmt.Errorf("delete device sessions: %w", err)
	}
	if err := s.store.SetDeviceBookingState(ctx, deviceID, true, time.Now()); err != nil {
		return fmt.Errorf("enable booking for device: %w", err)
	}

	s.logger.Info("Shared device logout", zap.String("device_id", deviceID))
	return nil
}

// BookingEnabled сообщает, разрешена ли запись с устройства.
// Без записи о состоянии и после истечения TTL запись разрешена.
func (s *DeviceService) BookingEnabled(ctx context.Context, deviceID string) (bool, error) {
	state, err := s.store.GetDeviceBookingState(ctx, deviceID)
	if err != nil {
		return false, fmt.Errorf("get device booking state: %w", err)
	}
	if state == nil {
		return true, nil
	}
	if !state.ExpiresAt.After(time.Now()) {
		return true, nil
	}
	return state.BookingEnabled, nil
}

// ActiveSessions возвращает живые сессии устройства
func (s *DeviceService) ActiveSessions(ctx context.Context, deviceID string) ([]*model.DeviceSession, error) {
	sessions, err := s.store.GetDeviceSessions(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("get device sessions: %w", err)
	}

	now := time.Now()
	active := sessions[:0]
	for _, session := range sessions {
		if session.ExpiresAt.After(now) {
			active = append(active, session)
		}
	}
	return active, nil
}

// SweepExpired удаляет просроченные сессии и снимает просроченные
// запреты записи. Вызывается фоновым планировщиком.
func (s *DeviceService) SweepExpired(ctx context.Context) error {
	removed, err := s.store.SweepExpiredDeviceState(ctx)
	if err != nil {
		return fmt.Errorf("sweep expired device state: %w", err)
	}
	if removed > 0 {
		s.logger.Info("Expired device sessions swept", zap.Int64("removed", removed))
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/repository/base"
)

type DeviceRepository struct {
	q base.Querier
}

func NewDeviceRepository(q base.Querier) *DeviceRepository {
	return &DeviceRepository{q: q}
}

// GetTrainingRoom получает зарегистрированное устройство
func (r *DeviceRepository) GetTrainingRoom(ctx context.Context, id string) (*model.TrainingRoom, error) {
	query := `
		SELECT id, name, is_shared, created_at
		FROM training_rooms
		WHERE id = $1
	`

	var room model.TrainingRoom
	err := r.q.QueryRow(ctx, query, id).Scan(&room.ID, &room.Name, &room.IsShared, &room.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get training room: %w", err)
	}

	return &room, nil
}

// CreateTrainingRoom регистрирует устройство
func (r *DeviceRepository) CreateTrainingRoom(ctx context.Context, room *model.TrainingRoom) error {
	query := `
		INSERT INTO training_rooms (id, name, is_shared)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, room.ID, room.Name, room.IsShared).Scan(&room.CreatedAt)
	if err != nil {
		return fmt.Errorf("create training room: %w", err)
	}

	return nil
}

// CreateSession сохраняет сессию пользователя на устройстве
func (r *DeviceRepository) CreateSession(ctx context.Context, session *model.DeviceSession) error {
	query := `
		INSERT INTO device_sessions (id, device_id, user_id, token, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(
		ctx, query,
		session.ID,
		session.DeviceID,
		session.UserID,
		session.Token,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)
	if err != nil {
		return fmt.Errorf("create device session: %w", err)
	}

	return nil
}

// GetActiveSessions получает неистёкшие сессии устройства
func (r *DeviceRepository) GetActiveSessions(ctx context.Context, deviceID string) ([]*model.DeviceSession, error) {
	query := `
		SELECT id, device_id, user_id, token, expires_at, created_at
		FROM device_sessions
		WHERE device_id = $1 AND expires_at > now()
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("get device sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.DeviceSession
	for rows.Next() {
		var s model.DeviceSession
		err := rows.Scan(&s.ID, &s.DeviceID, &s.UserID, &s.Token, &s.ExpiresAt, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan device session: %w", err)
		}
		sessions = append(sessions, &s)
	}

	return sessions, nil
}

// DeleteSessions удаляет все сессии устройства
func (r *DeviceRepository) DeleteSessions(ctx context.Context, deviceID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM device_sessions WHERE device_id = $1`, deviceID)
	if err != nil {
		return fmt.Errorf("delete device sessions: %w", err)
	}
	return nil
}

// SetBookingState выставляет флаг доступности записи для устройства
func (r *DeviceRepository) SetBookingState(ctx context.Context, deviceID string, enabled bool, expiresAt time.Time) error {
	query := `
		INSERT INTO device_booking_state (device_id, booking_enabled, expires_at, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (device_id)
		DO UPDATE SET booking_enabled = $2, expires_at = $3, updated_at = now()
	`

	_, err := r.q.Exec(ctx, query, deviceID, enabled, expiresAt)
	if err != nil {
		return fmt.Errorf("set booking state: %w", err)
	}

	return nil
}

// GetBookingState получает флаг доступности записи
func (r *DeviceRepository) GetBookingState(ctx context.Context, deviceID string) (*model.DeviceBookingState, error) {
	query := `
		SELECT device_id, booking_enabled, expires_at, updated_at
		FROM device_booking_state
		WHERE device_id = $1
	`

	var state model.DeviceBookingState
	err := r.q.QueryRow(ctx, query, deviceID).Scan(
		&state.DeviceID,
		&state.BookingEnabled,
		&state.ExpiresAt,
		&state.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking state: %w", err)
	}

	return &state, nil
}

// SweepExpired удаляет истёкшие сессии и возвращает запись устройствам,
// у которых истёк запрет. Возвращает количество затронутых устройств.
func (r *DeviceRepository) SweepExpired(ctx context.Context) (int64, error) {
	_, err := r.q.Exec(ctx, `DELETE FROM device_sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("sweep device sessions: %w", err)
	}

	tag, err := r.q.Exec(ctx, `
		UPDATE device_booking_state
		SET booking_enabled = true, updated_at = now()
		WHERE NOT booking_enabled AND expires_at <= now()
	`)
	if err != nil {
		return 0, fmt.Errorf("sweep booking state: %w", err)
	}

	return tag.RowsAffected(), nil
}

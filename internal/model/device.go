package model

import "time"

// DeviceSession сессия пользователя на общем устройстве.
// Хранится в базе, а не в памяти процесса, чтобы состояние не расходилось
// между инстансами и переживало рестарт.
type DeviceSession struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"device_id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// DeviceBookingState флаг доступности записи для устройства с TTL
type DeviceBookingState struct {
	DeviceID       string    `json:"device_id"`
	BookingEnabled bool      `json:"booking_enabled"`
	ExpiresAt      time.Time `json:"expires_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TrainingRoom зарегистрированное общее устройство в учебной аудитории
type TrainingRoom struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsShared  bool      `json:"is_shared"`
	CreatedAt time.Time `json:"created_at"`
}

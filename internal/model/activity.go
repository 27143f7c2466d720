package model

import "time"

// ActivityLogEntry запись журнала действий пользователей
type ActivityLogEntry struct {
	ID         string            `json:"id"`
	Action     string            `json:"action"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	UserID     string            `json:"user_id"`
	Details    map[string]string `json:"details,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

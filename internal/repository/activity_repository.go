package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/repository/base"
)

type ActivityRepository struct {
	q base.Querier
}

func NewActivityRepository(q base.Querier) *ActivityRepository {
	return &ActivityRepository{q: q}
}

// Create сохраняет запись журнала действий
func (r *ActivityRepository) Create(ctx context.Context, entry *model.ActivityLogEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal activity details: %w", err)
	}

	query := `
		INSERT INTO activity_log (id, action, entity_type, entity_id, user_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err = r.q.QueryRow(
		ctx, query,
		entry.ID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.UserID,
		details,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("create activity entry: %w", err)
	}

	return nil
}

// GetRecent получает последние записи журнала
func (r *ActivityRepository) GetRecent(ctx context.Context, limit int) ([]*model.ActivityLogEntry, error) {
	query := `
		SELECT id, action, entity_type, entity_id, user_id, details, created_at
		FROM activity_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent activity: %w", err)
	}
	defer rows.Close()

	var entries []*model.ActivityLogEntry
	for rows.Next() {
		var entry model.ActivityLogEntry
		var details []byte
		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.UserID,
			&details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshal activity details: %w", err)
			}
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

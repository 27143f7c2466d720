package repository

import (
	"context"
	"fmt"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/repository/base"
)

type SeminarDayRepository struct {
	q base.Querier
}

func NewSeminarDayRepository(q base.Querier) *SeminarDayRepository {
	return &SeminarDayRepository{q: q}
}

// Create создаёт семинарский день
func (r *SeminarDayRepository) Create(ctx context.Context, day *model.SeminarDay) error {
	query := `
		INSERT INTO seminar_days (id, weekday, is_active, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, day.ID, day.Weekday, day.IsActive, day.Description).
		Scan(&day.CreatedAt)
	if err != nil {
		return fmt.Errorf("create seminar day: %w", err)
	}

	return nil
}

// GetByID получает семинарский день по ID
func (r *SeminarDayRepository) GetByID(ctx context.Context, id string) (*model.SeminarDay, error) {
	query := `
		SELECT id, weekday, is_active, description, created_at
		FROM seminar_days
		WHERE id = $1
	`

	var day model.SeminarDay
	err := r.q.QueryRow(ctx, query, id).Scan(
		&day.ID,
		&day.Weekday,
		&day.IsActive,
		&day.Description,
		&day.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get seminar day by id: %w", err)
	}

	return &day, nil
}

// GetByWeekday получает семинарский день по названию дня недели
func (r *SeminarDayRepository) GetByWeekday(ctx context.Context, weekday string) (*model.SeminarDay, error) {
	query := `
		SELECT id, weekday, is_active, description, created_at
		FROM seminar_days
		WHERE weekday = $1
	`

	var day model.SeminarDay
	err := r.q.QueryRow(ctx, query, weekday).Scan(
		&day.ID,
		&day.Weekday,
		&day.IsActive,
		&day.Description,
		&day.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get seminar day by weekday: %w", err)
	}

	return &day, nil
}

// GetAll получает все семинарские дни
func (r *SeminarDayRepository) GetAll(ctx context.Context) ([]*model.SeminarDay, error) {
	query := `
		SELECT id, weekday, is_active, description, created_at
		FROM seminar_days
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all seminar days: %w", err)
	}
	defer rows.Close()

	var days []*model.SeminarDay
	for rows.Next() {
		var day model.SeminarDay
		err := rows.Scan(&day.ID, &day.Weekday, &day.IsActive, &day.Description, &day.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan seminar day: %w", err)
		}
		days = append(days, &day)
	}

	return days, nil
}

// Update обновляет семинарский день
func (r *SeminarDayRepository) Update(ctx context.Context, day *model.SeminarDay) error {
	query := `
		UPDATE seminar_days
		SET weekday = $1, is_active = $2, description = $3
		WHERE id = $4
	`

	tag, err := r.q.Exec(ctx, query, day.Weekday, day.IsActive, day.Description, day.ID)
	if err != nil {
		return fmt.Errorf("update seminar day: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("seminar day not found")
	}

	return nil
}

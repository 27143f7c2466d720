package repository

import (
	"context"
	"fmt"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/repository/base"
)

type SlotRepository struct {
	q base.Querier
}

func NewSlotRepository(q base.Querier) *SlotRepository {
	return &SlotRepository{q: q}
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (id, seminar_day_id, start_min, end_min, is_active, slot_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.q.QueryRow(
		ctx, query,
		slot.ID,
		slot.SeminarDayID,
		int(slot.StartTime),
		int(slot.EndTime),
		slot.IsActive,
		slot.SlotNumber,
	).Scan(&slot.CreatedAt)
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	query := `
		SELECT id, seminar_day_id, start_min, end_min, is_active, slot_number, created_at
		FROM slots
		WHERE id = $1
	`

	var slot model.Slot
	err := r.q.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.SeminarDayID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsActive,
		&slot.SlotNumber,
		&slot.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return &slot, nil
}

// GetByDayID получает слоты семинарского дня по возрастанию начала
func (r *SlotRepository) GetByDayID(ctx context.Context, dayID string) ([]*model.Slot, error) {
	return r.getByDay(ctx, dayID, false)
}

// GetActiveByDayID получает только активные слоты семинарского дня.
// Именно против них выполняется проверка пересечений.
func (r *SlotRepository) GetActiveByDayID(ctx context.Context, dayID string) ([]*model.Slot, error) {
	return r.getByDay(ctx, dayID, true)
}

func (r *SlotRepository) getByDay(ctx context.Context, dayID string, activeOnly bool) ([]*model.Slot, error) {
	query := `
		SELECT id, seminar_day_id, start_min, end_min, is_active, slot_number, created_at
		FROM slots
		WHERE seminar_day_id = $1
	`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY start_min`

	rows, err := r.q.Query(ctx, query, dayID)
	if err != nil {
		return nil, fmt.Errorf("get slots by day: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		var slot model.Slot
		err := rows.Scan(
			&slot.ID,
			&slot.SeminarDayID,
			&slot.StartTime,
			&slot.EndTime,
			&slot.IsActive,
			&slot.SlotNumber,
			&slot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	return slots, nil
}

// Update сохраняет изменённый слот
func (r *SlotRepository) Update(ctx context.Context, slot *model.Slot) error {
	query := `
		UPDATE slots
		SET start_min = $1, end_min = $2, is_active = $3, slot_number = $4
		WHERE id = $5
	`

	tag, err := r.q.Exec(
		ctx, query,
		int(slot.StartTime),
		int(slot.EndTime),
		slot.IsActive,
		slot.SlotNumber,
		slot.ID,
	)
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("slot not found")
	}

	return nil
}

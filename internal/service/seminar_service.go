package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/apperr"
	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/notify"
)

// SeminarService управляет семинарскими днями и их слотами.
// Инвариант: активные слоты одного дня не пересекаются по времени.
// Границы слотов меняются только через этот сервис.
type SeminarService struct {
	store  SeminarStore
	events notify.Broadcaster
	logger *zap.Logger
}

func NewSeminarService(store SeminarStore, events notify.Broadcaster, logger *zap.Logger) *SeminarService {
	return &SeminarService{
		store:  store,
		events: events,
		logger: logger,
	}
}

// CreateSeminarDay создаёт день недели для семинаров.
// Дни недели уникальны, дубликат — конфликт.
func (s *SeminarService) CreateSeminarDay(ctx context.Context, weekday string, isActive bool, description string) (*model.SeminarDay, error) {
	if weekday == "" {
		return nil, apperr.Validation("weekday is required")
	}

	existing, err := s.store.GetSeminarDayByWeekday(ctx, weekday)
	if err != nil {
		return nil, fmt.Errorf("check existing weekday: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("a seminar day with this weekday already exists")
	}

	day := &model.SeminarDay{
		ID:          uuid.NewString(),
		Weekday:     weekday,
		IsActive:    isActive,
		Description: description,
	}

	if err := s.store.CreateSeminarDay(ctx, day); err != nil {
		return nil, fmt.Errorf("create seminar day: %w", err)
	}

	s.logger.Info("Seminar day created",
		zap.String("day_id", day.ID),
		zap.String("weekday", weekday),
	)

	return day, nil
}

type SeminarDayUpdate struct {
	Weekday     *string
	IsActive    *bool
	Description *string
}

// UpdateSeminarDay применяет частичное обновление дня
func (s *SeminarService) UpdateSeminarDay(ctx context.Context, id string, updates SeminarDayUpdate) (*model.SeminarDay, error) {
	day, err := s.store.GetSeminarDay(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get seminar day: %w", err)
	}
	if day == nil {
		return nil, apperr.NotFound("seminar day not found")
	}

	if updates.Weekday != nil && *updates.Weekday != day.Weekday {
		existing, err := s.store.GetSeminarDayByWeekday(ctx, *updates.Weekday)
		if err != nil {
			return nil, fmt.Errorf("check existing weekday: %w", err)
		}
		if existing != nil {
			return nil, apperr.Conflict("a seminar day with this weekday already exists")
		}
		day.Weekday = *updates.Weekday
	}
	if updates.IsActive != nil {
		day.IsActive = *updates.IsActive
	}
	if updates.Description != nil {
		day.Description = *updates.Description
	}

	if err := s.store.UpdateSeminarDay(ctx, day); err != nil {
		return nil, fmt.Errorf("update seminar day: %w", err)
	}

	return day, nil
}

// DeactivateSeminarDay гасит день, не удаляя его. Неактивный день
// выпадает из подбора при записи на курсы.
func (s *SeminarService) DeactivateSeminarDay(ctx context.Context, id string) error {
	day, err := s.store.GetSeminarDay(ctx, id)
	if err != nil {
		return fmt.Errorf("get seminar day: %w", err)
	}
	if day == nil {
		return apperr.NotFound("seminar day not found")
	}

	day.IsActive = false
	if err := s.store.UpdateSeminarDay(ctx, day); err != nil {
		return fmt.Errorf("deactivate seminar day: %w", err)
	}

	s.logger.Info("Seminar day deactivated", zap.String("day_id", id))
	return nil
}

// ListSeminarDays возвращает все дни вместе со слотами
func (s *SeminarService) ListSeminarDays(ctx context.Context) ([]*model.SeminarDay, error) {
	days, err := s.store.GetSeminarDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("get seminar days: %w", err)
	}

	for _, day := range days {
		slots, err := s.store.GetSlotsByDay(ctx, day.ID)
		if err != nil {
			return nil, fmt.Errorf("get slots: %w", err)
		}
		day.Slots = slots
	}

	return days, nil
}

// CreateSlot создаёт слот, отклоняя пересечения с активными слотами дня.
// Проверка и вставка выполняются в одной транзакции под блокировкой дня.
func (s *SeminarService) CreateSlot(ctx context.Context, seminarDayID string, start, end model.TimeOfDay, isActive bool, slotNumber *int) (*model.Slot, error) {
	if start >= end {
		return nil, apperr.InvalidOperation("slot start time must be before end time")
	}

	day, err := s.store.GetSeminarDay(ctx, seminarDayID)
	if err != nil {
		return nil, fmt.Errorf("get seminar day: %w", err)
	}
	if day == nil {
		return nil, apperr.NotFound("invalid seminar day id")
	}
	if !day.IsActive {
		return nil, apperr.InvalidOperation("cannot create slots for inactive seminar day")
	}

	slot := &model.Slot{
		ID:           uuid.NewString(),
		SeminarDayID: seminarDayID,
		StartTime:    start,
		EndTime:      end,
		IsActive:     isActive,
		SlotNumber:   slotNumber,
	}

	err = withTxRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.store.InDayTx(ctx, seminarDayID, func(tx SeminarTx) error {
			if err := s.checkOverlap(ctx, tx, seminarDayID, start, end, ""); err != nil {
				return err
			}
			return tx.CreateSlot(ctx, slot)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Slot created",
		zap.String("slot_id", slot.ID),
		zap.String("day_id", seminarDayID),
		zap.String("start", start.String()),
		zap.String("end", end.String()),
	)

	s.events.Publish(notify.Event{Type: notify.EventSlotCreated, Payload: slot})

	return slot, nil
}

// UpdateSlot применяет частичное обновление слота. Если меняются границы
// или слот реактивируется, пересечения проверяются заново против остальных
// активных слотов дня — без самого обновляемого слота.
func (s *SeminarService) UpdateSlot(ctx context.Context, slotID string, updates model.SlotUpdate) (*model.Slot, error) {
	slot, err := s.store.GetSlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, apperr.NotFound("slot not found")
	}

	var updated *model.Slot
	err = withTxRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.store.InDayTx(ctx, slot.SeminarDayID, func(tx SeminarTx) error {
			// Итоговые границы считаются от состояния под блокировкой:
			// чтение до транзакции могло устареть
			current, err := tx.GetSlot(ctx, slotID)
			if err != nil {
				return err
			}
			if current == nil {
				return apperr.NotFound("slot not found")
			}

			newStart := current.StartTime
			if updates.StartTime != nil {
				newStart = *updates.StartTime
			}
			newEnd := current.EndTime
			if updates.EndTime != nil {
				newEnd = *updates.EndTime
			}
			if newStart >= newEnd {
				return apperr.InvalidOperation("slot start time must be before end time")
			}

			boundsChanged := newStart != current.StartTime || newEnd != current.EndTime
			reactivating := updates.IsActive != nil && *updates.IsActive && !current.IsActive

			if boundsChanged || reactivating {
				if err := s.checkOverlap(ctx, tx, current.SeminarDayID, newStart, newEnd, slotID); err != nil {
					return err
				}
			}

			current.StartTime = newStart
			current.EndTime = newEnd
			if updates.IsActive != nil {
				current.IsActive = *updates.IsActive
			}
			if updates.SlotNumber != nil {
				current.SlotNumber = updates.SlotNumber
			}

			if err := tx.UpdateSlot(ctx, current); err != nil {
				return err
			}
			updated = current
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeactivateSlot гасит слот. Неактивный слот не участвует в проверке
// пересечений и в подборе при записи.
func (s *SeminarService) DeactivateSlot(ctx context.Context, slotID string) error {
	slot, err := s.store.GetSlot(ctx, slotID)
	if err != nil {
		return fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return apperr.NotFound("slot not found")
	}

	slot.IsActive = false
	if err := s.store.UpdateSlot(ctx, slot); err != nil {
		return fmt.Errorf("deactivate slot: %w", err)
	}

	s.logger.Info("Slot deactivated", zap.String("slot_id", slotID))
	return nil
}

// checkOverlap сравнивает кандидата со всеми активными слотами дня,
// исключая excludeID. Конфликт называет границы мешающего слота.
func (s *SeminarService) checkOverlap(ctx context.Context, tx SeminarTx, dayID string, start, end model.TimeOfDay, excludeID string) error {
	slots, err := tx.GetActiveSlots(ctx, dayID)
	if err != nil {
		return fmt.Errorf("get active slots: %w", err)
	}

	for _, other := range slots {
		if other.ID == excludeID {
			continue
		}
		if other.Overlaps(start, end) {
			return apperr.Conflict("slot overlaps with existing slot: %s-%s",
				other.StartTime, other.EndTime)
		}
	}

	return nil
}

package model

import "time"

type SeminarDay struct {
	ID          string    `json:"id"`
	Weekday     string    `json:"weekday"`
	IsActive    bool      `json:"is_active"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	Slots []*Slot `json:"slots,omitempty"`
}

type Slot struct {
	ID           string    `json:"id"`
	SeminarDayID string    `json:"seminar_day_id"`
	StartTime    TimeOfDay `json:"start_time"`
	EndTime      TimeOfDay `json:"end_time"`
	IsActive     bool      `json:"is_active"`
	SlotNumber   *int      `json:"slot_number"`
	CreatedAt    time.Time `json:"created_at"`
}

// Overlaps проверяет пересечение слота с интервалом [start, end).
// Помимо общего правила явно проверяется точное совпадение границ,
// чтобы не пропустить вырожденный случай start == end.
func (s *Slot) Overlaps(start, end TimeOfDay) bool {
	if start < s.EndTime && end > s.StartTime {
		return true
	}
	return start == s.StartTime && end == s.EndTime
}

// SlotUpdate частичное обновление слота, nil-поля не меняются
type SlotUpdate struct {
	StartTime  *TimeOfDay `json:"start_time"`
	EndTime    *TimeOfDay `json:"end_time"`
	IsActive   *bool      `json:"is_active"`
	SlotNumber *int       `json:"slot_number"`
}

package model

import "time"

type CourseFormat string

const (
	CourseFormatLive     CourseFormat = "live"     // занятия привязаны к слотам модулей
	CourseFormatRecorded CourseFormat = "recorded" // слоты выбирает студент при записи
)

type Course struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Format       CourseFormat `json:"format"`
	SeminarDayID string       `json:"seminar_day_id"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Modules []*CourseModule `json:"modules,omitempty"`
}

type CourseModule struct {
	ID          string  `json:"id"`
	CourseID    string  `json:"course_id"`
	Title       string  `json:"title"`
	ModuleOrder int     `json:"module_order"`
	SlotID      *string `json:"slot_id"` // nil для модулей без фиксированного слота

	Slot *Slot `json:"slot,omitempty"`
}

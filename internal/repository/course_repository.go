package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/repository/base"
)

type CourseRepository struct {
	q base.Querier
}

func NewCourseRepository(q base.Querier) *CourseRepository {
	return &CourseRepository{q: q}
}

// Create создаёт новый курс
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (id, title, description, format, seminar_day_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(
		ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.Format,
		course.SeminarDayID,
		course.IsActive,
	).Scan(&course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByID получает курс вместе с модулями и их слотами
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	query := `
		SELECT id, title, description, format, seminar_day_id, is_active, created_at, updated_at
		FROM courses
		WHERE id = $1
	`

	var course model.Course
	err := r.q.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Format,
		&course.SeminarDayID,
		&course.IsActive,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}

	modules, err := r.GetModules(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Modules = modules

	return &course, nil
}

// GetAll получает все курсы без модулей
func (r *CourseRepository) GetAll(ctx context.Context) ([]*model.Course, error) {
	query := `
		SELECT id, title, description, format, seminar_day_id, is_active, created_at, updated_at
		FROM courses
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all courses: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		var course model.Course
		err := rows.Scan(
			&course.ID,
			&course.Title,
			&course.Description,
			&course.Format,
			&course.SeminarDayID,
			&course.IsActive,
			&course.CreatedAt,
			&course.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, &course)
	}

	return courses, nil
}

// GetModules получает модули курса вместе со слотами
func (r *CourseRepository) GetModules(ctx context.Context, courseID string) ([]*model.CourseModule, error) {
	query := `
		SELECT m.id, m.course_id, m.title, m.module_order, m.slot_id,
		       s.id, s.seminar_day_id, s.start_min, s.end_min, s.is_active, s.slot_number, s.created_at
		FROM course_modules m
		LEFT JOIN slots s ON s.id = m.slot_id
		WHERE m.course_id = $1
		ORDER BY m.module_order
	`

	rows, err := r.q.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course modules: %w", err)
	}
	defer rows.Close()

	var modules []*model.CourseModule
	for rows.Next() {
		var module model.CourseModule
		var slot model.Slot
		var slotID, dayID *string
		var startMin, endMin, slotNumber *int
		var isActive *bool
		var createdAt *time.Time
		err := rows.Scan(
			&module.ID,
			&module.CourseID,
			&module.Title,
			&module.ModuleOrder,
			&module.SlotID,
			&slotID,
			&dayID,
			&startMin,
			&endMin,
			&isActive,
			&slotNumber,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan course module: %w", err)
		}
		if slotID != nil {
			slot.ID = *slotID
			slot.SeminarDayID = *dayID
			slot.StartTime = model.TimeOfDay(*startMin)
			slot.EndTime = model.TimeOfDay(*endMin)
			slot.IsActive = *isActive
			slot.SlotNumber = slotNumber
			slot.CreatedAt = *createdAt
			module.Slot = &slot
		}
		modules = append(modules, &module)
	}

	return modules, nil
}

// AddModule добавляет модуль к курсу
func (r *CourseRepository) AddModule(ctx context.Context, module *model.CourseModule) error {
	query := `
		INSERT INTO course_modules (id, course_id, title, module_order, slot_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.Exec(ctx, query, module.ID, module.CourseID, module.Title, module.ModuleOrder, module.SlotID)
	if err != nil {
		return fmt.Errorf("add course module: %w", err)
	}

	return nil
}

// Update обновляет курс
func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	query := `
		UPDATE courses
		SET title = $1, description = $2, format = $3, seminar_day_id = $4, is_active = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.q.QueryRow(
		ctx, query,
		course.Title,
		course.Description,
		course.Format,
		course.SeminarDayID,
		course.IsActive,
		course.ID,
	).Scan(&course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	return nil
}

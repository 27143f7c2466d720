package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/apperr"
	"github.com/seminarhub/backend/internal/model"
)

// CourseService управляет курсами и их модулями
type CourseService struct {
	store  CourseStore
	users  UserStore
	logger *zap.Logger
}

func NewCourseService(store CourseStore, users UserStore, logger *zap.Logger) *CourseService {
	return &CourseService{
		store:  store,
		users:  users,
		logger: logger,
	}
}

type CreateCourseInput struct {
	Title        string
	Description  string
	Format       model.CourseFormat
	SeminarDayID string
	IsActive     bool
}

// CreateCourse создаёт курс, привязанный к активному семинарскому дню.
// Курсы создают только преподаватели и администраторы.
func (s *CourseService) CreateCourse(ctx context.Context, userID string, input CreateCourseInput) (*model.Course, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	if !user.CanManageBoards() {
		return nil, apperr.PermissionDenied("only instructors and admins can create courses")
	}

	if input.Format != model.CourseFormatLive && input.Format != model.CourseFormatRecorded {
		return nil, apperr.Validation("course format must be live or recorded")
	}

	day, err := s.store.GetSeminarDay(ctx, input.SeminarDayID)
	if err != nil {
		return nil, fmt.Errorf("get seminar day: %w", err)
	}
	if day == nil {
		return nil, apperr.NotFound("seminar day not found")
	}
	if !day.IsActive {
		return nil, apperr.InvalidOperation("cannot attach course to inactive seminar day")
	}

	course := &model.Course{
		ID:           uuid.NewString(),
		Title:        input.Title,
		Description:  input.Description,
		Format:       input.Format,
		SeminarDayID: input.SeminarDayID,
		IsActive:     input.IsActive,
	}

	if err := s.store.CreateCourse(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.logger.Info("Course created",
		zap.String("course_id", course.ID),
		zap.String("format", string(input.Format)),
		zap.String("day_id", input.SeminarDayID),
	)

	return course, nil
}

// GetCourse возвращает курс с модулями и их слотами
func (s *CourseService) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, apperr.NotFound("course not found")
	}
	return course, nil
}

// ListCourses возвращает все курсы
func (s *CourseService) ListCourses(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.store.GetCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("get courses: %w", err)
	}
	return courses, nil
}

type CourseUpdate struct {
	Title       *string
	Description *string
	IsActive    *bool
}

// UpdateCourse применяет частичное обновление. Формат и день курса
// после создания не меняются.
func (s *CourseService) UpdateCourse(ctx context.Context, id string, updates CourseUpdate) (*model.Course, error) {
	course, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, apperr.NotFound("course not found")
	}

	if updates.Title != nil {
		course.Title = *updates.Title
	}
	if updates.Description != nil {
		course.Description = *updates.Description
	}
	if updates.IsActive != nil {
		course.IsActive = *updates.IsActive
	}

	if err := s.store.UpdateCourse(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}

	return course, nil
}

// AddModule добавляет модуль в конец курса. Для live-курса модуль
// привязывается к активному слоту семинарского дня курса.
func (s *CourseService) AddModule(ctx context.Context, courseID, title string, slotID *string) (*model.CourseModule, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, apperr.NotFound("course not found")
	}

	if course.Format == model.CourseFormatLive && slotID == nil {
		return nil, apperr.InvalidOperation("live course module requires a slot")
	}

	if slotID != nil {
		slot, err := s.store.GetSlot(ctx, *slotID)
		if err != nil {
			return nil, fmt.Errorf("get slot: %w", err)
		}
		if slot == nil {
			return nil, apperr.NotFound("slot not found")
		}
		if !slot.IsActive {
			return nil, apperr.InvalidOperation("slot is not active")
		}
		if slot.SeminarDayID != course.SeminarDayID {
			return nil, apperr.InvalidOperation("slot does not belong to the course seminar day")
		}
	}

	module := &model.CourseModule{
		ID:          uuid.NewString(),
		CourseID:    courseID,
		Title:       title,
		ModuleOrder: len(course.Modules),
		SlotID:      slotID,
	}

	if err := s.store.AddCourseModule(ctx, module); err != nil {
		return nil, fmt.Errorf("add course module: %w", err)
	}

	return module, nil
}

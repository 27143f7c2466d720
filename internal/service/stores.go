package service

import (
	"context"
	"time"

	"github.com/seminarhub/backend/internal/model"
)

// Интерфейсы хранилища, которыми пользуются сервисы.
// Реализуются pgx-хранилищем в internal/repository и in-memory
// фейком в тестах. Позиции карточек и границы слотов меняются
// только через эти операции.

// BoardTx операции над доской внутри транзакции.
// Транзакция держит advisory-блокировку по id доски, поэтому
// конкурентные перемещения на одной доске сериализуются.
type BoardTx interface {
	GetList(ctx context.Context, id string) (*model.TeamList, error)
	GetCard(ctx context.Context, id string) (*model.TeamCard, error)
	CountCards(ctx context.Context, listID string) (int, error)
	// CloseGap сдвигает card_order на -1 для карточек списка с card_order > pos
	CloseGap(ctx context.Context, listID string, pos int) error
	// OpenSlot сдвигает card_order на +1 для карточек списка с card_order >= pos
	OpenSlot(ctx context.Context, listID string, pos int) error
	PlaceCard(ctx context.Context, cardID, listID string, pos int) error
	CreateCard(ctx context.Context, card *model.TeamCard) error
	DeleteCard(ctx context.Context, id string) error
	SetAssignees(ctx context.Context, cardID string, userIDs []string) error
}

type BoardStore interface {
	BoardTx

	CreateBoard(ctx context.Context, board *model.TeamBoard) error
	GetBoard(ctx context.Context, id string) (*model.TeamBoard, error)
	GetBoards(ctx context.Context) ([]*model.TeamBoard, error)
	UpdateBoard(ctx context.Context, board *model.TeamBoard) error
	DeleteBoard(ctx context.Context, id string) error

	CreateList(ctx context.Context, list *model.TeamList) error
	GetListsByBoard(ctx context.Context, boardID string) ([]*model.TeamList, error)
	UpdateList(ctx context.Context, list *model.TeamList) error

	GetCardsByList(ctx context.Context, listID string) ([]*model.TeamCard, error)
	UpdateCard(ctx context.Context, card *model.TeamCard) error
	SearchCards(ctx context.Context, boardID string, filter model.CardSearchFilter) ([]*model.TeamCard, error)
	GetAssignees(ctx context.Context, cardID string) ([]*model.User, error)
	CreateComment(ctx context.Context, comment *model.CardComment) error
	GetComments(ctx context.Context, cardID string) ([]*model.CardComment, error)
	CreateAttachment(ctx context.Context, att *model.CardAttachment) error
	GetAttachments(ctx context.Context, cardID string) ([]*model.CardAttachment, error)

	GetUser(ctx context.Context, id string) (*model.User, error)

	// InBoardTx выполняет fn в транзакции с блокировкой по id доски
	InBoardTx(ctx context.Context, boardID string, fn func(tx BoardTx) error) error
}

// SeminarTx операции над семинарским днём внутри транзакции
type SeminarTx interface {
	GetSeminarDay(ctx context.Context, id string) (*model.SeminarDay, error)
	GetSlot(ctx context.Context, id string) (*model.Slot, error)
	// GetActiveSlots возвращает активные слоты дня — кандидаты на конфликт
	GetActiveSlots(ctx context.Context, dayID string) ([]*model.Slot, error)
	CreateSlot(ctx context.Context, slot *model.Slot) error
	UpdateSlot(ctx context.Context, slot *model.Slot) error
}

type SeminarStore interface {
	SeminarTx

	CreateSeminarDay(ctx context.Context, day *model.SeminarDay) error
	GetSeminarDayByWeekday(ctx context.Context, weekday string) (*model.SeminarDay, error)
	GetSeminarDays(ctx context.Context) ([]*model.SeminarDay, error)
	UpdateSeminarDay(ctx context.Context, day *model.SeminarDay) error
	GetSlotsByDay(ctx context.Context, dayID string) ([]*model.Slot, error)

	// InDayTx выполняет fn в транзакции с блокировкой по id дня,
	// чтобы проверка пересечений и вставка были атомарны
	InDayTx(ctx context.Context, dayID string, fn func(tx SeminarTx) error) error
}

// BookingTx операции записи на курс внутри транзакции
type BookingTx interface {
	GetBookedSlotIDs(ctx context.Context, userID, seminarDayID string) (map[string]bool, error)
	CreateBooking(ctx context.Context, booking *model.Booking) error
}

type BookingStore interface {
	BookingTx

	GetUser(ctx context.Context, id string) (*model.User, error)
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	GetSlot(ctx context.Context, id string) (*model.Slot, error)
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	GetUserBookings(ctx context.Context, userID string) ([]*model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error
	BookingStatistics(ctx context.Context) (*model.BookingStatistics, error)

	InBookingTx(ctx context.Context, userID string, fn func(tx BookingTx) error) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

type CourseStore interface {
	CreateCourse(ctx context.Context, course *model.Course) error
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	GetCourses(ctx context.Context) ([]*model.Course, error)
	UpdateCourse(ctx context.Context, course *model.Course) error
	AddCourseModule(ctx context.Context, module *model.CourseModule) error
	GetSeminarDay(ctx context.Context, id string) (*model.SeminarDay, error)
	GetSlot(ctx context.Context, id string) (*model.Slot, error)
}

type DeviceStore interface {
	GetTrainingRoom(ctx context.Context, id string) (*model.TrainingRoom, error)
	CreateTrainingRoom(ctx context.Context, room *model.TrainingRoom) error
	CreateDeviceSession(ctx context.Context, session *model.DeviceSession) error
	GetDeviceSessions(ctx context.Context, deviceID string) ([]*model.DeviceSession, error)
	DeleteDeviceSessions(ctx context.Context, deviceID string) error
	SetDeviceBookingState(ctx context.Context, deviceID string, enabled bool, expiresAt time.Time) error
	GetDeviceBookingState(ctx context.Context, deviceID string) (*model.DeviceBookingState, error)
	SweepExpiredDeviceState(ctx context.Context) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// ActivityStore журнал действий, пишется best-effort
type ActivityStore interface {
	LogActivity(ctx context.Context, entry *model.ActivityLogEntry) error
	RecentActivity(ctx context.Context, limit int) ([]*model.ActivityLogEntry, error)
}

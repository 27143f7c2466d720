package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seminarhub/backend/internal/apperr"
	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/repository/base"
	"github.com/seminarhub/backend/internal/service"
)

// Классы advisory-блокировок, чтобы ключи разных доменов не пересекались
const (
	lockClassBoard   = 1
	lockClassDay     = 2
	lockClassBooking = 3
)

// queries набор репозиториев поверх одного Querier (пул или транзакция)
type queries struct {
	users    *UserRepository
	boards   *BoardRepository
	lists    *ListRepository
	cards    *CardRepository
	comments *CommentRepository
	days     *SeminarDayRepository
	slots    *SlotRepository
	courses  *CourseRepository
	bookings *BookingRepository
	devices  *DeviceRepository
	activity *ActivityRepository
}

func newQueries(q base.Querier) *queries {
	return &queries{
		users:    NewUserRepository(q),
		boards:   NewBoardRepository(q),
		lists:    NewListRepository(q),
		cards:    NewCardRepository(q),
		comments: NewCommentRepository(q),
		days:     NewSeminarDayRepository(q),
		slots:    NewSlotRepository(q),
		courses:  NewCourseRepository(q),
		bookings: NewBookingRepository(q),
		devices:  NewDeviceRepository(q),
		activity: NewActivityRepository(q),
	}
}

// Store pgx-хранилище, реализует интерфейсы из internal/service
type Store struct {
	pool *pgxpool.Pool
	*queries
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:    pool,
		queries: newQueries(pool),
	}
}

// Tx набор репозиториев, привязанный к открытой транзакции
type Tx struct {
	*queries
}

// inTx выполняет fn в транзакции. Если задан ключ, сначала берётся
// pg_advisory_xact_lock — конкурирующая транзакция с тем же ключом
// ждёт коммита первой и перечитывает уже применённое состояние.
// Ошибки сериализации и дедлоки превращаются в TransactionFailure.
func (s *Store) inTx(ctx context.Context, lockClass int, lockKey string, fn func(tx *Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if lockKey != "" {
		_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, hashtext($2))`, lockClass, lockKey)
		if err != nil {
			return fmt.Errorf("acquire advisory lock: %w", err)
		}
	}

	if err := fn(&Tx{queries: newQueries(tx)}); err != nil {
		if base.IsSerializationFailure(err) {
			return apperr.TransactionFailure("transaction aborted", err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if base.IsSerializationFailure(err) {
			return apperr.TransactionFailure("transaction aborted on commit", err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// InBoardTx сериализует конкурентные перемещения карточек одной доски
func (s *Store) InBoardTx(ctx context.Context, boardID string, fn func(tx service.BoardTx) error) error {
	return s.inTx(ctx, lockClassBoard, boardID, func(tx *Tx) error { return fn(tx) })
}

// InDayTx делает атомарной пару "проверка пересечений + запись слота"
func (s *Store) InDayTx(ctx context.Context, dayID string, fn func(tx service.SeminarTx) error) error {
	return s.inTx(ctx, lockClassDay, dayID, func(tx *Tx) error { return fn(tx) })
}

// InBookingTx сериализует записи одного пользователя
func (s *Store) InBookingTx(ctx context.Context, userID string, fn func(tx service.BookingTx) error) error {
	return s.inTx(ctx, lockClassBooking, userID, func(tx *Tx) error { return fn(tx) })
}

// Плоские методы поверх репозиториев. Через них Store и Tx
// реализуют интерфейсы сервисного слоя.

func (q *queries) CreateBoard(ctx context.Context, board *model.TeamBoard) error {
	return q.boards.Create(ctx, board)
}

func (q *queries) GetBoard(ctx context.Context, id string) (*model.TeamBoard, error) {
	return q.boards.GetByID(ctx, id)
}

func (q *queries) GetBoards(ctx context.Context) ([]*model.TeamBoard, error) {
	return q.boards.GetAll(ctx)
}

func (q *queries) UpdateBoard(ctx context.Context, board *model.TeamBoard) error {
	return q.boards.Update(ctx, board)
}

func (q *queries) DeleteBoard(ctx context.Context, id string) error {
	return q.boards.Delete(ctx, id)
}

func (q *queries) CreateList(ctx context.Context, list *model.TeamList) error {
	return q.lists.Create(ctx, list)
}

func (q *queries) GetList(ctx context.Context, id string) (*model.TeamList, error) {
	return q.lists.GetByID(ctx, id)
}

func (q *queries) GetListsByBoard(ctx context.Context, boardID string) ([]*model.TeamList, error) {
	return q.lists.GetByBoardID(ctx, boardID)
}

func (q *queries) UpdateList(ctx context.Context, list *model.TeamList) error {
	return q.lists.Update(ctx, list)
}

func (q *queries) GetCard(ctx context.Context, id string) (*model.TeamCard, error) {
	return q.cards.GetByID(ctx, id)
}

func (q *queries) GetCardsByList(ctx context.Context, listID string) ([]*model.TeamCard, error) {
	return q.cards.GetByListID(ctx, listID)
}

func (q *queries) CountCards(ctx context.Context, listID string) (int, error) {
	return q.cards.CountByListID(ctx, listID)
}

func (q *queries) CloseGap(ctx context.Context, listID string, pos int) error {
	return q.cards.CloseGap(ctx, listID, pos)
}

func (q *queries) OpenSlot(ctx context.Context, listID string, pos int) error {
	return q.cards.OpenSlot(ctx, listID, pos)
}

func (q *queries) PlaceCard(ctx context.Context, cardID, listID string, pos int) error {
	return q.cards.Place(ctx, cardID, listID, pos)
}

func (q *queries) CreateCard(ctx context.Context, card *model.TeamCard) error {
	return q.cards.Create(ctx, card)
}

func (q *queries) UpdateCard(ctx context.Context, card *model.TeamCard) error {
	return q.cards.Update(ctx, card)
}

func (q *queries) DeleteCard(ctx context.Context, id string) error {
	return q.cards.Delete(ctx, id)
}

func (q *queries) SetAssignees(ctx context.Context, cardID string, userIDs []string) error {
	return q.cards.SetAssignees(ctx, cardID, userIDs)
}

func (q *queries) GetAssignees(ctx context.Context, cardID string) ([]*model.User, error) {
	return q.cards.GetAssignees(ctx, cardID)
}

func (q *queries) SearchCards(ctx context.Context, boardID string, filter model.CardSearchFilter) ([]*model.TeamCard, error) {
	return q.cards.Search(ctx, boardID, filter)
}

func (q *queries) CreateComment(ctx context.Context, comment *model.CardComment) error {
	return q.comments.Create(ctx, comment)
}

func (q *queries) GetComments(ctx context.Context, cardID string) ([]*model.CardComment, error) {
	return q.comments.GetByCardID(ctx, cardID)
}

func (q *queries) CreateAttachment(ctx context.Context, att *model.CardAttachment) error {
	return q.comments.CreateAttachment(ctx, att)
}

func (q *queries) GetAttachments(ctx context.Context, cardID string) ([]*model.CardAttachment, error) {
	return q.comments.GetAttachmentsByCardID(ctx, cardID)
}

func (q *queries) CreateSeminarDay(ctx context.Context, day *model.SeminarDay) error {
	return q.days.Create(ctx, day)
}

func (q *queries) GetSeminarDay(ctx context.Context, id string) (*model.SeminarDay, error) {
	return q.days.GetByID(ctx, id)
}

func (q *queries) GetSeminarDayByWeekday(ctx context.Context, weekday string) (*model.SeminarDay, error) {
	return q.days.GetByWeekday(ctx, weekday)
}

func (q *queries) GetSeminarDays(ctx context.Context) ([]*model.SeminarDay, error) {
	return q.days.GetAll(ctx)
}

func (q *queries) UpdateSeminarDay(ctx context.Context, day *model.SeminarDay) error {
	return q.days.Update(ctx, day)
}

func (q *queries) CreateSlot(ctx context.Context, slot *model.Slot) error {
	return q.slots.Create(ctx, slot)
}

func (q *queries) GetSlot(ctx context.Context, id string) (*model.Slot, error) {
	return q.slots.GetByID(ctx, id)
}

func (q *queries) GetSlotsByDay(ctx context.Context, dayID string) ([]*model.Slot, error) {
	return q.slots.GetByDayID(ctx, dayID)
}

func (q *queries) GetActiveSlots(ctx context.Context, dayID string) ([]*model.Slot, error) {
	return q.slots.GetActiveByDayID(ctx, dayID)
}

func (q *queries) UpdateSlot(ctx context.Context, slot *model.Slot) error {
	return q.slots.Update(ctx, slot)
}

func (q *queries) CreateUser(ctx context.Context, user *model.User) error {
	return q.users.Create(ctx, user)
}

func (q *queries) GetUser(ctx context.Context, id string) (*model.User, error) {
	return q.users.GetByID(ctx, id)
}

func (q *queries) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return q.users.GetByEmail(ctx, email)
}

func (q *queries) GetUsers(ctx context.Context) ([]*model.User, error) {
	return q.users.GetAll(ctx)
}

func (q *queries) UpdateUser(ctx context.Context, user *model.User) error {
	return q.users.Update(ctx, user)
}

func (q *queries) CreateCourse(ctx context.Context, course *model.Course) error {
	return q.courses.Create(ctx, course)
}

func (q *queries) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	return q.courses.GetByID(ctx, id)
}

func (q *queries) GetCourses(ctx context.Context) ([]*model.Course, error) {
	return q.courses.GetAll(ctx)
}

func (q *queries) UpdateCourse(ctx context.Context, course *model.Course) error {
	return q.courses.Update(ctx, course)
}

func (q *queries) AddCourseModule(ctx context.Context, module *model.CourseModule) error {
	return q.courses.AddModule(ctx, module)
}

func (q *queries) CreateBooking(ctx context.Context, booking *model.Booking) error {
	return q.bookings.Create(ctx, booking)
}

func (q *queries) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	return q.bookings.GetByID(ctx, id)
}

func (q *queries) GetUserBookings(ctx context.Context, userID string) ([]*model.Booking, error) {
	return q.bookings.GetByUserID(ctx, userID)
}

func (q *queries) GetBookedSlotIDs(ctx context.Context, userID, seminarDayID string) (map[string]bool, error) {
	return q.bookings.GetBookedSlotIDs(ctx, userID, seminarDayID)
}

func (q *queries) UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error {
	return q.bookings.UpdateStatus(ctx, id, status)
}

func (q *queries) BookingStatistics(ctx context.Context) (*model.BookingStatistics, error) {
	return q.bookings.Statistics(ctx)
}

func (q *queries) GetTrainingRoom(ctx context.Context, id string) (*model.TrainingRoom, error) {
	return q.devices.GetTrainingRoom(ctx, id)
}

func (q *queries) CreateTrainingRoom(ctx context.Context, room *model.TrainingRoom) error {
	return q.devices.CreateTrainingRoom(ctx, room)
}

func (q *queries) CreateDeviceSession(ctx context.Context, session *model.DeviceSession) error {
	return q.devices.CreateSession(ctx, session)
}

func (q *queries) GetDeviceSessions(ctx context.Context, deviceID string) ([]*model.DeviceSession, error) {
	return q.devices.GetActiveSessions(ctx, deviceID)
}

func (q *queries) DeleteDeviceSessions(ctx context.Context, deviceID string) error {
	return q.devices.DeleteSessions(ctx, deviceID)
}

func (q *queries) SetDeviceBookingState(ctx context.Context, deviceID string, enabled bool, expiresAt time.Time) error {
	return q.devices.SetBookingState(ctx, deviceID, enabled, expiresAt)
}

func (q *queries) GetDeviceBookingState(ctx context.Context, deviceID string) (*model.DeviceBookingState, error) {
	return q.devices.GetBookingState(ctx, deviceID)
}

func (q *queries) SweepExpiredDeviceState(ctx context.Context) (int64, error) {
	return q.devices.SweepExpired(ctx)
}

func (q *queries) LogActivity(ctx context.Context, entry *model.ActivityLogEntry) error {
	return q.activity.Create(ctx, entry)
}

func (q *queries) RecentActivity(ctx context.Context, limit int) ([]*model.ActivityLogEntry, error) {
	return q.activity.GetRecent(ctx, limit)
}

// Проверки соответствия интерфейсам сервисного слоя
var (
	_ service.BoardStore    = (*Store)(nil)
	_ service.SeminarStore  = (*Store)(nil)
	_ service.BookingStore  = (*Store)(nil)
	_ service.UserStore     = (*Store)(nil)
	_ service.CourseStore   = (*Store)(nil)
	_ service.DeviceStore   = (*Store)(nil)
	_ service.ActivityStore = (*Store)(nil)
	_ service.BoardTx       = (*Tx)(nil)
	_ service.SeminarTx     = (*Tx)(nil)
	_ service.BookingTx     = (*Tx)(nil)
)

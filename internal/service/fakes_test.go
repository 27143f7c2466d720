package service

import (
	"context"
	"sort"
	"time"

	"github.com/seminarhub/backend/internal/model"
)

// In-memory реализации интерфейсов хранилища для тестов сервисов.
// Транзакционные методы выполняют колбэк прямо над теми же картами,
// блокировки не эмулируются.

type fakeBoardStore struct {
	boards      map[string]*model.TeamBoard
	lists       map[string]*model.TeamList
	cards       map[string]*model.TeamCard
	users       map[string]*model.User
	assignees   map[string][]string
	comments    map[string][]*model.CardComment
	attachments map[string][]*model.CardAttachment
}

func newFakeBoardStore() *fakeBoardStore {
	return &fakeBoardStore{
		boards:      make(map[string]*model.TeamBoard),
		lists:       make(map[string]*model.TeamList),
		cards:       make(map[string]*model.TeamCard),
		users:       make(map[string]*model.User),
		assignees:   make(map[string][]string),
		comments:    make(map[string][]*model.CardComment),
		attachments: make(map[string][]*model.CardAttachment),
	}
}

func (f *fakeBoardStore) GetList(_ context.Context, id string) (*model.TeamList, error) {
	return f.lists[id], nil
}

func (f *fakeBoardStore) GetCard(_ context.Context, id string) (*model.TeamCard, error) {
	return f.cards[id], nil
}

func (f *fakeBoardStore) CountCards(_ context.Context, listID string) (int, error) {
	count := 0
	for _, card := range f.cards {
		if card.ListID == listID {
			count++
		}
	}
	return count, nil
}

func (f *fakeBoardStore) CloseGap(_ context.Context, listID string, pos int) error {
	for _, card := range f.cards {
		if card.ListID == listID && card.CardOrder > pos {
			card.CardOrder--
		}
	}
	return nil
}

func (f *fakeBoardStore) OpenSlot(_ context.Context, listID string, pos int) error {
	for _, card := range f.cards {
		if card.ListID == listID && card.CardOrder >= pos {
			card.CardOrder++
		}
	}
	return nil
}

func (f *fakeBoardStore) PlaceCard(_ context.Context, cardID, listID string, pos int) error {
	card := f.cards[cardID]
	card.ListID = listID
	card.CardOrder = pos
	return nil
}

func (f *fakeBoardStore) CreateCard(_ context.Context, card *model.TeamCard) error {
	f.cards[card.ID] = card
	return nil
}

func (f *fakeBoardStore) UpdateCard(_ context.Context, card *model.TeamCard) error {
	f.cards[card.ID] = card
	return nil
}

func (f *fakeBoardStore) DeleteCard(_ context.Context, id string) error {
	delete(f.cards, id)
	return nil
}

func (f *fakeBoardStore) SetAssignees(_ context.Context, cardID string, userIDs []string) error {
	f.assignees[cardID] = userIDs
	return nil
}

func (f *fakeBoardStore) CreateBoard(_ context.Context, board *model.TeamBoard) error {
	f.boards[board.ID] = board
	return nil
}

func (f *fakeBoardStore) GetBoard(_ context.Context, id string) (*model.TeamBoard, error) {
	return f.boards[id], nil
}

func (f *fakeBoardStore) GetBoards(_ context.Context) ([]*model.TeamBoard, error) {
	var boards []*model.TeamBoard
	for _, board := range f.boards {
		boards = append(boards, board)
	}
	return boards, nil
}

func (f *fakeBoardStore) UpdateBoard(_ context.Context, board *model.TeamBoard) error {
	f.boards[board.ID] = board
	return nil
}

func (f *fakeBoardStore) DeleteBoard(_ context.Context, id string) error {
	delete(f.boards, id)
	return nil
}

func (f *fakeBoardStore) CreateList(_ context.Context, list *model.TeamList) error {
	f.lists[list.ID] = list
	return nil
}

func (f *fakeBoardStore) GetListsByBoard(_ context.Context, boardID string) ([]*model.TeamList, error) {
	var lists []*model.TeamList
	for _, list := range f.lists {
		if list.BoardID == boardID {
			lists = append(lists, list)
		}
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].ListOrder < lists[j].ListOrder })
	return lists, nil
}

func (f *fakeBoardStore) UpdateList(_ context.Context, list *model.TeamList) error {
	f.lists[list.ID] = list
	return nil
}

func (f *fakeBoardStore) GetCardsByList(_ context.Context, listID string) ([]*model.TeamCard, error) {
	var cards []*model.TeamCard
	for _, card := range f.cards {
		if card.ListID == listID {
			cards = append(cards, card)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].CardOrder < cards[j].CardOrder })
	return cards, nil
}

func (f *fakeBoardStore) SearchCards(_ context.Context, boardID string, filter model.CardSearchFilter) ([]*model.TeamCard, error) {
	var cards []*model.TeamCard
	for _, card := range f.cards {
		list := f.lists[card.ListID]
		if list == nil || list.BoardID != boardID {
			continue
		}
		if filter.ListID != "" && card.ListID != filter.ListID {
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (f *fakeBoardStore) GetAssignees(_ context.Context, cardID string) ([]*model.User, error) {
	var users []*model.User
	for _, id := range f.assignees[cardID] {
		if user := f.users[id]; user != nil {
			users = append(users, user)
		}
	}
	return users, nil
}

func (f *fakeBoardStore) CreateComment(_ context.Context, comment *model.CardComment) error {
	f.comments[comment.CardID] = append(f.comments[comment.CardID], comment)
	return nil
}

func (f *fakeBoardStore) GetComments(_ context.Context, cardID string) ([]*model.CardComment, error) {
	return f.comments[cardID], nil
}

func (f *fakeBoardStore) CreateAttachment(_ context.Context, att *model.CardAttachment) error {
	f.attachments[att.CardID] = append(f.attachments[att.CardID], att)
	return nil
}

func (f *fakeBoardStore) GetAttachments(_ context.Context, cardID string) ([]*model.CardAttachment, error) {
	return f.attachments[cardID], nil
}

func (f *fakeBoardStore) GetUser(_ context.Context, id string) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeBoardStore) InBoardTx(_ context.Context, _ string, fn func(tx BoardTx) error) error {
	return fn(f)
}

type fakeActivityStore struct {
	entries []*model.ActivityLogEntry
}

func (f *fakeActivityStore) LogActivity(_ context.Context, entry *model.ActivityLogEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeActivityStore) RecentActivity(_ context.Context, limit int) ([]*model.ActivityLogEntry, error) {
	if len(f.entries) < limit {
		limit = len(f.entries)
	}
	return f.entries[len(f.entries)-limit:], nil
}

type fakeSeminarStore struct {
	days  map[string]*model.SeminarDay
	slots map[string]*model.Slot
}

func newFakeSeminarStore() *fakeSeminarStore {
	return &fakeSeminarStore{
		days:  make(map[string]*model.SeminarDay),
		slots: make(map[string]*model.Slot),
	}
}

func (f *fakeSeminarStore) GetSeminarDay(_ context.Context, id string) (*model.SeminarDay, error) {
	return f.days[id], nil
}

func (f *fakeSeminarStore) GetSlot(_ context.Context, id string) (*model.Slot, error) {
	return f.slots[id], nil
}

func (f *fakeSeminarStore) GetActiveSlots(_ context.Context, dayID string) ([]*model.Slot, error) {
	var slots []*model.Slot
	for _, slot := range f.slots {
		if slot.SeminarDayID == dayID && slot.IsActive {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func (f *fakeSeminarStore) CreateSlot(_ context.Context, slot *model.Slot) error {
	f.slots[slot.ID] = slot
	return nil
}

func (f *fakeSeminarStore) UpdateSlot(_ context.Context, slot *model.Slot) error {
	f.slots[slot.ID] = slot
	return nil
}

func (f *fakeSeminarStore) CreateSeminarDay(_ context.Context, day *model.SeminarDay) error {
	f.days[day.ID] = day
	return nil
}

func (f *fakeSeminarStore) GetSeminarDayByWeekday(_ context.Context, weekday string) (*model.SeminarDay, error) {
	for _, day := range f.days {
		if day.Weekday == weekday {
			return day, nil
		}
	}
	return nil, nil
}

func (f *fakeSeminarStore) GetSeminarDays(_ context.Context) ([]*model.SeminarDay, error) {
	var days []*model.SeminarDay
	for _, day := range f.days {
		days = append(days, day)
	}
	return days, nil
}

func (f *fakeSeminarStore) UpdateSeminarDay(_ context.Context, day *model.SeminarDay) error {
	f.days[day.ID] = day
	return nil
}

func (f *fakeSeminarStore) GetSlotsByDay(_ context.Context, dayID string) ([]*model.Slot, error) {
	var slots []*model.Slot
	for _, slot := range f.slots {
		if slot.SeminarDayID == dayID {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func (f *fakeSeminarStore) InDayTx(_ context.Context, _ string, fn func(tx SeminarTx) error) error {
	return fn(f)
}

type fakeBookingStore struct {
	users    map[string]*model.User
	courses  map[string]*model.Course
	slots    map[string]*model.Slot
	bookings map[string]*model.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		users:    make(map[string]*model.User),
		courses:  make(map[string]*model.Course),
		slots:    make(map[string]*model.Slot),
		bookings: make(map[string]*model.Booking),
	}
}

func (f *fakeBookingStore) GetUser(_ context.Context, id string) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeBookingStore) GetCourse(_ context.Context, id string) (*model.Course, error) {
	return f.courses[id], nil
}

func (f *fakeBookingStore) GetSlot(_ context.Context, id string) (*model.Slot, error) {
	return f.slots[id], nil
}

func (f *fakeBookingStore) GetBooking(_ context.Context, id string) (*model.Booking, error) {
	return f.bookings[id], nil
}

func (f *fakeBookingStore) GetUserBookings(_ context.Context, userID string) ([]*model.Booking, error) {
	var bookings []*model.Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			bookings = append(bookings, booking)
		}
	}
	return bookings, nil
}

func (f *fakeBookingStore) UpdateBookingStatus(_ context.Context, id string, status model.BookingStatus) error {
	f.bookings[id].Status = status
	return nil
}

func (f *fakeBookingStore) BookingStatistics(_ context.Context) (*model.BookingStatistics, error) {
	return &model.BookingStatistics{TotalBookings: int64(len(f.bookings))}, nil
}

func (f *fakeBookingStore) GetBookedSlotIDs(_ context.Context, userID, seminarDayID string) (map[string]bool, error) {
	booked := make(map[string]bool)
	for _, booking := range f.bookings {
		if booking.UserID != userID || booking.Status != model.BookingStatusConfirmed {
			continue
		}
		course := f.courses[booking.CourseID]
		if course == nil || course.SeminarDayID != seminarDayID {
			continue
		}
		for _, module := range course.Modules {
			if module.SlotID != nil {
				booked[*module.SlotID] = true
			}
		}
		for _, slotID := range booking.SlotIDs {
			booked[slotID] = true
		}
	}
	return booked, nil
}

func (f *fakeBookingStore) CreateBooking(_ context.Context, booking *model.Booking) error {
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeBookingStore) InBookingTx(_ context.Context, _ string, fn func(tx BookingTx) error) error {
	return fn(f)
}

type fakeDeviceStore struct {
	rooms    map[string]*model.TrainingRoom
	sessions map[string][]*model.DeviceSession
	states   map[string]*model.DeviceBookingState
	users    map[string]*model.User // по почте
}

func newFakeDeviceStore() *fakeDeviceStore {
	return &fakeDeviceStore{
		rooms:    make(map[string]*model.TrainingRoom),
		sessions: make(map[string][]*model.DeviceSession),
		states:   make(map[string]*model.DeviceBookingState),
		users:    make(map[string]*model.User),
	}
}

func (f *fakeDeviceStore) GetTrainingRoom(_ context.Context, id string) (*model.TrainingRoom, error) {
	return f.rooms[id], nil
}

func (f *fakeDeviceStore) CreateTrainingRoom(_ context.Context, room *model.TrainingRoom) error {
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeDeviceStore) CreateDeviceSession(_ context.Context, session *model.DeviceSession) error {
	f.sessions[session.DeviceID] = append(f.sessions[session.DeviceID], session)
	return nil
}

func (f *fakeDeviceStore) GetDeviceSessions(_ context.Context, deviceID string) ([]*model.DeviceSession, error) {
	return f.sessions[deviceID], nil
}

func (f *fakeDeviceStore) DeleteDeviceSessions(_ context.Context, deviceID string) error {
	delete(f.sessions, deviceID)
	return nil
}

func (f *fakeDeviceStore) SetDeviceBookingState(_ context.Context, deviceID string, enabled bool, expiresAt time.Time) error {
	f.states[deviceID] = &model.DeviceBookingState{
		DeviceID:       deviceID,
		BookingEnabled: enabled,
		ExpiresAt:      expiresAt,
	}
	return nil
}

func (f *fakeDeviceStore) GetDeviceBookingState(_ context.Context, deviceID string) (*model.DeviceBookingState, error) {
	return f.states[deviceID], nil
}

func (f *fakeDeviceStore) SweepExpiredDeviceState(_ context.Context) (int64, error) {
	var removed int64
	now := time.Now()
	for deviceID, sessions := range f.sessions {
		kept := sessions[:0]
		for _, session := range sessions {
			if session.ExpiresAt.After(now) {
				kept = append(kept, session)
			} else {
				removed++
			}
		}
		f.sessions[deviceID] = kept
	}
	return removed, nil
}

func (f *fakeDeviceStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return f.users[email], nil
}

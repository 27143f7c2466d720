package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/apperr"
	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/notify"
)

type bookingFixture struct {
	store   *fakeBookingStore
	devices *fakeDeviceStore
	service *BookingService
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	store := newFakeBookingStore()
	store.users["u1"] = &model.User{ID: "u1", Role: model.RoleStudent, IsActive: true}
	store.slots["s1"] = &model.Slot{ID: "s1", SeminarDayID: "d1", StartTime: mins(9, 0), EndTime: mins(10, 0), IsActive: true}
	store.slots["s2"] = &model.Slot{ID: "s2", SeminarDayID: "d1", StartTime: mins(10, 0), EndTime: mins(11, 0), IsActive: true}

	devices := newFakeDeviceStore()

	return &bookingFixture{
		store:   store,
		devices: devices,
		service: NewBookingService(store, devices, notify.NopBroadcaster{}, zap.NewNop()),
	}
}

func (f *bookingFixture) seedCourse(id string, format model.CourseFormat, moduleSlotIDs ...string) {
	course := &model.Course{
		ID:           id,
		Title:        id,
		Format:       format,
		SeminarDayID: "d1",
		IsActive:     true,
	}
	for i, slotID := range moduleSlotIDs {
		sid := slotID
		course.Modules = append(course.Modules, &model.CourseModule{
			ID:          id + "-m" + sid,
			CourseID:    id,
			ModuleOrder: i,
			SlotID:      &sid,
		})
	}
	f.store.courses[id] = course
}

func TestBookRecordedCourse(t *testing.T) {
	f := newBookingFixture(t)
	f.seedCourse("c1", model.CourseFormatRecorded)

	booking, err := f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c1",
		SlotIDs:  []string{"s1"},
	})
	require.NoError(t, err)
	require.Equal(t, model.BookingStatusConfirmed, booking.Status)
	require.Equal(t, []string{"s1"}, booking.SlotIDs)
}

func TestBookRecordedCourseRequiresSlots(t *testing.T) {
	f := newBookingFixture(t)
	f.seedCourse("c1", model.CourseFormatRecorded)

	_, err := f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c1",
	})
	require.True(t, apperr.IsKind(err, apperr.KindInvalidOperation))
}

func TestBookRecordedCourseSlotConflict(t *testing.T) {
	f := newBookingFixture(t)
	f.seedCourse("c1", model.CourseFormatRecorded)
	f.seedCourse("c2", model.CourseFormatRecorded)

	_, err := f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c1",
		SlotIDs:  []string{"s1"},
	})
	require.NoError(t, err)

	// Тот же слот занят первой записью
	_, err = f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c2",
		SlotIDs:  []string{"s1"},
	})
	require.True(t, apperr.IsKind(err, apperr.KindConflict))

	// Свободный слот проходит
	_, err = f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c2",
		SlotIDs:  []string{"s2"},
	})
	require.NoError(t, err)
}

func TestBookLiveCourseUsesModuleSlots(t *testing.T) {
	f := newBookingFixture(t)
	f.seedCourse("c1", model.CourseFormatLive, "s1")
	f.seedCourse("c2", model.CourseFormatRecorded)

	_, err := f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c1",
		// Выбор студента для live-курса игнорируется
		SlotIDs: []string{"s2"},
	})
	require.NoError(t, err)

	// Слот модуля live-курса занят, recorded-запись на него конфликтует
	_, err = f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c2",
		SlotIDs:  []string{"s1"},
	})
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestBookCourseRejectsInactiveSlot(t *testing.T) {
	f := newBookingFixture(t)
	f.seedCourse("c1", model.CourseFormatRecorded)
	f.store.slots["s1"].IsActive = false

	_, err := f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c1",
		SlotIDs:  []string{"s1"},
	})
	require.True(t, apperr.IsKind(err, apperr.KindInvalidOperation))
}

func TestBookCourseRejectsDisabledDevice(t *testing.T) {
	f := newBookingFixture(t)
	f.seedCourse("c1", model.CourseFormatRecorded)
	f.devices.states["dev1"] = &model.DeviceBookingState{
		DeviceID:       "dev1",
		BookingEnabled: false,
		ExpiresAt:      time.Now().Add(time.Hour),
	}

	_, err := f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c1",
		DeviceID: "dev1",
		SlotIDs:  []string{"s1"},
	})
	require.True(t, apperr.IsKind(err, apperr.KindPermissionDenied))
}

func TestBookCourseAllowsExpiredDeviceBan(t *testing.T) {
	f := newBookingFixture(t)
	f.seedCourse("c1", model.CourseFormatRecorded)
	f.devices.states["dev1"] = &model.DeviceBookingState{
		DeviceID:       "dev1",
		BookingEnabled: false,
		ExpiresAt:      time.Now().Add(-time.Minute),
	}

	_, err := f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c1",
		DeviceID: "dev1",
		SlotIDs:  []string{"s1"},
	})
	require.NoError(t, err)
}

// flakyBookingStore обрывает первые failures транзакций
type flakyBookingStore struct {
	*fakeBookingStore
	failures int
	attempts int
}

func (s *flakyBookingStore) InBookingTx(ctx context.Context, userID string, fn func(tx BookingTx) error) error {
	s.attempts++
	if s.failures > 0 {
		s.failures--
		return apperr.TransactionFailure("transaction aborted", errors.New("deadlock detected"))
	}
	return s.fakeBookingStore.InBookingTx(ctx, userID, fn)
}

func TestBookCourseRetriesAbortedTx(t *testing.T) {
	f := newBookingFixture(t)
	f.seedCourse("c1", model.CourseFormatRecorded)

	flaky := &flakyBookingStore{fakeBookingStore: f.store, failures: 1}
	service := NewBookingService(flaky, f.devices, notify.NopBroadcaster{}, zap.NewNop())

	booking, err := service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c1",
		SlotIDs:  []string{"s1"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, flaky.attempts)
	require.Contains(t, f.store.bookings, booking.ID)
}

func TestCancelBooking(t *testing.T) {
	f := newBookingFixture(t)
	f.seedCourse("c1", model.CourseFormatRecorded)

	booking, err := f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c1",
		SlotIDs:  []string{"s1"},
	})
	require.NoError(t, err)

	require.NoError(t, f.service.CancelBooking(context.Background(), "u1", booking.ID))
	require.Equal(t, model.BookingStatusCancelled, f.store.bookings[booking.ID].Status)

	// Отменённая запись освобождает слот
	_, err = f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c1",
		SlotIDs:  []string{"s1"},
	})
	require.NoError(t, err)
}

func TestCancelBookingForeignUser(t *testing.T) {
	f := newBookingFixture(t)
	f.seedCourse("c1", model.CourseFormatRecorded)
	f.store.users["u2"] = &model.User{ID: "u2", Role: model.RoleStudent, IsActive: true}

	booking, err := f.service.BookCourse(context.Background(), BookCourseInput{
		UserID:   "u1",
		CourseID: "c1",
		SlotIDs:  []string{"s1"},
	})
	require.NoError(t, err)

	err = f.service.CancelBooking(context.Background(), "u2", booking.ID)
	require.True(t, apperr.IsKind(err, apperr.KindPermissionDenied))
}

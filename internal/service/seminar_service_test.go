package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/apperr"
	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/notify"
)

func mins(h, m int) model.TimeOfDay {
	return model.TimeOfDay(h*60 + m)
}

type seminarFixture struct {
	store   *fakeSeminarStore
	service *SeminarService
}

func newSeminarFixture(t *testing.T) *seminarFixture {
	t.Helper()

	store := newFakeSeminarStore()
	store.days["d1"] = &model.SeminarDay{ID: "d1", Weekday: "monday", IsActive: true}

	return &seminarFixture{
		store:   store,
		service: NewSeminarService(store, notify.NopBroadcaster{}, zap.NewNop()),
	}
}

func (f *seminarFixture) seedSlot(id string, start, end model.TimeOfDay, active bool) {
	f.store.slots[id] = &model.Slot{
		ID:           id,
		SeminarDayID: "d1",
		StartTime:    start,
		EndTime:      end,
		IsActive:     active,
	}
}

func TestCreateSlot(t *testing.T) {
	f := newSeminarFixture(t)

	slot, err := f.service.CreateSlot(context.Background(), "d1", mins(9, 0), mins(10, 0), true, nil)
	require.NoError(t, err)
	require.Equal(t, "d1", slot.SeminarDayID)
	require.Equal(t, "09:00", slot.StartTime.String())
}

func TestCreateSlotRejectsOverlap(t *testing.T) {
	f := newSeminarFixture(t)
	f.seedSlot("s1", mins(9, 0), mins(10, 0), true)

	_, err := f.service.CreateSlot(context.Background(), "d1", mins(9, 30), mins(10, 30), true, nil)
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
	require.ErrorContains(t, err, "09:00-10:00")

	// Отклонённый слот не попадает в хранилище
	require.Len(t, f.store.slots, 1)
	require.Contains(t, f.store.slots, "s1")
}

func TestCreateSlotRejectsContainedInterval(t *testing.T) {
	f := newSeminarFixture(t)
	f.seedSlot("s1", mins(9, 0), mins(12, 0), true)

	_, err := f.service.CreateSlot(context.Background(), "d1", mins(10, 0), mins(11, 0), true, nil)
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCreateSlotRejectsExactDuplicate(t *testing.T) {
	f := newSeminarFixture(t)
	f.seedSlot("s1", mins(9, 0), mins(10, 0), true)

	_, err := f.service.CreateSlot(context.Background(), "d1", mins(9, 0), mins(10, 0), true, nil)
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCreateSlotAllowsAdjacent(t *testing.T) {
	f := newSeminarFixture(t)
	f.seedSlot("s1", mins(9, 0), mins(10, 0), true)

	// Конец одного слота совпадает с началом другого, это не пересечение
	_, err := f.service.CreateSlot(context.Background(), "d1", mins(10, 0), mins(11, 0), true, nil)
	require.NoError(t, err)

	_, err = f.service.CreateSlot(context.Background(), "d1", mins(8, 0), mins(9, 0), true, nil)
	require.NoError(t, err)
}

func TestCreateSlotIgnoresInactiveSlots(t *testing.T) {
	f := newSeminarFixture(t)
	f.seedSlot("s1", mins(9, 0), mins(10, 0), false)

	_, err := f.service.CreateSlot(context.Background(), "d1", mins(9, 0), mins(10, 0), true, nil)
	require.NoError(t, err)
}

func TestCreateSlotRejectsInvertedBounds(t *testing.T) {
	f := newSeminarFixture(t)

	_, err := f.service.CreateSlot(context.Background(), "d1", mins(10, 0), mins(9, 0), true, nil)
	require.True(t, apperr.IsKind(err, apperr.KindInvalidOperation))

	_, err = f.service.CreateSlot(context.Background(), "d1", mins(10, 0), mins(10, 0), true, nil)
	require.True(t, apperr.IsKind(err, apperr.KindInvalidOperation))
}

func TestCreateSlotUnknownDay(t *testing.T) {
	f := newSeminarFixture(t)

	_, err := f.service.CreateSlot(context.Background(), "missing", mins(9, 0), mins(10, 0), true, nil)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateSlotInactiveDay(t *testing.T) {
	f := newSeminarFixture(t)
	f.store.days["d1"].IsActive = false

	_, err := f.service.CreateSlot(context.Background(), "d1", mins(9, 0), mins(10, 0), true, nil)
	require.True(t, apperr.IsKind(err, apperr.KindInvalidOperation))
}

func TestUpdateSlotBoundsExcludesSelf(t *testing.T) {
	f := newSeminarFixture(t)
	f.seedSlot("s1", mins(9, 0), mins(10, 0), true)

	// Новые границы пересекаются только с самим слотом
	start := mins(9, 15)
	end := mins(10, 15)
	slot, err := f.service.UpdateSlot(context.Background(), "s1", model.SlotUpdate{
		StartTime: &start,
		EndTime:   &end,
	})
	require.NoError(t, err)
	require.Equal(t, "09:15", slot.StartTime.String())
	require.Equal(t, "10:15", slot.EndTime.String())
}

func TestUpdateSlotBoundsConflict(t *testing.T) {
	f := newSeminarFixture(t)
	f.seedSlot("s1", mins(9, 0), mins(10, 0), true)
	f.seedSlot("s2", mins(10, 0), mins(11, 0), true)

	end := mins(10, 30)
	_, err := f.service.UpdateSlot(context.Background(), "s1", model.SlotUpdate{
		EndTime: &end,
	})
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
	require.ErrorContains(t, err, "10:00-11:00")
}

func TestUpdateSlotReactivationChecksOverlap(t *testing.T) {
	f := newSeminarFixture(t)
	f.seedSlot("s1", mins(9, 0), mins(10, 0), false)
	f.seedSlot("s2", mins(9, 30), mins(10, 30), true)

	active := true
	_, err := f.service.UpdateSlot(context.Background(), "s1", model.SlotUpdate{
		IsActive: &active,
	})
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
	require.False(t, f.store.slots["s1"].IsActive)
}

// staleReadSeminarStore отдаёт вне транзакции устаревшую копию слота,
// чтения под блокировкой видят актуальное состояние
type staleReadSeminarStore struct {
	*fakeSeminarStore
	stale *model.Slot
}

func (s *staleReadSeminarStore) GetSlot(ctx context.Context, id string) (*model.Slot, error) {
	if s.stale != nil && s.stale.ID == id {
		slot := *s.stale
		return &slot, nil
	}
	return s.fakeSeminarStore.GetSlot(ctx, id)
}

func TestUpdateSlotMetadataKeepsConcurrentBounds(t *testing.T) {
	store := newFakeSeminarStore()
	store.days["d1"] = &model.SeminarDay{ID: "d1", Weekday: "monday", IsActive: true}
	// Слот уже ужат конкурирующим обновлением, освободив место под s2
	store.slots["s1"] = &model.Slot{ID: "s1", SeminarDayID: "d1", StartTime: mins(9, 0), EndTime: mins(9, 30), IsActive: true}
	store.slots["s2"] = &model.Slot{ID: "s2", SeminarDayID: "d1", StartTime: mins(9, 30), EndTime: mins(10, 0), IsActive: true}

	stale := &model.Slot{ID: "s1", SeminarDayID: "d1", StartTime: mins(9, 0), EndTime: mins(10, 0), IsActive: true}
	service := NewSeminarService(
		&staleReadSeminarStore{fakeSeminarStore: store, stale: stale},
		notify.NopBroadcaster{},
		zap.NewNop(),
	)

	// Обновление одних метаданных не должно откатить границы к устаревшим
	num := 1
	slot, err := service.UpdateSlot(context.Background(), "s1", model.SlotUpdate{SlotNumber: &num})
	require.NoError(t, err)
	require.Equal(t, "09:00", slot.StartTime.String())
	require.Equal(t, "09:30", slot.EndTime.String())
	require.Equal(t, "09:30", store.slots["s1"].EndTime.String())
	require.Equal(t, 1, *slot.SlotNumber)
}

// flakySeminarStore обрывает первые failures транзакций
type flakySeminarStore struct {
	*fakeSeminarStore
	failures int
	attempts int
}

func (s *flakySeminarStore) InDayTx(ctx context.Context, dayID string, fn func(tx SeminarTx) error) error {
	s.attempts++
	if s.failures > 0 {
		s.failures--
		return apperr.TransactionFailure("transaction aborted", errors.New("deadlock detected"))
	}
	return s.fakeSeminarStore.InDayTx(ctx, dayID, fn)
}

func TestCreateSlotRetriesAbortedTx(t *testing.T) {
	store := newFakeSeminarStore()
	store.days["d1"] = &model.SeminarDay{ID: "d1", Weekday: "monday", IsActive: true}
	flaky := &flakySeminarStore{fakeSeminarStore: store, failures: 1}
	service := NewSeminarService(flaky, notify.NopBroadcaster{}, zap.NewNop())

	slot, err := service.CreateSlot(context.Background(), "d1", mins(9, 0), mins(10, 0), true, nil)
	require.NoError(t, err)
	require.Equal(t, 2, flaky.attempts)
	require.Contains(t, store.slots, slot.ID)
}

func TestCreateSlotGivesUpAfterSecondAbort(t *testing.T) {
	store := newFakeSeminarStore()
	store.days["d1"] = &model.SeminarDay{ID: "d1", Weekday: "monday", IsActive: true}
	flaky := &flakySeminarStore{fakeSeminarStore: store, failures: 2}
	service := NewSeminarService(flaky, notify.NopBroadcaster{}, zap.NewNop())

	_, err := service.CreateSlot(context.Background(), "d1", mins(9, 0), mins(10, 0), true, nil)
	require.True(t, apperr.IsKind(err, apperr.KindTransactionFailure))
	require.Equal(t, 2, flaky.attempts)
}

func TestDeactivateSlot(t *testing.T) {
	f := newSeminarFixture(t)
	f.seedSlot("s1", mins(9, 0), mins(10, 0), true)

	require.NoError(t, f.service.DeactivateSlot(context.Background(), "s1"))
	require.False(t, f.store.slots["s1"].IsActive)
}

func TestCreateSeminarDayDuplicateWeekday(t *testing.T) {
	f := newSeminarFixture(t)

	_, err := f.service.CreateSeminarDay(context.Background(), "monday", true, "")
	require.True(t, apperr.IsKind(err, apperr.KindConflict))

	day, err := f.service.CreateSeminarDay(context.Background(), "tuesday", true, "evening track")
	require.NoError(t, err)
	require.Equal(t, "tuesday", day.Weekday)
}

func TestListSeminarDaysIncludesSlots(t *testing.T) {
	f := newSeminarFixture(t)
	f.seedSlot("s1", mins(9, 0), mins(10, 0), true)
	f.seedSlot("s2", mins(10, 0), mins(11, 0), false)

	days, err := f.service.ListSeminarDays(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Len(t, days[0].Slots, 2)
}

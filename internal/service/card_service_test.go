package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/apperr"
	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/notify"
)

type cardFixture struct {
	store   *fakeBoardStore
	service *CardService
}

func newCardFixture(t *testing.T) *cardFixture {
	t.Helper()

	store := newFakeBoardStore()
	store.boards["b1"] = &model.TeamBoard{ID: "b1", Title: "Sprint"}
	store.boards["b2"] = &model.TeamBoard{ID: "b2", Title: "Other"}
	store.lists["l1"] = &model.TeamList{ID: "l1", BoardID: "b1", Title: "To Do"}
	store.lists["l2"] = &model.TeamList{ID: "l2", BoardID: "b1", Title: "Done"}
	store.lists["l3"] = &model.TeamList{ID: "l3", BoardID: "b2", Title: "Elsewhere"}
	store.users["u1"] = &model.User{ID: "u1", Role: model.RoleStudent, IsActive: true}

	return &cardFixture{
		store:   store,
		service: NewCardService(store, &fakeActivityStore{}, notify.NopBroadcaster{}, zap.NewNop()),
	}
}

func (f *cardFixture) seedCard(id, listID string, order int) {
	f.store.cards[id] = &model.TeamCard{ID: id, ListID: listID, Title: id, CardOrder: order}
}

// requireOrder проверяет, что список содержит ровно эти карточки
// в плотной нумерации 0..n-1
func (f *cardFixture) requireOrder(t *testing.T, listID string, ids ...string) {
	t.Helper()

	cards, err := f.store.GetCardsByList(context.Background(), listID)
	require.NoError(t, err)
	require.Len(t, cards, len(ids))
	for i, id := range ids {
		require.Equal(t, id, cards[i].ID, "position %d", i)
		require.Equal(t, i, cards[i].CardOrder, "card %s", id)
	}
}

func TestCreateCardAppendsToEnd(t *testing.T) {
	f := newCardFixture(t)
	f.seedCard("a", "l1", 0)

	card, err := f.service.CreateCard(context.Background(), "u1", CreateCardInput{
		ListID: "l1",
		Title:  "new card",
	})
	require.NoError(t, err)
	require.Equal(t, 1, card.CardOrder)
	f.requireOrder(t, "l1", "a", card.ID)
}

func TestCreateCardAtPositionShiftsNeighbors(t *testing.T) {
	f := newCardFixture(t)
	f.seedCard("a", "l1", 0)
	f.seedCard("b", "l1", 1)

	pos := 0
	card, err := f.service.CreateCard(context.Background(), "u1", CreateCardInput{
		ListID:   "l1",
		Title:    "first",
		Position: &pos,
	})
	require.NoError(t, err)
	f.requireOrder(t, "l1", card.ID, "a", "b")
}

func TestCreateCardClampsPosition(t *testing.T) {
	f := newCardFixture(t)
	f.seedCard("a", "l1", 0)

	tooBig := 99
	card, err := f.service.CreateCard(context.Background(), "u1", CreateCardInput{
		ListID:   "l1",
		Title:    "clamped",
		Position: &tooBig,
	})
	require.NoError(t, err)
	require.Equal(t, 1, card.CardOrder)

	negative := -5
	card, err = f.service.CreateCard(context.Background(), "u1", CreateCardInput{
		ListID:   "l1",
		Title:    "clamped low",
		Position: &negative,
	})
	require.NoError(t, err)
	require.Equal(t, 0, card.CardOrder)
}

func TestCreateCardUnknownList(t *testing.T) {
	f := newCardFixture(t)

	_, err := f.service.CreateCard(context.Background(), "u1", CreateCardInput{
		ListID: "missing",
		Title:  "orphan",
	})
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestMoveCardAcrossLists(t *testing.T) {
	f := newCardFixture(t)
	f.seedCard("a", "l1", 0)
	f.seedCard("b", "l1", 1)
	f.seedCard("c", "l1", 2)
	f.seedCard("x", "l2", 0)

	card, err := f.service.MoveCard(context.Background(), "u1", "b", "l2", 0)
	require.NoError(t, err)
	require.Equal(t, "l2", card.ListID)
	require.Equal(t, 0, card.CardOrder)

	f.requireOrder(t, "l1", "a", "c")
	f.requireOrder(t, "l2", "b", "x")
}

func TestMoveCardWithinList(t *testing.T) {
	f := newCardFixture(t)
	f.seedCard("a", "l1", 0)
	f.seedCard("b", "l1", 1)
	f.seedCard("c", "l1", 2)

	_, err := f.service.MoveCard(context.Background(), "u1", "a", "l1", 2)
	require.NoError(t, err)
	f.requireOrder(t, "l1", "b", "c", "a")

	_, err = f.service.MoveCard(context.Background(), "u1", "a", "l1", 0)
	require.NoError(t, err)
	f.requireOrder(t, "l1", "a", "b", "c")
}

func TestMoveCardToSamePositionIsNoOp(t *testing.T) {
	f := newCardFixture(t)
	f.seedCard("a", "l1", 0)
	f.seedCard("b", "l1", 1)
	f.seedCard("c", "l1", 2)

	// Позиция за концом списка прижимается к последней, которая и так
	// занята этой карточкой
	card, err := f.service.MoveCard(context.Background(), "u1", "c", "l1", 7)
	require.NoError(t, err)
	require.Equal(t, 2, card.CardOrder)
	f.requireOrder(t, "l1", "a", "b", "c")
}

func TestMoveCardRejectsCrossBoard(t *testing.T) {
	f := newCardFixture(t)
	f.seedCard("a", "l1", 0)

	_, err := f.service.MoveCard(context.Background(), "u1", "a", "l3", 0)
	require.True(t, apperr.IsKind(err, apperr.KindInvalidOperation))
	f.requireOrder(t, "l1", "a")
}

func TestMoveCardUnknownCard(t *testing.T) {
	f := newCardFixture(t)

	_, err := f.service.MoveCard(context.Background(), "u1", "ghost", "l1", 0)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteCardClosesGap(t *testing.T) {
	f := newCardFixture(t)
	f.seedCard("a", "l1", 0)
	f.seedCard("b", "l1", 1)
	f.seedCard("c", "l1", 2)

	err := f.service.DeleteCard(context.Background(), "u1", "b")
	require.NoError(t, err)
	f.requireOrder(t, "l1", "a", "c")
}

func TestUpdateCardClearsDueDate(t *testing.T) {
	f := newCardFixture(t)
	f.seedCard("a", "l1", 0)

	title := "renamed"
	card, err := f.service.UpdateCard(context.Background(), "u1", "a", CardUpdate{
		Title:    &title,
		ClearDue: true,
	})
	require.NoError(t, err)
	require.Equal(t, "renamed", card.Title)
	require.Nil(t, card.DueDate)
	require.Equal(t, 0, card.CardOrder)
}

func TestClampPosition(t *testing.T) {
	require.Equal(t, 0, clampPosition(-1, 5))
	require.Equal(t, 3, clampPosition(3, 5))
	require.Equal(t, 5, clampPosition(9, 5))
	require.Equal(t, 0, clampPosition(0, 0))
}

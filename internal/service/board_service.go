package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/apperr"
	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/notify"
)

// Списки, создаваемые вместе с новой доской
var defaultListTitles = []string{"To Do", "In Progress", "Done"}

// BoardService управляет досками и списками команды
type BoardService struct {
	store    BoardStore
	activity ActivityStore
	events   notify.Broadcaster
	logger   *zap.Logger
}

func NewBoardService(store BoardStore, activity ActivityStore, events notify.Broadcaster, logger *zap.Logger) *BoardService {
	return &BoardService{
		store:    store,
		activity: activity,
		events:   events,
		logger:   logger,
	}
}

// CreateBoard создаёт доску со стандартным набором списков.
// Доски создают только преподаватели и администраторы.
func (s *BoardService) CreateBoard(ctx context.Context, userID, title, description string) (*model.TeamBoard, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	if !user.CanManageBoards() {
		return nil, apperr.PermissionDenied("only instructors and admins can create boards")
	}

	board := &model.TeamBoard{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
	}

	if err := s.store.CreateBoard(ctx, board); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	for i, listTitle := range defaultListTitles {
		list := &model.TeamList{
			ID:        uuid.NewString(),
			BoardID:   board.ID,
			Title:     listTitle,
			ListOrder: i,
		}
		if err := s.store.CreateList(ctx, list); err != nil {
			return nil, fmt.Errorf("create default list: %w", err)
		}
		board.Lists = append(board.Lists, list)
	}

	s.logger.Info("Board created",
		zap.String("board_id", board.ID),
		zap.String("user_id", userID),
	)

	s.logActivity(ctx, userID, "create", "TeamBoard", board.ID, map[string]string{
		"title": title,
	})
	s.events.Publish(notify.Event{Type: notify.EventBoardCreated, Payload: board})

	return board, nil
}

// GetBoard возвращает доску со списками, карточками и их исполнителями.
// Карточки внутри списков идут по card_order.
func (s *BoardService) GetBoard(ctx context.Context, id string) (*model.TeamBoard, error) {
	board, err := s.store.GetBoard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	if board == nil {
		return nil, apperr.NotFound("board not found")
	}

	lists, err := s.store.GetListsByBoard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lists: %w", err)
	}

	for _, list := range lists {
		cards, err := s.store.GetCardsByList(ctx, list.ID)
		if err != nil {
			return nil, fmt.Errorf("get cards: %w", err)
		}
		for _, card := range cards {
			assignees, err := s.store.GetAssignees(ctx, card.ID)
			if err != nil {
				return nil, fmt.Errorf("get assignees: %w", err)
			}
			card.AssignedUsers = assignees
		}
		list.Cards = cards
	}
	board.Lists = lists

	return board, nil
}

// GetCardDetails возвращает карточку с исполнителями, комментариями
// и вложениями
func (s *BoardService) GetCardDetails(ctx context.Context, cardID string) (*model.TeamCard, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if card == nil {
		return nil, apperr.NotFound("card not found")
	}

	if card.AssignedUsers, err = s.store.GetAssignees(ctx, cardID); err != nil {
		return nil, fmt.Errorf("get assignees: %w", err)
	}
	if card.Comments, err = s.store.GetComments(ctx, cardID); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}
	if card.Attachments, err = s.store.GetAttachments(ctx, cardID); err != nil {
		return nil, fmt.Errorf("get attachments: %w", err)
	}

	return card, nil
}

// ListBoards возвращает все доски без вложенности
func (s *BoardService) ListBoards(ctx context.Context) ([]*model.TeamBoard, error) {
	boards, err := s.store.GetBoards(ctx)
	if err != nil {
		return nil, fmt.Errorf("get boards: %w", err)
	}
	return boards, nil
}

// UpdateBoard меняет заголовок и описание доски
func (s *BoardService) UpdateBoard(ctx context.Context, userID, id string, title, description *string) (*model.TeamBoard, error) {
	board, err := s.store.GetBoard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	if board == nil {
		return nil, apperr.NotFound("board not found")
	}

	if title != nil {
		board.Title = *title
	}
	if description != nil {
		board.Description = *description
	}

	if err := s.store.UpdateBoard(ctx, board); err != nil {
		return nil, fmt.Errorf("update board: %w", err)
	}

	s.logActivity(ctx, userID, "update", "TeamBoard", id, nil)
	return board, nil
}

// DeleteBoard удаляет доску вместе со списками и карточками (каскадом в БД)
func (s *BoardService) DeleteBoard(ctx context.Context, userID, id string) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return apperr.NotFound("user not found")
	}
	if !user.CanManageBoards() {
		return apperr.PermissionDenied("only instructors and admins can delete boards")
	}

	board, err := s.store.GetBoard(ctx, id)
	if err != nil {
		return fmt.Errorf("get board: %w", err)
	}
	if board == nil {
		return apperr.NotFound("board not found")
	}

	if err := s.store.DeleteBoard(ctx, id); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}

	s.logger.Info("Board deleted", zap.String("board_id", id))
	s.logActivity(ctx, userID, "delete", "TeamBoard", id, nil)
	return nil
}

// CreateList добавляет список в конец доски
func (s *BoardService) CreateList(ctx context.Context, boardID, title string) (*model.TeamList, error) {
	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	if board == nil {
		return nil, apperr.NotFound("board not found")
	}

	lists, err := s.store.GetListsByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("get lists: %w", err)
	}

	list := &model.TeamList{
		ID:        uuid.NewString(),
		BoardID:   boardID,
		Title:     title,
		ListOrder: len(lists),
	}

	if err := s.store.CreateList(ctx, list); err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}

	return list, nil
}

// RenameList меняет заголовок списка
func (s *BoardService) RenameList(ctx context.Context, listID, title string) (*model.TeamList, error) {
	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	if list == nil {
		return nil, apperr.NotFound("list not found")
	}

	list.Title = title
	if err := s.store.UpdateList(ctx, list); err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}

	return list, nil
}

// SearchCards ищет карточки доски по тексту, исполнителю, списку и сроку
func (s *BoardService) SearchCards(ctx context.Context, boardID string, filter model.CardSearchFilter) ([]*model.TeamCard, error) {
	board, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	if board == nil {
		return nil, apperr.NotFound("board not found")
	}

	cards, err := s.store.SearchCards(ctx, boardID, filter)
	if err != nil {
		return nil, fmt.Errorf("search cards: %w", err)
	}
	return cards, nil
}

// RecentActivity возвращает последние записи журнала действий
func (s *BoardService) RecentActivity(ctx context.Context, limit int) ([]*model.ActivityLogEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.activity.RecentActivity(ctx, limit)
}

func (s *BoardService) logActivity(ctx context.Context, userID, action, entityType, entityID string, details map[string]string) {
	entry := &model.ActivityLogEntry{
		ID:         uuid.NewString(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Details:    details,
	}
	if err := s.activity.LogActivity(ctx, entry); err != nil {
		s.logger.Warn("Failed to log activity", zap.Error(err))
	}
}

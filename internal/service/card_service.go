package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/apperr"
	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/notify"
)

// CardService управляет карточками и их порядком в списках.
// Инвариант: в каждом списке card_order образует плотную нумерацию
// 0..n-1 без дырок и дублей. Никто кроме этого сервиса позиции не меняет.
type CardService struct {
	store    BoardStore
	activity ActivityStore
	events   notify.Broadcaster
	logger   *zap.Logger
}

func NewCardService(store BoardStore, activity ActivityStore, events notify.Broadcaster, logger *zap.Logger) *CardService {
	return &CardService{
		store:    store,
		activity: activity,
		events:   events,
		logger:   logger,
	}
}

type CreateCardInput struct {
	ListID          string
	Title           string
	Description     string
	AssignedUserIDs []string
	Position        *int // nil — в конец списка
	DueDate         *time.Time
}

// CreateCard создаёт карточку на указанной позиции, раздвигая соседей.
// Позиция ограничивается диапазоном [0, размер списка].
func (s *CardService) CreateCard(ctx context.Context, userID string, input CreateCardInput) (*model.TeamCard, error) {
	list, err := s.store.GetList(ctx, input.ListID)
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	if list == nil {
		return nil, apperr.NotFound("list not found")
	}

	card := &model.TeamCard{
		ID:          uuid.NewString(),
		ListID:      list.ID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
	}

	err = withTxRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.store.InBoardTx(ctx, list.BoardID, func(tx BoardTx) error {
			count, err := tx.CountCards(ctx, list.ID)
			if err != nil {
				return err
			}

			pos := count // по умолчанию в конец
			if input.Position != nil {
				pos = clampPosition(*input.Position, count)
			}

			if err := tx.OpenSlot(ctx, list.ID, pos); err != nil {
				return err
			}

			card.CardOrder = pos
			if err := tx.CreateCard(ctx, card); err != nil {
				return err
			}

			if len(input.AssignedUserIDs) > 0 {
				if err := tx.SetAssignees(ctx, card.ID, input.AssignedUserIDs); err != nil {
					return err
				}
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Card created",
		zap.String("card_id", card.ID),
		zap.String("list_id", list.ID),
		zap.Int("position", card.CardOrder),
	)

	s.logActivity(ctx, userID, "create", "TeamCard", card.ID, map[string]string{
		"title":   card.Title,
		"list_id": list.ID,
	})
	s.events.Publish(notify.Event{Type: notify.EventCardCreated, Payload: card})

	return card, nil
}

// MoveCard атомарно переносит карточку в целевой список на целевую позицию.
// Все чтения и сдвиги выполняются в одной транзакции под блокировкой доски:
// сначала закрывается дыра в исходном списке, затем раздвигается целевой,
// уже уплотнённый при переносе внутри одного списка.
func (s *CardService) MoveCard(ctx context.Context, userID, cardID, targetListID string, targetPosition int) (*model.TeamCard, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if card == nil {
		return nil, apperr.NotFound("card not found")
	}

	sourceList, err := s.store.GetList(ctx, card.ListID)
	if err != nil {
		return nil, fmt.Errorf("get source list: %w", err)
	}
	if sourceList == nil {
		return nil, apperr.NotFound("source list not found")
	}

	targetList, err := s.store.GetList(ctx, targetListID)
	if err != nil {
		return nil, fmt.Errorf("get target list: %w", err)
	}
	if targetList == nil {
		return nil, apperr.NotFound("target list not found")
	}

	// Доски — независимые домены нумерации, между ними не переносим
	if sourceList.BoardID != targetList.BoardID {
		return nil, apperr.InvalidOperation("target list must be on the same board")
	}

	err = withTxRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.store.InBoardTx(ctx, sourceList.BoardID, func(tx BoardTx) error {
			// Перечитываем под блокировкой: конкурирующее перемещение
			// могло уже изменить позиции
			current, err := tx.GetCard(ctx, cardID)
			if err != nil {
				return err
			}
			if current == nil {
				return apperr.NotFound("card not found")
			}

			oldListID := current.ListID
			oldPos := current.CardOrder
			sameList := oldListID == targetListID

			targetCount, err := tx.CountCards(ctx, targetListID)
			if err != nil {
				return err
			}
			// Размер целевого списка считается после изъятия карточки
			if sameList {
				targetCount--
			}
			pos := clampPosition(targetPosition, targetCount)

			if sameList && pos == oldPos {
				card = current
				return nil // перенос на своё же место
			}

			if err := tx.CloseGap(ctx, oldListID, oldPos); err != nil {
				return err
			}
			if err := tx.OpenSlot(ctx, targetListID, pos); err != nil {
				return err
			}
			if err := tx.PlaceCard(ctx, cardID, targetListID, pos); err != nil {
				return err
			}

			current.ListID = targetListID
			current.CardOrder = pos
			card = current
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Card moved",
		zap.String("card_id", cardID),
		zap.String("target_list_id", targetListID),
		zap.Int("position", card.CardOrder),
	)

	s.logActivity(ctx, userID, "move", "TeamCard", cardID, map[string]string{
		"list_id": targetListID,
	})
	s.events.Publish(notify.Event{Type: notify.EventCardMoved, Payload: card})

	return card, nil
}

type CardUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	ClearDue    bool
}

// UpdateCard меняет содержимое карточки, позицию не трогает
func (s *CardService) UpdateCard(ctx context.Context, userID, cardID string, updates CardUpdate) (*model.TeamCard, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if card == nil {
		return nil, apperr.NotFound("card not found")
	}

	if updates.Title != nil {
		card.Title = *updates.Title
	}
	if updates.Description != nil {
		card.Description = *updates.Description
	}
	if updates.DueDate != nil {
		card.DueDate = updates.DueDate
	}
	if updates.ClearDue {
		card.DueDate = nil
	}

	if err := s.store.UpdateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}

	s.logActivity(ctx, userID, "update", "TeamCard", cardID, nil)
	s.events.Publish(notify.Event{Type: notify.EventCardUpdated, Payload: card})

	return card, nil
}

// DeleteCard удаляет карточку и закрывает дыру в нумерации списка
func (s *CardService) DeleteCard(ctx context.Context, userID, cardID string) error {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("get card: %w", err)
	}
	if card == nil {
		return apperr.NotFound("card not found")
	}

	list, err := s.store.GetList(ctx, card.ListID)
	if err != nil {
		return fmt.Errorf("get list: %w", err)
	}
	if list == nil {
		return apperr.NotFound("list not found")
	}

	err = withTxRetry(ctx, s.logger, func(ctx context.Context) error {
		return s.store.InBoardTx(ctx, list.BoardID, func(tx BoardTx) error {
			current, err := tx.GetCard(ctx, cardID)
			if err != nil {
				return err
			}
			if current == nil {
				return apperr.NotFound("card not found")
			}

			if err := tx.DeleteCard(ctx, cardID); err != nil {
				return err
			}
			return tx.CloseGap(ctx, current.ListID, current.CardOrder)
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Card deleted", zap.String("card_id", cardID))
	s.logActivity(ctx, userID, "delete", "TeamCard", cardID, nil)

	return nil
}

// AddComment добавляет комментарий к карточке
func (s *CardService) AddComment(ctx context.Context, cardID, authorID, content string) (*model.CardComment, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if card == nil {
		return nil, apperr.NotFound("card not found")
	}

	author, err := s.store.GetUser(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}
	if author == nil {
		return nil, apperr.NotFound("user not found")
	}

	comment := &model.CardComment{
		ID:       uuid.NewString(),
		CardID:   cardID,
		AuthorID: authorID,
		Content:  content,
	}

	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	comment.Author = author
	return comment, nil
}

// AssignUsers заменяет исполнителей карточки
func (s *CardService) AssignUsers(ctx context.Context, cardID string, userIDs []string) error {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("get card: %w", err)
	}
	if card == nil {
		return apperr.NotFound("card not found")
	}

	return s.store.SetAssignees(ctx, cardID, userIDs)
}

// AddAttachment сохраняет метаданные вложения, сам файл живёт во
// внешнем хранилище
func (s *CardService) AddAttachment(ctx context.Context, cardID, userID, fileName, url string) (*model.CardAttachment, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if card == nil {
		return nil, apperr.NotFound("card not found")
	}

	att := &model.CardAttachment{
		ID:         uuid.NewString(),
		CardID:     cardID,
		FileName:   fileName,
		URL:        url,
		UploadedBy: userID,
	}

	if err := s.store.CreateAttachment(ctx, att); err != nil {
		return nil, fmt.Errorf("create attachment: %w", err)
	}

	return att, nil
}

// clampPosition прижимает позицию к диапазону [0, size]
func clampPosition(pos, size int) int {
	if pos < 0 {
		return 0
	}
	if pos > size {
		return size
	}
	return pos
}

func (s *CardService) logActivity(ctx context.Context, userID, action, entityType, entityID string, details map[string]string) {
	entry := &model.ActivityLogEntry{
		ID:         uuid.NewString(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Details:    details,
	}
	if err := s.activity.LogActivity(ctx, entry); err != nil {
		// Журнал не должен ломать основную операцию
		s.logger.Warn("Failed to log activity", zap.Error(err))
	}
}

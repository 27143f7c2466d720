package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/repository/base"
)

type CardRepository struct {
	q base.Querier
}

func NewCardRepository(q base.Querier) *CardRepository {
	return &CardRepository{q: q}
}

// Create создаёт новую карточку
func (r *CardRepository) Create(ctx context.Context, card *model.TeamCard) error {
	query := `
		INSERT INTO cards (id, list_id, title, description, card_order, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(
		ctx, query,
		card.ID,
		card.ListID,
		card.Title,
		card.Description,
		card.CardOrder,
		card.DueDate,
	).Scan(&card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}

	return nil
}

// GetByID получает карточку по ID
func (r *CardRepository) GetByID(ctx context.Context, id string) (*model.TeamCard, error) {
	query := `
		SELECT id, list_id, title, description, card_order, due_date, created_at, updated_at
		FROM cards
		WHERE id = $1
	`

	var card model.TeamCard
	err := r.q.QueryRow(ctx, query, id).Scan(
		&card.ID,
		&card.ListID,
		&card.Title,
		&card.Description,
		&card.CardOrder,
		&card.DueDate,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get card by id: %w", err)
	}

	return &card, nil
}

// GetByListID получает карточки списка в порядке card_order
func (r *CardRepository) GetByListID(ctx context.Context, listID string) ([]*model.TeamCard, error) {
	query := `
		SELECT id, list_id, title, description, card_order, due_date, created_at, updated_at
		FROM cards
		WHERE list_id = $1
		ORDER BY card_order
	`

	rows, err := r.q.Query(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("get cards by list: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

// CountByListID возвращает число карточек в списке
func (r *CardRepository) CountByListID(ctx context.Context, listID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM cards WHERE list_id = $1`, listID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return count, nil
}

// CloseGap сдвигает карточки списка влево, закрывая дыру после позиции pos
func (r *CardRepository) CloseGap(ctx context.Context, listID string, pos int) error {
	query := `
		UPDATE cards
		SET card_order = card_order - 1
		WHERE list_id = $1 AND card_order > $2
	`

	_, err := r.q.Exec(ctx, query, listID, pos)
	if err != nil {
		return fmt.Errorf("close gap: %w", err)
	}

	return nil
}

// OpenSlot сдвигает карточки списка вправо, освобождая позицию pos
func (r *CardRepository) OpenSlot(ctx context.Context, listID string, pos int) error {
	query := `
		UPDATE cards
		SET card_order = card_order + 1
		WHERE list_id = $1 AND card_order >= $2
	`

	_, err := r.q.Exec(ctx, query, listID, pos)
	if err != nil {
		return fmt.Errorf("open slot: %w", err)
	}

	return nil
}

// Place ставит карточку в список на указанную позицию
func (r *CardRepository) Place(ctx context.Context, cardID, listID string, pos int) error {
	query := `
		UPDATE cards
		SET list_id = $1, card_order = $2, updated_at = now()
		WHERE id = $3
	`

	tag, err := r.q.Exec(ctx, query, listID, pos, cardID)
	if err != nil {
		return fmt.Errorf("place card: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card not found")
	}

	return nil
}

// Update обновляет содержимое карточки, не трогая позицию
func (r *CardRepository) Update(ctx context.Context, card *model.TeamCard) error {
	query := `
		UPDATE cards
		SET title = $1, description = $2, due_date = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, card.Title, card.Description, card.DueDate, card.ID).
		Scan(&card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}

	return nil
}

// Delete удаляет карточку, комментарии и вложения уходят каскадом
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card not found")
	}

	return nil
}

// SetAssignees заменяет набор назначенных на карточку пользователей
func (r *CardRepository) SetAssignees(ctx context.Context, cardID string, userIDs []string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM card_assignees WHERE card_id = $1`, cardID)
	if err != nil {
		return fmt.Errorf("clear assignees: %w", err)
	}

	for _, userID := range userIDs {
		_, err := r.q.Exec(ctx,
			`INSERT INTO card_assignees (card_id, user_id) VALUES ($1, $2)`,
			cardID, userID,
		)
		if err != nil {
			return fmt.Errorf("assign user: %w", err)
		}
	}

	return nil
}

// GetAssignees получает пользователей, назначенных на карточку
func (r *CardRepository) GetAssignees(ctx context.Context, cardID string) ([]*model.User, error) {
	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.role, u.is_active, u.created_at
		FROM users u
		JOIN card_assignees ca ON ca.user_id = u.id
		WHERE ca.card_id = $1
		ORDER BY u.last_name, u.first_name
	`

	rows, err := r.q.Query(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("get assignees: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var user model.User
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.Role,
			&user.IsActive,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan assignee: %w", err)
		}
		users = append(users, &user)
	}

	return users, nil
}

// Search ищет карточки доски по тексту, исполнителю, списку и сроку
func (r *CardRepository) Search(ctx context.Context, boardID string, filter model.CardSearchFilter) ([]*model.TeamCard, error) {
	query := `
		SELECT DISTINCT c.id, c.list_id, c.title, c.description, c.card_order, c.due_date, c.created_at, c.updated_at
		FROM cards c
		JOIN lists l ON l.id = c.list_id
		LEFT JOIN card_assignees ca ON ca.card_id = c.id
		WHERE l.board_id = $1
	`
	args := []any{boardID}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (c.title ILIKE $%d OR c.description ILIKE $%d)", n, n)
	}
	if filter.AssignedUserID != "" {
		args = append(args, filter.AssignedUserID)
		query += fmt.Sprintf(" AND ca.user_id = $%d", len(args))
	}
	if filter.ListID != "" {
		args = append(args, filter.ListID)
		query += fmt.Sprintf(" AND c.list_id = $%d", len(args))
	}
	switch filter.DueDateStatus {
	case model.DueDateOverdue:
		query += " AND c.due_date < now()"
	case model.DueDateUpcoming:
		query += " AND c.due_date > now()"
	case model.DueDateNone:
		query += " AND c.due_date IS NULL"
	}

	query += " ORDER BY c.created_at DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search cards: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

func scanCards(rows pgx.Rows) ([]*model.TeamCard, error) {
	var cards []*model.TeamCard
	for rows.Next() {
		var card model.TeamCard
		err := rows.Scan(
			&card.ID,
			&card.ListID,
			&card.Title,
			&card.Description,
			&card.CardOrder,
			&card.DueDate,
			&card.CreatedAt,
			&card.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, &card)
	}
	return cards, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/repository/base"
)

type ListRepository struct {
	q base.Querier
}

func NewListRepository(q base.Querier) *ListRepository {
	return &ListRepository{q: q}
}

// Create создаёт новый список на доске
func (r *ListRepository) Create(ctx context.Context, list *model.TeamList) error {
	query := `
		INSERT INTO lists (id, board_id, title, list_order)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.q.Exec(ctx, query, list.ID, list.BoardID, list.Title, list.ListOrder)
	if err != nil {
		return fmt.Errorf("create list: %w", err)
	}

	return nil
}

// GetByID получает список по ID
func (r *ListRepository) GetByID(ctx context.Context, id string) (*model.TeamList, error) {
	query := `
		SELECT id, board_id, title, list_order
		FROM lists
		WHERE id = $1
	`

	var list model.TeamList
	err := r.q.QueryRow(ctx, query, id).Scan(
		&list.ID,
		&list.BoardID,
		&list.Title,
		&list.ListOrder,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get list by id: %w", err)
	}

	return &list, nil
}

// GetByBoardID получает списки доски в порядке list_order
func (r *ListRepository) GetByBoardID(ctx context.Context, boardID string) ([]*model.TeamList, error) {
	query := `
		SELECT id, board_id, title, list_order
		FROM lists
		WHERE board_id = $1
		ORDER BY list_order
	`

	rows, err := r.q.Query(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("get lists by board: %w", err)
	}
	defer rows.Close()

	var lists []*model.TeamList
	for rows.Next() {
		var list model.TeamList
		err := rows.Scan(&list.ID, &list.BoardID, &list.Title, &list.ListOrder)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, &list)
	}

	return lists, nil
}

// Update обновляет заголовок и порядок списка
func (r *ListRepository) Update(ctx context.Context, list *model.TeamList) error {
	query := `
		UPDATE lists
		SET title = $1, list_order = $2
		WHERE id = $3
	`

	tag, err := r.q.Exec(ctx, query, list.Title, list.ListOrder, list.ID)
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("list not found")
	}

	return nil
}

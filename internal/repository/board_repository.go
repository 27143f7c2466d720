package repository

import (
	"context"
	"fmt"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/repository/base"
)

type BoardRepository struct {
	q base.Querier
}

func NewBoardRepository(q base.Querier) *BoardRepository {
	return &BoardRepository{q: q}
}

// Create создаёт новую доску
func (r *BoardRepository) Create(ctx context.Context, board *model.TeamBoard) error {
	query := `
		INSERT INTO boards (id, title, description)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, board.ID, board.Title, board.Description).
		Scan(&board.CreatedAt, &board.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create board: %w", err)
	}

	return nil
}

// GetByID получает доску по ID
func (r *BoardRepository) GetByID(ctx context.Context, id string) (*model.TeamBoard, error) {
	query := `
		SELECT id, title, description, created_at, updated_at
		FROM boards
		WHERE id = $1
	`

	var board model.TeamBoard
	err := r.q.QueryRow(ctx, query, id).Scan(
		&board.ID,
		&board.Title,
		&board.Description,
		&board.CreatedAt,
		&board.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get board by id: %w", err)
	}

	return &board, nil
}

// GetAll получает все доски, новые первыми
func (r *BoardRepository) GetAll(ctx context.Context) ([]*model.TeamBoard, error) {
	query := `
		SELECT id, title, description, created_at, updated_at
		FROM boards
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all boards: %w", err)
	}
	defer rows.Close()

	var boards []*model.TeamBoard
	for rows.Next() {
		var board model.TeamBoard
		err := rows.Scan(
			&board.ID,
			&board.Title,
			&board.Description,
			&board.CreatedAt,
			&board.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, &board)
	}

	return boards, nil
}

// Update обновляет заголовок и описание доски
func (r *BoardRepository) Update(ctx context.Context, board *model.TeamBoard) error {
	query := `
		UPDATE boards
		SET title = $1, description = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, board.Title, board.Description, board.ID).
		Scan(&board.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update board: %w", err)
	}

	return nil
}

// Delete удаляет доску, списки и карточки уходят каскадом
func (r *BoardRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("board not found")
	}

	return nil
}

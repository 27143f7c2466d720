package repository

import (
	"context"
	"fmt"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/repository/base"
)

type CommentRepository struct {
	q base.Querier
}

func NewCommentRepository(q base.Querier) *CommentRepository {
	return &CommentRepository{q: q}
}

// Create создаёт комментарий к карточке
func (r *CommentRepository) Create(ctx context.Context, comment *model.CardComment) error {
	query := `
		INSERT INTO card_comments (id, card_id, author_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, comment.ID, comment.CardID, comment.AuthorID, comment.Content).
		Scan(&comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

// GetByCardID получает комментарии карточки вместе с авторами
func (r *CommentRepository) GetByCardID(ctx context.Context, cardID string) ([]*model.CardComment, error) {
	query := `
		SELECT c.id, c.card_id, c.author_id, c.content, c.created_at,
		       u.id, u.email, u.first_name, u.last_name, u.role, u.is_active, u.created_at
		FROM card_comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.card_id = $1
		ORDER BY c.created_at
	`

	rows, err := r.q.Query(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("get comments by card: %w", err)
	}
	defer rows.Close()

	var comments []*model.CardComment
	for rows.Next() {
		var comment model.CardComment
		var author model.User
		err := rows.Scan(
			&comment.ID,
			&comment.CardID,
			&comment.AuthorID,
			&comment.Content,
			&comment.CreatedAt,
			&author.ID,
			&author.Email,
			&author.FirstName,
			&author.LastName,
			&author.Role,
			&author.IsActive,
			&author.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comment.Author = &author
		comments = append(comments, &comment)
	}

	return comments, nil
}

// CreateAttachment сохраняет метаданные вложения
func (r *CommentRepository) CreateAttachment(ctx context.Context, att *model.CardAttachment) error {
	query := `
		INSERT INTO card_attachments (id, card_id, file_name, url, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, att.ID, att.CardID, att.FileName, att.URL, att.UploadedBy).
		Scan(&att.CreatedAt)
	if err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}

	return nil
}

// GetAttachmentsByCardID получает вложения карточки
func (r *CommentRepository) GetAttachmentsByCardID(ctx context.Context, cardID string) ([]*model.CardAttachment, error) {
	query := `
		SELECT id, card_id, file_name, url, uploaded_by, created_at
		FROM card_attachments
		WHERE card_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, cardID)
	if err != nil {
		return nil, fmt.Errorf("get attachments by card: %w", err)
	}
	defer rows.Close()

	var atts []*model.CardAttachment
	for rows.Next() {
		var att model.CardAttachment
		err := rows.Scan(&att.ID, &att.CardID, &att.FileName, &att.URL, &att.UploadedBy, &att.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		atts = append(atts, &att)
	}

	return atts, nil
}

package model

import "time"

type TeamBoard struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Списки доски, заполняются при выборке с вложенностью
	Lists []*TeamList `json:"lists,omitempty"`
}

type TeamList struct {
	ID        string `json:"id"`
	BoardID   string `json:"board_id"`
	Title     string `json:"title"`
	ListOrder int    `json:"list_order"`

	Cards []*TeamCard `json:"cards,omitempty"`
}

type TeamCard struct {
	ID          string     `json:"id"`
	ListID      string     `json:"list_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CardOrder   int        `json:"card_order"` // позиция внутри списка, с нуля и без пропусков
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	AssignedUsers []*User           `json:"assigned_users,omitempty"`
	Comments      []*CardComment    `json:"comments,omitempty"`
	Attachments   []*CardAttachment `json:"attachments,omitempty"`
}

type CardComment struct {
	ID        string    `json:"id"`
	CardID    string    `json:"card_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	Author *User `json:"author,omitempty"`
}

// CardAttachment хранит только метаданные, сам файл лежит во внешнем хранилище
type CardAttachment struct {
	ID         string    `json:"id"`
	CardID     string    `json:"card_id"`
	FileName   string    `json:"file_name"`
	URL        string    `json:"url"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// DueDateStatus фильтр поиска карточек по сроку
type DueDateStatus string

const (
	DueDateOverdue  DueDateStatus = "overdue"
	DueDateUpcoming DueDateStatus = "upcoming"
	DueDateNone     DueDateStatus = "none"
)

// CardSearchFilter параметры поиска карточек по доске
type CardSearchFilter struct {
	Query          string
	AssignedUserID string
	ListID         string
	DueDateStatus  DueDateStatus
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/service"
)

type createBoardRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
}

func (s *Server) createBoard(c echo.Context) error {
	var req createBoardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	board, err := s.services.Boards.CreateBoard(c.Request().Context(), currentUserID(c), req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, board)
}

func (s *Server) listBoards(c echo.Context) error {
	boards, err := s.services.Boards.ListBoards(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, boards)
}

func (s *Server) getBoard(c echo.Context) error {
	board, err := s.services.Boards.GetBoard(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, board)
}

type updateBoardRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
}

func (s *Server) updateBoard(c echo.Context) error {
	var req updateBoardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	board, err := s.services.Boards.UpdateBoard(c.Request().Context(), currentUserID(c), c.Param("id"), req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, board)
}

func (s *Server) deleteBoard(c echo.Context) error {
	if err := s.services.Boards.DeleteBoard(c.Request().Context(), currentUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) searchCards(c echo.Context) error {
	filter := model.CardSearchFilter{
		Query:          c.QueryParam("q"),
		AssignedUserID: c.QueryParam("assigned_to"),
		ListID:         c.QueryParam("list_id"),
		DueDateStatus:  model.DueDateStatus(c.QueryParam("due")),
	}

	cards, err := s.services.Boards.SearchCards(c.Request().Context(), c.Param("id"), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cards)
}

type createListRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

func (s *Server) createList(c echo.Context) error {
	var req createListRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	list, err := s.services.Boards.CreateList(c.Request().Context(), c.Param("id"), req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, list)
}

func (s *Server) renameList(c echo.Context) error {
	var req createListRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	list, err := s.services.Boards.RenameList(c.Request().Context(), c.Param("id"), req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

type createCardRequest struct {
	Title           string     `json:"title" validate:"required,max=500"`
	Description     string     `json:"description"`
	AssignedUserIDs []string   `json:"assigned_user_ids"`
	Position        *int       `json:"position"`
	DueDate         *time.Time `json:"due_date"`
}

func (s *Server) createCard(c echo.Context) error {
	var req createCardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	card, err := s.services.Cards.CreateCard(c.Request().Context(), currentUserID(c), service.CreateCardInput{
		ListID:          c.Param("id"),
		Title:           req.Title,
		Description:     req.Description,
		AssignedUserIDs: req.AssignedUserIDs,
		Position:        req.Position,
		DueDate:         req.DueDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, card)
}

func (s *Server) getCard(c echo.Context) error {
	card, err := s.services.Boards.GetCardDetails(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

type moveCardRequest struct {
	TargetListID   string `json:"target_list_id" validate:"required"`
	TargetPosition int    `json:"target_position"`
}

func (s *Server) moveCard(c echo.Context) error {
	var req moveCardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	card, err := s.services.Cards.MoveCard(c.Request().Context(), currentUserID(c), c.Param("id"), req.TargetListID, req.TargetPosition)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

type updateCardRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=500"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	ClearDue    bool       `json:"clear_due"`
}

func (s *Server) updateCard(c echo.Context) error {
	var req updateCardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	card, err := s.services.Cards.UpdateCard(c.Request().Context(), currentUserID(c), c.Param("id"), service.CardUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		ClearDue:    req.ClearDue,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

func (s *Server) deleteCard(c echo.Context) error {
	if err := s.services.Cards.DeleteCard(c.Request().Context(), currentUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type addCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (s *Server) addComment(c echo.Context) error {
	var req addCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := s.services.Cards.AddComment(c.Request().Context(), c.Param("id"), currentUserID(c), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

type assignUsersRequest struct {
	UserIDs []string `json:"user_ids" validate:"required"`
}

func (s *Server) assignUsers(c echo.Context) error {
	var req assignUsersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.services.Cards.AssignUsers(c.Request().Context(), c.Param("id"), req.UserIDs); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type addAttachmentRequest struct {
	FileName string `json:"file_name" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
}

func (s *Server) addAttachment(c echo.Context) error {
	var req addAttachmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	att, err := s.services.Cards.AddAttachment(c.Request().Context(), c.Param("id"), currentUserID(c), req.FileName, req.URL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, att)
}

func (s *Server) recentActivity(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := s.services.Boards.RecentActivity(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

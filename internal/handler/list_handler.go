package handler

import (
	"context"
	"errors"
	"net/http"

	"taskboard/internal/model"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListStore is the slice of the list repository the list endpoints use.
type ListStore interface {
	Create(ctx context.Context, list *model.List) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.List, error)
	Update(ctx context.Context, list *model.List) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextPosition(ctx context.Context, boardID uuid.UUID) (int, error)
	Reorder(ctx context.Context, boardID uuid.UUID, order []repository.ListPosition) error
}

// ListBoardStore loads boards for access checks.
type ListBoardStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
}

type ListHandler struct {
	lists    ListStore
	boards   ListBoardStore
	recorder ActivityRecorder
	hub      realtime.Publisher
}

func NewListHandler(lists ListStore, boards ListBoardStore, recorder ActivityRecorder, hub realtime.Publisher) *ListHandler {
	return &ListHandler{
		lists:    lists,
		boards:   boards,
		recorder: recorder,
		hub:      hub,
	}
}

type CreateListRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=100"`
	BoardID string `json:"board_id" binding:"required,uuid"`
}

type UpdateListRequest struct {
	Title string `json:"title" binding:"required,min=1,max=100"`
}

type ReorderListsRequest struct {
	BoardID   string `json:"board_id" binding:"required,uuid"`
	ListOrder []struct {
		ListID   string `json:"list_id" binding:"required,uuid"`
		Position int    `json:"position"`
	} `json:"list_order" binding:"required,min=1"`
}

// loadBoardForList loads the board and writes the error response itself
// when the list's board is gone or the caller is not a member.
func (h *ListHandler) loadBoardForList(c *gin.Context, boardID, userID uuid.UUID) *model.Board {
	board, err := h.boards.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return nil
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return nil
	}
	if !board.IsMember(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to access this board"})
		return nil
	}
	return board
}

// Create appends a new list at the end of the board.
func (h *ListHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	boardID, err := uuid.Parse(req.BoardID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	board := h.loadBoardForList(c, boardID, userID)
	if board == nil {
		return
	}

	position, err := h.lists.NextPosition(c.Request.Context(), board.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute position"})
		return
	}

	list := &model.List{
		BoardID:  board.ID,
		Title:    req.Title,
		Position: position,
	}

	if err := h.lists.Create(c.Request.Context(), list); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create list"})
		return
	}

	h.hub.ToBoard(board.ID, "list:created", list)
	h.recorder.Record(c.Request.Context(), board.ID, userID,
		model.ActionListCreated, model.EntityList, list.ID, list.Title, nil)

	c.JSON(http.StatusCreated, list)
}

// Update renames a list.
func (h *ListHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	listID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID format"})
		return
	}

	list, err := h.lists.GetByID(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve list"})
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	board := h.loadBoardForList(c, list.BoardID, userID)
	if board == nil {
		return
	}

	var req UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	list.Title = req.Title

	if err := h.lists.Update(c.Request.Context(), list); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update list"})
		return
	}

	h.hub.ToBoard(board.ID, "list:updated", list)
	h.recorder.Record(c.Request.Context(), board.ID, userID,
		model.ActionListUpdated, model.EntityList, list.ID, list.Title, nil)

	c.JSON(http.StatusOK, list)
}

// Delete removes a list and cascades its tasks; admins only.
func (h *ListHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	listID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID format"})
		return
	}

	list, err := h.lists.GetByID(c.Request.Context(), listID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve list"})
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return
	}

	board, err := h.boards.GetByID(c.Request.Context(), list.BoardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	if !board.IsAdmin(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can delete lists"})
		return
	}

	if err := h.lists.Delete(c.Request.Context(), list.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete list"})
		return
	}

	h.hub.ToBoard(board.ID, "list:deleted", gin.H{
		"list_id":  list.ID,
		"board_id": board.ID,
	})
	h.recorder.Record(c.Request.Context(), board.ID, userID,
		model.ActionListDeleted, model.EntityList, list.ID, list.Title, nil)

	c.JSON(http.StatusOK, gin.H{"message": "List deleted successfully"})
}

// Reorder applies a full ordering of the board's lists as one batch.
func (h *ListHandler) Reorder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ReorderListsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	boardID, err := uuid.Parse(req.BoardID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	board := h.loadBoardForList(c, boardID, userID)
	if board == nil {
		return
	}

	order := make([]repository.ListPosition, len(req.ListOrder))
	for i, item := range req.ListOrder {
		listID, err := uuid.Parse(item.ListID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID format"})
			return
		}
		order[i] = repository.ListPosition{ListID: listID, Position: item.Position}
	}

	if err := h.lists.Reorder(c.Request.Context(), board.ID, order); err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": "All lists must belong to the specified board"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder lists"})
		return
	}

	h.hub.ToBoard(board.ID, "lists:reordered", gin.H{
		"board_id":   board.ID,
		"list_order": req.ListOrder,
	})
	h.recorder.Record(c.Request.Context(), board.ID, userID,
		model.ActionListReordered, model.EntityBoard, board.ID, board.Title, nil)

	c.JSON(http.StatusOK, gin.H{"message": "Lists reordered successfully"})
}

package handler

import (
	"context"
	"net/http"

	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActivityStore reads the board-scoped history.
type ActivityStore interface {
	GetByBoardID(ctx context.Context, boardID uuid.UUID, limit, offset int) ([]model.Activity, int64, error)
}

type ActivityBoardFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
}

type ActivityHandler struct {
	activities ActivityStore
	boards     ActivityBoardFinder
}

func NewActivityHandler(activities ActivityStore, boards ActivityBoardFinder) *ActivityHandler {
	return &ActivityHandler{
		activities: activities,
		boards:     boards,
	}
}

// GetAll returns a board's history, newest first.
func (h *ActivityHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boardIDStr := c.Query("board_id")
	if boardIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Board ID is required"})
		return
	}

	boardID, err := uuid.Parse(boardIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	board, err := h.boards.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	if !board.IsMember(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to access this board"})
		return
	}

	page, limit, offset := parsePagination(c, MaxActivityLimit)

	activities, total, err := h.activities.GetByBoardID(c.Request.Context(), board.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activities"})
		return
	}

	respondPaginated(c, activities, page, limit, total)
}

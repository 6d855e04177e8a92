package handler

import (
	"context"
	"net/http"

	"taskboard/internal/model"
	"taskboard/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BoardStore is the slice of the board repository the board endpoints use.
type BoardStore interface {
	Create(ctx context.Context, board *model.Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
	ForUser(ctx context.Context, userID uuid.UUID, search string, limit, offset int) ([]model.Board, int64, error)
	Update(ctx context.Context, board *model.Board) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddMember(ctx context.Context, member *model.BoardMember) error
	RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error
}

// MemberFinder resolves invited users by email.
type MemberFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// BoardLists and BoardTasks load the board detail projection.
type BoardLists interface {
	GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.List, error)
}

type BoardTasks interface {
	GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Task, error)
}

type BoardHandler struct {
	boards   BoardStore
	users    MemberFinder
	lists    BoardLists
	tasks    BoardTasks
	recorder ActivityRecorder
	hub      realtime.Publisher
}

func NewBoardHandler(boards BoardStore, users MemberFinder, lists BoardLists, tasks BoardTasks, recorder ActivityRecorder, hub realtime.Publisher) *BoardHandler {
	return &BoardHandler{
		boards:   boards,
		users:    users,
		lists:    lists,
		tasks:    tasks,
		recorder: recorder,
		hub:      hub,
	}
}

type CreateBoardRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	Background  string `json:"background"`
}

type UpdateBoardRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Background  *string `json:"background"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=admin member viewer"`
}

// ListWithTasks is one column of the board detail projection.
type ListWithTasks struct {
	model.List
	Tasks []model.Task `json:"tasks"`
}

// Create creates a new board owned by the caller, who becomes its first
// admin member.
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	background := req.Background
	if background == "" {
		background = model.DefaultBoardBackground
	}

	board := &model.Board{
		Title:       req.Title,
		Description: req.Description,
		Background:  background,
		OwnerID:     userID,
	}

	if err := h.boards.Create(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	if err := h.boards.AddMember(c.Request.Context(), &model.BoardMember{
		BoardID: board.ID,
		UserID:  userID,
		Role:    model.RoleAdmin,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add owner membership"})
		return
	}

	created, err := h.boards.GetByID(c.Request.Context(), board.ID)
	if err != nil || created == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load created board"})
		return
	}

	h.recorder.Record(c.Request.Context(), created.ID, userID,
		model.ActionBoardCreated, model.EntityBoard, created.ID, created.Title, nil)

	c.JSON(http.StatusCreated, created)
}

// GetAll lists the caller's boards, paginated, optionally text-filtered.
func (h *BoardHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, limit, offset := parsePagination(c, MaxLimit)
	search := c.Query("search")

	boards, total, err := h.boards.ForUser(c.Request.Context(), userID, search, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	respondPaginated(c, boards, page, limit, total)
}

// GetByID returns the board with its lists and their tasks in display order.
func (h *BoardHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
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

	lists, err := h.lists.GetByBoardID(c.Request.Context(), board.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lists"})
		return
	}

	tasks, err := h.tasks.GetByBoardID(c.Request.Context(), board.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	tasksByList := make(map[uuid.UUID][]model.Task)
	for _, task := range tasks {
		tasksByList[task.ListID] = append(tasksByList[task.ListID], task)
	}

	detail := make([]ListWithTasks, len(lists))
	for i, list := range lists {
		listTasks := tasksByList[list.ID]
		if listTasks == nil {
			listTasks = []model.Task{}
		}
		detail[i] = ListWithTasks{List: list, Tasks: listTasks}
	}

	c.JSON(http.StatusOK, gin.H{
		"board": board,
		"lists": detail,
	})
}

// Update changes board fields; admins only.
func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
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

	if !board.IsAdmin(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can update the board"})
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Title != nil && *req.Title != "" {
		board.Title = *req.Title
	}
	if req.Description != nil {
		board.Description = *req.Description
	}
	if req.Background != nil && *req.Background != "" {
		board.Background = *req.Background
	}

	if err := h.boards.Update(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update board"})
		return
	}

	h.hub.ToBoard(board.ID, "board:updated", board)
	h.recorder.Record(c.Request.Context(), board.ID, userID,
		model.ActionBoardUpdated, model.EntityBoard, board.ID, board.Title, nil)

	c.JSON(http.StatusOK, board)
}

// Delete removes the board and everything it owns; owner only.
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
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

	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can delete the board"})
		return
	}

	if err := h.boards.Delete(c.Request.Context(), board.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}

	h.hub.ToBoard(board.ID, "board:deleted", gin.H{"board_id": board.ID})

	c.JSON(http.StatusOK, gin.H{"message": "Board deleted successfully"})
}

// AddMember invites a user by email; admins only.
func (h *BoardHandler) AddMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
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

	if !board.IsAdmin(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can add members"})
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleMember
	}

	user, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if board.IsMember(user.ID) {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a member"})
		return
	}

	if err := h.boards.AddMember(c.Request.Context(), &model.BoardMember{
		BoardID: board.ID,
		UserID:  user.ID,
		Role:    role,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	updated, err := h.boards.GetByID(c.Request.Context(), board.ID)
	if err != nil || updated == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load board"})
		return
	}

	h.hub.ToBoard(updated.ID, "member:added", gin.H{
		"board_id": updated.ID,
		"member":   gin.H{"user": user, "role": role},
	})
	h.hub.ToUser(user.ID, "board:invited", gin.H{"board": updated})
	h.recorder.Record(c.Request.Context(), updated.ID, userID,
		model.ActionMemberAdded, model.EntityMember, user.ID, user.Name, nil)

	c.JSON(http.StatusOK, updated)
}

// RemoveMember drops a membership; admins only, removing the owner is
// always rejected.
func (h *BoardHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	memberID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
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

	if !board.IsAdmin(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can remove members"})
		return
	}

	if board.OwnerID == memberID {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot remove the board owner"})
		return
	}

	if err := h.boards.RemoveMember(c.Request.Context(), board.ID, memberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	updated, err := h.boards.GetByID(c.Request.Context(), board.ID)
	if err != nil || updated == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load board"})
		return
	}

	h.hub.ToBoard(updated.ID, "member:removed", gin.H{
		"board_id": updated.ID,
		"user_id":  memberID,
	})
	h.recorder.Record(c.Request.Context(), updated.ID, userID,
		model.ActionMemberRemoved, model.EntityMember, memberID, "", nil)

	c.JSON(http.StatusOK, updated)
}

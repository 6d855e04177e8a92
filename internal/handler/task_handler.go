package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskStore is the slice of the task repository the task endpoints use.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Find(ctx context.Context, filter repository.TaskFilter, limit, offset int) ([]model.Task, int64, error)
	Update(ctx context.Context, task *model.Task) error
	ReplaceLabels(ctx context.Context, taskID uuid.UUID, labels []model.TaskLabel) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextPosition(ctx context.Context, listID uuid.UUID) (int, error)
	Move(ctx context.Context, boardID, taskID, destListID uuid.UUID, position int, order []repository.TaskPosition) error
	Assign(ctx context.Context, taskID, userID uuid.UUID) error
	Unassign(ctx context.Context, taskID, userID uuid.UUID) error
}

type TaskListFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.List, error)
}

type TaskBoardFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
}

type TaskHandler struct {
	tasks    TaskStore
	lists    TaskListFinder
	boards   TaskBoardFinder
	recorder ActivityRecorder
	hub      realtime.Publisher
}

func NewTaskHandler(tasks TaskStore, lists TaskListFinder, boards TaskBoardFinder, recorder ActivityRecorder, hub realtime.Publisher) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		lists:    lists,
		boards:   boards,
		recorder: recorder,
		hub:      hub,
	}
}

type LabelRequest struct {
	Text  string `json:"text" binding:"required"`
	Color string `json:"color"`
}

type CreateTaskRequest struct {
	Title       string         `json:"title" binding:"required,min=1,max=200"`
	Description string         `json:"description" binding:"max=5000"`
	ListID      string         `json:"list_id" binding:"required,uuid"`
	Priority    string         `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time     `json:"due_date"`
	Labels      []LabelRequest `json:"labels"`
}

type UpdateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Priority    *string         `json:"priority" binding:"omitempty"`
	DueDate     *time.Time      `json:"due_date"`
	IsCompleted *bool           `json:"is_completed"`
	Labels      *[]LabelRequest `json:"labels"`
}

type MoveTaskRequest struct {
	SourceListID      string `json:"source_list_id" binding:"required,uuid"`
	DestinationListID string `json:"destination_list_id" binding:"required,uuid"`
	NewPosition       *int   `json:"new_position" binding:"required,min=0"`
	TaskOrder         []struct {
		TaskID   string `json:"task_id" binding:"required,uuid"`
		ListID   string `json:"list_id" binding:"required,uuid"`
		Position int    `json:"position"`
	} `json:"task_order"`
}

type AssignTaskRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Action string `json:"action" binding:"required,oneof=assign unassign"`
}

func makeLabels(reqs []LabelRequest) []model.TaskLabel {
	labels := make([]model.TaskLabel, len(reqs))
	for i, l := range reqs {
		color := l.Color
		if color == "" {
			color = "#61bd4f"
		}
		labels[i] = model.TaskLabel{Text: l.Text, Color: color, Position: i}
	}
	return labels
}

// loadTaskBoard loads the task's board and gates on membership, writing
// the error response itself on failure.
func (h *TaskHandler) loadTaskBoard(c *gin.Context, boardID, userID uuid.UUID) *model.Board {
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

// GetAll lists tasks filtered by board, priority, assignee and text.
func (h *TaskHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, limit, offset := parsePagination(c, MaxLimit)

	var filter repository.TaskFilter
	if v := c.Query("board_id"); v != "" {
		boardID, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
			return
		}
		if board := h.loadTaskBoard(c, boardID, userID); board == nil {
			return
		}
		filter.BoardID = &boardID
	}
	if v := c.Query("priority"); v != "" {
		if !model.ValidPriority(v) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		filter.Priority = v
	}
	if v := c.Query("assignee"); v != "" {
		assigneeID, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
			return
		}
		filter.AssigneeID = &assigneeID
	}
	filter.Search = c.Query("search")

	tasks, total, err := h.tasks.Find(c.Request.Context(), filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	respondPaginated(c, tasks, page, limit, total)
}

// Create appends a new task at the end of the list.
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	listID, err := uuid.Parse(req.ListID)
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

	board := h.loadTaskBoard(c, list.BoardID, userID)
	if board == nil {
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	position, err := h.tasks.NextPosition(c.Request.Context(), list.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute position"})
		return
	}

	task := &model.Task{
		BoardID:     board.ID,
		ListID:      list.ID,
		Title:       req.Title,
		Description: req.Description,
		Position:    position,
		Priority:    priority,
		DueDate:     req.DueDate,
		CreatedBy:   userID,
		Labels:      makeLabels(req.Labels),
	}

	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	created, err := h.tasks.GetByID(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load created task"})
		return
	}

	h.hub.ToBoard(board.ID, "task:created", created)
	h.recorder.Record(c.Request.Context(), board.ID, userID,
		model.ActionTaskCreated, model.EntityTask, created.ID, created.Title, nil)

	c.JSON(http.StatusCreated, created)
}

// Update changes task fields; only fields present in the request move.
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	board := h.loadTaskBoard(c, task.BoardID, userID)
	if board == nil {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	details := make(map[string]interface{})
	if req.Title != nil && *req.Title != "" {
		task.Title = *req.Title
		details["title"] = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
		details["description"] = *req.Description
	}
	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		task.Priority = *req.Priority
		details["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
		details["due_date"] = *req.DueDate
	}
	if req.IsCompleted != nil {
		task.IsCompleted = *req.IsCompleted
		details["is_completed"] = *req.IsCompleted
	}

	if err := h.tasks.Update(c.Request.Context(), task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	if req.Labels != nil {
		if err := h.tasks.ReplaceLabels(c.Request.Context(), task.ID, makeLabels(*req.Labels)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update labels"})
			return
		}
	}

	updated, err := h.tasks.GetByID(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load updated task"})
		return
	}

	action := model.ActionTaskUpdated
	if req.IsCompleted != nil {
		action = model.ActionTaskCompleted
	}

	h.hub.ToBoard(board.ID, "task:updated", updated)
	h.recorder.Record(c.Request.Context(), board.ID, userID,
		action, model.EntityTask, updated.ID, updated.Title, details)

	c.JSON(http.StatusOK, updated)
}

// Delete removes a task.
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	board := h.loadTaskBoard(c, task.BoardID, userID)
	if board == nil {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), task.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	h.hub.ToBoard(board.ID, "task:deleted", gin.H{
		"task_id":  task.ID,
		"list_id":  task.ListID,
		"board_id": board.ID,
	})
	h.recorder.Record(c.Request.Context(), board.ID, userID,
		model.ActionTaskDeleted, model.EntityTask, task.ID, task.Title, nil)

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// Move re-homes a task between lists (or within one) and applies the
// caller-supplied sibling ordering for both affected lists atomically.
func (h *TaskHandler) Move(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	board := h.loadTaskBoard(c, task.BoardID, userID)
	if board == nil {
		return
	}

	destListID, err := uuid.Parse(req.DestinationListID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid destination list ID format"})
		return
	}

	destList, err := h.lists.GetByID(c.Request.Context(), destListID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve destination list"})
		return
	}
	if destList == nil || destList.BoardID != task.BoardID {
		c.JSON(http.StatusConflict, gin.H{"error": "Destination list does not belong to this board"})
		return
	}

	order := make([]repository.TaskPosition, len(req.TaskOrder))
	for i, item := range req.TaskOrder {
		itemTaskID, err := uuid.Parse(item.TaskID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID in task order"})
			return
		}
		itemListID, err := uuid.Parse(item.ListID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID in task order"})
			return
		}
		order[i] = repository.TaskPosition{TaskID: itemTaskID, ListID: itemListID, Position: item.Position}
	}

	sourceListID := task.ListID
	if err := h.tasks.Move(c.Request.Context(), board.ID, task.ID, destList.ID, *req.NewPosition, order); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": "All tasks in the order must belong to this board"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move task"})
		return
	}

	moved, err := h.tasks.GetByID(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load moved task"})
		return
	}

	h.hub.ToBoard(board.ID, "task:moved", gin.H{
		"task":                moved,
		"source_list_id":      sourceListID,
		"destination_list_id": destList.ID,
		"task_order":          req.TaskOrder,
	})
	h.recorder.Record(c.Request.Context(), board.ID, userID,
		model.ActionTaskMoved, model.EntityTask, moved.ID, moved.Title,
		map[string]interface{}{"from": sourceListID, "to": destList.ID})

	c.JSON(http.StatusOK, moved)
}

// Assign adds or removes a user from a task's assignee set. Only board
// members can be assigned; unassignment works even for users already
// removed from the board.
func (h *TaskHandler) Assign(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	board := h.loadTaskBoard(c, task.BoardID, userID)
	if board == nil {
		return
	}

	action := model.ActionTaskAssigned
	if req.Action == "assign" {
		if !board.IsMember(targetID) {
			c.JSON(http.StatusConflict, gin.H{"error": "User is not a board member"})
			return
		}
		if err := h.tasks.Assign(c.Request.Context(), task.ID, targetID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign user"})
			return
		}
	} else {
		action = model.ActionTaskUnassigned
		if err := h.tasks.Unassign(c.Request.Context(), task.ID, targetID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unassign user"})
			return
		}
	}

	updated, err := h.tasks.GetByID(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load updated task"})
		return
	}

	h.hub.ToBoard(board.ID, "task:updated", updated)
	h.recorder.Record(c.Request.Context(), board.ID, userID,
		action, model.EntityTask, updated.ID, updated.Title,
		map[string]interface{}{"target_user": targetID})

	c.JSON(http.StatusOK, updated)
}

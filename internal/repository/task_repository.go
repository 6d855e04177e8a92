package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskPosition is one entry of a reorder batch; ListID allows the same
// batch to move tasks between lists of the board.
type TaskPosition struct {
	TaskID   uuid.UUID
	ListID   uuid.UUID
	Position int
}

// TaskFilter narrows the paginated task listing.
type TaskFilter struct {
	BoardID    *uuid.UUID
	AssigneeID *uuid.UUID
	Priority   string
	Search     string
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task with its labels, assignees and creator.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Labels", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Assignees").
		Preload("Creator").
		First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// GetByBoardID returns all live tasks of a board in position order.
func (r *TaskRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("Labels", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Assignees").
		Where("board_id = ? AND is_archived = ?", boardID, false).
		Order("position, created_at").
		Find(&tasks).Error
	return tasks, err
}

// Find returns a filtered, paginated slice of tasks plus the total count.
func (r *TaskRepository) Find(ctx context.Context, filter TaskFilter, limit, offset int) ([]model.Task, int64, error) {
	build := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Task{}).Where("tasks.is_archived = ?", false)
		if filter.BoardID != nil {
			q = q.Where("tasks.board_id = ?", *filter.BoardID)
		}
		if filter.Priority != "" {
			q = q.Where("tasks.priority = ?", filter.Priority)
		}
		if filter.AssigneeID != nil {
			q = q.Joins("JOIN task_assignees ON task_assignees.task_id = tasks.id").
				Where("task_assignees.user_id = ?", *filter.AssigneeID)
		}
		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			q = q.Where("tasks.title ILIKE ? OR tasks.description ILIKE ?", pattern, pattern)
		}
		return q
	}

	var total int64
	if err := build().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []model.Task
	err := build().
		Order("tasks.position, tasks.created_at").
		Limit(limit).
		Offset(offset).
		Preload("Labels", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Assignees").
		Preload("Creator").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).
		Omit("Labels", "Assignees", "Creator").
		Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ReplaceLabels swaps the task's label sequence for the given one.
func (r *TaskRepository) ReplaceLabels(ctx context.Context, taskID uuid.UUID, labels []model.TaskLabel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&model.TaskLabel{}).Error; err != nil {
			return err
		}
		for i := range labels {
			labels[i].ID = uuid.Nil
			labels[i].TaskID = taskID
			labels[i].Position = i
		}
		if len(labels) == 0 {
			return nil
		}
		return tx.Create(&labels).Error
	})
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM task_labels WHERE task_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM task_assignees WHERE task_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Task{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// NextPosition returns the append position for a new task in the list.
func (r *TaskRepository) NextPosition(ctx context.Context, listID uuid.UUID) (int, error) {
	var next struct {
		Next int
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("COALESCE(MAX(position), -1) + 1 as next").
		Where("list_id = ?", listID).
		Scan(&next).Error
	return next.Next, err
}

// Move re-homes the task and applies the caller-supplied sibling order for
// the affected lists in the same transaction. All writes are guarded by
// board_id so foreign task ids abort the batch with ErrTaskNotFound and
// nothing partial is committed.
func (r *TaskRepository) Move(ctx context.Context, boardID, taskID, destListID uuid.UUID, position int, order []TaskPosition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{}).
			Where("id = ? AND board_id = ?", taskID, boardID).
			Updates(map[string]interface{}{"list_id": destListID, "position": position})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		for _, item := range order {
			res := tx.Model(&model.Task{}).
				Where("id = ? AND board_id = ?", item.TaskID, boardID).
				Updates(map[string]interface{}{"list_id": item.ListID, "position": item.Position})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrTaskNotFound
			}
		}
		return nil
	})
}

// Assign adds a user to the task's assignee set; already assigned is a no-op.
func (r *TaskRepository) Assign(ctx context.Context, taskID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO task_assignees (task_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		taskID, userID,
	).Error
}

// Unassign removes a user from the task's assignee set.
func (r *TaskRepository) Unassign(ctx context.Context, taskID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM task_assignees WHERE task_id = ? AND user_id = ?",
		taskID, userID,
	).Error
}

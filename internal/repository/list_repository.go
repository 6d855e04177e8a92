package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListPosition is one entry of a reorder batch.
type ListPosition struct {
	ListID   uuid.UUID
	Position int
}

type ListRepository struct {
	db *gorm.DB
}

func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

func (r *ListRepository) Create(ctx context.Context, list *model.List) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *ListRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.List, error) {
	var list model.List
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &list, nil
}

// GetByBoardID returns the board's lists in display order; ties on
// position break by creation time.
func (r *ListRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.List, error) {
	var lists []model.List
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND is_archived = ?", boardID, false).
		Order("position, created_at").
		Find(&lists).Error
	return lists, err
}

func (r *ListRepository) Update(ctx context.Context, list *model.List) error {
	return r.db.WithContext(ctx).Save(list).Error
}

// Delete removes a list and cascades its tasks.
func (r *ListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM task_labels WHERE task_id IN (SELECT id FROM tasks WHERE list_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM task_assignees WHERE task_id IN (SELECT id FROM tasks WHERE list_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.List{}, "id = ?", id).Error
	})
}

// NextPosition returns the append position for a new list on the board:
// max sibling position + 1, or 0 when the board has no lists.
func (r *ListRepository) NextPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	var next struct {
		Next int
	}
	err := r.db.WithContext(ctx).Model(&model.List{}).
		Select("COALESCE(MAX(position), -1) + 1 as next").
		Where("board_id = ?", boardID).
		Scan(&next).Error
	return next.Next, err
}

// Reorder applies a full sibling ordering as one atomic batch. Every
// update is guarded by board_id; a list id that does not belong to the
// board aborts the whole batch with ErrListNotFound.
func (r *ListRepository) Reorder(ctx context.Context, boardID uuid.UUID, order []ListPosition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order {
			res := tx.Model(&model.List{}).
				Where("id = ? AND board_id = ?", item.ListID, boardID).
				Update("position", item.Position)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrListNotFound
			}
		}
		return nil
	})
}

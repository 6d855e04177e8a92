package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

// GetByID loads a board with its owner and members. Returns nil, nil when
// the board does not exist.
func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Members").
		Preload("Members.User").
		Where("id = ?", id).
		First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &board, nil
}

func (r *BoardRepository) userBoardsQuery(ctx context.Context, userID uuid.UUID, search string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Board{}).
		Joins("LEFT JOIN board_members ON board_members.board_id = boards.id").
		Where("boards.is_archived = ?", false).
		Where("boards.owner_id = ? OR board_members.user_id = ?", userID, userID)
	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where("boards.title ILIKE ? OR boards.description ILIKE ?", pattern, pattern)
	}
	return q
}

// ForUser returns the boards the user owns or is a member of, newest
// activity first, plus the total count for pagination.
func (r *BoardRepository) ForUser(ctx context.Context, userID uuid.UUID, search string, limit, offset int) ([]model.Board, int64, error) {
	var total int64
	if err := r.userBoardsQuery(ctx, userID, search).
		Distinct("boards.id").
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var boards []model.Board
	err := r.userBoardsQuery(ctx, userID, search).
		Group("boards.id").
		Order("boards.updated_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Owner").
		Preload("Members").
		Preload("Members.User").
		Find(&boards).Error
	if err != nil {
		return nil, 0, err
	}
	return boards, total, nil
}

func (r *BoardRepository) Update(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Omit("Owner", "Members").Save(board).Error
}

// Delete removes the board and everything it owns: tasks (with their
// labels and assignee links), lists, activity entries and memberships.
func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM task_labels WHERE task_id IN (SELECT id FROM tasks WHERE board_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM task_assignees WHERE task_id IN (SELECT id FROM tasks WHERE board_id = ?)", id,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.List{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.Activity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.BoardMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Board{}, "id = ?", id).Error
	})
}

func (r *BoardRepository) AddMember(ctx context.Context, member *model.BoardMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *BoardRepository) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&model.BoardMember{}).Error
}

package repository

import (
	"context"
	"time"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends one immutable entry. Entries are never updated.
func (r *ActivityRepository) Create(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// GetByBoardID returns the board's history, newest first, plus the total
// count for pagination.
func (r *ActivityRepository) GetByBoardID(ctx context.Context, boardID uuid.UUID, limit, offset int) ([]model.Activity, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Activity{}).
		Where("board_id = ?", boardID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []model.Activity
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("board_id = ?", boardID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&activities).Error
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

// DeleteOlderThan drops entries past the retention window and reports how
// many rows went away.
func (r *ActivityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.Activity{})
	return res.RowsAffected, res.Error
}

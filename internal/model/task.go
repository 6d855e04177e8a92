package model

import (
	"time"

	"github.com/google/uuid"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"board_id"`
	ListID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"list_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Position    int        `gorm:"not null" json:"position"`
	Priority    string     `gorm:"not null;default:'medium';check:priority IN ('low', 'medium', 'high', 'urgent')" json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	IsCompleted bool       `gorm:"not null;default:false" json:"is_completed"`
	IsArchived  bool       `gorm:"not null;default:false" json:"is_archived"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Board     Board       `gorm:"foreignKey:BoardID" json:"-"`
	List      List        `gorm:"foreignKey:ListID" json:"-"`
	Creator   User        `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Labels    []TaskLabel `gorm:"foreignKey:TaskID" json:"labels"`
	Assignees []User      `gorm:"many2many:task_assignees" json:"assignees"`
}

// TaskLabel is an ordered {text, color} pair attached to one task.
type TaskLabel struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TaskID   uuid.UUID `gorm:"type:uuid;not null;index" json:"task_id"`
	Text     string    `gorm:"not null" json:"text"`
	Color    string    `gorm:"not null;default:'#61bd4f'" json:"color"`
	Position int       `gorm:"not null" json:"position"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Activity actions
const (
	ActionBoardCreated   = "board_created"
	ActionBoardUpdated   = "board_updated"
	ActionListCreated    = "list_created"
	ActionListUpdated    = "list_updated"
	ActionListDeleted    = "list_deleted"
	ActionListReordered  = "list_reordered"
	ActionTaskCreated    = "task_created"
	ActionTaskUpdated    = "task_updated"
	ActionTaskDeleted    = "task_deleted"
	ActionTaskMoved      = "task_moved"
	ActionTaskAssigned   = "task_assigned"
	ActionTaskUnassigned = "task_unassigned"
	ActionTaskCompleted  = "task_completed"
	ActionMemberAdded    = "member_added"
	ActionMemberRemoved  = "member_removed"
)

// Activity entity types
const (
	EntityBoard  = "board"
	EntityList   = "list"
	EntityTask   = "task"
	EntityMember = "member"
)

// Activity is an append-only audit record. EntityTitle is a snapshot so
// history stays readable after the entity itself is deleted.
type Activity struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID     uuid.UUID `gorm:"type:uuid;not null;index:idx_activities_board_created" json:"board_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Action      string    `gorm:"not null" json:"action"`
	EntityType  string    `gorm:"not null;check:entity_type IN ('board', 'list', 'task', 'member')" json:"entity_type"`
	EntityID    uuid.UUID `gorm:"type:uuid;not null" json:"entity_id"`
	EntityTitle string    `json:"entity_title"`
	Details     string    `gorm:"type:jsonb;default:'{}'" json:"details"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_activities_board_created,sort:desc" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultBoardBackground = "#0079bf"

// Member roles on a board
const (
	RoleAdmin  = "admin"  // can manage the board and its members
	RoleMember = "member" // can edit lists and tasks
	RoleViewer = "viewer" // read-only
)

type Board struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Background  string    `gorm:"not null;default:'#0079bf'" json:"background"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	IsArchived  bool      `gorm:"not null;default:false" json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Owner   User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members []BoardMember `gorm:"foreignKey:BoardID" json:"members,omitempty"`
}

// BoardMember ties a user to a board at a role tier. The owner may or may
// not appear here; the guard methods below treat the owner as an implicit
// admin member either way.
type BoardMember struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_board_user" json:"board_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_board_user" json:"user_id"`
	Role     string    `gorm:"not null;default:'member';check:role IN ('admin', 'member', 'viewer')" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsMember reports whether the user may read and write the board.
// Requires Members to be loaded.
func (b *Board) IsMember(userID uuid.UUID) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, m := range b.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user is the owner or an admin member.
func (b *Board) IsAdmin(userID uuid.UUID) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, m := range b.Members {
		if m.UserID == userID {
			return m.Role == RoleAdmin
		}
	}
	return false
}

// MemberRole returns the effective role of the user on the board, or an
// empty string when the user is not a member. The owner is always admin.
func (b *Board) MemberRole(userID uuid.UUID) string {
	if b.OwnerID == userID {
		return RoleAdmin
	}
	for _, m := range b.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}

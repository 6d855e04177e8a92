package model

import (
	"time"

	"github.com/google/uuid"
)

type List struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID    uuid.UUID `gorm:"type:uuid;not null;index" json:"board_id"`
	Title      string    `gorm:"not null" json:"title"`
	Position   int       `gorm:"not null" json:"position"`
	IsArchived bool      `gorm:"not null;default:false" json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Board Board `gorm:"foreignKey:BoardID" json:"-"`
}

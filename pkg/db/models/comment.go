package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is an append-only note on an item request.
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID uuid.UUID `gorm:"column:request_id;type:uuid;not null" json:"requestId"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmarchetti/stockroom-backend/pkg/enums"
)

// User represents the canonical identity entity. Users are never hard-deleted.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string     `gorm:"type:text;not null" json:"name"`
	Email        string     `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Role         enums.Role `gorm:"type:user_role;not null;default:'user'" json:"role"`
	Department   *string    `gorm:"type:text" json:"department,omitempty"`
	AvatarURL    *string    `gorm:"column:avatar_url;type:text" json:"avatarUrl,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmarchetti/stockroom-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users.
type Notification struct {
	ID            uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID              `gorm:"column:user_id;type:uuid;not null" json:"userId"`
	Type          enums.NotificationType `gorm:"type:notification_type;not null" json:"type"`
	Message       string                 `gorm:"type:text;not null" json:"message"`
	Read          bool                   `gorm:"not null;default:false" json:"read"`
	RelatedItemID *uuid.UUID             `gorm:"column:related_item_id;type:uuid" json:"relatedItemId,omitempty"`
	CreatedAt     time.Time              `gorm:"type:timestamptz;default:now()" json:"createdAt"`
}

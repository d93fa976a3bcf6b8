package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmarchetti/stockroom-backend/pkg/enums"
)

// ItemRequest is a user's ask for stock, moving through the
// draft/pending/approved/rejected/fulfilled lifecycle. The nullable columns
// are stamped only by the transition that owns them.
type ItemRequest struct {
	ID          uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string                `gorm:"type:text;not null" json:"title"`
	Description string                `gorm:"type:text;not null;default:''" json:"description"`
	CategoryID  uuid.UUID             `gorm:"column:category_id;type:uuid;not null" json:"categoryId"`
	Category    *Category             `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Priority    enums.RequestPriority `gorm:"type:request_priority;not null;default:'medium'" json:"priority"`
	Status      enums.RequestStatus   `gorm:"type:request_status;not null;default:'pending'" json:"status"`
	UserID      uuid.UUID             `gorm:"column:user_id;type:uuid;not null" json:"userId"`
	User        *User                 `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Quantity    int                   `gorm:"not null;check:quantity > 0" json:"quantity"`

	ApprovedAt      *time.Time `gorm:"column:approved_at" json:"approvedAt,omitempty"`
	ApprovedBy      *uuid.UUID `gorm:"column:approved_by;type:uuid" json:"approvedBy,omitempty"`
	RejectedAt      *time.Time `gorm:"column:rejected_at" json:"rejectedAt,omitempty"`
	RejectedBy      *uuid.UUID `gorm:"column:rejected_by;type:uuid" json:"rejectedBy,omitempty"`
	RejectionReason *string    `gorm:"column:rejection_reason;type:text" json:"rejectionReason,omitempty"`
	FulfillmentDate *time.Time `gorm:"column:fulfillment_date" json:"fulfillmentDate,omitempty"`

	Comments []Comment `gorm:"foreignKey:RequestID" json:"comments,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

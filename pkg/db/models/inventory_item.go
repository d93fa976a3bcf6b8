package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is a stockable item. Available and reserved quantities are
// independently non-negative; their sum is what the UI presents as total stock.
type InventoryItem struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string    `gorm:"type:text;not null" json:"name"`
	Description       string    `gorm:"type:text;not null;default:''" json:"description"`
	CategoryID        uuid.UUID `gorm:"column:category_id;type:uuid;not null" json:"categoryId"`
	Category          *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SKU               string    `gorm:"column:sku;type:text;not null" json:"sku"`
	QuantityAvailable int       `gorm:"column:quantity_available;not null;default:0;check:quantity_available >= 0" json:"quantityAvailable"`
	QuantityReserved  int       `gorm:"column:quantity_reserved;not null;default:0;check:quantity_reserved >= 0" json:"quantityReserved"`
	Location          string    `gorm:"type:text;not null;default:''" json:"location"`
	ImageURL          *string   `gorm:"column:image_url;type:text" json:"imageUrl,omitempty"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foreverlabs/storefront-backend/pkg/types"
)

// Cart is the server-side cart for a signed-in customer. One row per user.
type Cart struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Data      types.CartData `gorm:"column:data;type:jsonb;serializer:json"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table for GORM.
func (Cart) TableName() string { return "carts" }

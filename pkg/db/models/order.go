package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foreverlabs/storefront-backend/pkg/enums"
	"github.com/foreverlabs/storefront-backend/pkg/types"
)

// OrderItem is a line captured from the cart at checkout time. Product name,
// image and price are snapshotted so later catalog edits never rewrite an
// order's history.
type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
}

// Order is a placed customer order with its lifecycle status.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Items         []OrderItem         `gorm:"column:items;type:jsonb;serializer:json"`
	Address       types.Address       `gorm:"column:address;type:jsonb;serializer:json"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Paid          bool                `gorm:"column:paid;not null;default:false"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'Order Placed'"`
	PlacedAt      time.Time           `gorm:"column:placed_at;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table for GORM.
func (Order) TableName() string { return "orders" }

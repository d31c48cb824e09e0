package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foreverlabs/storefront-backend/pkg/db/models"
	"github.com/foreverlabs/storefront-backend/pkg/enums"
)

// Repository is the persistence surface for customer orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	UpdatePaid(ctx context.Context, id uuid.UUID, paid bool) error
	ListAll(ctx context.Context) ([]models.Order, error)
	ListVisibleByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

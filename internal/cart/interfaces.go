package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foreverlabs/storefront-backend/pkg/db/models"
)

// Repository is the persistence surface for server-side carts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog view the cart and checkout paths need. Price and
// sizes come from the catalog at lookup time; orders snapshot them.
type Product struct {
	ID             uuid.UUID
	Name           string
	Price          decimal.Decimal
	Image          string
	AvailableSizes []string
}

// HasSize reports whether the product is offered in the given size.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.AvailableSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Resolver looks up catalog products for cart validation and checkout pricing.
type Resolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*Product, error)
	ResolveMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error)
}

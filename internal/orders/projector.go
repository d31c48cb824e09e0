package orders

import (
	"iter"
	"sort"
	"strings"

	"github.com/foreverlabs/storefront-backend/pkg/db/models"
	"github.com/foreverlabs/storefront-backend/pkg/enums"
	"github.com/foreverlabs/storefront-backend/pkg/pagination"
)

// SortOrder picks the date ordering for a projection.
type SortOrder string

const (
	SortNewestFirst SortOrder = "newest"
	SortOldestFirst SortOrder = "oldest"
)

// Projection is a read-side view over a set of orders: optional status
// filter, customer-name search, date sort and pagination. Applying it never
// mutates the input; every call recomputes from whatever slice it is given.
type Projection struct {
	Status     *enums.OrderStatus
	SearchText string
	Sort       SortOrder
	Page       pagination.Params
}

// Apply materializes the projection lazily. The returned sequence can be
// ranged over multiple times; each restart recomputes from the input.
func (p Projection) Apply(orders []models.Order) iter.Seq[models.Order] {
	return func(yield func(models.Order) bool) {
		for _, order := range p.project(orders) {
			if !yield(order) {
				return
			}
		}
	}
}

func (p Projection) project(orders []models.Order) []models.Order {
	filtered := make([]models.Order, 0, len(orders))
	needle := strings.ToLower(strings.TrimSpace(p.SearchText))
	for _, order := range orders {
		if p.Status != nil && order.Status != *p.Status {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(order.Address.FullName()), needle) {
			continue
		}
		filtered = append(filtered, order)
	}

	oldestFirst := p.Sort == SortOldestFirst
	sort.SliceStable(filtered, func(i, j int) bool {
		if oldestFirst {
			return filtered[i].PlacedAt.Before(filtered[j].PlacedAt)
		}
		return filtered[i].PlacedAt.After(filtered[j].PlacedAt)
	})

	return pagination.Slice(filtered, p.Page)
}

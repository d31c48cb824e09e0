package localcart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/foreverlabs/storefront-backend/internal/catalog"
	pkgerrors "github.com/foreverlabs/storefront-backend/pkg/errors"
	"github.com/foreverlabs/storefront-backend/pkg/types"
)

// Store holds the device-local cart a shopper builds before (and while)
// signing in. Quantities are keyed by product id, then by size. All reads and
// writes go through the internal mutex because sync rollbacks land from a
// different goroutine than shopper mutations.
type Store struct {
	mu       sync.Mutex
	items    map[uuid.UUID]map[string]int
	resolver catalog.Resolver
	notifier Notifier
}

// NewStore builds a local cart store validating items against the catalog.
func NewStore(resolver catalog.Resolver, notifier Notifier) (*Store, error) {
	if resolver == nil {
		return nil, fmt.Errorf("catalog resolver required")
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Store{
		items:    map[uuid.UUID]map[string]int{},
		resolver: resolver,
		notifier: notifier,
	}, nil
}

// AddItem increments the entry for (productID, size) by one. The size must be
// chosen and the product must exist in the catalog.
func (s *Store) AddItem(ctx context.Context, productID uuid.UUID, size string) error {
	if strings.TrimSpace(size) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Please select a product size")
	}

	product, err := s.resolver.Resolve(ctx, productID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return err
	}
	if !product.HasSize(size) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Please select a product size")
	}

	s.mu.Lock()
	sizes, ok := s.items[productID]
	if !ok {
		sizes = map[string]int{}
		s.items[productID] = sizes
	}
	sizes[size]++
	qty := sizes[size]
	s.mu.Unlock()

	s.notifier.ItemAdded(ctx, productID, size, qty)
	return nil
}

// SetQuantity replaces the entry's quantity outright. Zero removes the entry
// and, when it was the last size, the product bucket.
func (s *Store) SetQuantity(ctx context.Context, productID uuid.UUID, size string, quantity int) error {
	if strings.TrimSpace(size) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Please select a product size")
	}
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	s.mu.Lock()
	if quantity == 0 {
		if sizes, ok := s.items[productID]; ok {
			delete(sizes, size)
			if len(sizes) == 0 {
				delete(s.items, productID)
			}
		}
	} else {
		sizes, ok := s.items[productID]
		if !ok {
			sizes = map[string]int{}
			s.items[productID] = sizes
		}
		sizes[size] = quantity
	}
	s.mu.Unlock()

	if quantity == 0 {
		s.notifier.ItemRemoved(ctx, productID, size)
	} else {
		s.notifier.QuantityUpdated(ctx, productID, size, quantity)
	}
	return nil
}

// Quantity returns the stored quantity for the entry, zero when absent.
func (s *Store) Quantity(productID uuid.UUID, size string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sizes, ok := s.items[productID]; ok {
		return sizes[size]
	}
	return 0
}

// TotalCount sums every quantity across sizes and products.
func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, sizes := range s.items {
		for _, qty := range sizes {
			total += qty
		}
	}
	return total
}

// TotalAmount prices the cart against the current catalog. Entries whose
// product can no longer be resolved are skipped rather than failing the whole
// total, matching how a storefront renders a cart with a retired product.
func (s *Store) TotalAmount(ctx context.Context) (decimal.Decimal, error) {
	snapshot := s.snapshotByID()

	ids := make([]uuid.UUID, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	products, err := s.resolver.ResolveMany(ctx, ids)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for id, sizes := range snapshot {
		product, ok := products[id]
		if !ok {
			continue
		}
		for _, qty := range sizes {
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
		}
	}
	return total, nil
}

// Snapshot returns a deep copy of the cart in wire form, suitable for
// restoring later.
func (s *Store) Snapshot() types.CartData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(types.CartData, len(s.items))
	for id, sizes := range s.items {
		bucket := make(map[string]int, len(sizes))
		for size, qty := range sizes {
			bucket[size] = qty
		}
		out[id.String()] = bucket
	}
	return out
}

// Restore replaces the whole cart with a previously taken snapshot.
func (s *Store) Restore(data types.CartData) {
	s.replace(data)
}

// Replace swaps the cart contents for server state, e.g. after sign-in.
func (s *Store) Replace(data types.CartData) {
	s.replace(data)
}

func (s *Store) replace(data types.CartData) {
	next := map[uuid.UUID]map[string]int{}
	for rawID, sizes := range data {
		id, err := uuid.Parse(rawID)
		if err != nil {
			continue
		}
		bucket := map[string]int{}
		for size, qty := range sizes {
			if qty <= 0 {
				continue
			}
			bucket[size] = qty
		}
		if len(bucket) > 0 {
			next[id] = bucket
		}
	}

	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

func (s *Store) snapshotByID() map[uuid.UUID]map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]map[string]int, len(s.items))
	for id, sizes := range s.items {
		bucket := make(map[string]int, len(sizes))
		for size, qty := range sizes {
			bucket[size] = qty
		}
		out[id] = bucket
	}
	return out
}

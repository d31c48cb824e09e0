package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foreverlabs/storefront-backend/internal/catalog"
	"github.com/foreverlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/foreverlabs/storefront-backend/pkg/errors"
)

type stubRepo struct {
	carts map[uuid.UUID]*models.Cart
}

func newStubRepo() *stubRepo {
	return &stubRepo{carts: map[uuid.UUID]*models.Cart{}}
}

func (s *stubRepo) WithTx(*gorm.DB) Repository { return s }

func (s *stubRepo) FindByUser(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	if row, ok := s.carts[userID]; ok {
		copied := *row
		copied.Data = row.Data.Clone()
		return &copied, nil
	}
	return nil, nil
}

func (s *stubRepo) Save(_ context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	copied := *cart
	copied.Data = cart.Data.Clone()
	s.carts[cart.UserID] = &copied
	return cart, nil
}

func (s *stubRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	delete(s.carts, userID)
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubResolver struct {
	products map[uuid.UUID]*catalog.Product
}

func (s *stubResolver) Resolve(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
}

func (s *stubResolver) ResolveMany(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	out := map[uuid.UUID]*catalog.Product{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (Service, *stubRepo, *catalog.Product) {
	t.Helper()

	product := &catalog.Product{
		ID:             uuid.New(),
		Name:           "linen-shirt",
		Price:          decimal.RequireFromString("799.00"),
		AvailableSizes: []string{"S", "M", "L"},
	}
	repo := newStubRepo()
	svc, err := NewService(repo, stubTx{}, &stubResolver{products: map[uuid.UUID]*catalog.Product{product.ID: product}})
	require.NoError(t, err)
	return svc, repo, product
}

func TestUpsertEntryCreatesCart(t *testing.T) {
	svc, repo, product := newTestService(t)
	userID := uuid.New()

	result, err := svc.UpsertEntry(context.Background(), UpsertInput{
		UserID:    userID,
		ProductID: product.ID,
		Size:      "M",
		Quantity:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, ChangeAdded, result.Change)
	assert.Equal(t, 2, result.Cart.Quantity(product.ID.String(), "M"))
	assert.Contains(t, repo.carts, userID)
}

func TestUpsertEntryReplacesQuantity(t *testing.T) {
	svc, _, product := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.UpsertEntry(ctx, UpsertInput{UserID: userID, ProductID: product.ID, Size: "M", Quantity: 5})
	require.NoError(t, err)

	result, err := svc.UpsertEntry(ctx, UpsertInput{UserID: userID, ProductID: product.ID, Size: "M", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, ChangeUpdated, result.Change)
	assert.Equal(t, 1, result.Cart.Quantity(product.ID.String(), "M"))
}

func TestUpsertEntryZeroRemoves(t *testing.T) {
	svc, _, product := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.UpsertEntry(ctx, UpsertInput{UserID: userID, ProductID: product.ID, Size: "M", Quantity: 3})
	require.NoError(t, err)

	result, err := svc.UpsertEntry(ctx, UpsertInput{UserID: userID, ProductID: product.ID, Size: "M", Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, ChangeRemoved, result.Change)
	assert.Empty(t, result.Cart)
}

func TestUpsertEntryZeroRemovesRetiredProduct(t *testing.T) {
	product := &catalog.Product{
		ID:             uuid.New(),
		Name:           "linen-shirt",
		Price:          decimal.RequireFromString("799.00"),
		AvailableSizes: []string{"S", "M", "L"},
	}
	repo := newStubRepo()
	resolver := &stubResolver{products: map[uuid.UUID]*catalog.Product{product.ID: product}}
	svc, err := NewService(repo, stubTx{}, resolver)
	require.NoError(t, err)

	userID := uuid.New()
	ctx := context.Background()

	_, err = svc.UpsertEntry(ctx, UpsertInput{UserID: userID, ProductID: product.ID, Size: "M", Quantity: 2})
	require.NoError(t, err)

	// Retire the product from the catalog; the entry must still be removable.
	delete(resolver.products, product.ID)

	result, err := svc.UpsertEntry(ctx, UpsertInput{UserID: userID, ProductID: product.ID, Size: "M", Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, ChangeRemoved, result.Change)
	assert.Empty(t, result.Cart)
}

func TestUpsertEntryValidation(t *testing.T) {
	svc, _, product := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpsertEntry(ctx, UpsertInput{UserID: uuid.New(), ProductID: product.ID, Size: "", Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, "Please select a product size", pkgerrors.As(err).Message())

	_, err = svc.UpsertEntry(ctx, UpsertInput{UserID: uuid.New(), ProductID: uuid.New(), Size: "M", Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.UpsertEntry(ctx, UpsertInput{UserID: uuid.Nil, ProductID: product.ID, Size: "M", Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestFetchEmptyCart(t *testing.T) {
	svc, _, _ := newTestService(t)

	data, err := svc.Fetch(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestClearDeletesCart(t *testing.T) {
	svc, repo, product := newTestService(t)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.UpsertEntry(ctx, UpsertInput{UserID: userID, ProductID: product.ID, Size: "M", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, userID))
	assert.NotContains(t, repo.carts, userID)
}

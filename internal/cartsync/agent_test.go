package cartsync

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foreverlabs/storefront-backend/internal/catalog"
	"github.com/foreverlabs/storefront-backend/internal/localcart"
	"github.com/foreverlabs/storefront-backend/pkg/config"
	pkgerrors "github.com/foreverlabs/storefront-backend/pkg/errors"
	"github.com/foreverlabs/storefront-backend/pkg/logger"
	"github.com/foreverlabs/storefront-backend/pkg/types"
)

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

type pushRecord struct {
	productID uuid.UUID
	size      string
	quantity  int
}

type stubRemote struct {
	mu       sync.Mutex
	pushes   []pushRecord
	failNext bool
	pullData types.CartData
	pullErr  error
}

func (r *stubRemote) Push(_ context.Context, _ string, productID uuid.UUID, size string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return pkgerrors.New(pkgerrors.CodeDependency, "cart api unavailable")
	}
	r.pushes = append(r.pushes, pushRecord{productID: productID, size: size, quantity: quantity})
	return nil
}

func (r *stubRemote) Pull(_ context.Context, _ string) (types.CartData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pullErr != nil {
		return nil, r.pullErr
	}
	return r.pullData, nil
}

func (r *stubRemote) recorded() []pushRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]pushRecord, len(r.pushes))
	copy(out, r.pushes)
	return out
}

func newTestAgent(t *testing.T, remote *stubRemote) (*Agent, *localcart.Store, *catalog.Product) {
	t.Helper()

	product := &catalog.Product{
		ID:             uuid.New(),
		Name:           "denim-jacket",
		Price:          decimal.RequireFromString("1299.00"),
		AvailableSizes: []string{"S", "M", "L"},
	}
	resolver := &stubResolver{products: map[uuid.UUID]*catalog.Product{product.ID: product}}
	store, err := localcart.NewStore(resolver, nil)
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "cartsync-test", Output: io.Discard})
	agent, err := NewAgent(store, remote, nil, config.CartSyncConfig{QueueSize: 8}, logg)
	require.NoError(t, err)
	t.Cleanup(agent.Close)

	return agent, store, product
}

func TestAnonymousMutationsStayLocal(t *testing.T) {
	remote := &stubRemote{}
	agent, store, product := newTestAgent(t, remote)
	ctx := context.Background()

	require.NoError(t, agent.AddToCart(ctx, product.ID, "M"))
	require.NoError(t, agent.UpdateQuantity(ctx, product.ID, "M", 4))

	agent.Close()
	assert.Empty(t, remote.recorded())
	assert.Equal(t, 4, store.Quantity(product.ID, "M"))
}

func TestSignedInMutationsPushInOrder(t *testing.T) {
	remote := &stubRemote{pullData: types.CartData{}}
	agent, _, product := newTestAgent(t, remote)
	ctx := context.Background()

	require.NoError(t, agent.Login(ctx, Session{Token: "tok"}))
	require.NoError(t, agent.AddToCart(ctx, product.ID, "M"))
	require.NoError(t, agent.AddToCart(ctx, product.ID, "M"))
	require.NoError(t, agent.UpdateQuantity(ctx, product.ID, "L", 3))

	agent.Close()

	pushes := remote.recorded()
	require.Len(t, pushes, 3)
	assert.Equal(t, pushRecord{productID: product.ID, size: "M", quantity: 1}, pushes[0])
	assert.Equal(t, pushRecord{productID: product.ID, size: "M", quantity: 2}, pushes[1])
	assert.Equal(t, pushRecord{productID: product.ID, size: "L", quantity: 3}, pushes[2])
}

func TestFailedPushRollsBackLocalCart(t *testing.T) {
	remote := &stubRemote{pullData: types.CartData{}}
	agent, store, product := newTestAgent(t, remote)
	ctx := context.Background()

	require.NoError(t, agent.Login(ctx, Session{Token: "tok"}))
	require.NoError(t, agent.AddToCart(ctx, product.ID, "M"))
	agent.Close()
	require.Equal(t, 1, store.Quantity(product.ID, "M"))

	// Next push fails: the mutation must be undone locally.
	remote.failNext = true
	agent2, err := NewAgent(store, remote, nil, config.CartSyncConfig{QueueSize: 8}, logger.New(logger.Options{ServiceName: "cartsync-test", Output: io.Discard}))
	require.NoError(t, err)
	require.NoError(t, agent2.Login(ctx, Session{Token: "tok"}))
	store.Replace(types.CartData{product.ID.String(): {"M": 1}})

	require.NoError(t, agent2.UpdateQuantity(ctx, product.ID, "M", 7))
	agent2.Close()

	assert.Equal(t, 1, store.Quantity(product.ID, "M"))
}

func TestLoginReplacesLocalCartWithServerCart(t *testing.T) {
	serverProduct := uuid.New()
	remote := &stubRemote{pullData: types.CartData{serverProduct.String(): {"XL": 2}}}
	agent, store, product := newTestAgent(t, remote)
	ctx := context.Background()

	require.NoError(t, agent.AddToCart(ctx, product.ID, "M"))
	require.NoError(t, agent.Login(ctx, Session{Token: "tok"}))

	assert.Equal(t, 0, store.Quantity(product.ID, "M"), "anonymous cart is discarded")
	assert.Equal(t, 2, store.Quantity(serverProduct, "XL"))
}

func TestLoginFailurePreservesLocalCart(t *testing.T) {
	remote := &stubRemote{pullErr: pkgerrors.New(pkgerrors.CodeDependency, "cart api unavailable")}
	agent, store, product := newTestAgent(t, remote)
	ctx := context.Background()

	require.NoError(t, agent.AddToCart(ctx, product.ID, "M"))
	require.Error(t, agent.Login(ctx, Session{Token: "tok"}))

	assert.Equal(t, 1, store.Quantity(product.ID, "M"))

	// Session never activated, so mutations still stay local.
	require.NoError(t, agent.AddToCart(ctx, product.ID, "M"))
	agent.Close()
	assert.Empty(t, remote.recorded())
}

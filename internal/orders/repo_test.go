package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foreverlabs/storefront-backend/pkg/db/models"
	"github.com/foreverlabs/storefront-backend/pkg/enums"
	"github.com/foreverlabs/storefront-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  items TEXT,
  address TEXT,
  amount NUMERIC NOT NULL,
  payment_method TEXT NOT NULL,
  paid INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'Order Placed',
  placed_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(`DELETE FROM orders`).Error)
	return db
}

func insertOrder(t *testing.T, repo Repository, userID uuid.UUID, method enums.PaymentMethod, paid bool, placedAt time.Time) *models.Order {
	t.Helper()

	order, err := repo.Create(context.Background(), &models.Order{
		UserID: userID,
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Name: "slim-joggers", Price: decimal.RequireFromString("999.00"), Size: "M", Quantity: 1},
		},
		Address: types.Address{
			FirstName: "Ravi", LastName: "Iyer",
			Street: "2 Beach Road", City: "Chennai", State: "Tamil Nadu",
			ZipCode: "600004", Country: "India",
		},
		Amount:        decimal.RequireFromString("1049.00"),
		PaymentMethod: method,
		Paid:          paid,
		Status:        enums.OrderStatusPlaced,
		PlacedAt:      placedAt,
	})
	require.NoError(t, err)
	return order
}

func TestCreateAndFindRoundTrip(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	created := insertOrder(t, repo, uuid.New(), enums.PaymentMethodCOD, false, time.Now().UTC())

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.UserID, found.UserID)
	assert.Equal(t, enums.OrderStatusPlaced, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "slim-joggers", found.Items[0].Name)
	assert.Equal(t, "Ravi Iyer", found.Address.FullName())
	assert.True(t, found.Amount.Equal(decimal.RequireFromString("1049.00")))
}

func TestFindMissingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateStatusAndPaidPersist(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := insertOrder(t, repo, uuid.New(), enums.PaymentMethodRazorpay, false, time.Now().UTC())

	require.NoError(t, repo.UpdateStatus(ctx, created.ID, enums.OrderStatusShipped))
	require.NoError(t, repo.UpdatePaid(ctx, created.ID, true))

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, found.Status)
	assert.True(t, found.Paid)
}

func TestListVisibleByUserFiltersUnpaidOnline(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	cod := insertOrder(t, repo, userID, enums.PaymentMethodCOD, false, base)
	paidOnline := insertOrder(t, repo, userID, enums.PaymentMethodRazorpay, true, base.Add(time.Hour))
	insertOrder(t, repo, userID, enums.PaymentMethodRazorpay, false, base.Add(2*time.Hour))
	insertOrder(t, repo, uuid.New(), enums.PaymentMethodCOD, false, base.Add(3*time.Hour))

	visible, err := repo.ListVisibleByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, visible, 2)

	// Newest first.
	assert.Equal(t, paidOnline.ID, visible[0].ID)
	assert.Equal(t, cod.ID, visible[1].ID)
}

func TestListAllNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	older := insertOrder(t, repo, uuid.New(), enums.PaymentMethodCOD, false, base)
	newer := insertOrder(t, repo, uuid.New(), enums.PaymentMethodRazorpay, false, base.Add(time.Hour))

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[1].ID)
}

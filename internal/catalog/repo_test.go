package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foreverlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/foreverlabs/storefront-backend/pkg/errors"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  images TEXT,
  sizes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(`DELETE FROM products`).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, sizes ...string) *models.Product {
	t.Helper()

	row := &models.Product{
		ID:     uuid.New(),
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Images: []string{"https://cdn.example.com/" + name + ".jpg"},
		Sizes:  sizes,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestResolveReturnsProduct(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	seeded := seedProduct(t, db, "round-neck-tee", "199.00", "S", "M", "L")

	got, err := repo.Resolve(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)
	assert.Equal(t, "round-neck-tee", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("199.00")))
	assert.Equal(t, []string{"S", "M", "L"}, got.AvailableSizes)
	assert.True(t, got.HasSize("M"))
	assert.False(t, got.HasSize("XXL"))
}

func TestResolveUnknownProduct(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	_, err := repo.Resolve(context.Background(), uuid.New())
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestResolveManyReturnsOnlyKnown(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	a := seedProduct(t, db, "hoodie", "899.00", "M")
	b := seedProduct(t, db, "cap", "249.00", "One Size")

	got, err := repo.ResolveMany(context.Background(), []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, a.ID)
	assert.Contains(t, got, b.ID)
}

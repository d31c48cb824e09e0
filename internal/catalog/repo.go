package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foreverlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/foreverlabs/storefront-backend/pkg/errors"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog resolver bound to the provided DB.
func NewRepository(db *gorm.DB) Resolver {
	return &repository{db: db}
}

func (r *repository) Resolve(ctx context.Context, id uuid.UUID) (*Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, err
	}
	return fromModel(&row), nil
}

func (r *repository) ResolveMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*Product{}, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*Product, len(rows))
	for i := range rows {
		out[rows[i].ID] = fromModel(&rows[i])
	}
	return out, nil
}

func fromModel(row *models.Product) *Product {
	image := ""
	if len(row.Images) > 0 {
		image = row.Images[0]
	}
	return &Product{
		ID:             row.ID,
		Name:           row.Name,
		Price:          row.Price,
		Image:          image,
		AvailableSizes: row.Sizes,
	}
}

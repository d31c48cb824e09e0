package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foreverlabs/storefront-backend/internal/catalog"
	"github.com/foreverlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/foreverlabs/storefront-backend/pkg/errors"
	"github.com/foreverlabs/storefront-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Change describes what an upsert did to the cart entry.
type Change string

const (
	ChangeAdded   Change = "added"
	ChangeUpdated Change = "updated"
	ChangeRemoved Change = "removed"
)

// UpsertInput carries one entry mutation from the storefront.
type UpsertInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Size      string
	Quantity  int
}

// UpsertResult returns the cart after a mutation.
type UpsertResult struct {
	Cart   types.CartData
	Change Change
}

// Service defines the server-side cart operations.
type Service interface {
	UpsertEntry(ctx context.Context, input UpsertInput) (*UpsertResult, error)
	Fetch(ctx context.Context, userID uuid.UUID) (types.CartData, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	resolver catalog.Resolver
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, tx txRunner, resolver catalog.Resolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("catalog resolver required")
	}
	return &service{repo: repo, tx: tx, resolver: resolver}, nil
}

func (s *service) UpsertEntry(ctx context.Context, input UpsertInput) (*UpsertResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.Size) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please select a product size")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	// Removal carries no catalog precondition: a product retired after it was
	// added must still be deletable, or the entry wedges in the cart.
	if input.Quantity > 0 {
		product, err := s.resolver.Resolve(ctx, input.ProductID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
			}
			return nil, err
		}
		if !product.HasSize(input.Size) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please select a product size")
		}
	}

	var result *UpsertResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		row, err := repo.FindByUser(ctx, input.UserID)
		if err != nil {
			return err
		}
		if row == nil {
			row = &models.Cart{UserID: input.UserID, Data: types.CartData{}}
		}
		if row.Data == nil {
			row.Data = types.CartData{}
		}

		change := ChangeUpdated
		if input.Quantity == 0 {
			change = ChangeRemoved
		} else if row.Data.Quantity(input.ProductID.String(), input.Size) == 0 {
			change = ChangeAdded
		}

		row.Data.SetQuantity(input.ProductID.String(), input.Size, input.Quantity)
		if _, err := repo.Save(ctx, row); err != nil {
			return err
		}

		result = &UpsertResult{Cart: row.Data.Clone(), Change: change}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Fetch(ctx context.Context, userID uuid.UUID) (types.CartData, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	row, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if row == nil || row.Data == nil {
		return types.CartData{}, nil
	}
	return row.Data.Clone(), nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.repo.DeleteByUser(ctx, userID)
}

package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/foreverlabs/storefront-backend/internal/cart"
	"github.com/foreverlabs/storefront-backend/internal/catalog"
	"github.com/foreverlabs/storefront-backend/pkg/config"
	"github.com/foreverlabs/storefront-backend/pkg/db/models"
	"github.com/foreverlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/foreverlabs/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the order lifecycle operations.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	ListForCustomer(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

type service struct {
	repo        Repository
	cartRepo    cart.Repository
	resolver    catalog.Resolver
	tx          txRunner
	deliveryFee decimal.Decimal
	now         func() time.Time

	locks orderLocks
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, cartRepo cart.Repository, resolver catalog.Resolver, tx txRunner, checkout config.CheckoutConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("catalog resolver required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		cartRepo:    cartRepo,
		resolver:    resolver,
		tx:          tx,
		deliveryFee: decimal.NewFromInt(int64(checkout.DeliveryFee)),
		now:         time.Now,
		locks:       orderLocks{held: map[uuid.UUID]*lockEntry{}},
	}, nil
}

// PlaceOrder snapshots the user's server cart into an immutable order and
// clears the cart, all in one transaction.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if !input.Address.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address incomplete")
	}

	var placed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		repo := s.repo.WithTx(tx)

		row, err := cartRepo.FindByUser(ctx, input.UserID)
		if err != nil {
			return err
		}
		if row == nil || row.Data.Count() == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		items, subtotal, err := s.snapshotItems(ctx, row)
		if err != nil {
			return err
		}

		order := &models.Order{
			ID:            uuid.New(),
			UserID:        input.UserID,
			Items:         items,
			Address:       input.Address,
			Amount:        subtotal.Add(s.deliveryFee),
			PaymentMethod: input.PaymentMethod,
			Paid:          false,
			Status:        enums.OrderStatusPlaced,
			PlacedAt:      s.now().UTC(),
		}
		if _, err := repo.Create(ctx, order); err != nil {
			return err
		}
		if err := cartRepo.DeleteByUser(ctx, input.UserID); err != nil {
			return err
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *service) snapshotItems(ctx context.Context, row *models.Cart) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(row.Data))
	for rawID := range row.Data {
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "cart contains a malformed product id")
		}
		ids = append(ids, id)
	}

	products, err := s.resolver.ResolveMany(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	items := make([]models.OrderItem, 0, len(ids))
	subtotal := decimal.Zero
	for _, id := range ids {
		product, ok := products[id]
		if !ok {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		for size, qty := range row.Data[id.String()] {
			if qty <= 0 {
				continue
			}
			items = append(items, models.OrderItem{
				ProductID: id,
				Name:      product.Name,
				Image:     product.Image,
				Price:     product.Price,
				Size:      size,
				Quantity:  qty,
			})
			subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
		}
	}
	if len(items) == 0 {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return items, subtotal, nil
}

// Transition moves an order to the requested status, enforcing who may ask
// for what. Customers may only cancel their own still-cancelable orders;
// admins move orders freely until a terminal status is reached.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.Target))
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Actor.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}

	// Customers may only ever request cancellation, regardless of the
	// order's current state.
	if input.Actor.Role == enums.ActorRoleCustomer && input.Target != enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customers may only cancel orders")
	}

	unlock := s.locks.lock(input.OrderID)
	defer unlock()

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}

		if input.Actor.Role == enums.ActorRoleCustomer && order.UserID != input.Actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
		}

		// Terminal statuses refuse every request, including a repeat of the
		// terminal status itself.
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is already %s", order.Status)).
				WithDetails(map[string]any{"current": order.Status, "requested": input.Target})
		}
		if order.Status == input.Target {
			updated = order
			return nil
		}
		if input.Actor.Role == enums.ActorRoleCustomer && !order.Status.CustomerCancelable() {
			return pkgerrors.New(pkgerrors.CodeForbidden,
				fmt.Sprintf("order can no longer be cancelled while %s", order.Status)).
				WithDetails(map[string]any{"current": order.Status})
		}

		if err := repo.UpdateStatus(ctx, order.ID, input.Target); err != nil {
			return err
		}
		order.Status = input.Target
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkPaid flips the payment flag after a verified online payment.
func (s *service) MarkPaid(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	unlock := s.locks.lock(orderID)
	defer unlock()

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return err
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
		}
		if order.PaymentMethod != enums.PaymentMethodRazorpay {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not an online payment")
		}
		if order.Paid {
			updated = order
			return nil
		}

		if err := repo.UpdatePaid(ctx, order.ID, true); err != nil {
			return err
		}
		order.Paid = true
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListForCustomer(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.repo.ListVisibleByUser(ctx, userID)
}

// orderLocks serializes mutations per order id so concurrent transitions see
// each other's committed state.
type orderLocks struct {
	mu   sync.Mutex
	held map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (l *orderLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.held[id]
	if !ok {
		entry = &lockEntry{}
		l.held[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.held, id)
		}
		l.mu.Unlock()
	}
}

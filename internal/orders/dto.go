package orders

import (
	"github.com/google/uuid"

	"github.com/foreverlabs/storefront-backend/pkg/enums"
	"github.com/foreverlabs/storefront-backend/pkg/types"
)

// ActorRef identifies who is asking for an order mutation.
type ActorRef struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}

// TransitionInput captures a requested status change.
type TransitionInput struct {
	OrderID uuid.UUID
	Target  enums.OrderStatus
	Actor   ActorRef
}

// PlaceOrderInput carries a checkout request. The order's line items come
// from the user's server-side cart, not from the request.
type PlaceOrderInput struct {
	UserID        uuid.UUID
	Address       types.Address
	PaymentMethod enums.PaymentMethod
}

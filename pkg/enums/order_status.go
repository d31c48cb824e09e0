package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order. The values are the
// exact strings stored and rendered by the storefront, in forward order, with
// Cancelled as the terminal alternate.
type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "Order Placed"
	OrderStatusPacking        OrderStatus = "Packing"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusOutForDelivery OrderStatus = "Out for delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusCancelled      OrderStatus = "Cancelled"
)

var forwardOrderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusPacking,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

var validOrderStatuses = append(append([]OrderStatus{}, forwardOrderStatuses...), OrderStatusCancelled)

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CustomerCancelable reports whether a customer may still cancel an order in
// this status. Cancellation closes once packing completes.
func (s OrderStatus) CustomerCancelable() bool {
	return s == OrderStatusPlaced || s == OrderStatusPacking
}

// ForwardOrderStatuses returns the forward path, excluding Cancelled.
func ForwardOrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(forwardOrderStatuses))
	copy(out, forwardOrderStatuses)
	return out
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

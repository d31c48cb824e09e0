package localcart

import (
	"context"

	"github.com/google/uuid"

	"github.com/foreverlabs/storefront-backend/pkg/logger"
)

// Notifier receives cart mutation events. The storefront surfaces these as
// toasts; the backend default just logs them.
type Notifier interface {
	ItemAdded(ctx context.Context, productID uuid.UUID, size string, quantity int)
	QuantityUpdated(ctx context.Context, productID uuid.UUID, size string, quantity int)
	ItemRemoved(ctx context.Context, productID uuid.UUID, size string)
	SyncFailed(ctx context.Context, reason error)
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) ItemAdded(context.Context, uuid.UUID, string, int)       {}
func (NopNotifier) QuantityUpdated(context.Context, uuid.UUID, string, int) {}
func (NopNotifier) ItemRemoved(context.Context, uuid.UUID, string)          {}
func (NopNotifier) SyncFailed(context.Context, error)                       {}

// LogNotifier writes cart events to the structured log.
type LogNotifier struct {
	logg *logger.Logger
}

// NewLogNotifier wraps the shared logger as a cart notifier.
func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) ItemAdded(ctx context.Context, productID uuid.UUID, size string, quantity int) {
	ctx = n.logg.WithFields(ctx, map[string]any{"product_id": productID, "size": size, "quantity": quantity})
	n.logg.Info(ctx, "cart item added")
}

func (n *LogNotifier) QuantityUpdated(ctx context.Context, productID uuid.UUID, size string, quantity int) {
	ctx = n.logg.WithFields(ctx, map[string]any{"product_id": productID, "size": size, "quantity": quantity})
	n.logg.Info(ctx, "cart quantity updated")
}

func (n *LogNotifier) ItemRemoved(ctx context.Context, productID uuid.UUID, size string) {
	ctx = n.logg.WithFields(ctx, map[string]any{"product_id": productID, "size": size})
	n.logg.Info(ctx, "cart item removed")
}

func (n *LogNotifier) SyncFailed(ctx context.Context, reason error) {
	n.logg.Error(ctx, "cart sync failed", reason)
}

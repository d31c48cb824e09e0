package cartsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foreverlabs/storefront-backend/internal/localcart"
	"github.com/foreverlabs/storefront-backend/pkg/config"
	"github.com/foreverlabs/storefront-backend/pkg/logger"
	"github.com/foreverlabs/storefront-backend/pkg/types"
)

// Session identifies a signed-in shopper whose cart should mirror the server.
type Session struct {
	Token string
}

type job struct {
	token     string
	productID uuid.UUID
	size      string
	quantity  int
	snapshot  types.CartData
}

// Agent applies cart mutations locally first, then mirrors each one to the
// server cart when a session is active. Pushes are issued in mutation order by
// a single worker goroutine; a failed push rolls the local cart back to the
// snapshot taken before the mutation.
type Agent struct {
	store    *localcart.Store
	remote   RemoteCart
	notifier localcart.Notifier
	logg     *logger.Logger
	timeout  time.Duration

	mu      sync.Mutex
	session *Session

	jobs chan job
	wg   sync.WaitGroup

	closeOnce sync.Once
}

// NewAgent wires the local store to the remote cart and starts the sync worker.
func NewAgent(store *localcart.Store, remote RemoteCart, notifier localcart.Notifier, cfg config.CartSyncConfig, logg *logger.Logger) (*Agent, error) {
	if store == nil {
		return nil, fmt.Errorf("local cart store required")
	}
	if remote == nil {
		return nil, fmt.Errorf("remote cart required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if notifier == nil {
		notifier = localcart.NopNotifier{}
	}

	timeout := cfg.PushTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	a := &Agent{
		store:    store,
		remote:   remote,
		notifier: notifier,
		logg:     logg,
		timeout:  timeout,
		jobs:     make(chan job, queueSize),
	}

	a.wg.Add(1)
	go a.worker()

	return a, nil
}

// AddToCart increments the entry locally, then schedules a server push when
// signed in. The local mutation is never blocked on the network.
func (a *Agent) AddToCart(ctx context.Context, productID uuid.UUID, size string) error {
	snapshot := a.store.Snapshot()
	if err := a.store.AddItem(ctx, productID, size); err != nil {
		return err
	}
	a.enqueue(productID, size, a.store.Quantity(productID, size), snapshot)
	return nil
}

// UpdateQuantity replaces the entry's quantity locally, then schedules a
// server push when signed in.
func (a *Agent) UpdateQuantity(ctx context.Context, productID uuid.UUID, size string, quantity int) error {
	snapshot := a.store.Snapshot()
	if err := a.store.SetQuantity(ctx, productID, size, quantity); err != nil {
		return err
	}
	a.enqueue(productID, size, quantity, snapshot)
	return nil
}

// Login activates the session and replaces the local cart with the server
// cart. Whatever the shopper gathered anonymously is discarded.
func (a *Agent) Login(ctx context.Context, session Session) error {
	if session.Token == "" {
		return fmt.Errorf("session token required")
	}

	pullCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	remote, err := a.remote.Pull(pullCtx, session.Token)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.session = &Session{Token: session.Token}
	a.mu.Unlock()

	a.store.Replace(remote)
	return nil
}

// Logout clears the session. Later mutations stay local only.
func (a *Agent) Logout() {
	a.mu.Lock()
	a.session = nil
	a.mu.Unlock()
}

// Close drains pending pushes and stops the worker.
func (a *Agent) Close() {
	a.closeOnce.Do(func() {
		close(a.jobs)
	})
	a.wg.Wait()
}

func (a *Agent) enqueue(productID uuid.UUID, size string, quantity int, snapshot types.CartData) {
	a.mu.Lock()
	session := a.session
	a.mu.Unlock()
	if session == nil {
		return
	}

	a.jobs <- job{
		token:     session.Token,
		productID: productID,
		size:      size,
		quantity:  quantity,
		snapshot:  snapshot,
	}
}

func (a *Agent) worker() {
	defer a.wg.Done()

	for j := range a.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		err := a.remote.Push(ctx, j.token, j.productID, j.size, j.quantity)
		cancel()
		if err == nil {
			continue
		}

		a.store.Restore(j.snapshot)
		a.notifier.SyncFailed(context.Background(), err)
		a.logg.Error(context.Background(), "cart sync push failed, local cart rolled back", err)
	}
}

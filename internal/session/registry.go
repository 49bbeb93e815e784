// Package session keeps the per-shopper cart store and checkout wizard
// alive between requests.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/shipping"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

type Session struct {
	UserID   string
	Cart     *cartapp.Store
	Checkout *checkoutapp.Wizard

	lastSeen time.Time
}

type Config struct {
	Cart     cartapp.RemoteCart
	Shipping *shipping.Resolver
	Drafts   checkoutapp.DraftStore
	TaxRate  decimal.Decimal
	// IdleTTL is how long an unused session is kept. Zero keeps sessions
	// until they are evicted explicitly.
	IdleTTL time.Duration
	Log     *slog.Logger
}

// Registry owns one Session per user.
type Registry struct {
	cfg   Config
	log   *slog.Logger
	now   func() time.Time
	group singleflight.Group

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:      cfg,
		log:      logger.OrDefault(cfg.Log).With("component", "session"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the user's session, creating it on first use. A new session
// loads the remote cart; a failed load is logged and leaves the cart empty
// until the next reload.
func (r *Registry) Get(ctx context.Context, userID string) (*Session, error) {
	if s, ok := r.lookup(userID); ok {
		return s, nil
	}

	v, err, _ := r.group.Do(userID, func() (any, error) {
		if s, ok := r.lookup(userID); ok {
			return s, nil
		}
		s, err := r.open(context.WithoutCancel(ctx), userID)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.sessions[userID] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (r *Registry) open(ctx context.Context, userID string) (*Session, error) {
	store := cartapp.NewStore(userID, r.cfg.Cart, r.cfg.Log)
	if err := store.LoadCart(ctx); err != nil {
		r.log.Warn("initial cart load failed", "user_id", userID, "err", err)
	}

	wizard, err := checkoutapp.NewWizard(ctx, userID, checkoutapp.Deps{
		Cart:     adapter.NewCartStoreReader(store),
		Shipping: r.cfg.Shipping,
		Drafts:   r.cfg.Drafts,
		TaxRate:  r.cfg.TaxRate,
		Log:      r.cfg.Log,
	})
	if err != nil {
		store.Detach()
		return nil, fmt.Errorf("open checkout for %s: %w", userID, err)
	}
	return &Session{UserID: userID, Cart: store, Checkout: wizard, lastSeen: r.now()}, nil
}

func (r *Registry) lookup(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

// Evict drops the user's session. Cart responses still in flight are
// discarded; the durable checkout draft is kept.
func (r *Registry) Evict(userID string) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()
	if ok {
		s.Cart.Detach()
	}
}

// Sweep evicts sessions idle for longer than the configured TTL and
// returns how many were dropped.
func (r *Registry) Sweep() int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Cart.Detach()
	}
	return len(stale)
}

// Run sweeps idle sessions until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	if r.cfg.IdleTTL <= 0 {
		<-ctx.Done()
		return
	}
	t := time.NewTicker(r.cfg.IdleTTL / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				r.log.Info("evicted idle sessions", "count", n)
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ClearCart and ResetCheckout let the confirmation step clean up after an
// order.
func (r *Registry) ClearCart(ctx context.Context, userID string) error {
	s, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	return s.Cart.ClearCart(ctx)
}

func (r *Registry) ResetCheckout(ctx context.Context, userID string) error {
	s, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	return s.Checkout.Reset(ctx)
}

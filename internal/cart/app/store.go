package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("cart item not found")
	// ErrItemPending is returned when an item is mutated while its creation
	// is still in flight.
	ErrItemPending = errors.New("cart item is still being added")
	// ErrDetached is returned when the store was detached while a remote
	// call was in flight; the response was discarded.
	ErrDetached = errors.New("cart store detached")
	// ErrOutcomeUnknown is wrapped by RemoteCart implementations when the
	// service accepted a call but its answer could not be read.
	ErrOutcomeUnknown = errors.New("remote cart outcome unknown")
)

type Status string

const (
	StatusIdle     Status = "idle"
	StatusMutating Status = "mutating"
	StatusFailed   Status = "failed"
)

type Product struct {
	ID    string `validate:"required"`
	Price decimal.Decimal
	Stock int `validate:"gte=0"`
}

type Variant struct {
	ID    string `validate:"required"`
	Price *decimal.Decimal
	Stock int `validate:"gte=0"`
}

type AddRequest struct {
	Product  Product
	Variant  *Variant
	Quantity int    `validate:"gte=1"`
	Size     string `validate:"max=32"`
	Color    string `validate:"max=32"`
}

func (r AddRequest) key() domain.Key {
	k := domain.Key{ProductID: r.Product.ID}
	if r.Variant != nil {
		k.VariantID = r.Variant.ID
	}
	return k
}

func (r AddRequest) unitPrice() decimal.Decimal {
	if r.Variant != nil && r.Variant.Price != nil {
		return *r.Variant.Price
	}
	return r.Product.Price
}

func (r AddRequest) stock() int {
	if r.Variant != nil {
		return r.Variant.Stock
	}
	return r.Product.Stock
}

// Snapshot is a point-in-time copy of the store.
type Snapshot struct {
	Items  []domain.CartItem
	Status Status
	Err    error
}

func (s Snapshot) Subtotal() decimal.Decimal { return domain.Subtotal(s.Items) }

func (s Snapshot) Count() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

func (s Snapshot) HasPending() bool {
	return slices.ContainsFunc(s.Items, domain.CartItem.Pending)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Store is one shopper's cart: a local cache of the remote cart service,
// mutated optimistically and reconciled after every remote call.
type Store struct {
	userID string
	remote RemoteCart
	log    *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	items    []domain.CartItem
	limits   map[domain.Key]int
	status   Status
	err      error
	inflight int
	gen      uint64
	detached bool
}

func NewStore(userID string, remote RemoteCart, log *slog.Logger) *Store {
	return &Store{
		userID: userID,
		remote: remote,
		log:    logger.OrDefault(log).With("component", "cart", "user_id", userID),
		now:    time.Now,
		limits: make(map[domain.Key]int),
		status: StatusIdle,
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Items:  slices.Clone(s.items),
		Status: s.status,
		Err:    s.err,
	}
}

// Detach marks the store as gone. Responses that arrive afterwards are
// dropped instead of applied.
func (s *Store) Detach() {
	s.mu.Lock()
	s.detached = true
	s.mu.Unlock()
}

func (s *Store) AddToCart(ctx context.Context, req AddRequest) (domain.CartItem, error) {
	if err := validateAdd(req); err != nil {
		return domain.CartItem{}, err
	}
	key := req.key()

	s.mu.Lock()
	if s.detached {
		s.mu.Unlock()
		return domain.CartItem{}, ErrDetached
	}
	s.limits[key] = req.stock()

	if idx := s.indexByKeyLocked(key); idx >= 0 {
		existing := s.items[idx]
		s.mu.Unlock()
		if existing.Pending() {
			return domain.CartItem{}, ErrItemPending
		}
		return s.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+req.Quantity)
	}

	tentative := domain.CartItem{
		ID:            uuid.NewString(),
		State:         domain.ItemPending,
		ProductID:     key.ProductID,
		VariantID:     key.VariantID,
		Quantity:      req.Quantity,
		UnitPrice:     req.unitPrice(),
		SelectedSize:  req.Size,
		SelectedColor: req.Color,
		AddedAt:       s.now(),
	}
	s.items = append(s.items, tentative)
	s.beginLocked()
	s.mu.Unlock()

	created, err := s.remote.CreateItem(ctx, s.userID, NewItem{
		ProductID:     tentative.ProductID,
		VariantID:     tentative.VariantID,
		Quantity:      tentative.Quantity,
		Price:         tentative.UnitPrice,
		SelectedSize:  tentative.SelectedSize,
		SelectedColor: tentative.SelectedColor,
	})

	s.mu.Lock()
	if s.detached {
		s.finishLocked(ErrDetached)
		s.mu.Unlock()
		return domain.CartItem{}, ErrDetached
	}
	idx := s.indexByIDLocked(tentative.ID)
	if err != nil {
		if idx >= 0 {
			s.items = slices.Delete(s.items, idx, idx+1)
		}
		if errors.Is(err, ErrOutcomeUnknown) {
			// The item may exist remotely; only a reload can tell.
			s.mu.Unlock()
			s.log.Warn("add to cart outcome unknown, reloading", "product_id", key.ProductID, "variant_id", key.VariantID, "err", err)
			return domain.CartItem{}, s.fail(ctx, "add", fmt.Errorf("add to cart: %w", err))
		}
		s.finishLocked(err)
		s.mu.Unlock()
		s.log.Warn("add to cart failed", "product_id", key.ProductID, "variant_id", key.VariantID, "err", err)
		return domain.CartItem{}, fmt.Errorf("add to cart: %w", err)
	}

	confirmed := mergeConfirmed(created, tentative)
	if idx < 0 {
		// The tentative line was swept by a clear or reload while the
		// create was in flight; only the server knows the outcome now.
		s.mu.Unlock()
		rerr := s.resync(ctx, "add")
		s.mu.Lock()
		s.finishLocked(rerr)
		s.mu.Unlock()
		return confirmed, rerr
	}
	s.items[idx] = confirmed
	s.finishLocked(nil)
	s.mu.Unlock()
	return confirmed, nil
}

func (s *Store) RemoveFromCart(ctx context.Context, itemID string) error {
	s.mu.Lock()
	if s.detached {
		s.mu.Unlock()
		return ErrDetached
	}
	idx, err := s.mutableIndexLocked(itemID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	s.beginLocked()
	s.mu.Unlock()

	if err := s.remote.DeleteItem(ctx, s.userID, itemID); err != nil {
		s.log.Warn("remove from cart failed, reloading", "item_id", itemID, "err", err)
		return s.fail(ctx, "remove", fmt.Errorf("remove from cart: %w", err))
	}
	return s.done()
}

func (s *Store) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (domain.CartItem, error) {
	if quantity <= 0 {
		return domain.CartItem{}, s.RemoveFromCart(ctx, itemID)
	}

	s.mu.Lock()
	if s.detached {
		s.mu.Unlock()
		return domain.CartItem{}, ErrDetached
	}
	idx, err := s.mutableIndexLocked(itemID)
	if err != nil {
		s.mu.Unlock()
		return domain.CartItem{}, err
	}
	prev := s.items[idx]
	if limit, ok := s.limits[prev.Key()]; ok && quantity > limit {
		s.mu.Unlock()
		return domain.CartItem{}, fmt.Errorf("%w: quantity %d exceeds stock %d", ErrInvalidInput, quantity, limit)
	}
	s.items[idx].Quantity = quantity
	s.beginLocked()
	s.mu.Unlock()

	updated, err := s.remote.UpdateItem(ctx, s.userID, itemID, quantity)
	if err != nil {
		s.log.Warn("update quantity failed, reloading", "item_id", itemID, "quantity", quantity, "err", err)
		return domain.CartItem{}, s.fail(ctx, "update", fmt.Errorf("update quantity: %w", err))
	}

	s.mu.Lock()
	if s.detached {
		s.finishLocked(ErrDetached)
		s.mu.Unlock()
		return domain.CartItem{}, ErrDetached
	}
	updated = mergeConfirmed(updated, prev)
	if idx := s.indexByIDLocked(itemID); idx >= 0 {
		s.items[idx] = updated
	}
	s.finishLocked(nil)
	s.mu.Unlock()
	return updated, nil
}

func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	if s.detached {
		s.mu.Unlock()
		return ErrDetached
	}
	s.items = nil
	s.beginLocked()
	s.mu.Unlock()

	if err := s.remote.ClearCart(ctx, s.userID); err != nil {
		s.log.Warn("clear cart failed, reloading", "err", err)
		return s.fail(ctx, "clear", fmt.Errorf("clear cart: %w", err))
	}
	return s.done()
}

// LoadCart replaces local state with the remote cart.
func (s *Store) LoadCart(ctx context.Context) error {
	s.mu.Lock()
	if s.detached {
		s.mu.Unlock()
		return ErrDetached
	}
	s.beginLocked()
	s.mu.Unlock()

	err := s.resync(ctx, "load")

	s.mu.Lock()
	s.finishLocked(err)
	s.mu.Unlock()
	return err
}

// fail reloads the remote cart after a failed mutation and finishes the
// operation with cause. A failed reload is logged; cause is still returned.
func (s *Store) fail(ctx context.Context, op string, cause error) error {
	_ = s.resync(ctx, op)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked(cause)
	return cause
}

// done finishes a remove or clear the remote side already applied. The
// local change was made up front, so a detached store has nothing to drop.
func (s *Store) done() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked(nil)
	return nil
}

// resync fetches the remote cart and replaces local state, unless a newer
// reload started meanwhile or the store was detached.
func (s *Store) resync(ctx context.Context, op string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	items, err := s.remote.GetCart(ctx, s.userID)
	if err != nil {
		s.log.Warn("reload cart failed", "op", op, "err", err)
		return fmt.Errorf("load cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached {
		return ErrDetached
	}
	if gen != s.gen {
		s.log.Debug("dropping stale cart reload", "op", op)
		return nil
	}
	s.items = make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		it.State = domain.ItemConfirmed
		s.items = append(s.items, it)
	}
	return nil
}

func (s *Store) beginLocked() {
	s.inflight++
	s.status = StatusMutating
	s.err = nil
}

func (s *Store) finishLocked(err error) {
	if s.inflight > 0 {
		s.inflight--
	}
	if err != nil {
		s.err = err
	}
	if s.inflight > 0 {
		return
	}
	if s.err != nil {
		s.status = StatusFailed
	} else {
		s.status = StatusIdle
	}
}

func (s *Store) indexByIDLocked(id string) int {
	return slices.IndexFunc(s.items, func(it domain.CartItem) bool { return it.ID == id })
}

func (s *Store) indexByKeyLocked(k domain.Key) int {
	return slices.IndexFunc(s.items, func(it domain.CartItem) bool { return it.Key() == k })
}

func (s *Store) mutableIndexLocked(itemID string) (int, error) {
	idx := s.indexByIDLocked(itemID)
	if idx < 0 {
		return -1, ErrNotFound
	}
	if s.items[idx].Pending() {
		return -1, ErrItemPending
	}
	return idx, nil
}

// mergeConfirmed takes the server item as authoritative and fills the
// fields it left blank from the local copy.
func mergeConfirmed(server, local domain.CartItem) domain.CartItem {
	server.State = domain.ItemConfirmed
	if server.ID == "" {
		server.ID = local.ID
	}
	if server.ProductID == "" {
		server.ProductID = local.ProductID
		server.VariantID = local.VariantID
	}
	if server.Quantity == 0 {
		server.Quantity = local.Quantity
	}
	if server.UnitPrice.IsZero() {
		server.UnitPrice = local.UnitPrice
	}
	if server.SelectedSize == "" {
		server.SelectedSize = local.SelectedSize
	}
	if server.SelectedColor == "" {
		server.SelectedColor = local.SelectedColor
	}
	if server.AddedAt.IsZero() {
		server.AddedAt = local.AddedAt
	}
	return server
}

func validateAdd(req AddRequest) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed on %q", ErrInvalidInput, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !req.unitPrice().IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if req.Quantity > req.stock() {
		return fmt.Errorf("%w: quantity %d exceeds stock %d", ErrInvalidInput, req.Quantity, req.stock())
	}
	return nil
}

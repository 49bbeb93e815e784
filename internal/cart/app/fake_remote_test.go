package app_test

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

// fakeRemote is an in-memory cart service. Hooks run without the lock held
// so they may call back into the store.
type fakeRemote struct {
	mu     sync.Mutex
	seq    int
	server []domain.CartItem

	createErr error
	updateErr error
	deleteErr error
	clearErr  error
	getErr    error

	onCreate func()
	onDelete func()
	onClear  func()
	onGet    func(call int)

	creates, updates, deletes, clears, gets int
}

func (f *fakeRemote) CreateItem(ctx context.Context, userID string, in app.NewItem) (domain.CartItem, error) {
	f.mu.Lock()
	f.creates++
	hook, err := f.onCreate, f.createErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return domain.CartItem{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	it := domain.CartItem{
		ID:            fmt.Sprintf("srv-%d", f.seq),
		ProductID:     in.ProductID,
		VariantID:     in.VariantID,
		Quantity:      in.Quantity,
		UnitPrice:     in.Price,
		SelectedSize:  in.SelectedSize,
		SelectedColor: in.SelectedColor,
	}
	f.server = append(f.server, it)
	return it, nil
}

func (f *fakeRemote) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return domain.CartItem{}, f.updateErr
	}
	for i := range f.server {
		if f.server[i].ID == itemID {
			f.server[i].Quantity = quantity
			return f.server[i], nil
		}
	}
	return domain.CartItem{}, fmt.Errorf("item %s not found", itemID)
}

func (f *fakeRemote) DeleteItem(ctx context.Context, userID, itemID string) error {
	f.mu.Lock()
	hook := f.onDelete
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.server = slices.DeleteFunc(f.server, func(it domain.CartItem) bool { return it.ID == itemID })
	return nil
}

func (f *fakeRemote) GetCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	f.mu.Lock()
	f.gets++
	call := f.gets
	items := slices.Clone(f.server)
	hook, err := f.onGet, f.getErr
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *fakeRemote) ClearCart(ctx context.Context, userID string) error {
	f.mu.Lock()
	hook := f.onClear
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.server = nil
	return nil
}

func (f *fakeRemote) set(fn func(f *fakeRemote)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/shopspring/decimal"
)

// NewItem is the payload of the remote "create cart item" call.
type NewItem struct {
	ProductID     string
	VariantID     string
	Quantity      int
	Price         decimal.Decimal
	SelectedSize  string
	SelectedColor string
}

// RemoteCart is the authoritative cart service. Returned items are always
// confirmed.
type RemoteCart interface {
	CreateItem(ctx context.Context, userID string, in NewItem) (domain.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID string, quantity int) (domain.CartItem, error)
	DeleteItem(ctx context.Context, userID, itemID string) error
	GetCart(ctx context.Context, userID string) ([]domain.CartItem, error)
	ClearCart(ctx context.Context, userID string) error
}

package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/httpjson"
	"github.com/dwikikusuma/storefront/pkg/identity"
	"github.com/shopspring/decimal"
)

type itemDTO struct {
	ID            httpjson.ID     `json:"id"`
	ProductID     httpjson.ID     `json:"productId"`
	VariantID     httpjson.ID     `json:"variantId,omitempty"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor string          `json:"selectedColor,omitempty"`
	AddedAt       time.Time       `json:"addedAt"`
}

type createDTO struct {
	ProductID     string          `json:"productId"`
	VariantID     string          `json:"variantId,omitempty"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor string          `json:"selectedColor,omitempty"`
}

type cartDTO struct {
	Items []itemDTO `json:"items"`
}

// Client implements app.RemoteCart against the cart service REST API.
type Client struct {
	c *httpjson.Client
}

var _ app.RemoteCart = (*Client)(nil)

func NewClient(c *httpjson.Client) *Client {
	return &Client{c: c}
}

func (r *Client) CreateItem(ctx context.Context, userID string, in app.NewItem) (domain.CartItem, error) {
	body := createDTO{
		ProductID:     in.ProductID,
		VariantID:     in.VariantID,
		Quantity:      in.Quantity,
		Price:         in.Price.Round(2),
		SelectedSize:  in.SelectedSize,
		SelectedColor: in.SelectedColor,
	}
	var out itemDTO
	if err := r.c.Do(ctx, http.MethodPost, "/cart/items", userHeader(userID), body, &out); err != nil {
		return domain.CartItem{}, remoteErr(err)
	}
	return toDomain(out), nil
}

func (r *Client) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (domain.CartItem, error) {
	body := struct {
		Quantity int `json:"quantity"`
	}{quantity}
	var out itemDTO
	if err := r.c.Do(ctx, http.MethodPatch, itemPath(itemID), userHeader(userID), body, &out); err != nil {
		return domain.CartItem{}, remoteErr(err)
	}
	return toDomain(out), nil
}

func (r *Client) DeleteItem(ctx context.Context, userID, itemID string) error {
	return r.c.Do(ctx, http.MethodDelete, itemPath(itemID), userHeader(userID), nil, nil)
}

func (r *Client) GetCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	var out cartDTO
	if err := r.c.Do(ctx, http.MethodGet, "/cart", userHeader(userID), nil, &out); err != nil {
		return nil, remoteErr(err)
	}
	items := make([]domain.CartItem, 0, len(out.Items))
	for _, it := range out.Items {
		items = append(items, toDomain(it))
	}
	return items, nil
}

func (r *Client) ClearCart(ctx context.Context, userID string) error {
	return r.c.Do(ctx, http.MethodDelete, "/cart", userHeader(userID), nil, nil)
}

// remoteErr flags a 2xx answer we could not read: the cart service applied
// the change, the store has to reload to learn how.
func remoteErr(err error) error {
	if errors.Is(err, httpjson.ErrDecode) {
		return fmt.Errorf("%w: %w", app.ErrOutcomeUnknown, err)
	}
	return err
}

func itemPath(id string) string {
	return "/cart/items/" + url.PathEscape(id)
}

func userHeader(userID string) http.Header {
	h := make(http.Header, 1)
	h.Set(identity.Header, userID)
	return h
}

func toDomain(d itemDTO) domain.CartItem {
	return domain.CartItem{
		ID:            d.ID.String(),
		State:         domain.ItemConfirmed,
		ProductID:     d.ProductID.String(),
		VariantID:     d.VariantID.String(),
		Quantity:      d.Quantity,
		UnitPrice:     d.Price,
		SelectedSize:  d.SelectedSize,
		SelectedColor: d.SelectedColor,
		AddedAt:       d.AddedAt,
	}
}

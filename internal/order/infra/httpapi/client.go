package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/httpjson"
	"github.com/google/uuid"
)

const idempotencyHeader = "Idempotency-Key"

type intentDTO struct {
	ClientSecret    string      `json:"clientSecret"`
	OrderID         httpjson.ID `json:"orderId"`
	PaymentIntentID httpjson.ID `json:"paymentIntentId"`
	Status          string      `json:"status"`
}

type confirmDTO struct {
	PaymentIntentID string `json:"paymentIntentId"`
	OrderID         string `json:"orderId"`
}

type confirmResultDTO struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client implements app.Backend over the order backend's REST API.
type Client struct {
	c *httpjson.Client
}

var _ app.Backend = (*Client)(nil)

func NewClient(c *httpjson.Client) *Client {
	return &Client{c: c}
}

// CreateIntent sends a fresh idempotency key: every attempt is a new intent.
func (r *Client) CreateIntent(ctx context.Context, req domain.IntentRequest) (domain.Intent, error) {
	h := http.Header{}
	h.Set(idempotencyHeader, uuid.NewString())

	var out intentDTO
	if err := r.c.Do(ctx, http.MethodPost, "/payment/create-intent", h, req, &out); err != nil {
		return domain.Intent{}, remote(err)
	}
	return domain.Intent{
		OrderID:         out.OrderID.String(),
		PaymentIntentID: out.PaymentIntentID.String(),
		ClientSecret:    out.ClientSecret,
		Status:          domain.Status(out.Status),
	}, nil
}

// Confirm keys the call on the payment intent so a manual repeat is
// deduplicated by the backend.
func (r *Client) Confirm(ctx context.Context, paymentIntentID, orderID string) (app.ConfirmResult, error) {
	h := http.Header{}
	h.Set(idempotencyHeader, "confirm-"+paymentIntentID)

	var out confirmResultDTO
	body := confirmDTO{PaymentIntentID: paymentIntentID, OrderID: orderID}
	if err := r.c.Do(ctx, http.MethodPost, "/payment/confirm", h, body, &out); err != nil {
		return app.ConfirmResult{}, remote(err)
	}
	return app.ConfirmResult{
		Success: out.Success,
		Status:  domain.Status(out.Status),
		Message: out.Message,
	}, nil
}

func remote(err error) error {
	var se *httpjson.StatusError
	if errors.As(err, &se) {
		return &app.RemoteError{Status: se.Code, Message: se.Message}
	}
	return err
}

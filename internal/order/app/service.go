package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrIncompleteIntent = errors.New("payment intent response is incomplete")
	ErrNotConfirmed     = errors.New("order was not confirmed")
)

// RemoteError carries the backend's own message so it can be shown as is.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("order backend: %d: %s", e.Status, e.Message)
}

type Service struct {
	backend Backend
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// CreateIntent checks the payload, calls the backend and insists on all
// three identifiers in the answer.
func (s *Service) CreateIntent(ctx context.Context, req domain.IntentRequest) (domain.Intent, error) {
	if err := validateRequest(req); err != nil {
		return domain.Intent{}, err
	}

	intent, err := s.backend.CreateIntent(ctx, req)
	if err != nil {
		return domain.Intent{}, err
	}
	if !intent.Complete() {
		return domain.Intent{}, ErrIncompleteIntent
	}
	if intent.Status == "" {
		intent.Status = domain.StatusAwaitingPayment
	}
	return intent, nil
}

// Confirm asks the backend to mark the order paid. A response without
// success is an error.
func (s *Service) Confirm(ctx context.Context, paymentIntentID, orderID string) error {
	if paymentIntentID == "" || orderID == "" {
		return ErrInvalidInput
	}
	res, err := s.backend.Confirm(ctx, paymentIntentID, orderID)
	if err != nil {
		return err
	}
	if !res.Success {
		if res.Message != "" {
			return fmt.Errorf("%w: %s", ErrNotConfirmed, res.Message)
		}
		return ErrNotConfirmed
	}
	return nil
}

func validateRequest(req domain.IntentRequest) error {
	if req.ClientID == "" {
		return fmt.Errorf("%w: client id is required", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidInput)
	}

	subtotal := decimal.Zero
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive, got %d", ErrInvalidInput, i, item.Quantity)
		}
		line, err := decimal.NewFromString(item.LineTotal.String())
		if err != nil || line.IsNegative() {
			return fmt.Errorf("%w: item %d: line total %q", ErrInvalidInput, i, item.LineTotal)
		}
		subtotal = subtotal.Add(line)
	}

	parsed := make(map[string]decimal.Decimal, 4)
	for _, a := range []struct {
		name  string
		value string
	}{
		{"subtotal", req.Totals.Subtotal.String()},
		{"shipping", req.Totals.Shipping.String()},
		{"tax", req.Totals.Tax.String()},
		{"total", req.Totals.Total.String()},
	} {
		d, err := decimal.NewFromString(a.value)
		if err != nil || d.IsNegative() {
			return fmt.Errorf("%w: %s %q", ErrInvalidInput, a.name, a.value)
		}
		parsed[a.name] = d
	}

	if !parsed["subtotal"].Equal(subtotal) {
		return fmt.Errorf("%w: subtotal %s does not match items %s", ErrInvalidInput, parsed["subtotal"], subtotal)
	}
	want := parsed["subtotal"].Add(parsed["shipping"]).Add(parsed["tax"])
	if !parsed["total"].Equal(want) {
		return fmt.Errorf("%w: total %s does not add up to %s", ErrInvalidInput, parsed["total"], want)
	}
	return nil
}

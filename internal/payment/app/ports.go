package app

import (
	"context"
	"fmt"

	"github.com/dwikikusuma/storefront/internal/order/domain"
)

// IntentSucceeded is the gateway status of a captured payment.
const IntentSucceeded = "succeeded"

// OrderBackend creates the order with its payment intent and confirms it
// once the gateway captured the payment.
type OrderBackend interface {
	CreateIntent(ctx context.Context, req domain.IntentRequest) (domain.Intent, error)
	Confirm(ctx context.Context, paymentIntentID, orderID string) error
}

// Credential is the tokenized card reference produced by the payment
// widget in the browser.
type Credential struct {
	PaymentMethodID string
}

type Billing struct {
	Name        string
	Email       string
	Phone       string
	Line1       string
	PostalCode  string
	City        string
	CountryCode string
}

type PaymentIntent struct {
	ID     string
	Status string
}

// GatewayError is a refusal reported by the gateway itself, such as a
// declined card.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway: %s: %s", e.Code, e.Message)
}

// Gateway is the external payment gateway.
type Gateway interface {
	// Ready reports whether the gateway client is configured and loaded.
	Ready() bool
	ConfirmCardPayment(ctx context.Context, clientSecret string, cred Credential, billing Billing) (PaymentIntent, error)
}

package domain

import (
	"encoding/json"
	"fmt"
)

// Status is the order backend's view of an order. The storefront never sets
// it; it only mirrors what the create and confirm calls imply.
type Status string

const (
	StatusCreated         Status = "CREATED"
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusPaid            Status = "PAID"
	StatusConfirmed       Status = "CONFIRMED"
	StatusFailed          Status = "FAILED"
)

// AllowedTransitions is the order flow as seen from the storefront.
var AllowedTransitions = map[Status][]Status{
	StatusCreated:         {StatusAwaitingPayment, StatusFailed},
	StatusAwaitingPayment: {StatusPaid, StatusFailed},
	StatusPaid:            {StatusConfirmed},
	StatusConfirmed:       {},
	StatusFailed:          {},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("order status %s -> %s is not allowed", from, to)
	}
	return nil
}

func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// Intent is what the backend returns when it creates an order together with
// its payment intent. ClientSecret authorises exactly one confirmation with
// the payment gateway.
type Intent struct {
	OrderID         string
	PaymentIntentID string
	ClientSecret    string
	Status          Status
}

// Complete reports whether all three identifiers came back.
func (i Intent) Complete() bool {
	return i.OrderID != "" && i.PaymentIntentID != "" && i.ClientSecret != ""
}

type Item struct {
	ID            string      `json:"id"`
	ProductID     string      `json:"productId"`
	VariantID     string      `json:"variantId,omitempty"`
	Quantity      int         `json:"quantity"`
	UnitPrice     json.Number `json:"unitPrice"`
	LineTotal     json.Number `json:"lineTotal"`
	SelectedSize  string      `json:"selectedSize,omitempty"`
	SelectedColor string      `json:"selectedColor,omitempty"`
}

type Totals struct {
	Subtotal json.Number `json:"subtotal"`
	Shipping json.Number `json:"shipping"`
	Tax      json.Number `json:"tax"`
	Total    json.Number `json:"total"`
}

type Customer struct {
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone"`
}

// IntentRequest is the normalized create-intent payload.
type IntentRequest struct {
	ClientID       string   `json:"clientId"`
	FormData       Customer `json:"formData"`
	ShippingMethod string   `json:"shippingMethod"`
	PaymentMethod  string   `json:"paymentMethod"`
	Items          []Item   `json:"items"`
	Totals         Totals   `json:"totals"`
}

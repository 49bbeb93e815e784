package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Step int

const (
	StepContactAddress Step = iota + 1
	StepShipping
	StepPayment
)

const FirstStep, LastStep = StepContactAddress, StepPayment

func (s Step) Valid() bool { return s >= FirstStep && s <= LastStep }

func (s Step) String() string {
	switch s {
	case StepContactAddress:
		return "contact_address"
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

const PaymentMethodCard = "card"

type FormData struct {
	Email string `json:"email"`

	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`

	ShippingMethod string `json:"shippingMethod"`
	PaymentMethod  string `json:"paymentMethod"`
}

// Patch is a partial FormData update; nil fields are left untouched.
type Patch struct {
	Email          *string `json:"email"`
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	Address1       *string `json:"address1"`
	Address2       *string `json:"address2"`
	PostalCode     *string `json:"postalCode"`
	City           *string `json:"city"`
	Country        *string `json:"country"`
	Phone          *string `json:"phone"`
	ShippingMethod *string `json:"shippingMethod"`
	PaymentMethod  *string `json:"paymentMethod"`
}

// Apply writes the set fields into f and returns their JSON names.
func (p Patch) Apply(f *FormData) []string {
	var touched []string
	set := func(name string, src *string, dst *string) {
		if src != nil {
			*dst = *src
			touched = append(touched, name)
		}
	}
	set("email", p.Email, &f.Email)
	set("firstName", p.FirstName, &f.FirstName)
	set("lastName", p.LastName, &f.LastName)
	set("address1", p.Address1, &f.Address1)
	set("address2", p.Address2, &f.Address2)
	set("postalCode", p.PostalCode, &f.PostalCode)
	set("city", p.City, &f.City)
	set("country", p.Country, &f.Country)
	set("phone", p.Phone, &f.Phone)
	set("shippingMethod", p.ShippingMethod, &f.ShippingMethod)
	set("paymentMethod", p.PaymentMethod, &f.PaymentMethod)
	return touched
}

var fieldOwner = map[string]Step{
	"email":          StepContactAddress,
	"firstName":      StepContactAddress,
	"lastName":       StepContactAddress,
	"address1":       StepContactAddress,
	"address2":       StepContactAddress,
	"postalCode":     StepContactAddress,
	"city":           StepContactAddress,
	"country":        StepContactAddress,
	"phone":          StepContactAddress,
	"shippingMethod": StepShipping,
	"paymentMethod":  StepPayment,
}

// OwnerOf returns the step that owns a form field.
func OwnerOf(field string) (Step, bool) {
	s, ok := fieldOwner[field]
	return s, ok
}

// FieldErrors maps a field's JSON name to a message.
type FieldErrors map[string]string

// Draft is the durable part of a wizard.
type Draft struct {
	Form      FormData  `json:"form"`
	Step      Step      `json:"step"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Line is the part of a cart item the summary needs.
type Line struct {
	ProductID string
	VariantID string
	Quantity  int
	UnitPrice decimal.Decimal
}

type Summary struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal

	ShippingMethod string
	// ShippingAtDestination is set when the selected option has no fixed
	// price; Shipping is then zero.
	ShippingAtDestination bool
}

// ComputeSummary derives the order totals. All amounts are rounded to cents.
func ComputeSummary(lines []Line, shipping, taxRate decimal.Decimal) Summary {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2))
	}
	shipping = shipping.Round(2)
	tax := subtotal.Add(shipping).Mul(taxRate).Round(2)
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

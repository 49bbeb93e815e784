package app

import (
	"errors"
	"fmt"
	"strings"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	checkoutdomain "github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/dwikikusuma/storefront/pkg/identity"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/shopspring/decimal"
)

var errPendingItems = errors.New("cart has items that are still being saved")

// CountryLookup maps a free-text country to its ISO code.
type CountryLookup interface {
	CountryCode(name string) (string, error)
}

// Order is the cart snapshot and checkout data a payment is made for.
type Order struct {
	User    identity.User
	Items   []cartdomain.CartItem
	Form    checkoutdomain.FormData
	Summary checkoutdomain.Summary
}

// Normalize builds the create-intent payload. It is pure: the same Order
// always yields the same payload, and therefore the same JSON bytes.
func Normalize(o Order, countries CountryLookup) (domain.IntentRequest, error) {
	code, err := countries.CountryCode(o.Form.Country)
	if err != nil {
		return domain.IntentRequest{}, fmt.Errorf("country %q: %w", o.Form.Country, err)
	}

	items := make([]domain.Item, 0, len(o.Items))
	subtotal := decimal.Zero
	for _, it := range o.Items {
		if it.Pending() {
			return domain.IntentRequest{}, errPendingItems
		}
		if it.Quantity <= 0 {
			return domain.IntentRequest{}, fmt.Errorf("item %s: quantity %d", it.ID, it.Quantity)
		}
		line := money.Line(it.UnitPrice, it.Quantity)
		subtotal = subtotal.Add(line)
		items = append(items, domain.Item{
			ID:            canonical(it.ID),
			ProductID:     canonical(it.ProductID),
			VariantID:     canonical(it.VariantID),
			Quantity:      it.Quantity,
			UnitPrice:     money.Number(money.Round(it.UnitPrice)),
			LineTotal:     money.Number(line),
			SelectedSize:  strings.TrimSpace(it.SelectedSize),
			SelectedColor: strings.TrimSpace(it.SelectedColor),
		})
	}

	shipping := money.Round(o.Summary.Shipping)
	tax := money.Round(o.Summary.Tax)
	f := o.Form
	return domain.IntentRequest{
		ClientID: canonical(o.User.ID),
		FormData: domain.Customer{
			Email:       strings.ToLower(strings.TrimSpace(f.Email)),
			FirstName:   strings.TrimSpace(f.FirstName),
			LastName:    strings.TrimSpace(f.LastName),
			Address1:    strings.TrimSpace(f.Address1),
			Address2:    strings.TrimSpace(f.Address2),
			PostalCode:  strings.TrimSpace(f.PostalCode),
			City:        strings.TrimSpace(f.City),
			Country:     strings.TrimSpace(f.Country),
			CountryCode: code,
			Phone:       strings.TrimSpace(f.Phone),
		},
		ShippingMethod: canonical(f.ShippingMethod),
		PaymentMethod:  strings.ToLower(canonical(f.PaymentMethod)),
		Items:          items,
		Totals: domain.Totals{
			Subtotal: money.Number(subtotal),
			Shipping: money.Number(shipping),
			Tax:      money.Number(tax),
			Total:    money.Number(subtotal.Add(shipping).Add(tax)),
		},
	}, nil
}

// BillingFor derives the gateway billing details from a normalized payload.
func BillingFor(req domain.IntentRequest) Billing {
	c := req.FormData
	return Billing{
		Name:        strings.TrimSpace(c.FirstName + " " + c.LastName),
		Email:       c.Email,
		Phone:       c.Phone,
		Line1:       c.Address1,
		PostalCode:  c.PostalCode,
		City:        c.City,
		CountryCode: c.CountryCode,
	}
}

func canonical(id string) string {
	return strings.TrimSpace(id)
}

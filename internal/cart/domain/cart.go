package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemState tells a tentative line apart from one the cart service has
// acknowledged. A pending item's ID is a provisional key that never leaves
// the store.
type ItemState string

const (
	ItemPending   ItemState = "pending"
	ItemConfirmed ItemState = "confirmed"
)

// Key identifies a line: at most one item per product/variant pair.
type Key struct {
	ProductID string
	VariantID string
}

type CartItem struct {
	ID            string
	State         ItemState
	ProductID     string
	VariantID     string
	Quantity      int
	UnitPrice     decimal.Decimal
	SelectedSize  string
	SelectedColor string
	AddedAt       time.Time
}

func (i CartItem) Key() Key {
	return Key{ProductID: i.ProductID, VariantID: i.VariantID}
}

func (i CartItem) Pending() bool {
	return i.State == ItemPending
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}

// Subtotal sums the line totals of items.
func Subtotal(items []CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

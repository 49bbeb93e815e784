package domain

import "github.com/shopspring/decimal"

type Variant struct {
	ID    string
	Size  string
	Color string
	// Price overrides the product price when set.
	Price *decimal.Decimal
	Stock int
}

type Product struct {
	ID          string
	Name        string
	Description string
	Currency    string
	Price       decimal.Decimal
	Stock       int
	Variants    []Variant
}

func (p Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// UnitPrice is the price of the variant, or of the product when the
// variant carries no override.
func (p Product) UnitPrice(v *Variant) decimal.Decimal {
	if v != nil && v.Price != nil {
		return *v.Price
	}
	return p.Price
}

// Available is the purchasable stock for the variant, or for the product
// when no variant is given.
func (p Product) Available(v *Variant) int {
	if v != nil {
		return v.Stock
	}
	return p.Stock
}

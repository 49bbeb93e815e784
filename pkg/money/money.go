// Package money holds the decimal conventions shared by the checkout
// pipeline: amounts are shopspring decimals, rounded to cents before they
// leave the process and rendered as plain JSON numbers.
package money

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const Places = 2

// Round rounds half away from zero to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Number renders d as a JSON number with exactly two decimals.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(Places))
}

// Parse reads a decimal string; empty input is zero.
func Parse(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// MustParse is for constants and tests.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Line multiplies a unit price by a quantity and rounds to cents.
func Line(unit decimal.Decimal, qty int) decimal.Decimal {
	return Round(unit.Mul(decimal.NewFromInt(int64(qty))))
}

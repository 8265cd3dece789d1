// Package money holds the rounding and display rules shared by every price
// computed in the storefront. Amounts are carried as decimal.Decimal at full
// precision and only rounded when they are finalized.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Places is the number of fraction digits of a finalized amount.
const Places = 2

var ErrInvalidAmount = errors.New("amount must be a finite, non-negative number")

// Round rounds half away from zero to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// FromFloat converts a float coming from the outside (JSON, catalog) into a
// decimal. NaN and infinities are rejected.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrInvalidAmount
	}
	return decimal.NewFromFloat(f), nil
}

// NonNegative returns ErrInvalidAmount when d is below zero.
func NonNegative(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Float returns the rounded amount as float64, used for transfer payloads.
func Float(d decimal.Decimal) float64 {
	return Round(d).InexactFloat64()
}

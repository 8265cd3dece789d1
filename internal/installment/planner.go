// Package installment computes the credit card financing options offered at
// checkout. The fee is a linear surcharge on the whole total, 5% per extra
// installment. The monthly value divides the financed total before it is
// rounded and is rounded on its own, so MonthlyValue × Count may be a few
// cents away from TotalWithFee.
package installment

import (
	"errors"

	"github.com/fjod/go_bookstore/pkg/money"
	"github.com/shopspring/decimal"
)

const MaxCount = 12

var (
	feeStep = decimal.RequireFromString("0.05")

	ErrCountOutOfRange = errors.New("installment count must be between 1 and 12")
)

// Option is one financing choice. It is derived from a total and never stored.
type Option struct {
	Count        int             `json:"installments"`
	FeeFraction  decimal.Decimal `json:"fee_fraction"`
	MonthlyValue decimal.Decimal `json:"value"`
	TotalWithFee decimal.Decimal `json:"total_with_fee"`
}

// FeeFraction is (count-1) × 0.05.
func FeeFraction(count int) decimal.Decimal {
	return feeStep.Mul(decimal.NewFromInt(int64(count - 1)))
}

// Plan returns the MaxCount options for total, ordered by count.
func Plan(total decimal.Decimal) ([]Option, error) {
	if err := money.NonNegative(total); err != nil {
		return nil, err
	}

	options := make([]Option, MaxCount)
	for i := range options {
		options[i] = option(total, i+1)
	}
	return options, nil
}

// Select returns the option for count without building the whole plan.
func Select(total decimal.Decimal, count int) (Option, error) {
	if err := money.NonNegative(total); err != nil {
		return Option{}, err
	}
	if !ValidCount(count) {
		return Option{}, ErrCountOutOfRange
	}
	return option(total, count), nil
}

func ValidCount(count int) bool {
	return count >= 1 && count <= MaxCount
}

func option(total decimal.Decimal, count int) Option {
	fee := FeeFraction(count)
	// Both values come from the unrounded financed total.
	raw := total.Mul(decimal.NewFromInt(1).Add(fee))

	return Option{
		Count:        count,
		FeeFraction:  fee,
		MonthlyValue: money.Round(raw.Div(decimal.NewFromInt(int64(count)))),
		TotalWithFee: money.Round(raw),
	}
}

package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	msgCouponApplied = "Cupom aplicado com sucesso! (-%s%%)"
	msgCouponInvalid = "Cupom inválido."
)

var coupons = map[string]decimal.Decimal{
	"PROMO5": decimal.RequireFromString("0.05"),
}

// CouponResult is the outcome of the last ApplyCoupon call.
type CouponResult struct {
	Code             string
	DiscountFraction decimal.Decimal
	Applied          bool
	Message          string
}

// CouponError signals an unknown code. It is informational: the discount
// has already been reset when it is returned.
type CouponError struct {
	Code    string
	Message string
}

func (e *CouponError) Error() string {
	return fmt.Sprintf("coupon %q rejected: %s", e.Code, e.Message)
}

// NormalizeCouponCode trims and upper-cases a user supplied code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func lookupCoupon(code string) CouponResult {
	normalized := NormalizeCouponCode(code)
	fraction, ok := coupons[normalized]
	if !ok {
		return CouponResult{
			Code:             normalized,
			DiscountFraction: decimal.Zero,
			Message:          msgCouponInvalid,
		}
	}

	return CouponResult{
		Code:             normalized,
		DiscountFraction: fraction,
		Applied:          true,
		Message:          fmt.Sprintf(msgCouponApplied, fraction.Shift(2).String()),
	}
}

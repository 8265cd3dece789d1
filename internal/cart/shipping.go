package cart

import "github.com/shopspring/decimal"

// ShippingTier is a named fixed-cost delivery option. The zero value means
// no tier was chosen, which blocks checkout.
type ShippingTier string

const (
	TierNone     ShippingTier = ""
	TierExpress  ShippingTier = "express"
	TierStandard ShippingTier = "standard"
	TierEconomy  ShippingTier = "economy"
)

// FreeShippingThreshold: subtotals strictly above it ship for free.
var FreeShippingThreshold = decimal.NewFromInt(200)

var tierCosts = map[ShippingTier]decimal.Decimal{
	TierExpress:  decimal.NewFromInt(35),
	TierStandard: decimal.NewFromInt(15),
	TierEconomy:  decimal.Zero,
}

// ParseShippingTier accepts the wire names of the three tiers.
func ParseShippingTier(s string) (ShippingTier, error) {
	t := ShippingTier(s)
	if _, ok := tierCosts[t]; !ok {
		return TierNone, ErrUnknownShippingTier
	}
	return t, nil
}

func (t ShippingTier) Selected() bool {
	return t != TierNone
}

// Cost is the fixed price of the tier, zero for TierNone.
func (t ShippingTier) Cost() decimal.Decimal {
	return tierCosts[t]
}

// ShippingFor applies the free shipping threshold to the selected tier.
func ShippingFor(subtotal decimal.Decimal, tier ShippingTier) decimal.Decimal {
	if subtotal.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return tier.Cost()
}

// Tiers lists the selectable tiers in display order.
func Tiers() []ShippingTier {
	return []ShippingTier{TierExpress, TierStandard, TierEconomy}
}

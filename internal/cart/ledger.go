// Package cart owns the line items of a checkout session together with the
// shipping and coupon selections, and computes the price breakdown from
// them. Totals are recomputed on every read, so a mutation is visible to the
// very next ComputeTotals call.
package cart

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

type Ledger struct {
	mu       sync.Mutex
	items    []LineItem
	shipping ShippingTier
	coupon   CouponResult
}

func NewLedger() *Ledger {
	return &Ledger{coupon: CouponResult{DiscountFraction: decimal.Zero}}
}

// AddItem inserts the item with quantity 1, or increments the quantity of the
// line that already holds the same SKU.
func (l *Ledger) AddItem(item LineItem) error {
	item.SKU = strings.TrimSpace(item.SKU)
	if item.SKU == "" || item.UnitPrice.IsNegative() {
		return ErrInvalidItem
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(item.SKU); i >= 0 {
		l.items[i].Quantity++
		return nil
	}

	item = item.clone()
	item.Quantity = 1
	l.items = append(l.items, item)
	return nil
}

// RemoveItem deletes the line for sku. Unknown SKUs are ignored.
func (l *Ledger) RemoveItem(sku string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(sku)
	if i < 0 {
		return
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
}

// SetQuantity moves the quantity of sku by one. A decrease that would drop
// below 1 is clamped silently.
func (l *Ledger) SetQuantity(sku string, action QuantityAction) error {
	if !action.Valid() {
		return ErrInvalidAction
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(sku)
	if i < 0 {
		return nil
	}

	switch action {
	case Increase:
		l.items[i].Quantity++
	case Decrease:
		if l.items[i].Quantity > 1 {
			l.items[i].Quantity--
		}
	}
	return nil
}

func (l *Ledger) SelectShipping(tier ShippingTier) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shipping = tier
}

// ApplyCoupon replaces the active coupon. An unknown code resets the
// discount to zero and is reported as *CouponError alongside the result.
func (l *Ledger) ApplyCoupon(code string) (CouponResult, error) {
	result := lookupCoupon(code)

	l.mu.Lock()
	l.coupon = result
	l.mu.Unlock()

	if !result.Applied {
		return result, &CouponError{Code: result.Code, Message: result.Message}
	}
	return result, nil
}

// ComputeTotals returns the full precision breakdown of the current state.
func (l *Ledger) ComputeTotals() Totals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals()
}

func (l *Ledger) totals() Totals {
	subtotal := decimal.Zero
	for _, item := range l.items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	shipping := ShippingFor(subtotal, l.shipping)
	discount := subtotal.Mul(l.coupon.DiscountFraction)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Sub(discount).Add(shipping),
	}
}

// Items returns a deep copy of the lines in insertion order.
func (l *Ledger) Items() []LineItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copyItems()
}

func (l *Ledger) Shipping() ShippingTier {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shipping
}

func (l *Ledger) Coupon() CouponResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.coupon
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Snapshot captures items, selections and totals under one lock so they
// are consistent with each other.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Snapshot{
		Items:    l.copyItems(),
		Shipping: l.shipping,
		Coupon:   l.coupon,
		Totals:   l.totals(),
	}
}

// Clear empties the cart and drops the shipping and coupon selections.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = nil
	l.shipping = TierNone
	l.coupon = CouponResult{DiscountFraction: decimal.Zero}
}

func (l *Ledger) indexOf(sku string) int {
	for i := range l.items {
		if l.items[i].SKU == sku {
			return i
		}
	}
	return -1
}

func (l *Ledger) copyItems() []LineItem {
	items := make([]LineItem, len(l.items))
	for i, item := range l.items {
		items[i] = item.clone()
	}
	return items
}

package cart

import (
	"github.com/fjod/go_bookstore/pkg/money"
	"github.com/shopspring/decimal"
)

// LineItem is one distinct product in the cart. SKU is the first ISBN of
// the book and is unique within a cart.
type LineItem struct {
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Authors   []string        `json:"authors,omitempty"`
	CoverURL  string          `json:"cover_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is unitPrice × quantity at full precision.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i LineItem) clone() LineItem {
	c := i
	if i.Authors != nil {
		c.Authors = append([]string(nil), i.Authors...)
	}
	return c
}

// QuantityAction is the direction of a quantity change.
type QuantityAction string

const (
	Increase QuantityAction = "increase"
	Decrease QuantityAction = "decrease"
)

func (a QuantityAction) Valid() bool {
	return a == Increase || a == Decrease
}

// Totals is the monetary breakdown of a cart at full precision.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Rounded returns the breakdown finalized for display or storage.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: money.Round(t.Subtotal),
		Shipping: money.Round(t.Shipping),
		Discount: money.Round(t.Discount),
		Total:    money.Round(t.Total),
	}
}

// Snapshot is a deep copy of the ledger state taken at checkout time.
type Snapshot struct {
	Items    []LineItem
	Shipping ShippingTier
	Coupon   CouponResult
	Totals   Totals
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

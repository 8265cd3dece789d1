package domain

import (
	"time"

	"github.com/fjod/go_bookstore/internal/cart"
	"github.com/shopspring/decimal"
)

// Order is the frozen record of a completed checkout. All amounts are
// rounded to two decimals. Nothing mutates an Order after the assembler
// returns it; readers that hand it out use Clone.
type Order struct {
	ID            int64
	CreatedAt     time.Time
	Address       Address
	PaymentMethod PaymentMethod
	Items         []cart.LineItem
	Subtotal      decimal.Decimal
	Shipping      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	Installments  int
	MonthlyValue  decimal.Decimal
}

func (o Order) Clone() Order {
	c := o
	c.Items = make([]cart.LineItem, len(o.Items))
	for i, item := range o.Items {
		c.Items[i] = item
		if item.Authors != nil {
			c.Items[i].Authors = append([]string(nil), item.Authors...)
		}
	}
	return c
}

// FinancingFee is what the installment plan added on top of the
// pre-financing total. It is zero unless credit is split.
func (o Order) FinancingFee() decimal.Decimal {
	if !o.PaymentMethod.IsCredit() || o.Installments <= 1 {
		return decimal.Zero
	}
	pre := o.Subtotal.Sub(o.Discount).Add(o.Shipping)
	fee := o.Total.Sub(pre)
	if fee.IsNegative() {
		return decimal.Zero
	}
	return fee
}

package service

import (
	"time"

	"github.com/fjod/go_bookstore/internal/cart"
	d "github.com/fjod/go_bookstore/internal/checkout/domain"
	"github.com/fjod/go_bookstore/internal/installment"
	"github.com/fjod/go_bookstore/pkg/money"
)

var addressLabels = map[string]string{
	"address.postalCode":   "CEP",
	"address.street":       "Endereço",
	"address.number":       "Número",
	"address.neighborhood": "Bairro",
	"address.city":         "Cidade",
	"address.state":        "UF",
}

// OrderAssembler validates the checkout inputs and freezes them, together
// with the cart totals and the chosen payment plan, into an Order.
type OrderAssembler struct {
	ids *d.IDGenerator
	now func() time.Time
}

func NewOrderAssembler(ids *d.IDGenerator, now func() time.Time) *OrderAssembler {
	if ids == nil {
		ids = &d.IDGenerator{}
	}
	if now == nil {
		now = time.Now
	}
	return &OrderAssembler{ids: ids, now: now}
}

// Assemble checks, in order: cart, shipping, payment method, installment
// count (credit only) and address. The first failure is returned as
// *ValidationError and no Order is built.
func (a *OrderAssembler) Assemble(
	snapshot cart.Snapshot,
	address d.Address,
	method d.PaymentMethod,
	installments int) (d.Order, error) {

	address = address.Normalize()
	if err := validate(snapshot, address, method, installments); err != nil {
		return d.Order{}, err
	}

	totals := snapshot.Totals.Rounded()
	total := totals.Total
	monthly := totals.Total
	count := 1

	if method.IsCredit() {
		option, err := installment.Select(snapshot.Totals.Total, installments)
		if err != nil {
			return d.Order{}, err // totals are never negative, this is a programming error
		}
		total = option.TotalWithFee
		monthly = option.MonthlyValue
		count = option.Count
	}

	now := a.now()
	return d.Order{
		ID:            a.ids.Next(now),
		CreatedAt:     now,
		Address:       address,
		PaymentMethod: method,
		Items:         snapshot.Items,
		Subtotal:      totals.Subtotal,
		Shipping:      totals.Shipping,
		Discount:      totals.Discount,
		Total:         money.Round(total),
		Installments:  count,
		MonthlyValue:  money.Round(monthly),
	}.Clone(), nil
}

func validate(snapshot cart.Snapshot, address d.Address, method d.PaymentMethod, installments int) error {
	if snapshot.IsEmpty() {
		return newValidationError(FieldCart, "Seu carrinho está vazio")
	}
	if !snapshot.Shipping.Selected() {
		return newValidationError(FieldShipping, "Selecione uma opção de frete")
	}
	if !method.Valid() {
		return newValidationError(FieldPaymentMethod, "Selecione um método de pagamento")
	}
	if method.IsCredit() && !installment.ValidCount(installments) {
		return newValidationError(FieldInstallments, "Selecione o número de parcelas (1 a 12)")
	}
	for _, field := range address.RequiredFields() {
		if field.Value == "" {
			return newValidationError(field.Name, "Preencha o campo obrigatório: "+addressLabels[field.Name])
		}
	}
	return nil
}

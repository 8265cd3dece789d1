package domain

import (
	"errors"
	"fmt"
)

type PaymentMethod string

const (
	PaymentMethodNone   PaymentMethod = ""
	PaymentMethodCredit PaymentMethod = "credit"
	PaymentMethodDebit  PaymentMethod = "debit"
	PaymentMethodPix    PaymentMethod = "pix"
	PaymentMethodBoleto PaymentMethod = "boleto"
)

var ErrUnknownPaymentMethod = errors.New("unknown payment method")

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.Valid() {
		return PaymentMethodNone, ErrUnknownPaymentMethod
	}
	return m, nil
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCredit, PaymentMethodDebit, PaymentMethodPix, PaymentMethodBoleto:
		return true
	}
	return false
}

func (m PaymentMethod) IsCredit() bool {
	return m == PaymentMethodCredit
}

// Label is the name shown on the confirmation view.
func (m PaymentMethod) Label(installments int) string {
	switch m {
	case PaymentMethodCredit:
		return fmt.Sprintf("Cartão de Crédito (%dx)", installments)
	case PaymentMethodDebit:
		return "Cartão de Débito"
	case PaymentMethodPix:
		return "PIX"
	case PaymentMethodBoleto:
		return "Boleto"
	default:
		return string(m)
	}
}

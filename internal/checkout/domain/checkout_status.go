package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle                  CheckoutStatus = "IDLE"
	CheckoutStatusAddressEntered        CheckoutStatus = "ADDRESS_ENTERED"
	CheckoutStatusPaymentMethodSelected CheckoutStatus = "PAYMENT_METHOD_SELECTED"
	CheckoutStatusInstallmentSelected   CheckoutStatus = "INSTALLMENT_SELECTED"
	CheckoutStatusSubmitted             CheckoutStatus = "SUBMITTED"
	CheckoutStatusOrderCreated          CheckoutStatus = "ORDER_CREATED"
	CheckoutStatusValidationFailed      CheckoutStatus = "VALIDATION_FAILED"
)

// transitions lists the legal moves. Inputs may be edited in any order
// before submission; SUBMITTED only resolves into one of its two outcomes.
var transitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle: {
		CheckoutStatusAddressEntered,
		CheckoutStatusPaymentMethodSelected,
		CheckoutStatusSubmitted,
	},
	CheckoutStatusAddressEntered: {
		CheckoutStatusIdle,
		CheckoutStatusAddressEntered,
		CheckoutStatusPaymentMethodSelected,
		CheckoutStatusSubmitted,
	},
	CheckoutStatusPaymentMethodSelected: {
		CheckoutStatusAddressEntered,
		CheckoutStatusPaymentMethodSelected,
		CheckoutStatusInstallmentSelected,
		CheckoutStatusSubmitted,
	},
	CheckoutStatusInstallmentSelected: {
		CheckoutStatusAddressEntered,
		CheckoutStatusPaymentMethodSelected,
		CheckoutStatusInstallmentSelected,
		CheckoutStatusSubmitted,
	},
	CheckoutStatusSubmitted: {
		CheckoutStatusOrderCreated,
		CheckoutStatusValidationFailed,
	},
	CheckoutStatusValidationFailed: {
		CheckoutStatusIdle,
		CheckoutStatusAddressEntered,
		CheckoutStatusPaymentMethodSelected,
		CheckoutStatusInstallmentSelected,
	},
	CheckoutStatusOrderCreated: {
		CheckoutStatusIdle,
	},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsPreSubmission reports whether the session is still collecting input.
func (s CheckoutStatus) IsPreSubmission() bool {
	switch s {
	case CheckoutStatusIdle, CheckoutStatusAddressEntered,
		CheckoutStatusPaymentMethodSelected, CheckoutStatusInstallmentSelected:
		return true
	}
	return false
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

package cart

import "errors"

var (
	ErrInvalidItem         = errors.New("line item needs a sku and a non-negative unit price")
	ErrUnknownShippingTier = errors.New("unknown shipping tier")
	ErrInvalidAction       = errors.New("quantity action must be increase or decrease")
)

package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_bookstore/pkg/money"
)

// PayloadVersion is written into every payload. Readers accept any version
// and ignore fields they do not know, so new fields never break older views.
const PayloadVersion = 1

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

var ErrMalformedOrderPayload = errors.New("malformed order payload")

// OrderPayload is the transfer representation of an Order, consumed by the
// confirmation view and published to the order events topic.
type OrderPayload struct {
	Version       int           `json:"version"`
	ID            int64         `json:"id"`
	Date          string        `json:"date"`
	Address       Address       `json:"address"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Items         []PayloadItem `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Shipping      float64       `json:"shipping"`
	Total         float64       `json:"total"`
	Installments  int           `json:"installments"`
	MonthlyValue  float64       `json:"monthlyValue"`
	FinancingFee  float64       `json:"financingFee,omitempty"`
}

type PayloadItem struct {
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	SKU       string  `json:"sku,omitempty"`
}

func NewOrderPayload(o Order) OrderPayload {
	items := make([]PayloadItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = PayloadItem{
			Title:     item.Title,
			UnitPrice: money.Float(item.UnitPrice),
			Quantity:  item.Quantity,
			SKU:       item.SKU,
		}
	}

	return OrderPayload{
		Version:       PayloadVersion,
		ID:            o.ID,
		Date:          o.CreatedAt.UTC().Format(isoMillis),
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
		Items:         items,
		Subtotal:      money.Float(o.Subtotal),
		Shipping:      money.Float(o.Shipping),
		Total:         money.Float(o.Total),
		Installments:  o.Installments,
		MonthlyValue:  money.Float(o.MonthlyValue),
		FinancingFee:  money.Float(o.FinancingFee()),
	}
}

func (p OrderPayload) Marshal() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}
	return data, nil
}

// ParseOrderPayload decodes and sanity checks a payload. Every failure wraps
// ErrMalformedOrderPayload.
func ParseOrderPayload(data []byte) (OrderPayload, error) {
	var p OrderPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return OrderPayload{}, fmt.Errorf("%w: %v", ErrMalformedOrderPayload, err)
	}

	if p.Version == 0 {
		p.Version = PayloadVersion
	}
	if p.ID <= 0 {
		return OrderPayload{}, fmt.Errorf("%w: missing id", ErrMalformedOrderPayload)
	}
	if _, err := p.CreatedAt(); err != nil {
		return OrderPayload{}, fmt.Errorf("%w: bad date %q", ErrMalformedOrderPayload, p.Date)
	}
	if !p.PaymentMethod.Valid() {
		return OrderPayload{}, fmt.Errorf("%w: payment method %q", ErrMalformedOrderPayload, p.PaymentMethod)
	}
	if p.Installments < 1 {
		return OrderPayload{}, fmt.Errorf("%w: installments %d", ErrMalformedOrderPayload, p.Installments)
	}

	return p, nil
}

func (p OrderPayload) CreatedAt() (time.Time, error) {
	return time.Parse(time.RFC3339, p.Date)
}

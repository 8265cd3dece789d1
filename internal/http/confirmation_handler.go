package http

import (
	"net/http"
	"strconv"

	d "github.com/fjod/go_bookstore/internal/checkout/domain"
	"github.com/fjod/go_bookstore/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayoutBR = "02/01/2006"

type ConfirmationHandler struct {
	log *zap.Logger
}

func NewConfirmationHandler(log *zap.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{log: log}
}

type ConfirmationItemDTO struct {
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// ConfirmationDTO is the rendered confirmation page. MonthlyValue and
// Financing are only set for credit orders split in more than one
// installment.
type ConfirmationDTO struct {
	Title        string                `json:"title"`
	OrderNumber  string                `json:"order_number"`
	Date         string                `json:"date"`
	Total        string                `json:"total"`
	Payment      string                `json:"payment"`
	MonthlyValue string                `json:"monthly_value,omitempty"`
	Financing    *FinancingDTO         `json:"financing,omitempty"`
	Address      d.Address             `json:"address"`
	Items        []ConfirmationItemDTO `json:"items"`
}

// GET /order-confirmation?order=
//
// Without the order parameter the session's last order is shown. Anything
// that does not parse sends the visitor back to the storefront.
func (h *ConfirmationHandler) Show(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("order")
	if raw == "" {
		sess := getSession(r.Context())
		if sess == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		order, ok := sess.Checkout.LastOrder()
		if !ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		h.render(w, r, d.NewOrderPayload(order))
		return
	}

	payload, err := d.ParseOrderPayload([]byte(raw))
	if err != nil {
		h.log.Info("discarding malformed order payload", zap.Error(err))
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, payload)
}

func (h *ConfirmationHandler) render(w http.ResponseWriter, r *http.Request, p d.OrderPayload) {
	dto, err := confirmationDTO(p)
	if err != nil {
		h.log.Info("discarding order payload with invalid amounts", zap.Int64("order_id", p.ID), zap.Error(err))
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	respondJSON(w, h.log, http.StatusOK, dto)
}

// amount converts a payload amount, rejecting values no order can carry.
func amount(f float64) (decimal.Decimal, error) {
	v, err := money.FromFloat(f)
	if err != nil {
		return decimal.Zero, err
	}
	if err := money.NonNegative(v); err != nil {
		return decimal.Zero, err
	}
	return v, nil
}

func confirmationDTO(p d.OrderPayload) (ConfirmationDTO, error) {
	created, _ := p.CreatedAt()
	items := make([]ConfirmationItemDTO, 0, len(p.Items))
	for _, item := range p.Items {
		price, err := amount(item.UnitPrice)
		if err != nil {
			return ConfirmationDTO{}, err
		}
		items = append(items, ConfirmationItemDTO{
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: money.FormatBRL(price),
		})
	}
	total, err := amount(p.Total)
	if err != nil {
		return ConfirmationDTO{}, err
	}

	dto := ConfirmationDTO{
		Title:       "Pedido Confirmado!",
		OrderNumber: "#" + strconv.FormatInt(p.ID, 10),
		Date:        created.UTC().Format(dateLayoutBR),
		Total:       money.FormatBRL(total),
		Payment:     p.PaymentMethod.Label(p.Installments),
		Address:     p.Address,
		Items:       items,
	}
	if p.PaymentMethod.IsCredit() && p.Installments > 1 {
		monthly, err := amount(p.MonthlyValue)
		if err != nil {
			return ConfirmationDTO{}, err
		}
		dto.MonthlyValue = money.FormatBRL(monthly)

		fee, err := amount(p.FinancingFee)
		if err != nil {
			return ConfirmationDTO{}, err
		}
		if fee.IsPositive() {
			dto.Financing = financingDTO(p.Installments, fee)
		}
	}
	return dto, nil
}

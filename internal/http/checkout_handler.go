package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	d "github.com/fjod/go_bookstore/internal/checkout/domain"
	"github.com/fjod/go_bookstore/internal/checkout/service"
	"go.uber.org/zap"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// Claimer is implemented by *idempotency.Store.
type Claimer interface {
	Claim(ctx context.Context, sessionID, key string) (bool, error)
	Release(ctx context.Context, sessionID, key string) error
}

// OrderSink receives every created order, see publisher.OutboxPoller.
type OrderSink interface {
	Enqueue(order d.Order)
}

type CheckoutHandler struct {
	claims  Claimer
	orders  OrderSink
	metrics *ServerMetrics
	timeout time.Duration
	log     *zap.Logger
}

// NewCheckoutHandler accepts nil claims and orders; submission then skips
// the duplicate check or the publication.
func NewCheckoutHandler(claims Claimer, orders OrderSink, metrics *ServerMetrics, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		claims:  claims,
		orders:  orders,
		metrics: metrics,
		timeout: timeout,
		log:     log,
	}
}

type SelectPaymentRequestDTO struct {
	Method string `json:"method"`
}

type SelectInstallmentsRequestDTO struct {
	Count int `json:"count"`
}

type SubmitResponseDTO struct {
	Order           d.OrderPayload      `json:"order"`
	ConfirmationURL string              `json:"confirmation_url"`
	Checkout        CheckoutResponseDTO `json:"checkout"`
}

type DuplicateSubmissionDTO struct {
	ErrorResponse
	Order *d.OrderPayload `json:"order,omitempty"`
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}
	sess.Lock()
	defer sess.Unlock()

	h.respondState(w, sess.Checkout)
}

// PUT /api/v1/checkout/address
func (h *CheckoutHandler) EnterAddress(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}

	var req d.Address
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	if err := sess.Checkout.EnterAddress(req); err != nil {
		handleDomainError(w, h.log, err)
		return
	}
	h.respondState(w, sess.Checkout)
}

// PUT /api/v1/checkout/payment
func (h *CheckoutHandler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}

	var req SelectPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	method := d.PaymentMethod(strings.ToLower(strings.TrimSpace(req.Method)))
	if err := sess.Checkout.SelectPaymentMethod(method); err != nil {
		handleDomainError(w, h.log, err)
		return
	}
	h.respondState(w, sess.Checkout)
}

// PUT /api/v1/checkout/installments
func (h *CheckoutHandler) SelectInstallments(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}

	var req SelectInstallmentsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	if err := sess.Checkout.SelectInstallments(req.Count); err != nil {
		handleDomainError(w, h.log, err)
		return
	}
	h.respondState(w, sess.Checkout)
}

// POST /api/v1/checkout/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	claimed := false
	if key != "" && h.claims != nil {
		ok, err := h.claims.Claim(ctx, sess.ID, key)
		switch {
		case err != nil:
			// redis trouble does not block the order
			h.log.Warn("idempotency claim failed", zap.String("session_id", sess.ID), zap.Error(err))
		case !ok:
			h.respondDuplicate(w, sess.Checkout)
			return
		default:
			claimed = true
		}
	}

	order, err := sess.Checkout.Submit()
	if err != nil {
		if claimed {
			if errRelease := h.claims.Release(ctx, sess.ID, key); errRelease != nil {
				h.log.Warn("idempotency release failed", zap.Error(errRelease))
			}
		}
		if v, ok := service.IsValidation(err); ok && h.metrics != nil {
			h.metrics.CheckoutErrors.WithLabelValues(v.Field).Inc()
		}
		handleDomainError(w, h.log, err)
		return
	}

	if h.metrics != nil {
		h.metrics.OrdersCreated.WithLabelValues(string(order.PaymentMethod)).Inc()
	}
	if h.orders != nil {
		h.orders.Enqueue(order)
	}

	payload := d.NewOrderPayload(order)
	confirmation, err := confirmationURL(payload)
	if err != nil {
		handleDomainError(w, h.log, err)
		return
	}

	state, err := sess.Checkout.Snapshot()
	if err != nil {
		handleDomainError(w, h.log, err)
		return
	}

	h.log.Info("checkout submitted",
		zap.String("session_id", sess.ID),
		zap.Int64("order_id", order.ID),
		zap.String("request_id", getRequestID(r.Context())))

	respondJSON(w, h.log, http.StatusCreated, SubmitResponseDTO{
		Order:           payload,
		ConfirmationURL: confirmation,
		Checkout:        checkoutDTO(state),
	})
}

func (h *CheckoutHandler) respondState(w http.ResponseWriter, c *service.Checkout) {
	state, err := c.Snapshot()
	if err != nil {
		handleDomainError(w, h.log, err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, checkoutDTO(state))
}

func (h *CheckoutHandler) respondDuplicate(w http.ResponseWriter, c *service.Checkout) {
	dto := DuplicateSubmissionDTO{
		ErrorResponse: ErrorResponse{
			Error: "this submission was already processed",
			Code:  "duplicate_submission",
		},
	}
	if order, ok := c.LastOrder(); ok {
		payload := d.NewOrderPayload(order)
		dto.Order = &payload
	}
	respondJSON(w, h.log, http.StatusConflict, dto)
}

func confirmationURL(p d.OrderPayload) (string, error) {
	data, err := p.Marshal()
	if err != nil {
		return "", err
	}
	return "/order-confirmation?order=" + url.QueryEscape(string(data)), nil
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_bookstore/internal/cart"
	"github.com/fjod/go_bookstore/internal/catalog"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BookCatalog is implemented by *catalog.Service.
type BookCatalog interface {
	List(ctx context.Context, query string, page int) (catalog.Page, error)
	Get(ctx context.Context, isbn string) (catalog.Book, error)
	Invalidate(ctx context.Context) error
}

type CartHandler struct {
	catalog BookCatalog
	timeout time.Duration
	log     *zap.Logger
}

func NewCartHandler(catalog BookCatalog, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		catalog: catalog,
		timeout: timeout,
		log:     log,
	}
}

type AddItemRequestDTO struct {
	SKU string `json:"sku"`
}

type UpdateQuantityRequestDTO struct {
	Action string `json:"action"`
}

type SelectShippingRequestDTO struct {
	Tier string `json:"tier"`
}

type ApplyCouponRequestDTO struct {
	Code string `json:"code"`
}

type CouponResponseDTO struct {
	CouponDTO
	Cart CartResponseDTO `json:"cart"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}
	sess.Lock()
	defer sess.Unlock()

	respondJSON(w, h.log, http.StatusOK, cartDTO(sess.Ledger.Snapshot()))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.SKU == "" {
		respondError(w, h.log, http.StatusBadRequest, "invalid_sku", "sku is required")
		return
	}

	book, err := h.catalog.Get(ctx, req.SKU)
	if err != nil {
		handleDomainError(w, h.log, err)
		return
	}

	sess.Lock()
	defer sess.Unlock()

	if err := sess.Ledger.AddItem(book.LineItem()); err != nil {
		handleDomainError(w, h.log, err)
		return
	}
	h.log.Debug("item added",
		zap.String("session_id", sess.ID),
		zap.String("sku", book.ISBN),
		zap.String("request_id", getRequestID(r.Context())))

	respondJSON(w, h.log, http.StatusCreated, cartDTO(sess.Ledger.Snapshot()))
}

// PATCH /api/v1/cart/items/{sku}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	if err := sess.Ledger.SetQuantity(chi.URLParam(r, "sku"), cart.QuantityAction(req.Action)); err != nil {
		handleDomainError(w, h.log, err)
		return
	}

	respondJSON(w, h.log, http.StatusOK, cartDTO(sess.Ledger.Snapshot()))
}

// DELETE /api/v1/cart/items/{sku}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}
	sess.Lock()
	defer sess.Unlock()

	sess.Ledger.RemoveItem(chi.URLParam(r, "sku"))
	respondJSON(w, h.log, http.StatusOK, cartDTO(sess.Ledger.Snapshot()))
}

// PUT /api/v1/cart/shipping
func (h *CartHandler) SelectShipping(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}

	var req SelectShippingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	tier, err := cart.ParseShippingTier(req.Tier)
	if err != nil {
		handleDomainError(w, h.log, err)
		return
	}

	sess.Lock()
	defer sess.Unlock()

	// shipping is only offered once the cart holds something
	if sess.Ledger.Len() == 0 {
		respondError(w, h.log, http.StatusConflict, "empty_cart", "Seu carrinho está vazio")
		return
	}

	sess.Ledger.SelectShipping(tier)
	respondJSON(w, h.log, http.StatusOK, cartDTO(sess.Ledger.Snapshot()))
}

// POST /api/v1/cart/coupon
//
// An unknown code is not an HTTP error: the discount is reset and the
// response says applied=false with the message to show.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}

	var req ApplyCouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	result, err := sess.Ledger.ApplyCoupon(req.Code)
	var couponErr *cart.CouponError
	if err != nil && !errors.As(err, &couponErr) {
		handleDomainError(w, h.log, err)
		return
	}

	respondJSON(w, h.log, http.StatusOK, CouponResponseDTO{
		CouponDTO: CouponDTO{Code: result.Code, Applied: result.Applied, Message: result.Message},
		Cart:      cartDTO(sess.Ledger.Snapshot()),
	})
}

package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_bookstore/internal/catalog"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog BookCatalog
	timeout time.Duration
	log     *zap.Logger
}

func NewCatalogHandler(catalog BookCatalog, timeout time.Duration, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		timeout: timeout,
		log:     log,
	}
}

type BooksResponseDTO struct {
	Books      []BookDTO `json:"books"`
	Query      string    `json:"query,omitempty"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	Total      int       `json:"total"`
}

type WishlistResponseDTO struct {
	Books []BookDTO `json:"books"`
}

type ToggleWishlistResponseDTO struct {
	ISBN       string    `json:"isbn"`
	InWishlist bool      `json:"in_wishlist"`
	Books      []BookDTO `json:"books"`
}

// GET /api/v1/books?q=&page=
func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	query := r.URL.Query().Get("q")
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	res, err := h.catalog.List(ctx, query, page)
	if err != nil {
		handleDomainError(w, h.log, err)
		return
	}

	sess := getSession(r.Context())
	books := make([]BookDTO, 0, len(res.Books))
	for _, b := range res.Books {
		books = append(books, bookDTO(b, sess != nil && sess.Wishlist.Contains(b.ISBN)))
	}

	respondJSON(w, h.log, http.StatusOK, BooksResponseDTO{
		Books:      books,
		Query:      query,
		Page:       res.Page,
		TotalPages: res.TotalPages,
		Total:      res.Total,
	})
}

// POST /api/v1/books/refresh
func (h *CatalogHandler) RefreshBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.catalog.Invalidate(ctx); err != nil {
		h.log.Error("failed to invalidate catalog cache", zap.Error(err))
		respondError(w, h.log, http.StatusServiceUnavailable, "service_unavailable", "catalog cache is unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/wishlist
func (h *CatalogHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}

	respondJSON(w, h.log, http.StatusOK, WishlistResponseDTO{Books: wishlistBooks(sess.Wishlist.Items())})
}

// POST /api/v1/wishlist/{sku}
func (h *CatalogHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}

	book, err := h.catalog.Get(ctx, chi.URLParam(r, "sku"))
	if err != nil {
		handleDomainError(w, h.log, err)
		return
	}

	added := sess.Wishlist.Toggle(book)
	respondJSON(w, h.log, http.StatusOK, ToggleWishlistResponseDTO{
		ISBN:       book.ISBN,
		InWishlist: added,
		Books:      wishlistBooks(sess.Wishlist.Items()),
	})
}

// DELETE /api/v1/wishlist/{sku}
func (h *CatalogHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, h.log, http.StatusInternalServerError, "internal_error", "missing session")
		return
	}

	sess.Wishlist.Remove(chi.URLParam(r, "sku"))
	respondJSON(w, h.log, http.StatusOK, WishlistResponseDTO{Books: wishlistBooks(sess.Wishlist.Items())})
}

func wishlistBooks(list []catalog.Book) []BookDTO {
	books := make([]BookDTO, 0, len(list))
	for _, b := range list {
		books = append(books, bookDTO(b, true))
	}
	return books
}

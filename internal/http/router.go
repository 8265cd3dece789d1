package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Deps are the collaborators of the storefront API. Claims and Orders are
// optional.
type Deps struct {
	Sessions           SessionStore
	Catalog            BookCatalog
	Claims             Claimer
	Orders             OrderSink
	Metrics            *ServerMetrics
	Log                *zap.Logger
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

// NewRouter mounts every route of the storefront.
func NewRouter(deps Deps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewServerMetrics("storefront")
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 30 * time.Second
	}
	if deps.MaxRequestBodySize <= 0 {
		deps.MaxRequestBodySize = 1 << 20
	}

	cartHandler := NewCartHandler(deps.Catalog, deps.RequestTimeout, deps.Log)
	catalogHandler := NewCatalogHandler(deps.Catalog, deps.RequestTimeout, deps.Log)
	checkoutHandler := NewCheckoutHandler(deps.Claims, deps.Orders, deps.Metrics, deps.RequestTimeout, deps.Log)
	confirmationHandler := NewConfirmationHandler(deps.Log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(deps.Log))
	r.Use(MetricsMiddleware(deps.Metrics))
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.RequestSize(deps.MaxRequestBodySize))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, deps.Log, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(deps.Sessions))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, deps.Log, http.StatusOK, map[string]string{
				"books":    "/api/v1/books",
				"cart":     "/api/v1/cart",
				"checkout": "/api/v1/checkout",
			})
		})
		r.Get("/order-confirmation", confirmationHandler.Show)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/books", catalogHandler.ListBooks)
			r.Post("/books/refresh", catalogHandler.RefreshBooks)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Patch("/items/{sku}", cartHandler.UpdateQuantity)
				r.Delete("/items/{sku}", cartHandler.RemoveItem)
				r.Put("/shipping", cartHandler.SelectShipping)
				r.Post("/coupon", cartHandler.ApplyCoupon)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", catalogHandler.GetWishlist)
				r.Post("/{sku}", catalogHandler.ToggleWishlist)
				r.Delete("/{sku}", catalogHandler.RemoveFromWishlist)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", checkoutHandler.GetCheckout)
				r.Put("/address", checkoutHandler.EnterAddress)
				r.Put("/payment", checkoutHandler.SelectPayment)
				r.Put("/installments", checkoutHandler.SelectInstallments)
				r.Post("/submit", checkoutHandler.Submit)
			})
		})
	})

	return r
}

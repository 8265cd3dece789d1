package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_bookstore/internal/catalog"
	d "github.com/fjod/go_bookstore/internal/checkout/domain"
	"github.com/fjod/go_bookstore/internal/idempotency"
	"github.com/fjod/go_bookstore/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// CatalogMock serves a fixed book list
type CatalogMock struct {
	books []catalog.Book
	err   error
}

func (c CatalogMock) List(_ context.Context, query string, page int) (catalog.Page, error) {
	if c.err != nil {
		return catalog.Page{}, c.err
	}
	return catalog.Page{Books: c.books, Page: page, TotalPages: 1, Total: len(c.books)}, nil
}

func (c CatalogMock) Get(_ context.Context, isbn string) (catalog.Book, error) {
	if c.err != nil {
		return catalog.Book{}, c.err
	}
	for _, b := range c.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return catalog.Book{}, catalog.ErrBookNotFound
}

func (c CatalogMock) Invalidate(context.Context) error {
	return c.err
}

// OrderSinkMock records enqueued orders
type OrderSinkMock struct {
	mu     sync.Mutex
	orders []d.Order
}

func (o *OrderSinkMock) Enqueue(order d.Order) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orders = append(o.orders, order)
}

func (o *OrderSinkMock) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.orders)
}

type testServer struct {
	handler http.Handler
	sink    *OrderSinkMock
	metrics *ServerMetrics
}

func testBooks() []catalog.Book {
	return []catalog.Book{
		{ISBN: "111", Title: "Fifty", Authors: []string{"A"}, Price: decimal.NewFromInt(50)},
		{ISBN: "222", Title: "Thirty", Authors: []string{"B"}, Price: decimal.NewFromInt(30)},
		{ISBN: "333", Title: "Hundred", Authors: []string{"C"}, Price: decimal.NewFromInt(100)},
		{ISBN: "444", Title: "Forty", Authors: []string{"D"}, Price: decimal.NewFromInt(40)},
		{ISBN: "555", Title: "FortyFive", Authors: []string{"E"}, Price: decimal.NewFromInt(45)},
	}
}

func setupServer(t *testing.T, cat BookCatalog) *testServer {
	t.Helper()
	log := zaptest.NewLogger(t)

	store := session.NewMemoryStore(time.Hour, nil, log)
	t.Cleanup(func() { store.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sink := &OrderSinkMock{}
	metrics := NewServerMetrics("test")

	return &testServer{
		handler: NewRouter(Deps{
			Sessions:       store,
			Catalog:        cat,
			Claims:         idempotency.NewStore(client, time.Hour),
			Orders:         sink,
			Metrics:        metrics,
			Log:            log,
			RequestTimeout: 5 * time.Second,
		}),
		sink:    sink,
		metrics: metrics,
	}
}

// client keeps the session id between calls like a browser would
type client struct {
	t         *testing.T
	srv       *testServer
	sessionID string
}

func (c *client) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.sessionID != "" {
		req.Header.Set(HeaderSessionID, c.sessionID)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	c.srv.handler.ServeHTTP(rec, req)
	if id := rec.Header().Get(HeaderSessionID); id != "" {
		c.sessionID = id
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func validAddress() map[string]string {
	return map[string]string{
		"cep":          "01310-100",
		"street":       "Av. Paulista",
		"number":       "1000",
		"neighborhood": "Bela Vista",
		"city":         "São Paulo",
		"state":        "SP",
	}
}

func TestHealth(t *testing.T) {
	srv := setupServer(t, CatalogMock{})
	c := &client{t: t, srv: srv}

	rec := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestSessionIsIssuedAndReused(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	c.do(http.MethodPost, "/api/v1/cart/items", map[string]string{"sku": "111"})
	first := c.sessionID
	require.NotEmpty(t, first)

	rec := c.do(http.MethodGet, "/api/v1/cart", nil)
	assert.Equal(t, first, c.sessionID)
	cart := decode[CartResponseDTO](t, rec)
	assert.Len(t, cart.Items, 1)

	stranger := &client{t: t, srv: srv}
	other := decode[CartResponseDTO](t, stranger.do(http.MethodGet, "/api/v1/cart", nil))
	assert.Empty(t, other.Items)
	assert.NotEqual(t, first, stranger.sessionID)
}

func TestCartScenario_StandardShipping(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	rec := c.do(http.MethodPost, "/api/v1/cart/items", map[string]string{"sku": "111"})
	require.Equal(t, http.StatusCreated, rec.Code)
	c.do(http.MethodPost, "/api/v1/cart/items", map[string]string{"sku": "222"})

	rec = c.do(http.MethodPut, "/api/v1/cart/shipping", map[string]string{"tier": "standard"})
	require.Equal(t, http.StatusOK, rec.Code)

	cart := decode[CartResponseDTO](t, rec)
	assert.Equal(t, 80.0, cart.Subtotal.Value)
	assert.Equal(t, 15.0, cart.Shipping.Value)
	assert.Equal(t, 95.0, cart.Total.Value)
	assert.Equal(t, "R$ 95,00", cart.Total.Display)
	assert.Equal(t, "standard", cart.ShippingTier)
	assert.Len(t, cart.ShippingOptions, 3)
}

func TestCart_QuantityAndRemove(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	c.do(http.MethodPost, "/api/v1/cart/items", map[string]string{"sku": "111"})
	c.do(http.MethodPatch, "/api/v1/cart/items/111", map[string]string{"action": "increase"})
	rec := c.do(http.MethodPatch, "/api/v1/cart/items/111", map[string]string{"action": "decrease"})
	rec = c.do(http.MethodPatch, "/api/v1/cart/items/111", map[string]string{"action": "decrease"})
	cart := decode[CartResponseDTO](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity, "quantity never drops below 1")

	rec = c.do(http.MethodPatch, "/api/v1/cart/items/111", map[string]string{"action": "double"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodDelete, "/api/v1/cart/items/111", nil)
	assert.Empty(t, decode[CartResponseDTO](t, rec).Items)
}

func TestCart_AddUnknownBook(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	rec := c.do(http.MethodPost, "/api/v1/cart/items", map[string]string{"sku": "999"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/cart/items", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_ShippingOnEmptyCart(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	rec := c.do(http.MethodPut, "/api/v1/cart/shipping", map[string]string{"tier": "express"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "empty_cart", decode[ErrorResponse](t, rec).Code)

	rec = c.do(http.MethodPut, "/api/v1/cart/shipping", map[string]string{"tier": "teleport"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_Coupon(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	c.do(http.MethodPost, "/api/v1/cart/items", map[string]string{"sku": "333"})
	c.do(http.MethodPut, "/api/v1/cart/shipping", map[string]string{"tier": "standard"})

	rec := c.do(http.MethodPost, "/api/v1/cart/coupon", map[string]string{"code": "promo5"})
	require.Equal(t, http.StatusOK, rec.Code)
	applied := decode[CouponResponseDTO](t, rec)
	assert.True(t, applied.Applied)
	assert.Equal(t, "PROMO5", applied.Code)
	assert.Equal(t, 5.0, applied.Cart.Discount.Value)
	assert.Equal(t, 110.0, applied.Cart.Total.Value)

	rec = c.do(http.MethodPost, "/api/v1/cart/coupon", map[string]string{"code": "FREEBOOKS"})
	require.Equal(t, http.StatusOK, rec.Code)
	rejected := decode[CouponResponseDTO](t, rec)
	assert.False(t, rejected.Applied)
	assert.Equal(t, "Cupom inválido.", rejected.Message)
	assert.Equal(t, 0.0, rejected.Cart.Discount.Value)
}

func TestBooksAndWishlist(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	rec := c.do(http.MethodPost, "/api/v1/wishlist/222", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decode[ToggleWishlistResponseDTO](t, rec)
	assert.True(t, toggled.InWishlist)
	assert.Len(t, toggled.Books, 1)

	rec = c.do(http.MethodGet, "/api/v1/books?q=&page=abc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	books := decode[BooksResponseDTO](t, rec)
	assert.Equal(t, 1, books.Page)
	require.Len(t, books.Books, 5)
	assert.False(t, books.Books[0].InWishlist)
	assert.True(t, books.Books[1].InWishlist)

	c.do(http.MethodPost, "/api/v1/wishlist/222", nil)
	rec = c.do(http.MethodGet, "/api/v1/wishlist", nil)
	assert.Empty(t, decode[WishlistResponseDTO](t, rec).Books)
}

func TestBooks_CatalogUnavailable(t *testing.T) {
	srv := setupServer(t, CatalogMock{err: catalog.ErrUpstreamUnavailable})
	c := &client{t: t, srv: srv}

	rec := c.do(http.MethodGet, "/api/v1/books", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCheckout_CreditFlow(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	c.do(http.MethodPost, "/api/v1/cart/items", map[string]string{"sku": "444"})
	c.do(http.MethodPost, "/api/v1/cart/items", map[string]string{"sku": "555"})
	c.do(http.MethodPut, "/api/v1/cart/shipping", map[string]string{"tier": "standard"})

	rec := c.do(http.MethodPut, "/api/v1/checkout/address", validAddress())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ADDRESS_ENTERED", decode[CheckoutResponseDTO](t, rec).Status)

	rec = c.do(http.MethodPut, "/api/v1/checkout/payment", map[string]string{"method": "credit"})
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[CheckoutResponseDTO](t, rec)
	require.Len(t, state.Plan, 12)
	assert.Equal(t, "3x de R$ 36,67", state.Plan[2].Label)

	assert.Nil(t, state.Financing)

	rec = c.do(http.MethodPut, "/api/v1/checkout/installments", map[string]int{"count": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	state = decode[CheckoutResponseDTO](t, rec)
	assert.Equal(t, "INSTALLMENT_SELECTED", state.Status)
	require.NotNil(t, state.Financing)
	assert.Equal(t, "Juros (10%)", state.Financing.Label)
	assert.Equal(t, "R$ 10,00", state.Financing.Amount.Display)

	rec = c.do(http.MethodPost, "/api/v1/checkout/submit", nil, HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[SubmitResponseDTO](t, rec)
	assert.Equal(t, 110.0, resp.Order.Total)
	assert.Equal(t, 36.67, resp.Order.MonthlyValue)
	assert.Equal(t, 3, resp.Order.Installments)
	assert.Equal(t, "IDLE", resp.Checkout.Status)
	assert.Equal(t, 1, srv.sink.count())

	cart := decode[CartResponseDTO](t, c.do(http.MethodGet, "/api/v1/cart", nil))
	assert.Empty(t, cart.Items)

	// the confirmation link renders the order
	rec = c.do(http.MethodGet, resp.ConfirmationURL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[ConfirmationDTO](t, rec)
	assert.Equal(t, "Cartão de Crédito (3x)", view.Payment)
	assert.Equal(t, "R$ 110,00", view.Total)
	assert.Equal(t, "R$ 36,67", view.MonthlyValue)
	require.NotNil(t, view.Financing)
	assert.Equal(t, "Juros (10%)", view.Financing.Label)
	assert.Equal(t, 10.0, view.Financing.Amount.Value)

	// same key again is a duplicate and gets the created order back
	rec = c.do(http.MethodPost, "/api/v1/checkout/submit", nil, HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusConflict, rec.Code)
	dup := decode[DuplicateSubmissionDTO](t, rec)
	assert.Equal(t, "duplicate_submission", dup.Code)
	require.NotNil(t, dup.Order)
	assert.Equal(t, resp.Order.ID, dup.Order.ID)
	assert.Equal(t, 1, srv.sink.count())
}

func TestCheckout_ValidationFailures(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	rec := c.do(http.MethodPost, "/api/v1/checkout/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errResp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", errResp.Code)
	assert.Equal(t, "cart", errResp.Details)

	c.do(http.MethodPost, "/api/v1/cart/items", map[string]string{"sku": "111"})
	rec = c.do(http.MethodPost, "/api/v1/checkout/submit", nil, HeaderIdempotencyKey, "k-2")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "shipping", decode[ErrorResponse](t, rec).Details)

	// a rejected submission gives the key back
	c.do(http.MethodPut, "/api/v1/cart/shipping", map[string]string{"tier": "economy"})
	c.do(http.MethodPut, "/api/v1/checkout/address", validAddress())
	c.do(http.MethodPut, "/api/v1/checkout/payment", map[string]string{"method": "pix"})
	rec = c.do(http.MethodPost, "/api/v1/checkout/submit", nil, HeaderIdempotencyKey, "k-2")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	state := decode[CheckoutResponseDTO](t, c.do(http.MethodGet, "/api/v1/checkout", nil))
	assert.Equal(t, "IDLE", state.Status)
}

func TestCheckout_IllegalTransition(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	c.do(http.MethodPut, "/api/v1/checkout/payment", map[string]string{"method": "boleto"})
	rec := c.do(http.MethodPut, "/api/v1/checkout/installments", map[string]int{"count": 2})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPut, "/api/v1/checkout/payment", map[string]string{"method": "cheque"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "paymentMethod", decode[ErrorResponse](t, rec).Details)
}

func TestConfirmation_MalformedPayloadRedirects(t *testing.T) {
	srv := setupServer(t, CatalogMock{})
	c := &client{t: t, srv: srv}

	rec := c.do(http.MethodGet, "/order-confirmation?order="+url.QueryEscape("{not json"), nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = c.do(http.MethodGet, "/order-confirmation", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestConfirmation_RendersPayload(t *testing.T) {
	srv := setupServer(t, CatalogMock{})
	c := &client{t: t, srv: srv}

	payload := `{"id":1710513000000,"date":"2024-03-15T14:30:00.000Z","address":{"cep":"01310-100"},` +
		`"paymentMethod":"credit","items":[{"title":"Dom Casmurro","unitPrice":1234.5,"quantity":1}],` +
		`"subtotal":1234.5,"shipping":0,"total":1234.5,"installments":1,"monthlyValue":1234.5,"extra":true}`

	rec := c.do(http.MethodGet, "/order-confirmation?order="+url.QueryEscape(payload), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[ConfirmationDTO](t, rec)
	assert.Equal(t, "#1710513000000", view.OrderNumber)
	assert.Equal(t, "15/03/2024", view.Date)
	assert.Equal(t, "R$ 1.234,50", view.Total)
	assert.Equal(t, "Cartão de Crédito (1x)", view.Payment)
	assert.Empty(t, view.MonthlyValue, "single installment hides the monthly value")
	assert.Nil(t, view.Financing)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "R$ 1.234,50", view.Items[0].UnitPrice)
}

func TestConfirmation_NegativeAmountRedirects(t *testing.T) {
	srv := setupServer(t, CatalogMock{})
	c := &client{t: t, srv: srv}

	payload := `{"id":1710513000000,"date":"2024-03-15T14:30:00.000Z","paymentMethod":"pix",` +
		`"items":[],"subtotal":10,"shipping":0,"total":-10,"installments":1,"monthlyValue":-10}`

	rec := c.do(http.MethodGet, "/order-confirmation?order="+url.QueryEscape(payload), nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestWishlist_Remove(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	c.do(http.MethodPost, "/api/v1/wishlist/111", nil)
	c.do(http.MethodPost, "/api/v1/wishlist/222", nil)

	rec := c.do(http.MethodDelete, "/api/v1/wishlist/111", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	books := decode[WishlistResponseDTO](t, rec).Books
	require.Len(t, books, 1)
	assert.Equal(t, "222", books[0].ISBN)

	// removing twice is harmless
	rec = c.do(http.MethodDelete, "/api/v1/wishlist/111", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[WishlistResponseDTO](t, rec).Books, 1)
}

func TestBooks_Refresh(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	rec := c.do(http.MethodPost, "/api/v1/books/refresh", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	broken := setupServer(t, CatalogMock{err: errors.New("redis down")})
	c = &client{t: t, srv: broken}
	rec = c.do(http.MethodPost, "/api/v1/books/refresh", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := setupServer(t, CatalogMock{books: testBooks()})
	c := &client{t: t, srv: srv}

	c.do(http.MethodGet, "/health", nil)
	rec := c.do(http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "bookstore_test_http_requests_total"))
}

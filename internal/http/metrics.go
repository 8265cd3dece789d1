package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Registry       *prometheus.Registry
	Requests       *prometheus.CounterVec
	LatencyMS      *prometheus.HistogramVec
	OrdersCreated  *prometheus.CounterVec
	CheckoutErrors *prometheus.CounterVec
}

// NewServerMetrics registers on a private registry so tests can build as
// many routers as they like.
func NewServerMetrics(service string) *ServerMetrics {
	reg := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bookstore",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: service,
		Name:      "orders_created_total",
		Help:      "Orders created, by payment method.",
	}, []string{"payment_method"})
	checkoutErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: service,
		Name:      "checkout_validation_failures_total",
		Help:      "Rejected submissions, by failing field.",
	}, []string{"field"})

	reg.MustRegister(requests, latency, orders, checkoutErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &ServerMetrics{
		Registry:       reg,
		Requests:       requests,
		LatencyMS:      latency,
		OrdersCreated:  orders,
		CheckoutErrors: checkoutErrors,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the storefront's Prometheus collectors.
type Registry struct {
	reg *prometheus.Registry

	OrdersPlaced   prometheus.Counter
	PollAttempts   prometheus.Counter
	Settlements    *prometheus.CounterVec // by outcome
	UnsyncedOrders prometheus.Counter
	StockFallbacks prometheus.Counter
}

// NewRegistry creates and registers the storefront collectors.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{Name: "vastrahub_orders_placed_total"})
	pollAttempts := prometheus.NewCounter(prometheus.CounterOpts{Name: "vastrahub_payment_poll_attempts_total"})
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "vastrahub_settlements_total"}, []string{"outcome"})
	unsynced := prometheus.NewCounter(prometheus.CounterOpts{Name: "vastrahub_unsynced_orders_total"})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{Name: "vastrahub_manual_stock_decrements_total"})

	r.MustRegister(ordersPlaced, pollAttempts, settlements, unsynced, fallbacks)
	return &Registry{
		reg:            r,
		OrdersPlaced:   ordersPlaced,
		PollAttempts:   pollAttempts,
		Settlements:    settlements,
		UnsyncedOrders: unsynced,
		StockFallbacks: fallbacks,
	}
}

// Handler exposes the registry for scraping.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

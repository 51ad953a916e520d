package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "balance_bot"

type CounterInterface interface {
	Inc()
}

type GaugeInterface interface {
	Set(value float64)
}

// Metrics is the counter/gauge facade handed to the engine services. Tests
// wire the noop variant, the container wires prometheus.
type Metrics struct {
	TradesPlaced    CounterInterface
	TradesCompleted CounterInterface
	OrdersRejected  CounterInterface
	EventsDropped   CounterInterface
	QueueDepth      GaugeInterface
	TotalValue      GaugeInterface
}

type noopCounter struct{}

func (noopCounter) Inc() {}

type noopGauge struct{}

func (noopGauge) Set(float64) {}

func NewNoopMetrics() *Metrics {
	c := noopCounter{}
	g := noopGauge{}

	return &Metrics{
		TradesPlaced:    c,
		TradesCompleted: c,
		OrdersRejected:  c,
		EventsDropped:   c,
		QueueDepth:      g,
		TotalValue:      g,
	}
}

type PrometheusMetrics struct {
	Metrics  *Metrics
	registry *prometheus.Registry
}

func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	tradesPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "trades_placed_total",
		Help:      "Total number of orders placed in this session.",
	})
	tradesCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "trades_completed_total",
		Help:      "Total number of fully filled orders.",
	})
	ordersRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_rejected_total",
		Help:      "Total number of venue order rejections.",
	})
	eventsDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "events_dropped_total",
		Help:      "Total number of malformed or unknown inbound events dropped.",
	})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Name:      "event_queue_depth",
		Help:      "Current inbound event queue depth.",
	})
	totalValue := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Name:      "portfolio_total_value",
		Help:      "Portfolio total value in quote currency units.",
	})

	registry.MustRegister(
		tradesPlaced,
		tradesCompleted,
		ordersRejected,
		eventsDropped,
		queueDepth,
		totalValue,
	)

	return &PrometheusMetrics{
		Metrics: &Metrics{
			TradesPlaced:    tradesPlaced,
			TradesCompleted: tradesCompleted,
			OrdersRejected:  ordersRejected,
			EventsDropped:   eventsDropped,
			QueueDepth:      queueDepth,
			TotalValue:      totalValue,
		},
		registry: registry,
	}
}

func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"atlas/internal/mailcache"
)

// Metrics owns the server's Prometheus registry and instruments.
type Metrics struct {
	registry            *prometheus.Registry
	requestsTotal       *prometheus.CounterVec
	rateLimitRejections *prometheus.CounterVec
}

// NewMetrics builds an isolated registry so tests can instantiate metrics
// repeatedly without duplicate-registration panics. The mail registry, when
// provided, is exported as a gauge of distinct cached users.
func NewMetrics(mail *mailcache.Registry) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(registry)
	m := &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		rateLimitRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter, by surface.",
		}, []string{"surface"}),
	}

	if mail != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "atlas_mailcache_users",
			Help: "Distinct users with a live mail cache.",
		}, func() float64 { return float64(mail.Users()) })
	}

	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObserveRateLimitRejection(surface string) {
	m.rateLimitRejections.WithLabelValues(surface).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() stdhttp.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

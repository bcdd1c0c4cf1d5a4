package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/naas/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the response lifecycle.
type Metrics struct {
	registry *prometheus.Registry

	Transitions   *prometheus.CounterVec
	RelayDuration *prometheus.HistogramVec
	RelayErrors   *prometheus.CounterVec
	Discarded     prometheus.Counter
	TactScore     prometheus.Histogram
}

// NewMetrics registers the collectors on a fresh registry, including the Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naas_transitions_total",
				Help: "Lifecycle transitions by target state and trigger.",
			},
			[]string{"to", "trigger"},
		),
		RelayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "naas_relay_duration_seconds",
				Help:    "Duration of relay round trips.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"trigger"},
		),
		RelayErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naas_relay_errors_total",
				Help: "Failed relay round trips by upstream status (0 when none).",
			},
			[]string{"status"},
		),
		Discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "naas_discarded_responses_total",
			Help: "Relay results dropped because a newer request superseded them.",
		}),
		TactScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "naas_tact_score",
			Help:    "Tact scores of shown responses.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
	}
	reg.MustRegister(
		m.Transitions, m.RelayDuration, m.RelayErrors, m.Discarded, m.TactScore,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records lifecycle events.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.To), string(e.Trigger)).Inc()
			if e.To == domain.StateSuccess {
				m.TactScore.Observe(float64(e.Score))
			}
		},
		OnRelayReturn: func(_ context.Context, e *domain.RelayEvent) {
			m.RelayDuration.WithLabelValues(string(e.Trigger)).Observe(e.Duration.Seconds())
			if e.IsError {
				m.RelayErrors.WithLabelValues(strconv.Itoa(e.Status)).Inc()
			}
		},
		OnDiscard: func(_ context.Context, e *domain.RelayEvent) {
			m.Discarded.Inc()
		},
	}
}

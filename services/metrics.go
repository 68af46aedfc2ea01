// services/metrics.go
package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the dashboard's Prometheus instruments. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	upstreamRequests    *prometheus.CounterVec
	fallbacks           *prometheus.CounterVec
	delegationDecisions *prometheus.CounterVec
	pendingDelegations  prometheus.Gauge
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		upstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_upstream_requests_total",
			Help: "outbound API calls by target and outcome",
		}, []string{"target", "outcome"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_fallbacks_total",
			Help: "operations served by their fallback hop",
		}, []string{"operation"}),
		delegationDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_delegation_decisions_total",
			Help: "delegation confirmations by decision",
		}, []string{"decision"}),
		pendingDelegations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_delegations_pending",
			Help: "delegation prompts waiting for a decision",
		}),
	}
}

func (m *Metrics) upstream(target, outcome string) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(target, outcome).Inc()
}

func (m *Metrics) fallback(operation string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(operation).Inc()
}

func (m *Metrics) decision(decision string) {
	if m == nil {
		return
	}
	m.delegationDecisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) pending(n int) {
	if m == nil {
		return
	}
	m.pendingDelegations.Set(float64(n))
}

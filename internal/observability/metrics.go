package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the billing counters exposed on /metrics.
type Metrics struct {
	registry        *prometheus.Registry
	settlements     *prometheus.CounterVec
	creditsSettled  prometheus.Counter
	rewards         *prometheus.CounterVec
	creditsRewarded *prometheus.CounterVec
}

// NewMetrics creates the billing counters on a dedicated registry (DI constructor).
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "howl_settlements_total",
			Help: "Settlement attempts by outcome.",
		}, []string{"outcome"}),
		creditsSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "howl_credits_settled_total",
			Help: "Credits deducted from user wallets by successful settlements.",
		}),
		rewards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "howl_developer_rewards_total",
			Help: "Developer earnings by fork mode and status.",
		}, []string{"fork_mode", "status"}),
		creditsRewarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "howl_credits_rewarded_total",
			Help: "Credits paid into developer wallets by fork mode.",
		}, []string{"fork_mode"}),
	}

	registry.MustRegister(m.settlements, m.creditsSettled, m.rewards, m.creditsRewarded)

	return m
}

// RecordSettlement counts a settlement outcome and the credits it deducted.
func (m *Metrics) RecordSettlement(outcome string, amount int64) {
	m.settlements.WithLabelValues(outcome).Inc()
	if amount > 0 {
		m.creditsSettled.Add(float64(amount))
	}
}

// RecordReward counts a developer earning and the credits it paid out.
func (m *Metrics) RecordReward(forkMode string, status string, amount int64) {
	m.rewards.WithLabelValues(forkMode, status).Inc()
	if amount > 0 {
		m.creditsRewarded.WithLabelValues(forkMode).Add(float64(amount))
	}
}

// Registry returns the registry the counters are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

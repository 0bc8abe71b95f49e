package services

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the commission flow.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CommissionsCreated *prometheus.CounterVec
	CommissionSkips    *prometheus.CounterVec
	EngineErrors       prometheus.Counter
	TreeCacheHits      *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CommissionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mlm",
				Name:      "commissions_created_total",
				Help:      "Commission ledger entries inserted, by upline level",
			},
			[]string{"level"},
		),
		CommissionSkips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mlm",
				Name:      "commission_skips_total",
				Help:      "Orders for which no commission was created, by reason",
			},
			[]string{"reason"},
		),
		EngineErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "mlm",
				Name:      "engine_errors_total",
				Help:      "Commission engine invocations that failed on the store",
			},
		),
		TreeCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mlm",
				Name:      "tree_cache_lookups_total",
				Help:      "Referral tree cache lookups, by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) created(level int) {
	if m == nil {
		return
	}
	m.CommissionsCreated.WithLabelValues(strconv.Itoa(level)).Inc()
}

func (m *Metrics) skipped(reason SkipReason) {
	if m == nil {
		return
	}
	m.CommissionSkips.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) engineError() {
	if m == nil {
		return
	}
	m.EngineErrors.Inc()
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.TreeCacheHits.WithLabelValues(result).Inc()
}

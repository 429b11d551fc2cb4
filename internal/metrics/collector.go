package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch kinds.
const (
	KindMenu  = "menu"
	KindLabel = "label"
)

// Fetch and enrichment outcomes.
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeFetched  = "fetched"
	OutcomeError    = "error"
	OutcomeEnriched = "enriched"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// Collector exports pipeline and planner activity to prometheus. A nil
// *Collector is valid and records nothing.
type Collector struct {
	fetches      *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	enrichments  *prometheus.CounterVec
	plans        *prometheus.CounterVec
	planScore    prometheus.Histogram
}

// NewCollector creates the collectors and registers them with reg. Pass
// prometheus.NewRegistry() in tests to avoid clashing with the default
// registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dining",
			Name:      "fetches_total",
			Help:      "Menu and label document lookups by outcome.",
		}, []string{"kind", "outcome"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dining",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of network fetches that missed the cache.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		enrichments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dining",
			Name:      "enrichments_total",
			Help:      "Items processed by batch enrichment by outcome.",
		}, []string{"outcome"}),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dining",
			Name:      "plans_total",
			Help:      "Generated plans, split by whether a plan was found.",
		}, []string{"outcome"}),
		planScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dining",
			Name:      "plan_score",
			Help:      "Score of the selected full-day plan.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
		}),
	}
	reg.MustRegister(c.fetches, c.fetchLatency, c.enrichments, c.plans, c.planScore)
	return c
}

// ObserveFetch records one document lookup. Latency is only observed for
// network fetches.
func (c *Collector) ObserveFetch(kind, outcome string, latency time.Duration) {
	if c == nil {
		return
	}
	c.fetches.WithLabelValues(kind, outcome).Inc()
	if outcome != OutcomeCacheHit {
		c.fetchLatency.WithLabelValues(kind).Observe(latency.Seconds())
	}
}

// ObserveEnrichment records the outcome of enriching one item.
func (c *Collector) ObserveEnrichment(outcome string) {
	if c == nil {
		return
	}
	c.enrichments.WithLabelValues(outcome).Inc()
}

// ObservePlan records a planning result.
func (c *Collector) ObservePlan(found bool, score float64) {
	if c == nil {
		return
	}
	if !found {
		c.plans.WithLabelValues("empty").Inc()
		return
	}
	c.plans.WithLabelValues("found").Inc()
	c.planScore.Observe(score)
}

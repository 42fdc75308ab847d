package autolink

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the autolink engine. All
// methods are nil-safe so the engine runs unchanged without metrics.
type Metrics struct {
	// Source aggregation
	SourceCacheHitsTotal   prometheus.Counter
	SourceCacheMissesTotal prometheus.Counter
	SourceCacheSize        prometheus.Gauge
	ListFailuresTotal      *prometheus.CounterVec

	// Enrichment
	EnrichmentFetchesTotal *prometheus.CounterVec
	EnrichmentDuration     prometheus.Histogram
}

// NewMetrics creates and registers Prometheus metrics for the engine.
//
// Uses sync.Once so metrics are only registered once globally,
// preventing duplicate-collector registration panics. All metrics are
// prefixed with "autolink_".
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			SourceCacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "autolink_source_cache_hits_total",
				Help: "Total number of reference-group cache hits",
			}),
			SourceCacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "autolink_source_cache_misses_total",
				Help: "Total number of reference-group cache misses",
			}),
			SourceCacheSize: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "autolink_source_cache_size",
				Help: "Current number of cached reference-group lists",
			}),
			ListFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "autolink_integration_list_failures_total",
				Help: "Total number of failed integration autolink listings",
			}, []string{"integration"}),
			EnrichmentFetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "autolink_enrichment_fetches_total",
				Help: "Total number of issue/PR enrichment fetches",
			}, []string{"integration", "result"}), // result: "ok", "empty", "error"
			EnrichmentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "autolink_enrichment_duration_seconds",
				Help:    "Duration of issue/PR enrichment fetches",
				Buckets: prometheus.DefBuckets,
			}),
		}
	})
	return globalMetrics
}

func (m *Metrics) recordSourceCacheHit() {
	if m != nil {
		m.SourceCacheHitsTotal.Inc()
	}
}

func (m *Metrics) recordSourceCacheMiss() {
	if m != nil {
		m.SourceCacheMissesTotal.Inc()
	}
}

func (m *Metrics) setSourceCacheSize(n int) {
	if m != nil {
		m.SourceCacheSize.Set(float64(n))
	}
}

func (m *Metrics) recordListFailure(integration string) {
	if m != nil {
		m.ListFailuresTotal.WithLabelValues(integration).Inc()
	}
}

func (m *Metrics) recordEnrichmentFetch(integration, result string, elapsed time.Duration) {
	if m != nil {
		m.EnrichmentFetchesTotal.WithLabelValues(integration, result).Inc()
		m.EnrichmentDuration.Observe(elapsed.Seconds())
	}
}

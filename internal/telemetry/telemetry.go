// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the phishguard service.
package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "phishguard"

// Metrics holds all phishguard Prometheus metrics.
type Metrics struct {
	ScansTotal       *prometheus.CounterVec
	ScanDuration     prometheus.Histogram
	AnalyzerDuration *prometheus.HistogramVec
	PatternsSkipped  prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	BatchSize        prometheus.Histogram
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// initMetrics registers metrics exactly once; Prometheus panics on duplicate
// registration and tests construct multiple providers.
func initMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "phishguard_scans_total",
				Help: "Total URL scans by final classification",
			}, []string{"classification"}),
			ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "phishguard_scan_duration_seconds",
				Help:    "Duration of full URL scans",
				Buckets: prometheus.DefBuckets,
			}),
			AnalyzerDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "phishguard_analyzer_duration_seconds",
				Help:    "Duration of individual component analyzers",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			}, []string{"component"}),
			PatternsSkipped: promauto.NewCounter(prometheus.CounterOpts{
				Name: "phishguard_patterns_skipped_total",
				Help: "Stored phishing patterns skipped because they do not compile",
			}),
			CacheHits: promauto.NewCounter(prometheus.CounterOpts{
				Name: "phishguard_result_cache_hits_total",
				Help: "Scan results served from the result cache",
			}),
			CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
				Name: "phishguard_result_cache_misses_total",
				Help: "Scans that missed the result cache",
			}),
			BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "phishguard_batch_size",
				Help:    "Size of batch scan requests",
				Buckets: []float64{1, 5, 10, 25, 50, 100},
			}),
		}
	})
	return metrics
}

// NewProvider initializes telemetry with Prometheus metrics.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordScan records a completed scan. Safe to call on a nil provider.
func (p *Provider) RecordScan(classification string, d time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.ScansTotal.WithLabelValues(classification).Inc()
	p.Metrics.ScanDuration.Observe(d.Seconds())
}

// RecordAnalyzer records one component analyzer run.
func (p *Provider) RecordAnalyzer(component string, d time.Duration) {
	if p == nil {
		return
	}
	p.Metrics.AnalyzerDuration.WithLabelValues(component).Observe(d.Seconds())
}

// RecordPatternSkipped counts a stored pattern that failed to compile.
func (p *Provider) RecordPatternSkipped() {
	if p == nil {
		return
	}
	p.Metrics.PatternsSkipped.Inc()
}

// RecordCacheLookup counts a result-cache hit or miss.
func (p *Provider) RecordCacheLookup(hit bool) {
	if p == nil {
		return
	}
	if hit {
		p.Metrics.CacheHits.Inc()
	} else {
		p.Metrics.CacheMisses.Inc()
	}
}

// RecordBatch records the size of a batch scan request.
func (p *Provider) RecordBatch(size int) {
	if p == nil {
		return
	}
	p.Metrics.BatchSize.Observe(float64(size))
}

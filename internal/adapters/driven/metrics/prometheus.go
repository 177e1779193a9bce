// Package metrics exports search pipeline instrumentation to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/four-robots/unisearch/internal/core/ports/driven"
)

// Ensure Prometheus implements the interface.
var _ driven.SearchMetrics = (*Prometheus)(nil)

// Namespace prefixes every metric name.
const Namespace = "unisearch"

// Prometheus records SearchMetrics on its own registry so several instances
// (one per test, say) never collide.
type Prometheus struct {
	registry *prometheus.Registry

	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	totalCount     prometheus.Histogram

	sourceCalls    *prometheus.CounterVec
	sourceDuration *prometheus.HistogramVec
	sourceResults  *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors when withRuntime is set.
func New(withRuntime bool) *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "searches_total",
			Help:      "Search requests by outcome status.",
		}, []string{"status"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search pipeline latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		totalCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_total_results",
			Help:      "Ranked results per search before pagination.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 250},
		}),
		sourceCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "source_calls_total",
			Help:      "Backend calls by source and status.",
		}, []string{"source", "status"}),
		sourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "source_duration_seconds",
			Help:      "Backend call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		sourceResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "source_results_total",
			Help:      "Raw results returned by each backend.",
		}, []string{"source"}),
	}

	p.registry.MustRegister(p.searches, p.searchDuration, p.totalCount,
		p.sourceCalls, p.sourceDuration, p.sourceResults)
	if withRuntime {
		p.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return p
}

// ObserveSource records one backend call. Skipped calls only count.
func (p *Prometheus) ObserveSource(source, status string, elapsed time.Duration, results int) {
	p.sourceCalls.WithLabelValues(source, status).Inc()
	if status == "skipped" {
		return
	}
	p.sourceDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	p.sourceResults.WithLabelValues(source).Add(float64(results))
}

// ObserveSearch records one pipeline run.
func (p *Prometheus) ObserveSearch(status string, elapsed time.Duration, totalCount int) {
	p.searches.WithLabelValues(status).Inc()
	p.searchDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	if status != "invalid" {
		p.totalCount.Observe(float64(totalCount))
	}
}

// Registry returns the registry the collectors live on.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

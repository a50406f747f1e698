// Package metrics собирает счетчики горячего пути: кеш резолвера,
// поток событий сканирования и работу фонового писателя.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics счетчики приложения. Регистрируются в собственном registry,
// чтобы параллельные тесты не конфликтовали на глобальном.
type Metrics struct {
	registry *prometheus.Registry

	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CacheEvictions     prometheus.Counter
	CacheInvalidations prometheus.Counter

	Scans *prometheus.CounterVec

	EventsDropped prometheus.Counter
	FlushBatches  prometheus.Counter
	FlushFailures prometheus.Counter
	EventsWritten prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qrshort_resolver_cache_hits_total",
			Help: "Resolver cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qrshort_resolver_cache_misses_total",
			Help: "Resolver cache misses.",
		}),
		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qrshort_resolver_cache_evictions_total",
			Help: "Resolver cache evictions (LRU or expired status).",
		}),
		CacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qrshort_resolver_cache_invalidations_total",
			Help: "Applied cache invalidation signals.",
		}),
		Scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qrshort_scans_total",
			Help: "Resolved scans by outcome.",
		}, []string{"outcome"}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qrshort_sink_events_dropped_total",
			Help: "Scan events dropped due to full queue or failed flush.",
		}),
		FlushBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qrshort_sink_flush_batches_total",
			Help: "Scan event batches flushed to the durable store.",
		}),
		FlushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qrshort_sink_flush_failures_total",
			Help: "Scan event batches dropped after exhausting retries.",
		}),
		EventsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qrshort_sink_events_written_total",
			Help: "Scan events durably written.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		m.CacheHits, m.CacheMisses, m.CacheEvictions, m.CacheInvalidations,
		m.Scans,
		m.EventsDropped, m.FlushBatches, m.FlushFailures, m.EventsWritten,
	)
	return m
}

// Handler возвращает http-обработчик для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Исходы резолва для лейбла outcome счетчика Scans.
const (
	OutcomeRedirect    = "redirect"
	OutcomeNotFound    = "not_found"
	OutcomeInactive    = "inactive"
	OutcomeUnavailable = "unavailable"
)

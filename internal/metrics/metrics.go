// Package metrics предоставляет prometheus-счетчики конвейера сообщений и кеша.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry набор счетчиков сервиса
type Registry struct {
	reg *prometheus.Registry

	// Конвейер сообщений
	Published          prometheus.Counter
	PublishFailures    prometheus.Counter
	Consumed           prometheus.Counter
	DecodeFailures     prometheus.Counter
	HandleRetries      prometheus.Counter
	DeadLettered       prometheus.Counter
	HandleLatencySec   prometheus.Histogram

	// Кеш каталога
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewRegistry создает новый набор счетчиков
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderhub_events_published_total"})
	publishFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderhub_events_publish_failures_total"})
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderhub_events_consumed_total"})
	decodeFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderhub_events_decode_failures_total"})
	handleRetries := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderhub_events_handle_retries_total"})
	deadLettered := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderhub_events_dead_lettered_total"})
	handleLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderhub_events_handle_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderhub_product_cache_hits_total"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderhub_product_cache_misses_total"})

	r.MustRegister(published, publishFailures, consumed, decodeFailures,
		handleRetries, deadLettered, handleLatency, cacheHits, cacheMisses)

	return &Registry{
		reg:              r,
		Published:        published,
		PublishFailures:  publishFailures,
		Consumed:         consumed,
		DecodeFailures:   decodeFailures,
		HandleRetries:    handleRetries,
		DeadLettered:     deadLettered,
		HandleLatencySec: handleLatency,
		CacheHits:        cacheHits,
		CacheMisses:      cacheMisses,
	}
}

// Handler возвращает HTTP handler для /metrics
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

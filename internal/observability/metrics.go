package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics. Each collector owns its
// registry so tests and multiple servers never collide. All methods are
// safe on a nil collector.
type Collector struct {
	registry *prometheus.Registry

	Generations        *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	ProviderErrors     *prometheus.CounterVec
	ProviderDuration   *prometheus.HistogramVec
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	BrokenReferences   prometheus.Counter
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// NewCollector creates a collector with metrics under the namespace
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Schema graphs generated, by page kind",
		}, []string{"kind"}),
		GenerationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time to generate a schema graph",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Provider failures and recovered panics",
		}, []string{"provider"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_duration_seconds",
			Help:      "Time spent in each provider on a cache miss",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
		}, []string{"provider"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Provider cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Provider cache misses",
		}),
		BrokenReferences: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broken_references_total",
			Help:      "References to @ids missing from the generated graph",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		c.Generations,
		c.GenerationDuration,
		c.ProviderErrors,
		c.ProviderDuration,
		c.CacheHits,
		c.CacheMisses,
		c.BrokenReferences,
		c.HTTPRequests,
		c.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordGeneration records one generated graph
func (c *Collector) RecordGeneration(kind string, d time.Duration) {
	if c == nil {
		return
	}
	c.Generations.WithLabelValues(kind).Inc()
	c.GenerationDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordProvider records a provider run on a cache miss
func (c *Collector) RecordProvider(name string, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.ProviderDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		c.ProviderErrors.WithLabelValues(name).Inc()
	}
}

// RecordCache records a provider cache lookup
func (c *Collector) RecordCache(hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.CacheHits.Inc()
	} else {
		c.CacheMisses.Inc()
	}
}

// RecordBrokenReferences adds to the broken reference count
func (c *Collector) RecordBrokenReferences(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.BrokenReferences.Add(float64(n))
}

// RecordHTTP records a served request
func (c *Collector) RecordHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

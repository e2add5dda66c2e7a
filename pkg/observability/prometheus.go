package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records hook events as Prometheus metrics. Each collector owns
// its registry, so several can coexist in one process (tests, embedded
// servers).
type Collector struct {
	registry *prometheus.Registry

	// Pipeline metrics
	StageDuration *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec
	NodesBuilt    prometheus.Histogram
	NodesMerged   prometheus.Counter
	Converged     *prometheus.CounterVec
	Iterations    prometheus.Histogram

	// Cache metrics
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	CacheSetBytes *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPErrors   *prometheus.CounterVec
}

var (
	_ PipelineHooks = (*Collector)(nil)
	_ CacheHooks    = (*Collector)(nil)
	_ HTTPHooks     = (*Collector)(nil)
)

// NewCollector creates a collector whose metric names carry namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Total number of failed pipeline stages",
		}, []string{"stage"}),
		NodesBuilt: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tree_nodes",
			Help:      "Number of nodes in built trees",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		NodesMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_merged_total",
			Help:      "Total number of nodes merged by contraction",
		}),
		Converged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Total number of computed layouts by convergence",
		}, []string{"converged"}),
		Iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_iterations",
			Help:      "Outer iterations used per layout",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		}, []string{"type"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		}, []string{"type"}),
		CacheSetBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_set_bytes_total",
			Help:      "Total bytes written to the cache",
		}, []string{"type"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Total number of HTTP requests that failed with a server error",
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		c.StageDuration, c.StageErrors, c.NodesBuilt, c.NodesMerged,
		c.Converged, c.Iterations,
		c.CacheHits, c.CacheMisses, c.CacheSetBytes,
		c.HTTPRequests, c.HTTPDuration, c.HTTPErrors,
	)
	return c
}

// Registry returns the Prometheus registry of this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) stage(name string, d time.Duration, err error) {
	c.StageDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		c.StageErrors.WithLabelValues(name).Inc()
	}
}

func (c *Collector) OnBuildStart(context.Context) {}

func (c *Collector) OnBuildComplete(_ context.Context, nodeCount int, d time.Duration, err error) {
	c.stage("build", d, err)
	if err == nil {
		c.NodesBuilt.Observe(float64(nodeCount))
	}
}

func (c *Collector) OnCollapseStart(context.Context, int, float64) {}

func (c *Collector) OnCollapseComplete(_ context.Context, merged int, d time.Duration, err error) {
	c.stage("collapse", d, err)
	if err == nil {
		c.NodesMerged.Add(float64(merged))
	}
}

func (c *Collector) OnLayoutStart(context.Context, int) {}

func (c *Collector) OnLayoutComplete(_ context.Context, converged bool, iterations int, d time.Duration, err error) {
	c.stage("layout", d, err)
	if err == nil {
		c.Converged.WithLabelValues(strconv.FormatBool(converged)).Inc()
		c.Iterations.Observe(float64(iterations))
	}
}

func (c *Collector) OnRenderStart(context.Context, []string) {}

func (c *Collector) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	c.stage("render", d, err)
}

func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.CacheHits.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.CacheMisses.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnCacheSet(_ context.Context, keyType string, size int) {
	c.CacheSetBytes.WithLabelValues(keyType).Add(float64(size))
}

func (c *Collector) OnRequest(context.Context, string, string) {}

func (c *Collector) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) OnError(_ context.Context, method, route string, _ error) {
	c.HTTPErrors.WithLabelValues(method, route).Inc()
}

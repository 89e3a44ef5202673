// Package metrics exports observability hook events as Prometheus metrics.
//
// A [Registry] implements every hook interface of the observability
// package. The HTTP server installs one at startup and serves it on
// /metrics:
//
//	reg := metrics.NewRegistry()
//	reg.Install()
//	r.Handle("/metrics", reg.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/topodraw/pkg/observability"
)

const namespace = "topodraw"

// Registry holds all collectors of the service.
type Registry struct {
	// Layout
	LayoutsTotal    *prometheus.CounterVec
	LayoutDuration  *prometheus.HistogramVec
	LayoutNodes     prometheus.Histogram
	UnresolvedEdges prometheus.Counter
	LayoutsInFlight prometheus.Gauge
	RendersTotal    *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec

	// Cache
	CacheRequestsTotal *prometheus.CounterVec
	CacheWriteBytes    *prometheus.HistogramVec

	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all collectors initialized, plus the
// standard Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	r.initPipelineMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initPipelineMetrics() {
	f := promauto.With(r.registry)
	r.LayoutsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "layouts_total",
		Help:      "Layouts computed, by orientation and status",
	}, []string{"orientation", "status"})
	r.LayoutDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layout_duration_seconds",
		Help:      "Layout computation latency",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"orientation"})
	r.LayoutNodes = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "layout_nodes",
		Help:      "Nodes per laid out topology",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})
	r.UnresolvedEdges = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unresolved_edges_total",
		Help:      "Edges dropped because an endpoint address matched no port",
	})
	r.LayoutsInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "layouts_in_flight",
		Help:      "Layouts currently being computed",
	})
	r.RendersTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "renders_total",
		Help:      "Output files rendered, by format and status",
	}, []string{"format", "status"})
	r.RenderDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Render latency per format set",
		Buckets:   prometheus.DefBuckets,
	}, []string{"format"})
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)
	r.CacheRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Cache lookups by key type and result",
	}, []string{"key_type", "result"})
	r.CacheWriteBytes = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cache_write_bytes",
		Help:      "Size of cache writes",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
	}, []string{"key_type"})
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)
	r.HTTPRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
	r.HTTPRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	r.HTTPRequestsInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "HTTP requests currently being served",
	})
}

// Prometheus returns the underlying Prometheus registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Install registers r as the process-wide pipeline, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// =============================================================================
// Hook implementations
// =============================================================================

// OnLayoutStart implements observability.PipelineHooks.
func (r *Registry) OnLayoutStart(_ context.Context, _ string, nodeCount, _ int) {
	r.LayoutsInFlight.Inc()
	r.LayoutNodes.Observe(float64(nodeCount))
}

// OnLayoutComplete implements observability.PipelineHooks.
func (r *Registry) OnLayoutComplete(_ context.Context, orientation string, unresolved int, d time.Duration, err error) {
	r.LayoutsInFlight.Dec()
	r.LayoutsTotal.WithLabelValues(orientation, status(err)).Inc()
	r.LayoutDuration.WithLabelValues(orientation).Observe(d.Seconds())
	r.UnresolvedEdges.Add(float64(unresolved))
}

// OnRenderStart implements observability.PipelineHooks.
func (r *Registry) OnRenderStart(context.Context, []string) {}

// OnRenderComplete implements observability.PipelineHooks.
func (r *Registry) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	for _, f := range formats {
		r.RendersTotal.WithLabelValues(f, status(err)).Inc()
		r.RenderDuration.WithLabelValues(f).Observe(d.Seconds())
	}
}

// OnCacheHit implements observability.CacheHooks.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheWriteBytes.WithLabelValues(keyType).Observe(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (r *Registry) OnRequest(context.Context, string, string) {
	r.HTTPRequestsInFlight.Inc()
}

// OnResponse implements observability.HTTPHooks.
func (r *Registry) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	r.HTTPRequestsInFlight.Dec()
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.HTTPHooks     = (*Registry)(nil)
)

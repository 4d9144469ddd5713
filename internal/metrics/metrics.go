// Package metrics exports the observability hooks as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/archflow/pkg/observability"
)

const namespace = "archflow"

// Metrics implements every hook interface in package observability on its
// own registry.
type Metrics struct {
	reg *prometheus.Registry

	mutations    *prometheus.CounterVec
	historyMoves *prometheus.CounterVec
	saves        *prometheus.CounterVec
	saveDuration prometheus.Histogram
	saveNodes    prometheus.Histogram

	layouts        *prometheus.CounterVec
	layoutDuration *prometheus.HistogramVec
	layoutNodes    prometheus.Histogram
	crossings      prometheus.Histogram

	cacheLookups *prometheus.CounterVec
	cacheBytes   *prometheus.CounterVec

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
}

// New creates the metrics on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,

		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_mutations_total",
			Help:      "Committed editor mutations by operation",
		}, []string{"op"}),
		historyMoves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_history_moves_total",
			Help:      "Undo and redo steps that changed the document",
		}, []string{"direction"}),
		saves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_saves_total",
			Help:      "Save attempts by result",
		}, []string{"result"}),
		saveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "editor_save_duration_seconds",
			Help:      "Save latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		saveNodes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "editor_save_nodes",
			Help:      "Nodes per saved document",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),

		layouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_runs_total",
			Help:      "Layout runs by direction and result",
		}, []string{"direction", "result"}),
		layoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Layout latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}, []string{"direction"}),
		layoutNodes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_nodes",
			Help:      "Nodes per layout run",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		crossings: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_crossings",
			Help:      "Edge crossings of the chosen ordering",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"key_type"}),

		queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_queries_total",
			Help:      "Store operations by backend, operation and result",
		}, []string{"backend", "op", "result"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_query_duration_seconds",
			Help:      "Store operation latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}, []string{"backend", "op"}),
	}
}

// Install registers m as the process-wide hooks.
func (m *Metrics) Install() {
	observability.SetEditorHooks(m)
	observability.SetLayoutHooks(m)
	observability.SetCacheHooks(m)
	observability.SetStoreHooks(m)
}

// Registry returns the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnMutation(_ context.Context, op string) {
	m.mutations.WithLabelValues(op).Inc()
}

func (m *Metrics) OnUndo(context.Context) { m.historyMoves.WithLabelValues("undo").Inc() }
func (m *Metrics) OnRedo(context.Context) { m.historyMoves.WithLabelValues("redo").Inc() }

func (m *Metrics) OnSave(_ context.Context, nodeCount, _ int, d time.Duration, err error) {
	m.saves.WithLabelValues(result(err)).Inc()
	m.saveDuration.Observe(d.Seconds())
	if err == nil {
		m.saveNodes.Observe(float64(nodeCount))
	}
}

func (m *Metrics) OnLayoutStart(_ context.Context, _ string, nodeCount int) {
	m.layoutNodes.Observe(float64(nodeCount))
}

func (m *Metrics) OnLayoutComplete(_ context.Context, direction string, crossings int, d time.Duration, err error) {
	m.layouts.WithLabelValues(direction, result(err)).Inc()
	m.layoutDuration.WithLabelValues(direction).Observe(d.Seconds())
	if err == nil {
		m.crossings.Observe(float64(crossings))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnQuery(_ context.Context, backend, op string, d time.Duration, err error) {
	m.queries.WithLabelValues(backend, op, result(err)).Inc()
	m.queryDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}

var (
	_ observability.EditorHooks = (*Metrics)(nil)
	_ observability.LayoutHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.StoreHooks  = (*Metrics)(nil)
)

// Package metrics exposes Prometheus metrics of the loader service on a
// dedicated listener.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MDWio/ohif-viewer/imagecache"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels of a resolution.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeNoLoader = "no_loader"
)

// CacheStatsSource reports image cache counters, see imagecache.Cache.
type CacheStatsSource interface {
	Stats() imagecache.Stats
}

type MetricsServer struct {
	namespace string
	registry  *prometheus.Registry
	srv      *http.Server

	resolutions    *prometheus.CounterVec
	resolveSeconds *prometheus.HistogramVec
	filesAdded     prometheus.Counter
	bytesServed    prometheus.Counter
}

// New creates the metrics registry for namespace. The server listens on addr
// once ListenAndServe is called.
func New(namespace, addr string) (*MetricsServer, error) {
	if namespace == "" {
		return nil, errors.New("metrics: namespace is required")
	}

	m := &MetricsServer{
		namespace: namespace,
		registry:  prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Dataset resolutions by selected strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		resolveSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Time from resolution to retrieved bytes, by strategy.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"strategy"}),
		filesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_registered_total",
			Help:      "Blobs registered with the file manager over HTTP.",
		}),
		bytesServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instance_bytes_served_total",
			Help:      "Instance bytes returned to clients.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.resolutions,
		m.resolveSeconds,
		m.filesAdded,
		m.bytesServed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}

	mux := chi.NewRouter()
	mux.Handle("/metrics", m.Handler())

	m.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *MetricsServer) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveResolve records one resolution.
func (m *MetricsServer) ObserveResolve(strategy, outcome string, d time.Duration) {
	m.resolutions.WithLabelValues(strategy, outcome).Inc()
	if outcome != OutcomeNoLoader {
		m.resolveSeconds.WithLabelValues(strategy).Observe(d.Seconds())
	}
}

func (m *MetricsServer) ObserveFileAdded() {
	m.filesAdded.Inc()
}

func (m *MetricsServer) ObserveBytesServed(n int) {
	m.bytesServed.Add(float64(n))
}

// RegisterImageCache exports the counters of cache, read at scrape time.
func (m *MetricsServer) RegisterImageCache(cache CacheStatsSource) error {
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: "image_cache", Name: name, Help: help}
	}

	for _, c := range []prometheus.Collector{
		prometheus.NewCounterFunc(opts("hits_total", "Image cache hits."), func() float64 {
			return float64(cache.Stats().Hits)
		}),
		prometheus.NewCounterFunc(opts("misses_total", "Image cache misses."), func() float64 {
			return float64(cache.Stats().Misses)
		}),
		prometheus.NewCounterFunc(opts("evictions_total", "Images evicted from the cache."), func() float64 {
			return float64(cache.Stats().Evictions)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: "image_cache",
			Name:      "images",
			Help:      "Images currently cached.",
		}, func() float64 {
			return float64(cache.Stats().Len)
		}),
	} {
		if err := m.registry.Register(c); err != nil {
			return fmt.Errorf("failed to register image cache metrics: %w", err)
		}
	}
	return nil
}

func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}

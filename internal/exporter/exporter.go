// Package exporter mirrors the active panel's latest derived values as
// Prometheus gauges.
package exporter

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	tmerrors "github.com/rileyhilliard/tmon/internal/errors"
	"github.com/rileyhilliard/tmon/internal/logger"
	"github.com/rileyhilliard/tmon/internal/monitor"
)

const namespace = "tmon"

// entityLabels names the per-entity label of each metric. Host-wide
// metrics have none.
var entityLabels = map[monitor.Metric]string{
	monitor.MetricNetRx:      "interface",
	monitor.MetricNetTx:      "interface",
	monitor.MetricDiskRead:   "device",
	monitor.MetricDiskWrite:  "device",
	monitor.MetricProcRead:   "pid",
	monitor.MetricProcWrite:  "pid",
	monitor.MetricGPUPercent: "gpu",
}

var help = map[monitor.Metric]string{
	monitor.MetricCPUPercent:  "Aggregate CPU busy share over the last tick",
	monitor.MetricMemPercent:  "Memory in use as a share of total",
	monitor.MetricSwapPercent: "Swap in use as a share of total",
	monitor.MetricNetRx:       "Bytes received per second",
	monitor.MetricNetTx:       "Bytes transmitted per second",
	monitor.MetricDiskRead:    "Bytes read per second",
	monitor.MetricDiskWrite:   "Bytes written per second",
	monitor.MetricProcRead:    "Storage bytes read per second by a process",
	monitor.MetricProcWrite:   "Storage bytes written per second by a process",
	monitor.MetricGPUPercent:  "GPU utilization",
}

// Exporter is a monitor.Recorder backed by a private registry.
type Exporter struct {
	host     string
	registry *prometheus.Registry
	gauges   map[monitor.Metric]*prometheus.GaugeVec

	mu  sync.Mutex
	srv *http.Server
}

var _ monitor.Recorder = (*Exporter)(nil)

// New creates an exporter whose samples carry host as a label. The
// registry also exposes tmon's own process and runtime metrics.
func New(host string) *Exporter {
	e := &Exporter{
		host:     host,
		registry: prometheus.NewRegistry(),
		gauges:   make(map[monitor.Metric]*prometheus.GaugeVec, len(monitor.Metrics)),
	}
	for _, m := range monitor.Metrics {
		labels := []string{"host"}
		if l, ok := entityLabels[m]; ok {
			labels = append(labels, l)
		}
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      string(m),
			Help:      help[m],
		}, labels)
		e.registry.MustRegister(g)
		e.gauges[m] = g
	}
	e.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return e
}

func (e *Exporter) labels(m monitor.Metric, entity string) []string {
	if _, ok := entityLabels[m]; ok {
		return []string{e.host, entity}
	}
	return []string{e.host}
}

// Record sets the gauge for m and entity.
func (e *Exporter) Record(m monitor.Metric, entity string, value float64) {
	g, ok := e.gauges[m]
	if !ok {
		return
	}
	g.WithLabelValues(e.labels(m, entity)...).Set(value)
}

// Forget removes the series for an entity that no longer exists.
func (e *Exporter) Forget(m monitor.Metric, entity string) {
	if g, ok := e.gauges[m]; ok {
		g.DeleteLabelValues(e.labels(m, entity)...)
	}
}

// Reset drops every series. Called when a different panel becomes active.
func (e *Exporter) Reset() {
	for _, g := range e.gauges {
		g.Reset()
	}
}

// Gatherer exposes the registry, for tests and doctor output.
func (e *Exporter) Gatherer() prometheus.Gatherer {
	return e.registry
}

// Handler serves the registry in the Prometheus text format.
func (e *Exporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start listens on addr and serves in the background until ctx is done.
// The listener is bound before returning so address errors surface at
// startup. It returns the bound address.
func (e *Exporter) Start(ctx context.Context, addr string, log logger.Logger) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", tmerrors.WrapWithCode(err, tmerrors.ErrConfig,
			"Couldn't listen on metrics address "+addr,
			"Pick a free port with --metrics-addr, or leave it empty to disable the exporter")
	}

	srv := &http.Server{Handler: e.Handler(), ReadHeaderTimeout: 5 * time.Second}
	e.mu.Lock()
	e.srv = srv
	e.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server exited: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = e.Shutdown(context.Background())
	}()

	log.Info("serving metrics on http://%s/metrics", ln.Addr())
	return ln.Addr().String(), nil
}

// Shutdown stops the server started by Start.
func (e *Exporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	srv := e.srv
	e.srv = nil
	e.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

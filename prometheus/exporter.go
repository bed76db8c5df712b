package prometheus

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// defaultReadHeaderTimeout is the timeout for reading request headers.
const defaultReadHeaderTimeout = 10 * time.Second

// Exporter serves a registry's metrics over HTTP.
type Exporter struct {
	addr     string
	registry *prometheus.Registry
	metrics  *Metrics

	mu     sync.Mutex
	server *http.Server
}

// NewExporter creates a registry holding the parley collectors plus Go
// runtime and process collectors, served at addr.
func NewExporter(addr string) *Exporter {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &Exporter{
		addr:     addr,
		registry: reg,
		metrics:  New(reg),
	}
}

// Metrics returns the collectors registered on the exporter's registry.
func (e *Exporter) Metrics() *Metrics {
	return e.metrics
}

// Handler returns an http.Handler serving /metrics and /health.
func (e *Exporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start serves metrics until Shutdown. It returns http.ErrServerClosed after
// a graceful shutdown.
func (e *Exporter) Start() error {
	e.mu.Lock()
	if e.server != nil {
		e.mu.Unlock()
		return nil
	}
	e.server = &http.Server{
		Addr:              e.addr,
		Handler:           e.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}
	srv := e.server
	e.mu.Unlock()

	return srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (e *Exporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.server == nil {
		return nil
	}
	err := e.server.Shutdown(ctx)
	e.server = nil
	return err
}

package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus instrumentation. It is purely
// observability: nothing here participates in the wire protocol. Built
// before the engine is opened so its RecordCompaction method can be handed
// to options.WithOnCompaction.
type Metrics struct {
	reg *prometheus.Registry

	connsAccepted prometheus.Counter
	connsActive   prometheus.Gauge
	requestsTotal *prometheus.CounterVec
	requestErrors *prometheus.CounterVec
	compactions   prometheus.Counter
}

// NewMetrics creates a fresh registry and registers every server gauge and
// counter against it.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		reg: reg,
		connsAccepted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvs_connections_accepted_total",
			Help: "Total TCP connections accepted by the server.",
		}),
		connsActive: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "kvs_connections_active",
			Help: "Currently open client connections.",
		}),
		requestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "kvs_requests_total",
			Help: "Requests processed, by opcode.",
		}, []string{"op"}),
		requestErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "kvs_request_errors_total",
			Help: "Requests that produced an error response, by opcode and error code.",
		}, []string{"op", "code"}),
		compactions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "kvs_compactions_total",
			Help: "Compaction passes triggered by the writer.",
		}),
	}
}

// RecordCompaction is handed to options.WithOnCompaction so the engine can
// drive this counter without importing the server package.
func (m *Metrics) RecordCompaction() {
	m.compactions.Inc()
}

func (m *Metrics) recordRequest(op string) {
	m.requestsTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) recordError(op, code string) {
	m.requestErrors.WithLabelValues(op, code).Inc()
}

// adminRouter builds the /metrics and /healthz mux used by the optional
// admin HTTP listener.
func adminRouter(m *Metrics) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}

package metrics

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "todoshare_ws_connections",
		Help: "Current number of open websocket connections",
	})
	EventsDelivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "todoshare_events_delivered_total",
		Help: "Realtime events queued to a connection",
	}, []string{"action"})
	EventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "todoshare_events_dropped_total",
		Help: "Realtime events dropped because the connection was gone or its queue was full",
	}, []string{"action"})
	RegisteredUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "todoshare_registered_users",
		Help: "Number of registered users",
	})
	StoredLists = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "todoshare_lists",
		Help: "Number of todo lists in the store",
	})
	StoreMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "todoshare_store_mutations_total",
		Help: "Successful list store mutations by operation",
	}, []string{"op"})
	HttpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(WsConnections, EventsDelivered, EventsDropped, RegisteredUsers, StoredLists, StoreMutations, HttpRequestsTotal, HttpRequestDuration)
}

// Middleware records request count and latency, labelled by the chi route
// pattern so that ids in the path do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		labels := prometheus.Labels{"method": r.Method, "path": path, "status": strconv.Itoa(m.Code)}
		HttpRequestsTotal.With(labels).Inc()
		HttpRequestDuration.With(labels).Observe(m.Duration.Seconds())
	})
}

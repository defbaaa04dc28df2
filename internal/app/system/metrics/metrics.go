// Package metrics exposes Prometheus instruments for the API: request
// latency, structural mutations, rejected requests, order repairs and
// collection sizes.
//
// Every method tolerates a nil *Metrics so packages can be built and tested
// without a registry.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	metricsstore "github.com/dalemusser/kanban/internal/app/store/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

const namespace = "kanban"

// Metrics owns a private registry so tests never collide on the default one.
type Metrics struct {
	Registry *prometheus.Registry

	requests  *prometheus.HistogramVec
	mutations *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	repairs   *prometheus.CounterVec
}

// New registers every instrument plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Completed structural mutations by entity and operation.",
		}, []string{"entity", "op"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_requests_total",
			Help:      "Requests refused before reaching storage, by reason.",
		}, []string{"reason"}),
		repairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_repairs_total",
			Help:      "Containers whose sibling orders were re-densified.",
		}, []string{"container", "source"}),
	}
	reg.MustRegister(
		m.requests, m.mutations, m.rejected, m.repairs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware records latency labelled with the chi route pattern, so
// /api/cards/{id} is one series rather than one per card.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}

// Mutation counts one completed create/update/delete/reorder/move.
func (m *Metrics) Mutation(entity, op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(entity, op).Inc()
}

// Rejected counts a refused request (unauthorized, forbidden, not_found,
// bad_request, rate_limited).
func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// Repaired counts n re-densified containers of one kind ("board" for its
// columns, "column" for its cards) found by source ("read" or "worker").
func (m *Metrics) Repaired(container, source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.repairs.WithLabelValues(container, source).Add(float64(n))
}

// WatchCollections exports collection sizes as gauges, read at scrape time.
func (m *Metrics) WatchCollections(db *mongo.Database, timeout time.Duration) {
	if m == nil {
		return
	}
	m.Registry.MustRegister(&countsCollector{db: db, timeout: timeout})
}

var countsDesc = prometheus.NewDesc(
	prometheus.BuildFQName(namespace, "", "documents"),
	"Estimated documents per collection.",
	[]string{"collection"}, nil,
)

type countsCollector struct {
	db      *mongo.Database
	timeout time.Duration
}

func (c *countsCollector) Describe(ch chan<- *prometheus.Desc) { ch <- countsDesc }

func (c *countsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	counts := metricsstore.FetchCounts(ctx, c.db)
	for name, n := range map[string]int64{
		"users":    counts.Users,
		"boards":   counts.Boards,
		"columns":  counts.Columns,
		"cards":    counts.Cards,
		"comments": counts.Comments,
	} {
		ch <- prometheus.MustNewConstMetric(countsDesc, prometheus.GaugeValue, float64(n), name)
	}
}

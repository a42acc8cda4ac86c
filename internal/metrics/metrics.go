// Package metrics exposes dashboard activity as Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry. All methods are no-ops on a nil Recorder.
type Recorder struct {
	reg         *prometheus.Registry
	reloads     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	rows        prometheus.Gauge
	skipped     *prometheus.GaugeVec
	aggregate   prometheus.Histogram
	requests    *prometheus.CounterVec
}

// New registers the dashboard collectors plus Go runtime and process metrics.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datavis",
			Name:      "dataset_reloads_total",
			Help:      "Dataset loads by result.",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datavis",
			Name:      "view_transitions_total",
			Help:      "Drill and map mode requests by action and whether they applied.",
		}, []string{"action", "applied"}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "datavis",
			Name:      "dataset_rows",
			Help:      "Rows in the current snapshot.",
		}),
		skipped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "datavis",
			Name:      "dataset_rows_degraded",
			Help:      "Rows of the current snapshot excluded from an aggregate, by reason.",
		}, []string{"reason"}),
		aggregate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "datavis",
			Name:      "aggregate_duration_seconds",
			Help:      "Time spent in one aggregation pass.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datavis",
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
	}
	r.reg.MustRegister(
		r.reloads, r.transitions, r.rows, r.skipped, r.aggregate, r.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry is the underlying registry, for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Reload records a dataset load attempt.
func (r *Recorder) Reload(ok bool) {
	if r == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	r.reloads.WithLabelValues(result).Inc()
}

// Transition records a drill or mode request.
func (r *Recorder) Transition(action string, applied bool) {
	if r == nil {
		return
	}
	a := "false"
	if applied {
		a = "true"
	}
	r.transitions.WithLabelValues(action, a).Inc()
}

// Snapshot records the size and degradation counters of a new snapshot.
func (r *Recorder) Snapshot(rows int, degraded map[string]int, took time.Duration) {
	if r == nil {
		return
	}
	r.rows.Set(float64(rows))
	for reason, n := range degraded {
		r.skipped.WithLabelValues(reason).Set(float64(n))
	}
	r.aggregate.Observe(took.Seconds())
}

// Request counts one API response.
func (r *Recorder) Request(route string, code int) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

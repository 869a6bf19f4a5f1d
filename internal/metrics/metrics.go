package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives engine measurements.
type Recorder interface {
	PagesDeleted(operation string, soft, purged int)
	PageRestored(objectType string)
	SyncFanOut(attribute string, written int)
	SyncCheck(state string)
	ConflictRetry(operation string)
	OperationFailed(operation, category string)
}

// NoOp returns a recorder that drops every measurement.
func NoOp() Recorder {
	return noopRecorder{}
}

type noopRecorder struct{}

func (noopRecorder) PagesDeleted(string, int, int)  {}
func (noopRecorder) PageRestored(string)            {}
func (noopRecorder) SyncFanOut(string, int)         {}
func (noopRecorder) SyncCheck(string)               {}
func (noopRecorder) ConflictRetry(string)           {}
func (noopRecorder) OperationFailed(string, string) {}

// Prometheus records engine measurements as Prometheus collectors.
type Prometheus struct {
	deleted  *prometheus.CounterVec
	restored *prometheus.CounterVec
	fanOut   *prometheus.HistogramVec
	checks   *prometheus.CounterVec
	retries  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewPrometheus registers the engine collectors with reg. A nil registerer
// uses the default Prometheus registry.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Prometheus{
		deleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "variants",
				Subsystem: "pages",
				Name:      "deleted_total",
				Help:      "Pages removed by delete operations, by operation and mode",
			},
			[]string{"operation", "mode"},
		),
		restored: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "variants",
				Subsystem: "wastebin",
				Name:      "restored_total",
				Help:      "Objects restored from the wastebin",
			},
			[]string{"object_type"},
		),
		fanOut: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "variants",
				Subsystem: "sync",
				Name:      "fan_out_targets",
				Help:      "Live sync targets written per synchronized attribute write",
				Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
			[]string{"attribute"},
		),
		checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "variants",
				Subsystem: "sync",
				Name:      "checks_total",
				Help:      "Synchronization checks by resulting state",
			},
			[]string{"state"},
		),
		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "variants",
				Subsystem: "tx",
				Name:      "conflict_retries_total",
				Help:      "Units of work retried after a concurrency conflict",
			},
			[]string{"operation"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "variants",
				Subsystem: "engine",
				Name:      "failures_total",
				Help:      "Failed engine operations by error category",
			},
			[]string{"operation", "category"},
		),
	}
}

func (p *Prometheus) PagesDeleted(operation string, soft, purged int) {
	if soft > 0 {
		p.deleted.WithLabelValues(operation, "soft").Add(float64(soft))
	}
	if purged > 0 {
		p.deleted.WithLabelValues(operation, "purge").Add(float64(purged))
	}
}

func (p *Prometheus) PageRestored(objectType string) {
	p.restored.WithLabelValues(objectType).Inc()
}

func (p *Prometheus) SyncFanOut(attribute string, written int) {
	p.fanOut.WithLabelValues(attribute).Observe(float64(written))
}

func (p *Prometheus) SyncCheck(state string) {
	p.checks.WithLabelValues(state).Inc()
}

func (p *Prometheus) ConflictRetry(operation string) {
	p.retries.WithLabelValues(operation).Inc()
}

func (p *Prometheus) OperationFailed(operation, category string) {
	p.failures.WithLabelValues(operation, category).Inc()
}

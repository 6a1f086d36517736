// Package metrics holds the per-run pipeline counters, exported as a node_exporter textfile
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "floordwh"

// Run collects the counters of one pipeline run on its own registry
// a nil *Run is valid and records nothing
type Run struct {
	reg *prometheus.Registry

	RowsRead           prometheus.Counter
	RowsAccepted       prometheus.Counter
	RowsQuarantined    prometheus.Counter
	DimensionRows      *prometheus.CounterVec
	FactRowsLoaded     prometheus.Counter
	WatermarkFallbacks prometheus.Counter
	Duration           *prometheus.GaugeVec
	LastSuccess        prometheus.Gauge
}

// NewRun builds a fresh registry with every pipeline metric registered
func NewRun() *Run {
	r := &Run{
		reg: prometheus.NewRegistry(),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_read_total",
			Help: "Raw records read from the input file.",
		}),
		RowsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_accepted_total",
			Help: "Records promoted to canonical events.",
		}),
		RowsQuarantined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_quarantined_total",
			Help: "Records routed to quarantine.",
		}),
		DimensionRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "dimension_rows_inserted_total",
			Help: "New dimension keys inserted, by table.",
		}, []string{"table"}),
		FactRowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "fact_rows_loaded_total",
			Help: "Fact rows appended past the high-water mark.",
		}),
		WatermarkFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "watermark_fallback_total",
			Help: "High-water mark lookups that failed and fell back to an empty table.",
		}),
		Duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "run_duration_seconds",
			Help: "Wall time of the run, by outcome.",
		}, []string{"outcome"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last fully successful run.",
		}),
	}
	r.reg.MustRegister(
		r.RowsRead, r.RowsAccepted, r.RowsQuarantined, r.DimensionRows,
		r.FactRowsLoaded, r.WatermarkFallbacks, r.Duration, r.LastSuccess,
	)
	return r
}

// Batch records the normalizer partition sizes
func (r *Run) Batch(read, accepted, quarantined int) {
	if r == nil {
		return
	}
	r.RowsRead.Add(float64(read))
	r.RowsAccepted.Add(float64(accepted))
	r.RowsQuarantined.Add(float64(quarantined))
}

// Dimension records new keys inserted into table
func (r *Run) Dimension(table string, inserted int) {
	if r == nil {
		return
	}
	r.DimensionRows.WithLabelValues(table).Add(float64(inserted))
}

// Facts records fact rows loaded and whether the watermark lookup fell back
func (r *Run) Facts(loaded int, fallback bool) {
	if r == nil {
		return
	}
	r.FactRowsLoaded.Add(float64(loaded))
	if fallback {
		r.WatermarkFallbacks.Inc()
	}
}

// Finish stamps duration and, on success, the last success time
func (r *Run) Finish(d time.Duration, err error, now time.Time) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.Duration.WithLabelValues(outcome).Set(d.Seconds())
	if err == nil {
		r.LastSuccess.Set(float64(now.Unix()))
	}
}

// WriteTextfile writes the registry in text exposition format
// the write is atomic so a collector never sees a half file
func (r *Run) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}

// Package metrics counts what the splitter did during one run and writes it
// out in Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the run's collectors in a private registry. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	jobs       *prometheus.CounterVec
	jobSeconds prometheus.Histogram
	tools      *prometheus.CounterVec
	retries    *prometheus.CounterVec
	parts      prometheus.Counter
	partBytes  prometheus.Counter
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		jobs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "muxsplit_jobs_total",
			Help: "Split jobs finished, by result status",
		}, []string{"status"}),
		jobSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "muxsplit_job_duration_seconds",
			Help:    "Wall time of split jobs",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		tools: f.NewCounterVec(prometheus.CounterOpts{
			Name: "muxsplit_tool_runs_total",
			Help: "External tool invocations, by tool and outcome",
		}, []string{"tool", "outcome"}),
		retries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "muxsplit_retries_total",
			Help: "Local recoveries applied inside the segment loop",
		}, []string{"action"}),
		parts: f.NewCounter(prometheus.CounterOpts{
			Name: "muxsplit_parts_total",
			Help: "Parts kept",
		}),
		partBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "muxsplit_part_bytes_total",
			Help: "Bytes written into kept parts",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// JobDone records a finished job.
func (r *Recorder) JobDone(status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.jobs.WithLabelValues(status).Inc()
	r.jobSeconds.Observe(elapsed.Seconds())
}

// ToolRun records one external command. outcome is "ok", "failed" or
// "killed".
func (r *Recorder) ToolRun(tool, outcome string) {
	if r == nil {
		return
	}
	r.tools.WithLabelValues(tool, outcome).Inc()
}

// Retry records a recovery action such as "drop-map" or "shrink".
func (r *Recorder) Retry(action string) {
	if r == nil {
		return
	}
	r.retries.WithLabelValues(action).Inc()
}

// Part records a kept part of size bytes.
func (r *Recorder) Part(size int64) {
	if r == nil {
		return
	}
	r.parts.Inc()
	r.partBytes.Add(float64(size))
}

// WriteFile writes all metrics to path atomically in text format.
func (r *Recorder) WriteFile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}

// Package metrics exposes Prometheus counters for the job queue.
package metrics

import "github.com/prometheus/client_golang/prometheus"

type Collector struct {
	jobsSubmitted *prometheus.CounterVec
	jobsCompleted prometheus.Counter
	jobsFailed    prometheus.Counter
	jobDuration   prometheus.Histogram

	jobsActive prometheus.Gauge
	queueDepth prometheus.Gauge
}

// NewCollector registers the queue metrics on reg. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		jobsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "muxminus_jobs_submitted_total",
			Help: "Total number of jobs admitted to the queue",
		}, []string{"kind"}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "muxminus_jobs_completed_total",
			Help: "Total number of jobs completed successfully",
		}),
		jobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "muxminus_jobs_failed_total",
			Help: "Total number of jobs that ended in failure",
		}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "muxminus_job_duration_seconds",
			Help:    "Wall-clock processing time per job",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		jobsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "muxminus_jobs_active",
			Help: "Jobs currently being processed",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "muxminus_queue_depth",
			Help: "Jobs waiting in the backlog",
		}),
	}

	reg.MustRegister(
		c.jobsSubmitted,
		c.jobsCompleted,
		c.jobsFailed,
		c.jobDuration,
		c.jobsActive,
		c.queueDepth,
	)
	return c
}

func (c *Collector) RecordSubmitted(kind string) {
	c.jobsSubmitted.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordCompleted(durationSeconds float64) {
	c.jobsCompleted.Inc()
	c.jobDuration.Observe(durationSeconds)
}

func (c *Collector) RecordFailed(durationSeconds float64) {
	c.jobsFailed.Inc()
	c.jobDuration.Observe(durationSeconds)
}

func (c *Collector) SetActive(n int)     { c.jobsActive.Set(float64(n)) }
func (c *Collector) SetQueueDepth(n int) { c.queueDepth.Set(float64(n)) }

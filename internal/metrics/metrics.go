// Package metrics exposes run-level counters for the feed engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector registers and updates the engine's Prometheus metrics.
type Collector struct {
	runs      *prometheus.CounterVec
	postings  prometheus.Counter
	added     prometheus.Counter
	malformed prometheus.Counter
	feedSize  prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unhcr_feed_runs_total",
			Help: "Completed runs by result.",
		}, []string{"result"}),
		postings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unhcr_feed_postings_seen_total",
			Help: "Raw postings returned by the upstream listing fetch.",
		}),
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unhcr_feed_entries_added_total",
			Help: "New entries appended to the published feed.",
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unhcr_feed_malformed_postings_total",
			Help: "Postings skipped because a required field was missing.",
		}),
		feedSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "unhcr_feed_entries",
			Help: "Entries in the published feed after the last run.",
		}),
	}

	reg.MustRegister(c.runs, c.postings, c.added, c.malformed, c.feedSize)
	return c
}

func (c *Collector) RecordRun(result string) {
	c.runs.WithLabelValues(result).Inc()
}

func (c *Collector) RecordPostings(n int) {
	c.postings.Add(float64(n))
}

func (c *Collector) RecordAdded(n int) {
	c.added.Add(float64(n))
}

func (c *Collector) RecordMalformed() {
	c.malformed.Inc()
}

func (c *Collector) SetFeedSize(n int) {
	c.feedSize.Set(float64(n))
}

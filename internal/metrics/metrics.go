// Package metrics counts labeling outcomes and exports them in the Prometheus
// text format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/tvlabel/internal/model"
)

// Collector holds the counters of one run. It owns its registry, so several
// collectors can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	sentences    *prometheus.CounterVec
	rules        *prometheus.CounterVec
	conflicts    prometheus.Counter
	unavailable  prometheus.Counter
	errors       prometheus.Counter
	duration     prometheus.Histogram
	translations *prometheus.CounterVec
}

// New creates a collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tvlabel",
			Name:      "sentences_total",
			Help:      "Labeled sentences by resolved label.",
		}, []string{"label"}),
		rules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tvlabel",
			Name:      "rules_total",
			Help:      "Decision rules fired, by detector or resolver.",
		}, []string{"stage", "rule"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tvlabel",
			Name:      "resolution_conflicts_total",
			Help:      "Sentences where the detectors contradicted each other.",
		}),
		unavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tvlabel",
			Name:      "structural_unavailable_total",
			Help:      "Sentences labeled without the structural detector.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tvlabel",
			Name:      "sentence_errors_total",
			Help:      "Sentences whose processing failed.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tvlabel",
			Name:      "sentence_seconds",
			Help:      "Time spent labeling one sentence.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tvlabel",
			Name:      "translations_total",
			Help:      "Translation requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
	}

	c.registry.MustRegister(
		c.sentences, c.rules, c.conflicts, c.unavailable,
		c.errors, c.duration, c.translations,
	)

	return c
}

// ObserveRecord counts one labeled record.
func (c *Collector) ObserveRecord(r model.Record, took time.Duration) {
	if c == nil {
		return
	}

	c.duration.Observe(took.Seconds())
	if r.Error != "" {
		c.errors.Inc()
		return
	}

	c.sentences.WithLabelValues(r.Label.String()).Inc()
	c.rules.WithLabelValues("lexical", r.Lexical.Rule).Inc()
	if r.Structural != nil {
		c.rules.WithLabelValues("structural", r.Structural.Rule).Inc()
	}
	c.rules.WithLabelValues("resolver", string(r.Resolution.Rule)).Inc()

	if r.Resolution.Conflict {
		c.conflicts.Inc()
	}
	if r.Resolution.Unavailable != "" {
		c.unavailable.Inc()
	}
}

// ObserveTranslation counts one translation request.
func (c *Collector) ObserveTranslation(provider string, cached bool, err error) {
	if c == nil {
		return
	}

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case cached:
		outcome = "cached"
	}
	c.translations.WithLabelValues(provider, outcome).Inc()
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes all metrics to path in the node_exporter textfile
// format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

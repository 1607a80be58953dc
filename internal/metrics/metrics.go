// Package metrics exposes the Driver's Prometheus instrumentation
// (spec.md §9.2 domain-stack addition): counters for rows scanned and
// sales extracted, a pass counter and duration histogram, and a gauge for
// the most recently processed item's updated_at.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Driver's Prometheus collectors. The zero value is not
// usable; use New.
type Metrics struct {
	RowsScanned      prometheus.Counter
	SalesExtracted   prometheus.Counter
	PassesCompleted  prometheus.Counter
	PassDuration     prometheus.Histogram
	LastProcessedAt  prometheus.Gauge
}

// New registers and returns a fresh Metrics set against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RowsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fixer",
			Subsystem: "currency",
			Name:      "rows_scanned_total",
			Help:      "Total number of item rows scanned by the Driver.",
		}),
		SalesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fixer",
			Subsystem: "currency",
			Name:      "sales_extracted_total",
			Help:      "Total number of sale rows materialized by the Sale Extractor.",
		}),
		PassesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fixer",
			Subsystem: "currency",
			Name:      "passes_completed_total",
			Help:      "Total number of Driver passes completed.",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fixer",
			Subsystem: "currency",
			Name:      "pass_duration_seconds",
			Help:      "Wall-clock duration of a single Driver pass.",
			Buckets:   prometheus.DefBuckets,
		}),
		LastProcessedAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fixer",
			Subsystem: "currency",
			Name:      "last_processed_item_updated_at",
			Help:      "item_updated_at of the most recently recorded sale.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RowsScanned,
			m.SalesExtracted,
			m.PassesCompleted,
			m.PassDuration,
			m.LastProcessedAt,
		)
	}

	return m
}

// ObserveBlock records the outcome of one committed block.
func (m *Metrics) ObserveBlock(rowsScanned, salesExtracted int) {
	if m == nil {
		return
	}
	m.RowsScanned.Add(float64(rowsScanned))
	m.SalesExtracted.Add(float64(salesExtracted))
}

// ObservePass records the outcome of one completed Driver pass.
func (m *Metrics) ObservePass(durationSeconds float64, lastProcessedItemUpdatedAt int64) {
	if m == nil {
		return
	}
	m.PassesCompleted.Inc()
	m.PassDuration.Observe(durationSeconds)
	if lastProcessedItemUpdatedAt > 0 {
		m.LastProcessedAt.Set(float64(lastProcessedItemUpdatedAt))
	}
}

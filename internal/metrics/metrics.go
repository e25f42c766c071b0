// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "allocator"

var (
	// Computations counts allocation cycles by result (ok, config_error, upstream_error, error)
	Computations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "computations_total",
		Help:      "Allocation computations by result.",
	}, []string{"result"})

	// ComputeDuration observes the full compute-and-persist cycle
	ComputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "compute_duration_seconds",
		Help:      "Duration of the allocation cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// UpstreamFailures counts price provider failures by kind (transport, status, decode)
	UpstreamFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_failures_total",
		Help:      "Price provider failures by kind.",
	}, []string{"kind"})

	// SkippedSymbols counts ledger rows dropped for lack of market data
	SkippedSymbols = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skipped_symbols_total",
		Help:      "Ledger rows without a matching quote.",
	})

	// SnapshotWrites counts history row writes by level and result
	SnapshotWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_writes_total",
		Help:      "History snapshot inserts by level and result.",
	}, []string{"level", "result"})

	// LedgerImported counts ledger rows appended through imports
	LedgerImported = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_rows_imported_total",
		Help:      "Ledger rows appended by imports.",
	})

	registerOnce sync.Once
)

// MustRegisterMetrics registers every collector with the default registry.
// Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			Computations,
			ComputeDuration,
			UpstreamFailures,
			SkippedSymbols,
			SnapshotWrites,
			LedgerImported,
		)
	})
}

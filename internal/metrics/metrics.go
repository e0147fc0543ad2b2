// Package metrics registers the Prometheus collectors for the ledger and
// its HTTP surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsCreated counts logged transactions by kind.
	TransactionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketflow_transactions_created_total",
		Help: "Transactions created, labelled credit or expense.",
	}, []string{"kind"})

	// TransactionsCancelled counts rolled-back placeholder transactions.
	TransactionsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketflow_transactions_cancelled_total",
		Help: "Placeholder transactions removed via the cancel path.",
	})

	// DebtsRecorded counts debt entries applied to friend ledgers.
	DebtsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketflow_debts_recorded_total",
		Help: "Debt entries appended to friend histories.",
	})

	// PaymentsRecorded counts payments applied to friend ledgers.
	PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketflow_payments_recorded_total",
		Help: "Payment entries appended to friend histories.",
	})

	// StaleEntriesReset counts abandoned entries swept by the janitor.
	StaleEntriesReset = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketflow_stale_entries_reset_total",
		Help: "In-progress entries abandoned past the idle threshold.",
	})

	// HTTPRequestDuration observes request latency per route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pocketflow_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

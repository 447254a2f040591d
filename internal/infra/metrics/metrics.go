// Package metrics holds the process-wide prometheus collectors for the
// wallet engine. Collectors are registered on the default registry so the
// ops API can expose them via promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgerMutations counts committed balance mutations by cause.
	LedgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_ledger_mutations_total",
		Help: "Committed balance mutations by cause.",
	}, []string{"cause"})

	// Settlements counts admin decisions applied to pending requests.
	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_settlements_total",
		Help: "Admin settlements by kind and outcome.",
	}, []string{"kind", "outcome"})

	// RejectedOps counts operations refused by a validation rule.
	RejectedOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_rejected_operations_total",
		Help: "Operations refused by a validation rule.",
	}, []string{"reason"})
)

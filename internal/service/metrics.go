package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	maintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firstlook_maintenance_runs_total",
			Help: "Total number of batch correction runs, partitioned by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	maintenanceMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firstlook_maintenance_mutations_total",
			Help: "Total number of documents changed by batch corrections.",
		},
		[]string{"operation", "kind"},
	)
	resyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firstlook_balance_resyncs_total",
			Help: "Total number of balance reconciliations, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	resyncMissingStories = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "firstlook_balance_resync_missing_stories_total",
			Help: "Unlocked story ids that no longer exist when balances are recomputed.",
		},
	)
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firstlook_generations_total",
			Help: "Total number of story generations, partitioned by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	unlocksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firstlook_unlocks_total",
			Help: "Total number of unlock attempts, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
)

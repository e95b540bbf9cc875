package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotsAppendedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leetcode_tracker",
			Name:      "snapshots_appended_total",
			Help:      "Snapshots written to the snapshot store.",
		},
		[]string{"source"},
	)

	refreshOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leetcode_tracker",
			Name:      "refresh_outcomes_total",
			Help:      "Manual refresh attempts by outcome.",
		},
		[]string{"outcome"},
	)

	batchFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leetcode_tracker",
			Name:      "batch_user_failures_total",
			Help:      "Per-user failures isolated by batch jobs.",
		},
		[]string{"stage"},
	)
)

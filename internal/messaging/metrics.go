package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firstlook_generation_tasks_published_total",
			Help: "Total number of generation tasks published, partitioned by outcome.",
		},
		[]string{"status"},
	)
	tasksReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "firstlook_generation_tasks_received_total",
			Help: "Total number of generation tasks received by the worker.",
		},
	)
	tasksFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firstlook_generation_tasks_failed_total",
			Help: "Total number of generation tasks failed, partitioned by failure reason.",
		},
		[]string{"reason"},
	)
	tasksSucceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "firstlook_generation_tasks_succeeded_total",
			Help: "Total number of generation tasks successfully processed.",
		},
	)
)

package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	classifierCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topic_relay",
			Name:      "classifier_calls_total",
			Help:      "Classifier requests by status",
		},
		[]string{"status"}, // "ok", "error"
	)

	discardedToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topic_relay",
			Name:      "discarded_tool_calls_total",
			Help:      "Tool calls dropped before execution",
		},
		[]string{"reason"},
	)
)

package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topic_relay",
			Name:      "actions_total",
			Help:      "Executed actions by kind and result",
		},
		[]string{"kind", "result"},
	)

	slackRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "topic_relay",
			Name:      "slack_call_retries_total",
			Help:      "Retries of transient Slack API failures",
		},
	)
)

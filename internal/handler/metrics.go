package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topic_relay",
			Name:      "events_total",
			Help:      "Webhook payloads by pipeline outcome",
		},
		[]string{"outcome"},
	)

	slackRetryDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topic_relay",
			Name:      "slack_retry_deliveries_total",
			Help:      "Webhook deliveries Slack marked as retries",
		},
		[]string{"reason"},
	)
)

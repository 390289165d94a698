package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	EmailsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_emails_delivered_total",
			Help: "Total number of email delivery attempts by outcome",
		},
		[]string{"outcome"},
	)
	QueueEntriesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_email_queue_entries_total",
			Help: "Total number of email queue entries processed by result",
		},
		[]string{"result"},
	)
	QueueSweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portal_email_queue_sweep_duration_seconds",
			Help:    "Duration of one email queue sweep in seconds",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		},
	)
)

func InitMetrics() {
	err := prometheus.Register(EmailsDelivered)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register EmailsDelivered metric")
	}

	err = prometheus.Register(QueueEntriesProcessed)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register QueueEntriesProcessed metric")
	}

	err = prometheus.Register(QueueSweepDuration)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register QueueSweepDuration metric")
	}
}

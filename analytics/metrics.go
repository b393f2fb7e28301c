package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	delivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "training_events_delivered_total",
		Help: "Training events delivered, by sink",
	}, []string{"sink"})

	deliveryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "training_event_delivery_failures_total",
		Help: "Training events that failed delivery, by sink",
	}, []string{"sink"})

	dropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "training_events_dropped_total",
		Help: "Training events dropped because the sink queue was full",
	}, []string{"sink"})
)

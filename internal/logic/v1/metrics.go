package v1

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operationOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "room_service_operation_outcomes_total",
		Help: "Business operations by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

func recordOutcome(operation string, err error) {
	operationOutcomes.WithLabelValues(operation, Outcome(err)).Inc()
}

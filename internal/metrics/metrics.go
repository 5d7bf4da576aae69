// Package metrics holds the process-wide Prometheus collectors, exposed on
// the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LiveConnections tracks the number of open robot channel connections.
	LiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sia_robot_connections",
			Help: "Number of currently open robot channel connections.",
		},
	)

	// CommandsIssued counts commands created by operators, by kind.
	CommandsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sia_commands_issued_total",
			Help: "Total number of robot commands issued.",
		},
		[]string{"kind"},
	)

	// CommandDeliveries counts push deliveries attempted over live channels.
	CommandDeliveries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sia_command_deliveries_total",
			Help: "Total number of command frames pushed to live robot connections.",
		},
	)

	// DeliveryFailures counts writes to stale connections; these are logged
	// and skipped, never surfaced to the command issuer.
	DeliveryFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sia_delivery_failures_total",
			Help: "Total number of failed frame writes to robot connections.",
		},
	)

	// TelemetryFrames counts inbound frames processed per frame type.
	TelemetryFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sia_telemetry_frames_total",
			Help: "Total number of inbound robot frames processed.",
		},
		[]string{"type", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		LiveConnections,
		CommandsIssued,
		CommandDeliveries,
		DeliveryFailures,
		TelemetryFrames,
	)
}

// Package metrics exposes the pipeline's Prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ReadingsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "telemetry", Subsystem: "generator", Name: "readings_generated_total", Help: "Total readings produced by the simulator."},
	)
	AnomaliesInjected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "telemetry", Subsystem: "generator", Name: "anomalies_injected_total", Help: "Total injected anomalies by kind."},
		[]string{"kind"},
	)
	ReadingsEnriched = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "telemetry", Subsystem: "pipeline", Name: "readings_enriched_total", Help: "Total readings successfully enriched with a verdict."},
	)
	InferenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "telemetry", Subsystem: "pipeline", Name: "inference_failures_total", Help: "Total dropped readings by failure kind."},
		[]string{"kind"},
	)
	Broadcasts = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "telemetry", Subsystem: "broadcast", Name: "broadcasts_total", Help: "Total fanout operations."},
	)
	BroadcastSendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "telemetry", Subsystem: "broadcast", Name: "send_failures_total", Help: "Total per-session send failures."},
	)
	Subscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "telemetry", Subsystem: "broadcast", Name: "subscribers", Help: "Currently registered subscriber sessions."},
	)
)

func init() {
	_ = prometheus.Register(ReadingsGenerated)
	_ = prometheus.Register(AnomaliesInjected)
	_ = prometheus.Register(ReadingsEnriched)
	_ = prometheus.Register(InferenceFailures)
	_ = prometheus.Register(Broadcasts)
	_ = prometheus.Register(BroadcastSendFailures)
	_ = prometheus.Register(Subscribers)
}

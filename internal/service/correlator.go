package service

import (
	"context"
	"log"

	"github.com/fleetpulse/telemetry/internal/domain"
	"github.com/fleetpulse/telemetry/internal/metrics"
)

// Predictor is the inference boundary the correlator depends on
type Predictor interface {
	Predict(ctx context.Context, features domain.FeatureVector) (domain.InferenceVerdict, error)
}

// Broadcaster fans an enriched reading out to live subscribers
type Broadcaster interface {
	Broadcast(data domain.VehicleTelemetry)
}

// ExportSink receives enriched readings for batch export. Optional.
type ExportSink interface {
	Append(data domain.VehicleTelemetry)
}

// EnrichmentCorrelator pairs each consumed reading with the verdict the
// inference service returns for it, merges the two, and forwards the
// result to the broadcaster. A failed reading is logged and dropped;
// it never blocks or corrupts any other reading.
type EnrichmentCorrelator struct {
	gateway    Predictor
	registry   Broadcaster
	exportSink ExportSink
}

// NewEnrichmentCorrelator creates a new correlator. exportSink may be nil.
func NewEnrichmentCorrelator(gateway Predictor, registry Broadcaster, exportSink ExportSink) *EnrichmentCorrelator {
	return &EnrichmentCorrelator{
		gateway:    gateway,
		registry:   registry,
		exportSink: exportSink,
	}
}

// Run consumes readings until ctx is cancelled. Each reading is
// enriched on its own goroutine so a slow inference call never holds
// up channel delivery.
func (c *EnrichmentCorrelator) Run(ctx context.Context, consumer domain.TelemetryConsumer) error {
	return consumer.Consume(ctx, func(data domain.VehicleTelemetry) {
		go c.Enrich(ctx, data)
	})
}

// Enrich runs the predict → merge → broadcast continuation for one reading
func (c *EnrichmentCorrelator) Enrich(ctx context.Context, data domain.VehicleTelemetry) {
	verdict, err := c.gateway.Predict(ctx, data.Features())
	if err != nil {
		log.Printf("correlator: dropping reading for vehicle %s: %v", data.VehicleID, err)
		metrics.InferenceFailures.WithLabelValues(string(FailureKindOf(err))).Inc()
		return
	}

	enriched := domain.MergeVerdict(data, verdict)
	metrics.ReadingsEnriched.Inc()

	c.registry.Broadcast(enriched)

	if c.exportSink != nil {
		c.exportSink.Append(enriched)
	}
}

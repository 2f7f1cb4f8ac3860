package domain

import "context"

// TelemetryPublisher sends readings onto the message channel keyed by
// vehicle id. Per-key ordering is a property of the channel backend.
type TelemetryPublisher interface {
	// Publish sends one reading
	Publish(ctx context.Context, data VehicleTelemetry) error

	// Close releases the underlying transport
	Close() error
}

// TelemetryConsumer delivers readings from the message channel.
// This follows the Dependency Inversion Principle - domain defines the interface
type TelemetryConsumer interface {
	// Consume invokes handle for each delivered reading until ctx is done
	Consume(ctx context.Context, handle func(VehicleTelemetry)) error

	// Close releases the underlying transport
	Close() error
}

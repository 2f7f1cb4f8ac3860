// Package memory provides an in-process telemetry channel used when no
// broker is configured, and in tests. Delivery is FIFO, which is
// stronger than the per-key ordering the contract requires.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/fleetpulse/telemetry/internal/domain"
)

// ErrClosed is returned by Publish after Close
var ErrClosed = errors.New("memory: channel closed")

// Channel is a buffered in-process message channel. It implements both
// domain.TelemetryPublisher and domain.TelemetryConsumer.
type Channel struct {
	ch   chan domain.VehicleTelemetry
	done chan struct{}
	once sync.Once
}

// New creates a channel with the given buffer size
func New(buffer int) *Channel {
	return &Channel{
		ch:   make(chan domain.VehicleTelemetry, buffer),
		done: make(chan struct{}),
	}
}

// Publish enqueues one reading, blocking while the buffer is full
func (c *Channel) Publish(ctx context.Context, data domain.VehicleTelemetry) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.ch <- data:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume delivers readings to handle until ctx is done or the channel
// is closed and drained.
func (c *Channel) Consume(ctx context.Context, handle func(domain.VehicleTelemetry)) error {
	for {
		select {
		case data := <-c.ch:
			handle(data)
		case <-ctx.Done():
			return nil
		case <-c.done:
			// Drain what was published before Close
			for {
				select {
				case data := <-c.ch:
					handle(data)
				default:
					return nil
				}
			}
		}
	}
}

// Close stops the channel; further publishes fail with ErrClosed
func (c *Channel) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

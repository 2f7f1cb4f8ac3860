// Package kafka adapts the telemetry message channel onto a Kafka topic.
// Messages are keyed by vehicle id with a hash balancer, so per-vehicle
// ordering is as strong as the broker's per-partition guarantee.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/fleetpulse/telemetry/internal/domain"
)

// Publisher implements domain.TelemetryPublisher on a Kafka topic
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Kafka-backed publisher
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// Publish sends one reading keyed by its vehicle id
func (p *Publisher) Publish(ctx context.Context, data domain.VehicleTelemetry) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("kafka: failed to marshal reading: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(data.VehicleID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("kafka: failed to write message: %w", err)
	}

	return nil
}

// Close flushes and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Consumer implements domain.TelemetryConsumer on a Kafka consumer group
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a Kafka-backed consumer group member
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 1 << 20,
		}),
	}
}

// Consume delivers readings to handle until ctx is cancelled or the
// reader is closed. Malformed payloads are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, handle func(domain.VehicleTelemetry)) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("kafka: failed to read message: %w", err)
		}

		var data domain.VehicleTelemetry
		if err := json.Unmarshal(msg.Value, &data); err != nil {
			log.Printf("kafka: skipping malformed message with key %q: %v", msg.Key, err)
			continue
		}

		handle(data)
	}
}

// Close closes the reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}

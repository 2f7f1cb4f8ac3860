package service

import (
	"context"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/fleetpulse/telemetry/internal/domain"
	"github.com/fleetpulse/telemetry/internal/metrics"
	"github.com/fleetpulse/telemetry/pkg/utils"
)

// Fleet base position (Córdoba city center)
const (
	baseLatitude  = -31.4201
	baseLongitude = -64.1888
)

const anomalyProbability = 0.05

var roadTypes = [...]domain.RoadType{domain.RoadHighway, domain.RoadUrban, domain.RoadRural}

var weatherConditions = [...]domain.WeatherCondition{
	domain.WeatherClear, domain.WeatherRain, domain.WeatherFog, domain.WeatherStorm,
}

// Exactly three kinds; selection indexes this array directly
var anomalyKinds = [...]domain.AnomalyKind{
	domain.AnomalyOverspeed, domain.AnomalyEngineOverheat, domain.AnomalyBatteryLow,
}

// TelemetryGenerator produces one synthetic reading per tracked vehicle
// per tick and publishes it onto the message channel.
type TelemetryGenerator struct {
	vehicles  []string
	publisher domain.TelemetryPublisher
	rng       *rand.Rand

	// Previous tick's speed per vehicle id. Written only from the tick
	// goroutine; never evicted (grows with distinct vehicle ids).
	prevSpeed map[string]float64
}

// NewTelemetryGenerator creates a new telemetry generator
func NewTelemetryGenerator(vehicles []string, publisher domain.TelemetryPublisher) *TelemetryGenerator {
	return &TelemetryGenerator{
		vehicles:  vehicles,
		publisher: publisher,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		prevSpeed: make(map[string]float64),
	}
}

// Run emits one tick per interval until ctx is cancelled
func (g *TelemetryGenerator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Tick(ctx)
		}
	}
}

// Tick generates and publishes one reading for every tracked vehicle
func (g *TelemetryGenerator) Tick(ctx context.Context) {
	now := time.Now()
	for _, id := range g.vehicles {
		data := g.generateReading(id, now)
		if err := g.publisher.Publish(ctx, data); err != nil {
			log.Printf("generator: failed to publish reading for %s: %v", id, err)
			continue
		}
		metrics.ReadingsGenerated.Inc()
	}
}

// generateReading builds one reading and advances the vehicle's
// previous-speed state.
func (g *TelemetryGenerator) generateReading(vehicleID string, now time.Time) domain.VehicleTelemetry {
	roadType := roadTypes[g.rng.Intn(len(roadTypes))]
	speedLimit := roadType.SpeedLimit()

	speed := math.Max(0, speedLimit*0.6+g.rng.NormFloat64()*10)

	// Decide anomaly injection before touching the speed history so an
	// overspeed override is what the next tick sees as previous speed.
	var kind domain.AnomalyKind
	if g.rng.Float64() < anomalyProbability {
		kind = anomalyKinds[g.rng.Intn(len(anomalyKinds))]
	}
	if kind == domain.AnomalyOverspeed {
		speed = speedLimit + 50 + g.rng.Float64()*30
	}

	prev, seen := g.prevSpeed[vehicleID]
	if !seen {
		// First tick for this vehicle: zero acceleration
		prev = speed
	}
	g.prevSpeed[vehicleID] = speed

	data := domain.VehicleTelemetry{
		VehicleID:     vehicleID,
		Timestamp:     now,
		Latitude:      utils.RoundTo(baseLatitude+g.rng.Float64()/100, 6),
		Longitude:     utils.RoundTo(baseLongitude+g.rng.Float64()/100, 6),
		Speed:         speed,
		PreviousSpeed: prev,
		Acceleration:  speed - prev,
		Temperature:   70 + g.rng.NormFloat64()*5,
		Battery:       80 - g.rng.Float64()*0.5,
		FuelLevel:     100 - g.rng.Float64()*0.8,
		Weather:       weatherConditions[g.rng.Intn(len(weatherConditions))],
		RoadType:      roadType,
		SpeedLimit:    speedLimit,
		Night:         now.Hour() < 6 || now.Hour() >= 20,
		TrafficLevel:  1 + g.rng.Intn(5),
	}

	switch kind {
	case domain.AnomalyEngineOverheat:
		data.Temperature = 110 + g.rng.Float64()*30
	case domain.AnomalyBatteryLow:
		data.Battery = 10 + g.rng.Float64()*5
	}
	if kind != "" {
		data.Anomaly = true
		data.AnomalyType = string(kind)
		metrics.AnomaliesInjected.WithLabelValues(string(kind)).Inc()
	}

	return data
}

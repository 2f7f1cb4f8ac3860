package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeaturesCarriesNoIdentity(t *testing.T) {
	v := VehicleTelemetry{
		VehicleID:     "CAR-001",
		Timestamp:     time.Now(),
		Latitude:      -31.42,
		Longitude:     -64.18,
		Speed:         80,
		PreviousSpeed: 75,
		Acceleration:  5,
		Temperature:   72,
		Battery:       79,
		FuelLevel:     95,
		Weather:       WeatherRain,
		RoadType:      RoadUrban,
		SpeedLimit:    60,
		TrafficLevel:  3,
	}

	f := v.Features()

	assert.Equal(t, 80.0, f.Speed)
	assert.Equal(t, 75.0, f.PreviousSpeed)
	assert.Equal(t, 5.0, f.Acceleration)
	assert.Equal(t, 60.0, f.SpeedLimit)
	assert.Equal(t, 3.0, f.TrafficLevel)
}

func TestMergeVerdictKeepsIdentityFields(t *testing.T) {
	ts := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	original := VehicleTelemetry{
		VehicleID:   "vehicle123",
		Timestamp:   ts,
		Latitude:    37.7749,
		Longitude:   -122.4194,
		Speed:       80,
		Weather:     WeatherClear,
		RoadType:    RoadHighway,
		SpeedLimit:  100,
		Night:       true,
		AnomalyType: string(AnomalyOverspeed),
	}

	// The echo deliberately disagrees with the original numerics
	verdict := InferenceVerdict{
		Input: FeatureVector{
			Latitude:      1.0,
			Longitude:     2.0,
			Speed:         99,
			PreviousSpeed: 98,
			Acceleration:  1,
			Temperature:   130,
			Battery:       12,
			FuelLevel:     40,
			SpeedLimit:    100,
			TrafficLevel:  4,
		},
		IsAnomaly: true,
	}

	merged := MergeVerdict(original, verdict)

	// Identity and context verbatim from the original
	assert.Equal(t, "vehicle123", merged.VehicleID)
	assert.Equal(t, ts, merged.Timestamp)
	assert.Equal(t, WeatherClear, merged.Weather)
	assert.Equal(t, RoadHighway, merged.RoadType)
	assert.True(t, merged.Night)
	assert.Equal(t, string(AnomalyOverspeed), merged.AnomalyType)

	// Numerics from the echo, flag from the verdict
	assert.Equal(t, 99.0, merged.Speed)
	assert.Equal(t, 98.0, merged.PreviousSpeed)
	assert.Equal(t, 12.0, merged.Battery)
	assert.Equal(t, 4, merged.TrafficLevel)
	assert.True(t, merged.Anomaly)
}

func TestMergeVerdictAnomalyFlagFromVerdictOnly(t *testing.T) {
	original := VehicleTelemetry{VehicleID: "CAR-002", Anomaly: true, AnomalyType: string(AnomalyBatteryLow)}
	verdict := InferenceVerdict{IsAnomaly: false}

	merged := MergeVerdict(original, verdict)

	assert.False(t, merged.Anomaly)
	// Original injection label survives even when the model disagrees
	assert.Equal(t, string(AnomalyBatteryLow), merged.AnomalyType)
}

func TestRoadTypeSpeedLimit(t *testing.T) {
	assert.Equal(t, 120.0, RoadHighway.SpeedLimit())
	assert.Equal(t, 60.0, RoadUrban.SpeedLimit())
	assert.Equal(t, 90.0, RoadRural.SpeedLimit())
	assert.Equal(t, 90.0, RoadType("dirt").SpeedLimit())
}

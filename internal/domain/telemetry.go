package domain

import "time"

// WeatherCondition enumerates the simulated weather states
type WeatherCondition string

const (
	WeatherClear WeatherCondition = "clear"
	WeatherRain  WeatherCondition = "rain"
	WeatherFog   WeatherCondition = "fog"
	WeatherStorm WeatherCondition = "storm"
)

// RoadType enumerates the simulated road classes
type RoadType string

const (
	RoadHighway RoadType = "highway"
	RoadUrban   RoadType = "urban"
	RoadRural   RoadType = "rural"
)

// SpeedLimit returns the legal limit in km/h for a road type
func (r RoadType) SpeedLimit() float64 {
	switch r {
	case RoadHighway:
		return 120
	case RoadUrban:
		return 60
	default:
		return 90
	}
}

// AnomalyKind enumerates the three injectable anomaly kinds
type AnomalyKind string

const (
	AnomalyOverspeed      AnomalyKind = "overspeed"
	AnomalyEngineOverheat AnomalyKind = "engine_overheat"
	AnomalyBatteryLow     AnomalyKind = "battery_low"
)

// VehicleTelemetry is one reading for one vehicle at one tick
type VehicleTelemetry struct {
	VehicleID     string           `json:"vehicleId"`
	Timestamp     time.Time        `json:"timestamp"`
	Latitude      float64          `json:"latitude"`
	Longitude     float64          `json:"longitude"`
	Speed         float64          `json:"speed"`          // km/h
	PreviousSpeed float64          `json:"previousSpeed"`  // km/h, prior tick
	Acceleration  float64          `json:"acceleration"`   // km/h per tick
	Temperature   float64          `json:"temperature"`    // engine, °C
	Battery       float64          `json:"battery"`        // %
	FuelLevel     float64          `json:"fuelLevel"`      // %
	Weather       WeatherCondition `json:"weather"`
	RoadType      RoadType         `json:"roadType"`
	SpeedLimit    float64          `json:"speedLimit"`
	Night         bool             `json:"night"`
	TrafficLevel  int              `json:"trafficLevel"` // 1–5
	Anomaly       bool             `json:"anomaly"`
	AnomalyType   string           `json:"anomalyType,omitempty"`
}

// FeatureVector is the numeric subset of a reading sent to the
// inference service. It carries no identity fields.
type FeatureVector struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Speed         float64 `json:"speed"`
	PreviousSpeed float64 `json:"previousSpeed"`
	Acceleration  float64 `json:"acceleration"`
	Temperature   float64 `json:"temperature"`
	Battery       float64 `json:"battery"`
	FuelLevel     float64 `json:"fuelLevel"`
	SpeedLimit    float64 `json:"speedLimit"`
	TrafficLevel  float64 `json:"trafficLevel"`
}

// InferenceVerdict is the inference service's response: the echoed
// feature vector plus the anomaly score and flag.
type InferenceVerdict struct {
	Input               FeatureVector `json:"input"`
	ReconstructionError float64       `json:"reconstruction_error"`
	AnomalyThreshold    float64       `json:"anomaly_threshold"`
	IsAnomaly           bool          `json:"is_anomaly"`
}

// Features projects a reading into its feature vector
func (v VehicleTelemetry) Features() FeatureVector {
	return FeatureVector{
		Latitude:      v.Latitude,
		Longitude:     v.Longitude,
		Speed:         v.Speed,
		PreviousSpeed: v.PreviousSpeed,
		Acceleration:  v.Acceleration,
		Temperature:   v.Temperature,
		Battery:       v.Battery,
		FuelLevel:     v.FuelLevel,
		SpeedLimit:    v.SpeedLimit,
		TrafficLevel:  float64(v.TrafficLevel),
	}
}

// MergeVerdict builds the enriched reading from an original reading and
// the verdict returned for it. Numeric fields come from the verdict's
// echoed feature vector; identity and context fields (vehicle id,
// timestamp, weather, road type, night, original anomaly type) are
// always taken from the original. Only the anomaly flag is sourced from
// the verdict.
func MergeVerdict(original VehicleTelemetry, verdict InferenceVerdict) VehicleTelemetry {
	in := verdict.Input
	return VehicleTelemetry{
		VehicleID:     original.VehicleID,
		Timestamp:     original.Timestamp,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		Speed:         in.Speed,
		PreviousSpeed: in.PreviousSpeed,
		Acceleration:  in.Acceleration,
		Temperature:   in.Temperature,
		Battery:       in.Battery,
		FuelLevel:     in.FuelLevel,
		Weather:       original.Weather,
		RoadType:      original.RoadType,
		SpeedLimit:    in.SpeedLimit,
		Night:         original.Night,
		TrafficLevel:  int(in.TrafficLevel),
		Anomaly:       verdict.IsAnomaly,
		AnomalyType:   original.AnomalyType,
	}
}

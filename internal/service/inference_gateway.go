package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fleetpulse/telemetry/internal/domain"
)

// FailureKind classifies inference gateway failures
type FailureKind string

const (
	// FailureTransport means the service could not be reached
	FailureTransport FailureKind = "transport"
	// FailureTimeout means the call exceeded the per-call deadline
	FailureTimeout FailureKind = "timeout"
	// FailureStatus means the service answered with a non-2xx status
	FailureStatus FailureKind = "status"
	// FailureDecode means the response body was not a valid verdict
	FailureDecode FailureKind = "decode"
)

// GatewayError is a classified inference call failure
type GatewayError struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Kind == FailureStatus {
		return fmt.Sprintf("inference_gateway: %s failure: status %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("inference_gateway: %s failure: %v", e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// FailureKindOf returns the failure kind of err, or "unknown"
func FailureKindOf(err error) FailureKind {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return "unknown"
}

// InferenceGateway handles communication with the anomaly inference service
type InferenceGateway struct {
	serviceURL string
	timeout    time.Duration
	httpClient *http.Client
}

// NewInferenceGateway creates a new inference gateway. timeout bounds
// each predict call; a hung remote stalls only that call.
func NewInferenceGateway(serviceURL string, timeout time.Duration) *InferenceGateway {
	return &InferenceGateway{
		serviceURL: serviceURL,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Predict sends a feature vector to the inference service and returns
// its verdict. Failures are classified as *GatewayError; the reading is
// the caller's to drop.
func (g *InferenceGateway) Predict(ctx context.Context, features domain.FeatureVector) (domain.InferenceVerdict, error) {
	body, err := json.Marshal(features)
	if err != nil {
		return domain.InferenceVerdict{}, fmt.Errorf("inference_gateway: failed to marshal features: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/predict", g.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.InferenceVerdict{}, fmt.Errorf("inference_gateway: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		kind := FailureTransport
		if errors.Is(err, context.DeadlineExceeded) {
			kind = FailureTimeout
		}
		return domain.InferenceVerdict{}, &GatewayError{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.InferenceVerdict{}, &GatewayError{Kind: FailureStatus, StatusCode: resp.StatusCode}
	}

	var verdict domain.InferenceVerdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return domain.InferenceVerdict{}, &GatewayError{Kind: FailureDecode, Err: err}
	}

	return verdict, nil
}

// Health checks inference service connectivity
func (g *InferenceGateway) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", g.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("inference_gateway: failed to create health request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference_gateway: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference_gateway: health check returned status %d", resp.StatusCode)
	}

	return nil
}

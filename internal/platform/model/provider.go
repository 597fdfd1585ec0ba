// Package model calls the external risk prediction service and supplies a
// stand-in provider for deployments that run without one.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotConfigured is returned when no prediction backend is available.
var ErrNotConfigured = errors.New("model: no prediction backend configured")

// MetricSample is a single vitals reading sent to the model.
type MetricSample struct {
	Type       string    `json:"type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Request is the payload sent to the prediction backend.
type Request struct {
	PatientID uuid.UUID      `json:"patient_id"`
	Metrics   []MetricSample `json:"metrics"`
}

// Prediction is the backend's scored response.
type Prediction struct {
	RiskScore   float64                `json:"risk_score"`
	Conditions  []string               `json:"conditions"`
	Explanation map[string]interface{} `json:"explanation"`
}

// RiskLevel buckets a score into low, medium or high.
func RiskLevel(score float64) string {
	switch {
	case score < 0.33:
		return "low"
	case score < 0.66:
		return "medium"
	default:
		return "high"
	}
}

// Provider scores a patient's recent metrics.
type Provider interface {
	Predict(ctx context.Context, req Request) (*Prediction, error)
}

// HTTPProvider calls a remote model over HTTP. A backend failure is
// terminal for the request; there are no retries.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Predict(ctx context.Context, req Request) (*Prediction, error) {
	if p.baseURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding prediction request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling prediction backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("prediction backend returned %d: %s", resp.StatusCode, string(b))
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("decoding prediction response: %w", err)
	}
	return &pred, nil
}

// NullProvider produces mock scores so the rest of the pipeline can run
// without a model deployment. Conditions follow fixed score thresholds.
// The mutex guards the rand source, which is not safe for concurrent use.
type NullProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewNullProvider() *NullProvider {
	return &NullProvider{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewNullProviderWithSeed fixes the score sequence for tests.
func NewNullProviderWithSeed(seed int64) *NullProvider {
	return &NullProvider{rng: rand.New(rand.NewSource(seed))}
}

func (p *NullProvider) Predict(_ context.Context, _ Request) (*Prediction, error) {
	p.mu.Lock()
	score := p.rng.Float64()
	p.mu.Unlock()
	return &Prediction{
		RiskScore:   score,
		Conditions:  mockConditions(score),
		Explanation: map[string]interface{}{"source": "mock"},
	}, nil
}

func mockConditions(score float64) []string {
	switch {
	case score > 0.7:
		return []string{"Hypertension"}
	case score > 0.4:
		return []string{"Prediabetes"}
	default:
		return []string{}
	}
}

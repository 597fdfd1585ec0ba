package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.0, "low"},
		{0.32, "low"},
		{0.33, "medium"},
		{0.5, "medium"},
		{0.65, "medium"},
		{0.66, "high"},
		{0.9, "high"},
		{1.0, "high"},
	}
	for _, tt := range tests {
		if got := RiskLevel(tt.score); got != tt.want {
			t.Errorf("RiskLevel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestHTTPProvider_Predict(t *testing.T) {
	patientID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("expected /predict, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.PatientID != patientID {
			t.Errorf("expected patient %s, got %s", patientID, req.PatientID)
		}
		if len(req.Metrics) != 1 {
			t.Errorf("expected 1 metric, got %d", len(req.Metrics))
		}

		json.NewEncoder(w).Encode(Prediction{
			RiskScore:   0.82,
			Conditions:  []string{"Hypertension"},
			Explanation: map[string]interface{}{"feature": "heart_rate"},
		})
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "test-key", 5*time.Second)
	pred, err := p.Predict(context.Background(), Request{
		PatientID: patientID,
		Metrics:   []MetricSample{{Type: "heart_rate", Value: 110, RecordedAt: time.Now()}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.RiskScore != 0.82 {
		t.Errorf("expected score 0.82, got %v", pred.RiskScore)
	}
	if len(pred.Conditions) != 1 || pred.Conditions[0] != "Hypertension" {
		t.Errorf("unexpected conditions: %v", pred.Conditions)
	}
}

func TestHTTPProvider_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model offline", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", 5*time.Second)
	_, err := p.Predict(context.Background(), Request{PatientID: uuid.New()})
	if err == nil {
		t.Fatal("expected error for non-2xx backend response")
	}
}

func TestHTTPProvider_NotConfigured(t *testing.T) {
	p := NewHTTPProvider("", "", time.Second)
	_, err := p.Predict(context.Background(), Request{PatientID: uuid.New()})
	if err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestNullProvider_Predict(t *testing.T) {
	p := NewNullProviderWithSeed(42)

	for i := 0; i < 20; i++ {
		pred, err := p.Predict(context.Background(), Request{PatientID: uuid.New()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pred.RiskScore < 0 || pred.RiskScore > 1 {
			t.Errorf("score out of range: %v", pred.RiskScore)
		}
		if pred.Explanation["source"] != "mock" {
			t.Errorf("expected mock explanation, got %v", pred.Explanation)
		}

		switch {
		case pred.RiskScore > 0.7:
			if len(pred.Conditions) != 1 || pred.Conditions[0] != "Hypertension" {
				t.Errorf("score %v: expected Hypertension, got %v", pred.RiskScore, pred.Conditions)
			}
		case pred.RiskScore > 0.4:
			if len(pred.Conditions) != 1 || pred.Conditions[0] != "Prediabetes" {
				t.Errorf("score %v: expected Prediabetes, got %v", pred.RiskScore, pred.Conditions)
			}
		default:
			if len(pred.Conditions) != 0 {
				t.Errorf("score %v: expected no conditions, got %v", pred.RiskScore, pred.Conditions)
			}
		}
	}
}

func TestNullProvider_ConcurrentPredict(t *testing.T) {
	p := NewNullProviderWithSeed(7)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				pred, err := p.Predict(context.Background(), Request{PatientID: uuid.New()})
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if pred.RiskScore < 0 || pred.RiskScore > 1 {
					t.Errorf("score out of range: %v", pred.RiskScore)
					return
				}
			}
		}()
	}
	wg.Wait()
}

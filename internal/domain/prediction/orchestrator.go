package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/portal/internal/domain/metrics"
	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/model"
)

// metricsWindow is how many recent readings are sent to the model.
const metricsWindow = 200

// ErrNotAssigned is returned when a doctor asks for a prediction on a
// patient outside their assignment set.
var ErrNotAssigned = errors.New("not assigned to patient")

// MetricSource supplies the readings a scoring run is based on.
type MetricSource interface {
	LatestByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*metrics.Metric, error)
}

// TxRunner runs fn atomically. In production it wraps db.WithTx; tests
// substitute a passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Orchestrator drives a model scoring run end to end: authorize, gather
// metrics, invoke the model, persist prediction plus audit row, respond.
type Orchestrator struct {
	svc         *Service
	metrics     MetricSource
	assignments auth.AssignmentSource
	provider    model.Provider
	mock        model.Provider
	tx          TxRunner
	log         zerolog.Logger
}

func NewOrchestrator(svc *Service, src MetricSource, assignments auth.AssignmentSource, provider model.Provider, tx TxRunner, log zerolog.Logger) *Orchestrator {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Orchestrator{
		svc:         svc,
		metrics:     src,
		assignments: assignments,
		provider:    provider,
		mock:        model.NewNullProvider(),
		tx:          tx,
		log:         log,
	}
}

func (o *Orchestrator) authorize(ctx context.Context, ident auth.Identity, patientID uuid.UUID) error {
	if ident.Role == auth.RoleAdmin {
		return nil
	}
	ok, err := o.assignments.IsAssigned(ctx, ident.UserID, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAssigned
	}
	return nil
}

func (o *Orchestrator) gather(ctx context.Context, patientID uuid.UUID) (model.Request, error) {
	ms, err := o.metrics.LatestByPatient(ctx, patientID, metricsWindow)
	if err != nil {
		return model.Request{}, fmt.Errorf("fetching metrics: %w", err)
	}

	req := model.Request{PatientID: patientID, Metrics: make([]model.MetricSample, 0, len(ms))}
	for _, m := range ms {
		sample := model.MetricSample{
			Type:       m.MetricType,
			Value:      m.MetricValue,
			RecordedAt: m.MetricDate,
		}
		if m.Unit != nil {
			sample.Unit = *m.Unit
		}
		req.Metrics = append(req.Metrics, sample)
	}
	return req, nil
}

// persist writes the audit row, the prediction, and the audit completion
// in one transaction, so a crash can never leave a prediction without its
// log entry or a complete log without its prediction.
func (o *Orchestrator) persist(ctx context.Context, requestedBy uuid.UUID, req model.Request, pred *model.Prediction) (*Prediction, error) {
	reqPayload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request payload: %w", err)
	}
	respPayload, err := json.Marshal(pred)
	if err != nil {
		return nil, fmt.Errorf("encoding response payload: %w", err)
	}

	row := &Prediction{
		PatientID:          req.PatientID,
		RiskScore:          pred.RiskScore,
		HighRiskConditions: pred.Conditions,
		Explanation:        pred.Explanation,
	}

	err = o.tx(ctx, func(ctx context.Context) error {
		logRow := &RequestLog{
			PatientID:      req.PatientID,
			RequestedBy:    requestedBy,
			RequestPayload: reqPayload,
			Status:         LogPending,
		}
		if err := o.svc.repo.CreateRequestLog(ctx, logRow); err != nil {
			return fmt.Errorf("writing request log: %w", err)
		}
		if err := o.svc.CreatePrediction(ctx, row); err != nil {
			return fmt.Errorf("storing prediction: %w", err)
		}
		return o.svc.repo.CompleteRequestLog(ctx, logRow.ID, respPayload)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// GetPrediction runs the orchestrated flow against the configured model.
// An unconfigured model surfaces as model.ErrNotConfigured; there is no
// mock fallback on this path.
func (o *Orchestrator) GetPrediction(ctx context.Context, ident auth.Identity, patientID uuid.UUID) (*model.Prediction, error) {
	if err := o.authorize(ctx, ident, patientID); err != nil {
		return nil, err
	}

	req, err := o.gather(ctx, patientID)
	if err != nil {
		return nil, err
	}

	pred, err := o.provider.Predict(ctx, req)
	if err != nil {
		return nil, err
	}

	if _, err := o.persist(ctx, ident.UserID, req, pred); err != nil {
		return nil, err
	}

	o.log.Info().
		Str("patient_id", patientID.String()).
		Float64("risk_score", pred.RiskScore).
		Msg("prediction stored")
	return pred, nil
}

// Override lets a caller supply a precomputed score on the demo path.
type Override struct {
	RiskScore          *float64               `json:"risk_score"`
	HighRiskConditions []string               `json:"high_risk_conditions"`
	Explanation        map[string]interface{} `json:"explanation"`
}

// Result is the demo path response: the scored values plus the stored row.
type Result struct {
	PatientID          uuid.UUID              `json:"patient_id"`
	RiskScore          float64                `json:"risk_score"`
	HighRiskConditions []string               `json:"high_risk_conditions"`
	Explanation        map[string]interface{} `json:"explanation,omitempty"`
	Record             *Prediction            `json:"record"`
}

// Predict serves the demo path. Score precedence is caller override, then
// the configured model, then the mock provider. The prediction row is
// persisted either way.
func (o *Orchestrator) Predict(ctx context.Context, ident auth.Identity, patientID uuid.UUID, override *Override) (*Result, error) {
	if err := o.authorize(ctx, ident, patientID); err != nil {
		return nil, err
	}

	req, err := o.gather(ctx, patientID)
	if err != nil {
		return nil, err
	}

	var pred *model.Prediction
	switch {
	case override != nil && override.RiskScore != nil:
		pred = &model.Prediction{
			RiskScore:   *override.RiskScore,
			Conditions:  override.HighRiskConditions,
			Explanation: override.Explanation,
		}
	default:
		pred, err = o.provider.Predict(ctx, req)
		if errors.Is(err, model.ErrNotConfigured) {
			pred, err = o.mock.Predict(ctx, req)
		}
		if err != nil {
			return nil, err
		}
	}

	row, err := o.persist(ctx, ident.UserID, req, pred)
	if err != nil {
		return nil, err
	}

	return &Result{
		PatientID:          patientID,
		RiskScore:          row.RiskScore,
		HighRiskConditions: row.HighRiskConditions,
		Explanation:        row.Explanation,
		Record:             row,
	}, nil
}

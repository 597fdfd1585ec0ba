package prediction

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Prediction maps to the predictions table, one row per scoring run.
type Prediction struct {
	ID                 uuid.UUID              `db:"id" json:"id"`
	PatientID          uuid.UUID              `db:"patient_id" json:"patient_id"`
	RiskScore          float64                `db:"risk_score" json:"risk_score"`
	HighRiskConditions []string               `db:"high_risk_conditions" json:"high_risk_conditions"`
	Explanation        map[string]interface{} `db:"explanation" json:"explanation,omitempty"`
	CreatedAt          time.Time              `db:"created_at" json:"created_at"`
}

// Request log statuses. A row starts pending when the model is invoked and
// flips to complete once the prediction has been stored.
const (
	LogPending  = "pending"
	LogComplete = "complete"
)

// RequestLog maps to the prediction_request_log table and is the audit
// trail for orchestrated model calls.
type RequestLog struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	PatientID       uuid.UUID       `db:"patient_id" json:"patient_id"`
	RequestedBy     uuid.UUID       `db:"requested_by" json:"requested_by"`
	RequestPayload  json.RawMessage `db:"request_payload" json:"request_payload,omitempty"`
	ResponsePayload json.RawMessage `db:"response_payload" json:"response_payload,omitempty"`
	Status          string          `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

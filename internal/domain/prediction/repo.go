package prediction

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Repository persists prediction rows and their audit log.
type Repository interface {
	Create(ctx context.Context, p *Prediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prediction, error)
	Update(ctx context.Context, p *Prediction) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Prediction, int, error)

	// LatestByPatient returns the newest prediction for a patient, or nil
	// when the patient has never been scored.
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Prediction, error)

	// LatestPerPatient returns each patient's newest prediction. A nil
	// scopeIDs means unrestricted.
	LatestPerPatient(ctx context.Context, scopeIDs []uuid.UUID) ([]*Prediction, error)

	CreateRequestLog(ctx context.Context, l *RequestLog) error
	CompleteRequestLog(ctx context.Context, id uuid.UUID, response json.RawMessage) error
}

package metrics

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists device metric readings.
type Repository interface {
	Create(ctx context.Context, m *Metric) error
	CreateBatch(ctx context.Context, ms []*Metric) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Metric, int, error)

	// LatestByPatient returns the newest readings for a patient, capped at
	// limit, ordered metric_date DESC.
	LatestByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Metric, error)
}

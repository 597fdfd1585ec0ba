package record

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists medical history and lab result metadata, and reads
// the visit and prescription tables the dashboard renders.
type Repository interface {
	CreateHistory(ctx context.Context, h *HistoryEntry) error
	GetHistoryByID(ctx context.Context, id uuid.UUID) (*HistoryEntry, error)
	UpdateHistory(ctx context.Context, h *HistoryEntry) error
	DeleteHistory(ctx context.Context, id uuid.UUID) error
	SearchHistory(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*HistoryEntry, int, error)

	SearchVisits(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*Visit, int, error)
	VisitsByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Visit, error)

	SearchPrescriptions(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	PrescriptionsByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Prescription, error)

	CreateLabResult(ctx context.Context, r *LabResult) error
	SearchLabResults(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*LabResult, int, error)
	LabResultsByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*LabResult, error)
}

package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists patients and doctor assignments. A nil scopeIDs
// means the caller is unrestricted; a non-nil slice limits results to
// those patient ids.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*Patient, int, error)
	Count(ctx context.Context, scopeIDs []uuid.UUID) (int, error)

	// Assignments
	Assign(ctx context.Context, a *Assignment) error
	Unassign(ctx context.Context, doctorID, patientID uuid.UUID) error
	SearchAssigned(ctx context.Context, doctorID uuid.UUID, search string, limit, offset int) ([]*Patient, int, error)

	// Scope queries (auth.AssignmentSource)
	PatientIDsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error)
	PatientIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	IsAssigned(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
}

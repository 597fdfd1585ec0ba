package appointment

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists appointments. A nil scopeIDs means the caller is
// unrestricted; otherwise results are limited to those patient ids.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	CountPending(ctx context.Context, from, to string, scopeIDs []uuid.UUID) (int, error)
}

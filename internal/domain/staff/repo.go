package staff

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Doctors
	CreateDoctor(ctx context.Context, d *Doctor) error
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	UpdateDoctor(ctx context.Context, d *Doctor) error
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
	SearchDoctors(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error)

	// Staff members
	CreateMember(ctx context.Context, m *Member) error
	GetMember(ctx context.Context, id uuid.UUID) (*Member, error)
	UpdateMember(ctx context.Context, m *Member) error
	DeleteMember(ctx context.Context, id uuid.UUID) error
	SearchMembers(ctx context.Context, params map[string]string, limit, offset int) ([]*Member, int, error)
}

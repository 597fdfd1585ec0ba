package staff

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.CreateDoctor(ctx, d)
}

// DoctorUpdate carries the fields a PATCH may change.
type DoctorUpdate struct {
	UserID       *uuid.UUID `json:"user_id"`
	Name         *string    `json:"name"`
	Specialty    *string    `json:"specialty"`
	DepartmentID *uuid.UUID `json:"department_id"`
	Available    *bool      `json:"available"`
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, params DoctorUpdate) (*Doctor, error) {
	d, err := s.repo.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.UserID != nil {
		d.UserID = params.UserID
	}
	if params.Name != nil {
		if *params.Name == "" {
			return nil, fmt.Errorf("name is required")
		}
		d.Name = *params.Name
	}
	if params.Specialty != nil {
		d.Specialty = params.Specialty
	}
	if params.DepartmentID != nil {
		d.DepartmentID = params.DepartmentID
	}
	if params.Available != nil {
		d.Available = *params.Available
	}
	if err := s.repo.UpdateDoctor(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDoctor(ctx, id)
}

func (s *Service) SearchDoctors(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.SearchDoctors(ctx, params, limit, offset)
}

func (s *Service) CreateMember(ctx context.Context, m *Member) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.CreateMember(ctx, m)
}

// MemberUpdate carries the fields a PATCH may change.
type MemberUpdate struct {
	UserID       *uuid.UUID `json:"user_id"`
	Name         *string    `json:"name"`
	Role         *string    `json:"role"`
	DepartmentID *uuid.UUID `json:"department_id"`
}

func (s *Service) UpdateMember(ctx context.Context, id uuid.UUID, params MemberUpdate) (*Member, error) {
	m, err := s.repo.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.UserID != nil {
		m.UserID = params.UserID
	}
	if params.Name != nil {
		if *params.Name == "" {
			return nil, fmt.Errorf("name is required")
		}
		m.Name = *params.Name
	}
	if params.Role != nil {
		m.Role = params.Role
	}
	if params.DepartmentID != nil {
		m.DepartmentID = params.DepartmentID
	}
	if err := s.repo.UpdateMember(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteMember(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteMember(ctx, id)
}

func (s *Service) SearchMembers(ctx context.Context, params map[string]string, limit, offset int) ([]*Member, int, error) {
	return s.repo.SearchMembers(ctx, params, limit, offset)
}

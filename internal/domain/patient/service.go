package patient

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

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.RiskScore < 0 || p.RiskScore > 1 {
		return fmt.Errorf("risk_score must be between 0 and 1")
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateParams carries the fields a PATCH may change. Nil fields are
// left untouched.
type UpdateParams struct {
	UserID    *uuid.UUID `json:"user_id"`
	Name      *string    `json:"name"`
	Age       *int       `json:"age"`
	Gender    *string    `json:"gender"`
	Diagnosis *string    `json:"diagnosis"`
	RiskScore *float64   `json:"risk_score"`
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, params UpdateParams) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.UserID != nil {
		p.UserID = params.UserID
	}
	if params.Name != nil {
		if *params.Name == "" {
			return nil, fmt.Errorf("name is required")
		}
		p.Name = *params.Name
	}
	if params.Age != nil {
		p.Age = params.Age
	}
	if params.Gender != nil {
		p.Gender = params.Gender
	}
	if params.Diagnosis != nil {
		p.Diagnosis = params.Diagnosis
	}
	if params.RiskScore != nil {
		if *params.RiskScore < 0 || *params.RiskScore > 1 {
			return nil, fmt.Errorf("risk_score must be between 0 and 1")
		}
		p.RiskScore = *params.RiskScore
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) SearchPatients(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, params, scopeIDs, limit, offset)
}

func (s *Service) CountPatients(ctx context.Context, scopeIDs []uuid.UUID) (int, error) {
	return s.repo.Count(ctx, scopeIDs)
}

func (s *Service) AssignPatient(ctx context.Context, a *Assignment) error {
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	return s.repo.Assign(ctx, a)
}

func (s *Service) UnassignPatient(ctx context.Context, doctorID, patientID uuid.UUID) error {
	if doctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if patientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	return s.repo.Unassign(ctx, doctorID, patientID)
}

// SearchAssigned returns the doctor's assigned patients, optionally
// filtered by a case-insensitive name match pushed into the query.
func (s *Service) SearchAssigned(ctx context.Context, doctorID uuid.UUID, search string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.SearchAssigned(ctx, doctorID, search, limit, offset)
}

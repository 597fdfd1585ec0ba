package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusCompleted: true,
	StatusCanceled:  true,
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateParams carries the fields a PATCH may change.
type UpdateParams struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Reason      *string    `json:"reason"`
	Status      *string    `json:"status"`
}

func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, params UpdateParams) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.ScheduledAt != nil {
		a.ScheduledAt = *params.ScheduledAt
	}
	if params.Reason != nil {
		a.Reason = params.Reason
	}
	if params.Status != nil {
		if !validStatuses[*params.Status] {
			return nil, fmt.Errorf("invalid status: %s", *params.Status)
		}
		a.Status = *params.Status
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) SearchAppointments(ctx context.Context, params map[string]string, scopeIDs []uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.Search(ctx, params, scopeIDs, limit, offset)
}

func (s *Service) CountPending(ctx context.Context, from, to string, scopeIDs []uuid.UUID) (int, error) {
	return s.repo.CountPending(ctx, from, to, scopeIDs)
}

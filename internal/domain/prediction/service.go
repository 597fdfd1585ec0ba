package prediction

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

func (s *Service) CreatePrediction(ctx context.Context, p *Prediction) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.RiskScore < 0 || p.RiskScore > 1 {
		return fmt.Errorf("risk_score must be between 0 and 1")
	}
	if p.HighRiskConditions == nil {
		p.HighRiskConditions = []string{}
	}
	return s.repo.Create(ctx, p)
}

// UpdateParams carries the fields a PATCH may change. A nil slice or map
// leaves the stored value untouched.
type UpdateParams struct {
	RiskScore          *float64               `json:"risk_score"`
	HighRiskConditions []string               `json:"high_risk_conditions"`
	Explanation        map[string]interface{} `json:"explanation"`
}

func (s *Service) UpdatePrediction(ctx context.Context, id uuid.UUID, params UpdateParams) (*Prediction, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.RiskScore != nil {
		if *params.RiskScore < 0 || *params.RiskScore > 1 {
			return nil, fmt.Errorf("risk_score must be between 0 and 1")
		}
		p.RiskScore = *params.RiskScore
	}
	if params.HighRiskConditions != nil {
		p.HighRiskConditions = params.HighRiskConditions
	}
	if params.Explanation != nil {
		p.Explanation = params.Explanation
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePrediction(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) SearchPredictions(ctx context.Context, params map[string]string, limit, offset int) ([]*Prediction, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

func (s *Service) LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Prediction, error) {
	return s.repo.LatestByPatient(ctx, patientID)
}

func (s *Service) LatestPerPatient(ctx context.Context, scopeIDs []uuid.UUID) ([]*Prediction, error) {
	return s.repo.LatestPerPatient(ctx, scopeIDs)
}

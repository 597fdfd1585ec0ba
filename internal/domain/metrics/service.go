package metrics

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

// Input is one reading as submitted by a device or the portal UI. The
// value is a pointer so a missing field can be told apart from a zero
// reading.
type Input struct {
	PatientID   uuid.UUID  `json:"patient_id"`
	MetricType  string     `json:"metric_type"`
	MetricValue *float64   `json:"metric_value"`
	Unit        *string    `json:"unit"`
	MetricDate  *time.Time `json:"metric_date"`
}

func (in Input) validate() error {
	if in.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if in.MetricType == "" {
		return fmt.Errorf("metric_type is required")
	}
	if in.MetricValue == nil {
		return fmt.Errorf("metric_value is required")
	}
	return nil
}

func (in Input) toMetric() *Metric {
	m := &Metric{
		PatientID:   in.PatientID,
		MetricType:  in.MetricType,
		MetricValue: *in.MetricValue,
		Unit:        in.Unit,
		MetricDate:  time.Now(),
	}
	if in.MetricDate != nil {
		m.MetricDate = *in.MetricDate
	}
	return m
}

// CreateMetrics validates and stores a batch of readings. A single bad
// item rejects the whole batch so devices can safely retry it as a unit.
func (s *Service) CreateMetrics(ctx context.Context, inputs []Input) ([]*Metric, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("at least one metric is required")
	}
	ms := make([]*Metric, 0, len(inputs))
	for i, in := range inputs {
		if err := in.validate(); err != nil {
			if len(inputs) > 1 {
				return nil, fmt.Errorf("metric %d: %w", i, err)
			}
			return nil, err
		}
		ms = append(ms, in.toMetric())
	}

	if len(ms) == 1 {
		if err := s.repo.Create(ctx, ms[0]); err != nil {
			return nil, err
		}
		return ms, nil
	}
	if err := s.repo.CreateBatch(ctx, ms); err != nil {
		return nil, err
	}
	return ms, nil
}

func (s *Service) SearchMetrics(ctx context.Context, params map[string]string, limit, offset int) ([]*Metric, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

func (s *Service) LatestByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Metric, error) {
	return s.repo.LatestByPatient(ctx, patientID, limit)
}

package analytics

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/carebridge/portal/internal/domain/metrics"
	"github.com/carebridge/portal/internal/domain/patient"
	"github.com/carebridge/portal/internal/domain/prediction"
	"github.com/carebridge/portal/internal/domain/record"
	"github.com/carebridge/portal/internal/platform/model"
)

// Per-section caps for the dashboard fan-out.
const (
	dashboardListLimit    = 50
	dashboardMetricsLimit = 200
	topConditionsLimit    = 10
)

// PatientSource supplies patient rows and counts.
type PatientSource interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	CountPatients(ctx context.Context, scopeIDs []uuid.UUID) (int, error)
}

// AppointmentSource counts pending appointments within a date window.
type AppointmentSource interface {
	CountPending(ctx context.Context, from, to string, scopeIDs []uuid.UUID) (int, error)
}

// PredictionSource supplies latest predictions.
type PredictionSource interface {
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*prediction.Prediction, error)
	LatestPerPatient(ctx context.Context, scopeIDs []uuid.UUID) ([]*prediction.Prediction, error)
}

// RecordSource supplies the per-patient record sections.
type RecordSource interface {
	VisitsByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*record.Visit, error)
	PrescriptionsByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*record.Prescription, error)
	LabResultsByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*record.LabResult, error)
}

// MetricSource supplies recent device readings.
type MetricSource interface {
	LatestByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*metrics.Metric, error)
}

type Service struct {
	patients     PatientSource
	appointments AppointmentSource
	predictions  PredictionSource
	records      RecordSource
	metrics      MetricSource
}

func NewService(patients PatientSource, appointments AppointmentSource, predictions PredictionSource, records RecordSource, metricSrc MetricSource) *Service {
	return &Service{
		patients:     patients,
		appointments: appointments,
		predictions:  predictions,
		records:      records,
		metrics:      metricSrc,
	}
}

// Totals is the headline counter block of the overview.
type Totals struct {
	Patients            int `json:"patients"`
	AppointmentsPending int `json:"appointments_pending"`
}

// RiskDistribution buckets patients by their latest risk score.
type RiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// ConditionCount is one entry of the top conditions list.
type ConditionCount struct {
	Condition string `json:"condition"`
	Count     int    `json:"count"`
}

// Overview is the /analytics response.
type Overview struct {
	Totals           Totals           `json:"totals"`
	RiskDistribution RiskDistribution `json:"risk_distribution"`
	TopConditions    []ConditionCount `json:"top_conditions"`
}

// EmptyOverview is the canonical zero response, returned without touching
// the database when a restricted caller has no patients at all.
func EmptyOverview() *Overview {
	return &Overview{TopConditions: []ConditionCount{}}
}

// BuildOverview aggregates counts, the risk distribution over each
// patient's latest prediction, and the most frequent high risk conditions.
// A nil scopeIDs means the caller is unrestricted.
func (s *Service) BuildOverview(ctx context.Context, from, to string, scopeIDs []uuid.UUID) (*Overview, error) {
	ov := EmptyOverview()

	patients, err := s.patients.CountPatients(ctx, scopeIDs)
	if err != nil {
		return nil, err
	}
	ov.Totals.Patients = patients

	pending, err := s.appointments.CountPending(ctx, from, to, scopeIDs)
	if err != nil {
		return nil, err
	}
	ov.Totals.AppointmentsPending = pending

	latest, err := s.predictions.LatestPerPatient(ctx, scopeIDs)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for _, p := range latest {
		switch model.RiskLevel(p.RiskScore) {
		case "low":
			ov.RiskDistribution.Low++
		case "medium":
			ov.RiskDistribution.Medium++
		default:
			ov.RiskDistribution.High++
		}
		for _, cond := range p.HighRiskConditions {
			if _, seen := counts[cond]; !seen {
				firstSeen[cond] = len(firstSeen)
			}
			counts[cond]++
		}
	}

	conditions := make([]ConditionCount, 0, len(counts))
	for cond, n := range counts {
		conditions = append(conditions, ConditionCount{Condition: cond, Count: n})
	}
	sort.Slice(conditions, func(i, j int) bool {
		if conditions[i].Count != conditions[j].Count {
			return conditions[i].Count > conditions[j].Count
		}
		return firstSeen[conditions[i].Condition] < firstSeen[conditions[j].Condition]
	})
	if len(conditions) > topConditionsLimit {
		conditions = conditions[:topConditionsLimit]
	}
	ov.TopConditions = conditions
	return ov, nil
}

// Dashboard is the aggregated per-patient view.
type Dashboard struct {
	Patient          *patient.Patient       `json:"patient"`
	Visits           []*record.Visit        `json:"visits"`
	LabResults       []*record.LabResult    `json:"lab_results"`
	Prescriptions    []*record.Prescription `json:"prescriptions"`
	LatestPrediction *prediction.Prediction `json:"latest_prediction"`
	Metrics          []*metrics.Metric      `json:"metrics"`
}

// BuildDashboard fetches all dashboard sections in parallel and fails fast
// on the first error; there are no partial dashboards.
func (s *Service) BuildDashboard(ctx context.Context, patientID uuid.UUID) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.patients.GetPatient(ctx, patientID)
		if err != nil {
			return err
		}
		d.Patient = p
		return nil
	})
	g.Go(func() error {
		vs, err := s.records.VisitsByPatient(ctx, patientID, dashboardListLimit)
		if err != nil {
			return err
		}
		d.Visits = vs
		return nil
	})
	g.Go(func() error {
		ls, err := s.records.LabResultsByPatient(ctx, patientID, dashboardListLimit)
		if err != nil {
			return err
		}
		d.LabResults = ls
		return nil
	})
	g.Go(func() error {
		ps, err := s.records.PrescriptionsByPatient(ctx, patientID, dashboardListLimit)
		if err != nil {
			return err
		}
		d.Prescriptions = ps
		return nil
	})
	g.Go(func() error {
		p, err := s.predictions.LatestByPatient(ctx, patientID)
		if err != nil {
			return err
		}
		d.LatestPrediction = p
		return nil
	})
	g.Go(func() error {
		ms, err := s.metrics.LatestByPatient(ctx, patientID, dashboardMetricsLimit)
		if err != nil {
			return err
		}
		d.Metrics = ms
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if d.Visits == nil {
		d.Visits = []*record.Visit{}
	}
	if d.LabResults == nil {
		d.LabResults = []*record.LabResult{}
	}
	if d.Prescriptions == nil {
		d.Prescriptions = []*record.Prescription{}
	}
	if d.Metrics == nil {
		d.Metrics = []*metrics.Metric{}
	}
	return &d, nil
}

// HospitalStats is the admin-only headline block.
type HospitalStats struct {
	Totals struct {
		Patients int `json:"patients"`
	} `json:"totals"`
}

func (s *Service) BuildHospitalStats(ctx context.Context) (*HospitalStats, error) {
	n, err := s.patients.CountPatients(ctx, nil)
	if err != nil {
		return nil, err
	}
	var stats HospitalStats
	stats.Totals.Patients = n
	return &stats, nil
}

package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/portal/internal/domain/metrics"
	"github.com/carebridge/portal/internal/domain/patient"
	"github.com/carebridge/portal/internal/domain/prediction"
	"github.com/carebridge/portal/internal/domain/record"
)

// -- Mock sources --

type mockSources struct {
	patients       map[uuid.UUID]*patient.Patient
	patientCount   int
	pendingCount   int
	latest         []*prediction.Prediction
	visits         []*record.Visit
	prescriptions  []*record.Prescription
	labs           []*record.LabResult
	metricReadings []*metrics.Metric

	calls int
	fail  string
}

func (m *mockSources) GetPatient(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	m.calls++
	if m.fail == "patient" {
		return nil, fmt.Errorf("patient lookup failed")
	}
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockSources) CountPatients(_ context.Context, scopeIDs []uuid.UUID) (int, error) {
	m.calls++
	return m.patientCount, nil
}

func (m *mockSources) CountPending(_ context.Context, from, to string, scopeIDs []uuid.UUID) (int, error) {
	m.calls++
	return m.pendingCount, nil
}

func (m *mockSources) LatestByPatient(_ context.Context, patientID uuid.UUID) (*prediction.Prediction, error) {
	m.calls++
	for _, p := range m.latest {
		if p.PatientID == patientID {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockSources) LatestPerPatient(_ context.Context, scopeIDs []uuid.UUID) ([]*prediction.Prediction, error) {
	m.calls++
	return m.latest, nil
}

func (m *mockSources) VisitsByPatient(_ context.Context, _ uuid.UUID, _ int) ([]*record.Visit, error) {
	m.calls++
	if m.fail == "visits" {
		return nil, fmt.Errorf("visits query failed")
	}
	return m.visits, nil
}

func (m *mockSources) PrescriptionsByPatient(_ context.Context, _ uuid.UUID, _ int) ([]*record.Prescription, error) {
	m.calls++
	return m.prescriptions, nil
}

func (m *mockSources) LabResultsByPatient(_ context.Context, _ uuid.UUID, _ int) ([]*record.LabResult, error) {
	m.calls++
	return m.labs, nil
}

type metricSource struct {
	readings []*metrics.Metric
}

func (m *metricSource) LatestByPatient(_ context.Context, _ uuid.UUID, limit int) ([]*metrics.Metric, error) {
	if limit > 0 && len(m.readings) > limit {
		return m.readings[:limit], nil
	}
	return m.readings, nil
}

func newService(src *mockSources) *Service {
	return NewService(src, src, src, src, &metricSource{readings: src.metricReadings})
}

func pred(patientID uuid.UUID, score float64, conditions ...string) *prediction.Prediction {
	return &prediction.Prediction{
		ID:                 uuid.New(),
		PatientID:          patientID,
		RiskScore:          score,
		HighRiskConditions: conditions,
		CreatedAt:          time.Now(),
	}
}

// -- Tests --

func TestBuildOverview_RiskBuckets(t *testing.T) {
	src := &mockSources{
		patientCount: 4,
		pendingCount: 2,
		latest: []*prediction.Prediction{
			pred(uuid.New(), 0.10),
			pred(uuid.New(), 0.32),
			pred(uuid.New(), 0.50),
			pred(uuid.New(), 0.90),
		},
	}
	ov, err := newService(src).BuildOverview(context.Background(), "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ov.Totals.Patients != 4 || ov.Totals.AppointmentsPending != 2 {
		t.Errorf("unexpected totals: %+v", ov.Totals)
	}
	if ov.RiskDistribution.Low != 2 || ov.RiskDistribution.Medium != 1 || ov.RiskDistribution.High != 1 {
		t.Errorf("unexpected distribution: %+v", ov.RiskDistribution)
	}
}

func TestBuildOverview_TopConditionsOrdering(t *testing.T) {
	src := &mockSources{
		latest: []*prediction.Prediction{
			pred(uuid.New(), 0.8, "Hypertension", "CKD"),
			pred(uuid.New(), 0.7, "Prediabetes"),
			pred(uuid.New(), 0.9, "Prediabetes", "CKD"),
			pred(uuid.New(), 0.6, "CKD"),
		},
	}
	ov, err := newService(src).BuildOverview(context.Background(), "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ov.TopConditions) != 3 {
		t.Fatalf("expected 3 conditions, got %d", len(ov.TopConditions))
	}
	if ov.TopConditions[0].Condition != "CKD" || ov.TopConditions[0].Count != 3 {
		t.Errorf("expected CKD first with count 3, got %+v", ov.TopConditions[0])
	}
	// Hypertension and Prediabetes tie at different counts; Prediabetes has 2.
	if ov.TopConditions[1].Condition != "Prediabetes" || ov.TopConditions[1].Count != 2 {
		t.Errorf("expected Prediabetes second, got %+v", ov.TopConditions[1])
	}
	if ov.TopConditions[2].Condition != "Hypertension" {
		t.Errorf("expected Hypertension third, got %+v", ov.TopConditions[2])
	}
}

func TestBuildOverview_TieBreaksByFirstSeen(t *testing.T) {
	src := &mockSources{
		latest: []*prediction.Prediction{
			pred(uuid.New(), 0.8, "Asthma"),
			pred(uuid.New(), 0.8, "COPD"),
		},
	}
	ov, err := newService(src).BuildOverview(context.Background(), "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ov.TopConditions[0].Condition != "Asthma" || ov.TopConditions[1].Condition != "COPD" {
		t.Errorf("tie should break by first appearance: %+v", ov.TopConditions)
	}
}

func TestBuildDashboard_AllSections(t *testing.T) {
	patientID := uuid.New()
	src := &mockSources{
		patients: map[uuid.UUID]*patient.Patient{
			patientID: {ID: patientID, Name: "Ada Okafor"},
		},
		latest:         []*prediction.Prediction{pred(patientID, 0.4, "Prediabetes")},
		visits:         []*record.Visit{{ID: uuid.New(), PatientID: patientID}},
		prescriptions:  []*record.Prescription{{ID: uuid.New(), PatientID: patientID, Medication: "Metformin"}},
		labs:           []*record.LabResult{{ID: uuid.New(), PatientID: patientID, FileName: "cbc.pdf"}},
		metricReadings: []*metrics.Metric{{ID: uuid.New(), PatientID: patientID, MetricType: "heart_rate", MetricValue: 72}},
	}

	d, err := newService(src).BuildDashboard(context.Background(), patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Patient == nil || d.Patient.Name != "Ada Okafor" {
		t.Error("missing patient section")
	}
	if len(d.Visits) != 1 || len(d.Prescriptions) != 1 || len(d.LabResults) != 1 || len(d.Metrics) != 1 {
		t.Errorf("incomplete dashboard: %+v", d)
	}
	if d.LatestPrediction == nil || d.LatestPrediction.RiskScore != 0.4 {
		t.Error("missing latest prediction")
	}
}

func TestBuildDashboard_FailFast(t *testing.T) {
	patientID := uuid.New()
	src := &mockSources{
		patients: map[uuid.UUID]*patient.Patient{patientID: {ID: patientID}},
		fail:     "visits",
	}

	_, err := newService(src).BuildDashboard(context.Background(), patientID)
	if err == nil {
		t.Fatal("expected fan-out error to surface")
	}
}

func TestBuildDashboard_EmptySectionsNotNull(t *testing.T) {
	patientID := uuid.New()
	src := &mockSources{
		patients: map[uuid.UUID]*patient.Patient{patientID: {ID: patientID}},
	}

	d, err := newService(src).BuildDashboard(context.Background(), patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Visits == nil || d.LabResults == nil || d.Prescriptions == nil || d.Metrics == nil {
		t.Error("empty sections must serialize as [], not null")
	}
}

func TestBuildHospitalStats(t *testing.T) {
	src := &mockSources{patientCount: 42}
	stats, err := newService(src).BuildHospitalStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Totals.Patients != 42 {
		t.Errorf("expected 42 patients, got %d", stats.Totals.Patients)
	}
}

package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/httpx"
)

// mockScopes answers assignment queries from fixed maps.
type mockScopes struct {
	byDoctor map[uuid.UUID][]uuid.UUID
	byUser   map[uuid.UUID][]uuid.UUID
}

func (m *mockScopes) PatientIDsByDoctor(_ context.Context, doctorID uuid.UUID) ([]uuid.UUID, error) {
	return m.byDoctor[doctorID], nil
}

func (m *mockScopes) PatientIDsByUser(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return m.byUser[userID], nil
}

func (m *mockScopes) IsAssigned(_ context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	for _, id := range m.byDoctor[doctorID] {
		if id == patientID {
			return true, nil
		}
	}
	return false, nil
}

func emptyScopes() *mockScopes {
	return &mockScopes{
		byDoctor: map[uuid.UUID][]uuid.UUID{},
		byUser:   map[uuid.UUID][]uuid.UUID{},
	}
}

func setup(repo *mockRepo, src auth.AssignmentSource, ident *auth.Identity) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = httpx.ErrorHandler(zerolog.Nop())
	api := e.Group("", auth.Middleware(&auth.FakeProvider{Identity: ident}))
	NewHandler(NewService(repo), auth.NewResolver(src)).RegisterRoutes(api)
	return e
}

func TestListMetrics_RequiresPatientID(t *testing.T) {
	e := setup(newMockRepo(), emptyScopes(), &auth.Identity{UserID: uuid.New(), Role: auth.RoleNurse})

	req := httptest.NewRequest(http.MethodGet, "/iotMetrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "patient_id is required" {
		t.Errorf("unexpected error message: %q", body["error"])
	}
}

func TestListMetrics_PatientCrossScopeForbidden(t *testing.T) {
	repo := newMockRepo()
	userID := uuid.New()
	ownPatientID := uuid.New()
	otherPatientID := uuid.New()

	_ = repo.Create(nil, &Metric{PatientID: otherPatientID, MetricType: "heart_rate", MetricValue: 72})

	scopes := emptyScopes()
	scopes.byUser[userID] = []uuid.UUID{ownPatientID}

	e := setup(repo, scopes, &auth.Identity{UserID: userID, Role: auth.RolePatient})
	req := httptest.NewRequest(http.MethodGet, "/iotMetrics?patient_id="+otherPatientID.String(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "not assigned to patient" {
		t.Errorf("unexpected error message: %q", body["error"])
	}
}

func TestListMetrics_UnassignedDoctorForbidden(t *testing.T) {
	e := setup(newMockRepo(), emptyScopes(), &auth.Identity{UserID: uuid.New(), Role: auth.RoleDoctor})

	req := httptest.NewRequest(http.MethodGet, "/iotMetrics?patient_id="+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCreateMetric_SingleObject(t *testing.T) {
	repo := newMockRepo()
	userID := uuid.New()
	patientID := uuid.New()

	scopes := emptyScopes()
	scopes.byUser[userID] = []uuid.UUID{patientID}
	e := setup(repo, scopes, &auth.Identity{UserID: userID, Role: auth.RolePatient})

	payload := fmt.Sprintf(`{"patient_id":%q,"metric_type":"heart_rate","metric_value":72}`, patientID)
	req := httptest.NewRequest(http.MethodPost, "/iotMetrics", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data Metric `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Data.MetricValue != 72 {
		t.Errorf("expected value 72, got %v", body.Data.MetricValue)
	}
}

func TestCreateMetric_PatientCrossScopeForbidden(t *testing.T) {
	repo := newMockRepo()
	userID := uuid.New()
	ownPatientID := uuid.New()

	scopes := emptyScopes()
	scopes.byUser[userID] = []uuid.UUID{ownPatientID}
	e := setup(repo, scopes, &auth.Identity{UserID: userID, Role: auth.RolePatient})

	payload := fmt.Sprintf(`{"patient_id":%q,"metric_type":"heart_rate","metric_value":72}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/iotMetrics", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.metrics) != 0 {
		t.Errorf("expected no stored metrics, got %d", len(repo.metrics))
	}
}

func TestCreateMetric_Batch(t *testing.T) {
	repo := newMockRepo()
	e := setup(repo, emptyScopes(), &auth.Identity{UserID: uuid.New(), Role: auth.RoleNurse})
	patientID := uuid.New()

	payload := fmt.Sprintf(`[
		{"patient_id":%q,"metric_type":"heart_rate","metric_value":70},
		{"patient_id":%q,"metric_type":"spo2","metric_value":97}
	]`, patientID, patientID)
	req := httptest.NewRequest(http.MethodPost, "/iotMetrics", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data  []Metric `json:"data"`
		Count int      `json:"count"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Count != 2 || len(body.Data) != 2 {
		t.Fatalf("expected 2 metrics, got count=%d len=%d", body.Count, len(body.Data))
	}
	if len(repo.metrics) != 2 {
		t.Errorf("expected 2 stored metrics, got %d", len(repo.metrics))
	}
}

func TestCreateMetric_MissingValue(t *testing.T) {
	e := setup(newMockRepo(), emptyScopes(), &auth.Identity{UserID: uuid.New(), Role: auth.RoleNurse})

	payload := fmt.Sprintf(`{"patient_id":%q,"metric_type":"heart_rate"}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/iotMetrics", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if !strings.Contains(body["error"], "metric_value") {
		t.Errorf("error should name the missing field: %q", body["error"])
	}
}

func TestListMetrics_DefaultLimit(t *testing.T) {
	repo := newMockRepo()
	patientID := uuid.New()
	for i := 0; i < DefaultListLimit+20; i++ {
		_ = repo.Create(nil, &Metric{PatientID: patientID, MetricType: "heart_rate", MetricValue: float64(i)})
	}

	doctorID := uuid.New()
	scopes := emptyScopes()
	scopes.byDoctor[doctorID] = []uuid.UUID{patientID}

	e := setup(repo, scopes, &auth.Identity{UserID: doctorID, Role: auth.RoleDoctor})
	req := httptest.NewRequest(http.MethodGet, "/iotMetrics?patient_id="+patientID.String(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data  []Metric `json:"data"`
		Count int      `json:"count"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if len(body.Data) != DefaultListLimit {
		t.Errorf("expected page of %d, got %d", DefaultListLimit, len(body.Data))
	}
	if body.Count != DefaultListLimit+20 {
		t.Errorf("expected total %d, got %d", DefaultListLimit+20, body.Count)
	}
}

package patient

import (
	"context"
	"encoding/json"
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

func setup(repo *mockRepo, ident *auth.Identity) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = httpx.ErrorHandler(zerolog.Nop())
	api := e.Group("", auth.Middleware(&auth.FakeProvider{Identity: ident}))
	h := NewHandler(NewService(repo), auth.NewResolver(repo))
	h.RegisterRoutes(api)
	return e
}

func adminIdent() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Role: auth.RoleAdmin}
}

func TestListPatients_NameFilterWithLimit(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	_ = svc.CreatePatient(context.Background(), &Patient{Name: "John Smith"})
	_ = svc.CreatePatient(context.Background(), &Patient{Name: "Johnny Walker"})
	_ = svc.CreatePatient(context.Background(), &Patient{Name: "Mary Jones"})

	e := setup(repo, adminIdent())
	req := httptest.NewRequest(http.MethodGet, "/patients?name=john&limit=1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data  []Patient `json:"data"`
		Count int       `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(body.Data) > 1 {
		t.Errorf("expected at most 1 row, got %d", len(body.Data))
	}
	for _, p := range body.Data {
		if !strings.Contains(strings.ToLower(p.Name), "john") {
			t.Errorf("row %q does not match filter", p.Name)
		}
	}
	if body.Count != 2 {
		t.Errorf("expected count 2, got %d", body.Count)
	}
}

func TestListPatients_DoctorWithEmptyScopeSeesNothing(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	_ = svc.CreatePatient(context.Background(), &Patient{Name: "John Smith"})

	e := setup(repo, &auth.Identity{UserID: uuid.New(), Role: auth.RoleDoctor})
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data  []Patient `json:"data"`
		Count int       `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(body.Data) != 0 || body.Count != 0 {
		t.Errorf("expected empty result for unassigned doctor, got %d rows", len(body.Data))
	}
}

func TestCreatePatient_MissingName(t *testing.T) {
	e := setup(newMockRepo(), adminIdent())
	req := httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(`{"age":40}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if !strings.Contains(body["error"], "name") {
		t.Errorf("expected error naming the missing field, got %q", body["error"])
	}
}

func TestCreatePatient_DoctorForbidden(t *testing.T) {
	e := setup(newMockRepo(), &auth.Identity{UserID: uuid.New(), Role: auth.RoleDoctor})
	req := httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(`{"name":"Jane"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestUpdatePatient_MissingID(t *testing.T) {
	e := setup(newMockRepo(), adminIdent())
	req := httptest.NewRequest(http.MethodPatch, "/patients", strings.NewReader(`{"name":"Jane"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeletePatient_ReturnsSuccess(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	p := &Patient{Name: "Jane Doe"}
	_ = svc.CreatePatient(context.Background(), p)

	e := setup(repo, adminIdent())
	req := httptest.NewRequest(http.MethodDelete, "/patients?id="+p.ID.String(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]bool
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if !body["success"] {
		t.Error("expected success:true")
	}
	if len(repo.patients) != 0 {
		t.Error("expected patient removed")
	}
}

func TestPatients_MethodNotAllowed(t *testing.T) {
	e := setup(newMockRepo(), adminIdent())
	req := httptest.NewRequest(http.MethodPut, "/patients", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestListAssigned_DoctorScoped(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	doctorID := uuid.New()

	assigned := &Patient{Name: "John Smith"}
	other := &Patient{Name: "Mary Jones"}
	_ = svc.CreatePatient(context.Background(), assigned)
	_ = svc.CreatePatient(context.Background(), other)
	_ = svc.AssignPatient(context.Background(), &Assignment{DoctorID: doctorID, PatientID: assigned.ID})

	e := setup(repo, &auth.Identity{UserID: doctorID, Role: auth.RoleDoctor})
	req := httptest.NewRequest(http.MethodGet, "/getAssignedPatients", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data  []Patient `json:"data"`
		Count int       `json:"count"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Count != 1 || len(body.Data) != 1 {
		t.Fatalf("expected exactly the assigned patient, got %d", len(body.Data))
	}
	if body.Data[0].ID != assigned.ID {
		t.Errorf("unexpected patient returned")
	}
}

func TestListAssigned_PatientForbidden(t *testing.T) {
	e := setup(newMockRepo(), &auth.Identity{UserID: uuid.New(), Role: auth.RolePatient})
	req := httptest.NewRequest(http.MethodGet, "/getAssignedPatients", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

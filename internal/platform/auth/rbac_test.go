package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func contextWithIdentity(role string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), identityKey, &Identity{UserID: uuid.New(), Role: role})
	req = req.WithContext(ctx)
	return e.NewContext(req, httptest.NewRecorder())
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireRole_Allowed(t *testing.T) {
	h := RequireRole(RoleDoctor)(okHandler)
	if err := h(contextWithIdentity(RoleDoctor)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole_AdminAlwaysPasses(t *testing.T) {
	h := RequireRole(RoleDoctor)(okHandler)
	if err := h(contextWithIdentity(RoleAdmin)); err != nil {
		t.Fatalf("admin should bypass role checks: %v", err)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	h := RequireRole(RoleDoctor)(okHandler)
	err := h(contextWithIdentity(RolePatient))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequireRole_NoIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	h := RequireRole(RoleDoctor)(okHandler)
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestRequireAuth_AnyRole(t *testing.T) {
	h := RequireAuth()(okHandler)
	for _, role := range []string{RoleAdmin, RoleDoctor, RoleNurse, RolePatient} {
		if err := h(contextWithIdentity(role)); err != nil {
			t.Errorf("role %s: unexpected error: %v", role, err)
		}
	}
}

package analytics

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/httpx"
)

type Handler struct {
	svc    *Service
	scopes *auth.Resolver
}

func NewHandler(svc *Service, scopes *auth.Resolver) *Handler {
	return &Handler{svc: svc, scopes: scopes}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/analytics", h.Overview, auth.RequireRole("admin", "doctor"))
	api.GET("/getPatientDashboard", h.Dashboard, auth.RequireAuth())
	api.POST("/getPatientDashboard", h.Dashboard, auth.RequireAuth())
	api.GET("/getHospitalStats", h.HospitalStats, auth.RequireRole("admin"))
}

func (h *Handler) Overview(c echo.Context) error {
	ident, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	scope, err := h.scopes.Resolve(c.Request().Context(), *ident)
	if err != nil {
		return err
	}
	if scope.Empty() {
		return httpx.OK(c, EmptyOverview())
	}

	var scopeIDs []uuid.UUID
	if !scope.Unrestricted {
		scopeIDs = scope.PatientIDs
	}

	ov, err := h.svc.BuildOverview(c.Request().Context(), c.QueryParam("from"), c.QueryParam("to"), scopeIDs)
	if err != nil {
		return err
	}
	return httpx.OK(c, ov)
}

func (h *Handler) Dashboard(c echo.Context) error {
	ident, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}

	patientID := uuid.Nil
	if c.Request().Method == http.MethodPost {
		var body struct {
			PatientID *uuid.UUID `json:"patient_id"`
		}
		_ = c.Bind(&body)
		if body.PatientID != nil {
			patientID = *body.PatientID
		}
	}
	if patientID == uuid.Nil {
		if raw := c.QueryParam("patient_id"); raw != "" {
			pid, err := uuid.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
			}
			patientID = pid
		}
	}
	if patientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}

	scope, err := h.scopes.Resolve(c.Request().Context(), *ident)
	if err != nil {
		return err
	}
	if !scope.Allows(patientID) {
		return echo.NewHTTPError(http.StatusForbidden, "not assigned to patient")
	}

	d, err := h.svc.BuildDashboard(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	return httpx.OK(c, d)
}

func (h *Handler) HospitalStats(c echo.Context) error {
	stats, err := h.svc.BuildHospitalStats(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.OK(c, stats)
}

package appointment

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/httpx"
	"github.com/carebridge/portal/pkg/pagination"
)

type Handler struct {
	svc    *Service
	scopes *auth.Resolver
}

func NewHandler(svc *Service, scopes *auth.Resolver) *Handler {
	return &Handler{svc: svc, scopes: scopes}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.List, auth.RequireRole("admin", "doctor", "patient"))
	api.POST("/appointments", h.Create, auth.RequireRole("admin", "doctor"))
	api.PATCH("/appointments", h.Update, auth.RequireRole("admin", "doctor"))
	api.DELETE("/appointments", h.Delete, auth.RequireRole("admin", "doctor"))
}

func (h *Handler) List(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	scope, err := h.scopes.Resolve(c.Request().Context(), *id)
	if err != nil {
		return err
	}
	if scope.Empty() {
		return httpx.List(c, []*Appointment{}, 0)
	}

	params := map[string]string{
		"patient_id": c.QueryParam("patient_id"),
		"doctor_id":  c.QueryParam("doctor_id"),
		"status":     c.QueryParam("status"),
		"from":       c.QueryParam("from"),
		"to":         c.QueryParam("to"),
	}

	// A restricted caller asking for a patient outside their scope is
	// rejected here rather than silently returning an empty page.
	if raw := params["patient_id"]; raw != "" && !scope.Unrestricted {
		pid, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		if !scope.Allows(pid) {
			return echo.NewHTTPError(http.StatusForbidden, "not assigned to patient")
		}
	}

	var scopeIDs []uuid.UUID
	if !scope.Unrestricted {
		scopeIDs = scope.PatientIDs
	}

	pg := pagination.FromContext(c)
	appts, total, err := h.svc.SearchAppointments(c.Request().Context(), params, scopeIDs, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return httpx.List(c, appts, total)
}

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateAppointment(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.Created(c, a)
}

func (h *Handler) Update(c echo.Context) error {
	var body struct {
		ID *uuid.UUID `json:"id"`
		UpdateParams
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := httpx.ResolveID(c, body.ID)
	if err != nil {
		return err
	}

	a, err := h.svc.UpdateAppointment(c.Request().Context(), id, body.UpdateParams)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.OK(c, a)
}

func (h *Handler) Delete(c echo.Context) error {
	var body struct {
		ID *uuid.UUID `json:"id"`
	}
	_ = c.Bind(&body)
	id, err := httpx.ResolveID(c, body.ID)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Deleted(c)
}

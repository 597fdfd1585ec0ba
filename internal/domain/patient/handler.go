package patient

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
	api.GET("/patients", h.List, auth.RequireAuth())
	api.POST("/patients", h.Create, auth.RequireRole("admin"))
	api.PATCH("/patients", h.Update, auth.RequireRole("admin"))
	api.DELETE("/patients", h.Delete, auth.RequireRole("admin"))

	api.GET("/getAssignedPatients", h.ListAssigned, auth.RequireRole("doctor"))

	api.POST("/assignments", h.Assign, auth.RequireRole("admin"))
	api.DELETE("/assignments", h.Unassign, auth.RequireRole("admin"))
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
		return httpx.List(c, []*Patient{}, 0)
	}

	params := map[string]string{
		"id":        c.QueryParam("id"),
		"name":      c.QueryParam("name"),
		"diagnosis": c.QueryParam("diagnosis"),
		"min_risk":  c.QueryParam("min_risk"),
		"max_risk":  c.QueryParam("max_risk"),
	}
	pg := pagination.FromContext(c)

	var scopeIDs []uuid.UUID
	if !scope.Unrestricted {
		scopeIDs = scope.PatientIDs
	}

	patients, total, err := h.svc.SearchPatients(c.Request().Context(), params, scopeIDs, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return httpx.List(c, patients, total)
}

func (h *Handler) Create(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.Created(c, p)
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

	p, err := h.svc.UpdatePatient(c.Request().Context(), id, body.UpdateParams)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.OK(c, p)
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

	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Deleted(c)
}

func (h *Handler) ListAssigned(c echo.Context) error {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}

	doctorID := id.UserID
	if id.Role == auth.RoleAdmin {
		if raw := c.QueryParam("doctor_id"); raw != "" {
			did, err := uuid.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
			}
			doctorID = did
		}
	}

	pg := pagination.FromContext(c)
	patients, total, err := h.svc.SearchAssigned(c.Request().Context(), doctorID, c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return httpx.List(c, patients, total)
}

func (h *Handler) Assign(c echo.Context) error {
	var a Assignment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AssignPatient(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.Created(c, a)
}

func (h *Handler) Unassign(c echo.Context) error {
	var body struct {
		DoctorID  uuid.UUID `json:"doctor_id"`
		PatientID uuid.UUID `json:"patient_id"`
	}
	_ = c.Bind(&body)
	if body.DoctorID == uuid.Nil {
		if did, err := uuid.Parse(c.QueryParam("doctor_id")); err == nil {
			body.DoctorID = did
		}
	}
	if body.PatientID == uuid.Nil {
		if pid, err := uuid.Parse(c.QueryParam("patient_id")); err == nil {
			body.PatientID = pid
		}
	}

	if err := h.svc.UnassignPatient(c.Request().Context(), body.DoctorID, body.PatientID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.Deleted(c)
}

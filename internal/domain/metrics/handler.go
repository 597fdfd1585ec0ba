package metrics

import (
	"encoding/json"
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
	api.GET("/iotMetrics", h.List, auth.RequireAuth())
	api.POST("/iotMetrics", h.Create, auth.RequireAuth())
}

func (h *Handler) List(c echo.Context) error {
	raw := c.QueryParam("patient_id")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	patientID, err := uuid.Parse(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}

	ident, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	scope, err := h.scopes.Resolve(c.Request().Context(), *ident)
	if err != nil {
		return err
	}
	if !scope.Allows(patientID) {
		return echo.NewHTTPError(http.StatusForbidden, "not assigned to patient")
	}

	params := map[string]string{
		"patient_id":  raw,
		"metric_type": c.QueryParam("metric_type"),
		"from":        c.QueryParam("from"),
		"to":          c.QueryParam("to"),
	}

	pg := pagination.FromContext(c)
	if c.QueryParam("limit") == "" {
		pg.Limit = DefaultListLimit
	}

	ms, total, err := h.svc.SearchMetrics(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return httpx.List(c, ms, total)
}

// Create accepts either a single reading or a JSON array of readings.
func (h *Handler) Create(c echo.Context) error {
	var raw json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}

	var inputs []Input
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &inputs); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	} else {
		var in Input
		if err := json.Unmarshal(raw, &in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		inputs = []Input{in}
	}

	ident, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	scope, err := h.scopes.Resolve(c.Request().Context(), *ident)
	if err != nil {
		return err
	}
	for _, in := range inputs {
		if in.PatientID != uuid.Nil && !scope.Allows(in.PatientID) {
			return echo.NewHTTPError(http.StatusForbidden, "not assigned to patient")
		}
	}

	ms, err := h.svc.CreateMetrics(c.Request().Context(), inputs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(ms) == 1 {
		return httpx.Created(c, ms[0])
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"data": ms, "count": len(ms)})
}

package prediction

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/httpx"
	"github.com/carebridge/portal/internal/platform/model"
	"github.com/carebridge/portal/pkg/pagination"
)

type Handler struct {
	svc  *Service
	orch *Orchestrator
}

func NewHandler(svc *Service, orch *Orchestrator) *Handler {
	return &Handler{svc: svc, orch: orch}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/predictions", h.List, auth.RequireAuth())
	api.POST("/predictions", h.Create, auth.RequireRole("admin", "doctor"))
	api.PATCH("/predictions", h.Update, auth.RequireRole("admin", "doctor"))
	api.DELETE("/predictions", h.Delete, auth.RequireRole("admin", "doctor"))

	api.POST("/getPrediction", h.GetPrediction, auth.RequireRole("admin", "doctor"))
	api.POST("/predict", h.Predict, auth.RequireRole("admin", "doctor"))
}

func (h *Handler) List(c echo.Context) error {
	params := map[string]string{
		"patient_id": c.QueryParam("patient_id"),
		"min_risk":   c.QueryParam("min_risk"),
		"max_risk":   c.QueryParam("max_risk"),
		"from":       c.QueryParam("from"),
		"to":         c.QueryParam("to"),
	}
	pg := pagination.FromContext(c)
	predictions, total, err := h.svc.SearchPredictions(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return httpx.List(c, predictions, total)
}

func (h *Handler) Create(c echo.Context) error {
	var p Prediction
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePrediction(c.Request().Context(), &p); err != nil {
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

	p, err := h.svc.UpdatePrediction(c.Request().Context(), id, body.UpdateParams)
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
	if err := h.svc.DeletePrediction(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Deleted(c)
}

// resolvePatientID reads patient_id from the JSON body, falling back to
// the query string.
func resolvePatientID(c echo.Context) (uuid.UUID, error) {
	var body struct {
		PatientID *uuid.UUID `json:"patient_id"`
	}
	_ = c.Bind(&body)
	if body.PatientID != nil && *body.PatientID != uuid.Nil {
		return *body.PatientID, nil
	}
	if raw := c.QueryParam("patient_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		return pid, nil
	}
	return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
}

func (h *Handler) GetPrediction(c echo.Context) error {
	ident, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	patientID, err := resolvePatientID(c)
	if err != nil {
		return err
	}

	pred, err := h.orch.GetPrediction(c.Request().Context(), *ident, patientID)
	if err != nil {
		return mapOrchestrationError(err)
	}
	return httpx.OK(c, pred)
}

func (h *Handler) Predict(c echo.Context) error {
	ident, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}

	var body struct {
		PatientID *uuid.UUID `json:"patient_id"`
		Override
	}
	_ = c.Bind(&body)

	patientID := uuid.Nil
	if body.PatientID != nil {
		patientID = *body.PatientID
	} else if raw := c.QueryParam("patient_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		patientID = pid
	}
	if patientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	if body.RiskScore != nil && (*body.RiskScore < 0 || *body.RiskScore > 1) {
		return echo.NewHTTPError(http.StatusBadRequest, "risk_score must be between 0 and 1")
	}

	result, err := h.orch.Predict(c.Request().Context(), *ident, patientID, &body.Override)
	if err != nil {
		return mapOrchestrationError(err)
	}
	return httpx.Created(c, result)
}

func mapOrchestrationError(err error) error {
	switch {
	case errors.Is(err, ErrNotAssigned):
		return echo.NewHTTPError(http.StatusForbidden, ErrNotAssigned.Error())
	case errors.Is(err, model.ErrNotConfigured):
		return echo.NewHTTPError(http.StatusInternalServerError, model.ErrNotConfigured.Error())
	default:
		return err
	}
}

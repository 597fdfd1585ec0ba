package record

import (
	"net/http"
	"time"

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
	api.GET("/medicalHistory", h.ListHistory, auth.RequireAuth())
	api.POST("/medicalHistory", h.CreateHistory, auth.RequireRole("admin", "doctor"))
	api.PATCH("/medicalHistory", h.UpdateHistory, auth.RequireRole("admin", "doctor"))
	api.DELETE("/medicalHistory", h.DeleteHistory, auth.RequireRole("admin", "doctor"))

	api.GET("/visits", h.ListVisits, auth.RequireAuth())
	api.GET("/prescriptions", h.ListPrescriptions, auth.RequireAuth())
	api.GET("/labResults", h.ListLabResults, auth.RequireAuth())

	api.POST("/uploadLabResults", h.SignUpload, auth.RequireRole("admin"))
	api.PUT("/uploadLabResults", h.RegisterUpload, auth.RequireRole("admin"))
}

// resolveScope looks up the caller's patient scope for a list endpoint.
func (h *Handler) resolveScope(c echo.Context) (auth.Scope, error) {
	id, err := auth.MustIdentity(c)
	if err != nil {
		return auth.Scope{}, err
	}
	return h.scopes.Resolve(c.Request().Context(), *id)
}

// vetPatientFilter rejects an explicit patient_id filter that falls outside
// a restricted caller's scope, rather than silently returning an empty page.
func vetPatientFilter(scope auth.Scope, raw string) error {
	if raw == "" || scope.Unrestricted {
		return nil
	}
	pid, err := uuid.Parse(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	if !scope.Allows(pid) {
		return echo.NewHTTPError(http.StatusForbidden, "not assigned to patient")
	}
	return nil
}

func (h *Handler) ListHistory(c echo.Context) error {
	scope, err := h.resolveScope(c)
	if err != nil {
		return err
	}
	if scope.Empty() {
		return httpx.List(c, []*HistoryEntry{}, 0)
	}

	params := map[string]string{
		"patient_id": c.QueryParam("patient_id"),
		"diagnosis":  c.QueryParam("diagnosis"),
		"from":       c.QueryParam("from"),
		"to":         c.QueryParam("to"),
	}
	if err := vetPatientFilter(scope, params["patient_id"]); err != nil {
		return err
	}
	var scopeIDs []uuid.UUID
	if !scope.Unrestricted {
		scopeIDs = scope.PatientIDs
	}

	pg := pagination.FromContext(c)
	entries, total, err := h.svc.SearchHistory(c.Request().Context(), params, scopeIDs, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return httpx.List(c, entries, total)
}

func (h *Handler) CreateHistory(c echo.Context) error {
	var entry HistoryEntry
	if err := c.Bind(&entry); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateHistory(c.Request().Context(), &entry); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.Created(c, entry)
}

func (h *Handler) UpdateHistory(c echo.Context) error {
	var body struct {
		ID *uuid.UUID `json:"id"`
		HistoryUpdate
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := httpx.ResolveID(c, body.ID)
	if err != nil {
		return err
	}

	entry, err := h.svc.UpdateHistory(c.Request().Context(), id, body.HistoryUpdate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.OK(c, entry)
}

func (h *Handler) DeleteHistory(c echo.Context) error {
	var body struct {
		ID *uuid.UUID `json:"id"`
	}
	_ = c.Bind(&body)
	id, err := httpx.ResolveID(c, body.ID)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteHistory(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Deleted(c)
}

func (h *Handler) ListVisits(c echo.Context) error {
	scope, err := h.resolveScope(c)
	if err != nil {
		return err
	}
	if scope.Empty() {
		return httpx.List(c, []*Visit{}, 0)
	}

	params := map[string]string{
		"patient_id": c.QueryParam("patient_id"),
		"doctor_id":  c.QueryParam("doctor_id"),
		"from":       c.QueryParam("from"),
		"to":         c.QueryParam("to"),
	}
	if err := vetPatientFilter(scope, params["patient_id"]); err != nil {
		return err
	}
	var scopeIDs []uuid.UUID
	if !scope.Unrestricted {
		scopeIDs = scope.PatientIDs
	}

	pg := pagination.FromContext(c)
	visits, total, err := h.svc.SearchVisits(c.Request().Context(), params, scopeIDs, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return httpx.List(c, visits, total)
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	scope, err := h.resolveScope(c)
	if err != nil {
		return err
	}
	if scope.Empty() {
		return httpx.List(c, []*Prescription{}, 0)
	}

	params := map[string]string{
		"patient_id": c.QueryParam("patient_id"),
		"medication": c.QueryParam("medication"),
	}
	if err := vetPatientFilter(scope, params["patient_id"]); err != nil {
		return err
	}
	var scopeIDs []uuid.UUID
	if !scope.Unrestricted {
		scopeIDs = scope.PatientIDs
	}

	pg := pagination.FromContext(c)
	prescriptions, total, err := h.svc.SearchPrescriptions(c.Request().Context(), params, scopeIDs, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return httpx.List(c, prescriptions, total)
}

func (h *Handler) ListLabResults(c echo.Context) error {
	scope, err := h.resolveScope(c)
	if err != nil {
		return err
	}
	if scope.Empty() {
		return httpx.List(c, []*LabResult{}, 0)
	}

	params := map[string]string{
		"patient_id": c.QueryParam("patient_id"),
		"test_name":  c.QueryParam("test_name"),
		"from":       c.QueryParam("from"),
		"to":         c.QueryParam("to"),
	}
	if err := vetPatientFilter(scope, params["patient_id"]); err != nil {
		return err
	}
	var scopeIDs []uuid.UUID
	if !scope.Unrestricted {
		scopeIDs = scope.PatientIDs
	}

	pg := pagination.FromContext(c)
	results, total, err := h.svc.SearchLabResults(c.Request().Context(), params, scopeIDs, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return httpx.List(c, results, total)
}

// SignUpload is phase one of the lab upload: the client asks for a signed
// URL and gets back the object location plus the URL to PUT the bytes to.
func (h *Handler) SignUpload(c echo.Context) error {
	var body struct {
		PatientID uuid.UUID `json:"patient_id"`
		FileName  string    `json:"file_name"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ticket, err := h.svc.SignLabUpload(body.PatientID, body.FileName)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.Created(c, ticket)
}

// RegisterUpload is phase two: after the PUT against the signed URL the
// client registers the file so it shows up on the patient's record.
func (h *Handler) RegisterUpload(c echo.Context) error {
	var body struct {
		PatientID uuid.UUID  `json:"patient_id"`
		Path      string     `json:"path"`
		FileName  string     `json:"file_name"`
		TestName  *string    `json:"test_name"`
		TestDate  *time.Time `json:"test_date"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	lr := &LabResult{
		PatientID: body.PatientID,
		Path:      body.Path,
		FileName:  body.FileName,
		TestName:  body.TestName,
	}
	if body.TestDate != nil {
		lr.TestDate = *body.TestDate
	}
	if err := h.svc.RegisterLabResult(c.Request().Context(), lr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.Created(c, lr)
}

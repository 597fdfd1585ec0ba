package staff

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/httpx"
	"github.com/carebridge/portal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors", h.ListDoctors, auth.RequireAuth())
	api.POST("/doctors", h.CreateDoctor, auth.RequireRole("admin"))
	api.PATCH("/doctors", h.UpdateDoctor, auth.RequireRole("admin"))
	api.DELETE("/doctors", h.DeleteDoctor, auth.RequireRole("admin"))

	api.GET("/staff", h.ListMembers, auth.RequireAuth())
	api.POST("/staff", h.CreateMember, auth.RequireRole("admin"))
	api.PATCH("/staff", h.UpdateMember, auth.RequireRole("admin"))
	api.DELETE("/staff", h.DeleteMember, auth.RequireRole("admin"))
}

func (h *Handler) ListDoctors(c echo.Context) error {
	params := map[string]string{
		"name":          c.QueryParam("name"),
		"specialty":     c.QueryParam("specialty"),
		"department_id": c.QueryParam("department_id"),
	}
	pg := pagination.FromContext(c)

	doctors, total, err := h.svc.SearchDoctors(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return httpx.List(c, doctors, total)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.Created(c, d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	var body struct {
		ID *uuid.UUID `json:"id"`
		DoctorUpdate
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := httpx.ResolveID(c, body.ID)
	if err != nil {
		return err
	}

	d, err := h.svc.UpdateDoctor(c.Request().Context(), id, body.DoctorUpdate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.OK(c, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	var body struct {
		ID *uuid.UUID `json:"id"`
	}
	_ = c.Bind(&body)
	id, err := httpx.ResolveID(c, body.ID)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Deleted(c)
}

func (h *Handler) ListMembers(c echo.Context) error {
	params := map[string]string{
		"name":          c.QueryParam("name"),
		"role":          c.QueryParam("role"),
		"department_id": c.QueryParam("department_id"),
	}
	pg := pagination.FromContext(c)

	members, total, err := h.svc.SearchMembers(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return httpx.List(c, members, total)
}

func (h *Handler) CreateMember(c echo.Context) error {
	var m Member
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateMember(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.Created(c, m)
}

func (h *Handler) UpdateMember(c echo.Context) error {
	var body struct {
		ID *uuid.UUID `json:"id"`
		MemberUpdate
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := httpx.ResolveID(c, body.ID)
	if err != nil {
		return err
	}

	m, err := h.svc.UpdateMember(c.Request().Context(), id, body.MemberUpdate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.OK(c, m)
}

func (h *Handler) DeleteMember(c echo.Context) error {
	var body struct {
		ID *uuid.UUID `json:"id"`
	}
	_ = c.Bind(&body)
	id, err := httpx.ResolveID(c, body.ID)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteMember(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Deleted(c)
}

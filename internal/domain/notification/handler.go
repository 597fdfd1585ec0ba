package notification

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
	api.GET("/notifications", h.List, auth.RequireAuth())
	api.POST("/notifications", h.Create, auth.RequireRole("admin"))
	api.PATCH("/notifications", h.MarkRead, auth.RequireAuth())
}

// List returns the caller's notifications. Only admins may read another
// user's inbox.
func (h *Handler) List(c echo.Context) error {
	ident, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}

	params := map[string]string{
		"recipient_user_id": c.QueryParam("recipient_user_id"),
		"read":              c.QueryParam("read"),
	}
	if ident.Role != auth.RoleAdmin {
		if raw := params["recipient_user_id"]; raw != "" && raw != ident.UserID.String() {
			return echo.NewHTTPError(http.StatusForbidden, "not the recipient")
		}
		params["recipient_user_id"] = ident.UserID.String()
	}

	pg := pagination.FromContext(c)
	ns, total, err := h.svc.SearchNotifications(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return httpx.List(c, ns, total)
}

func (h *Handler) Create(c echo.Context) error {
	var n Notification
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateNotification(c.Request().Context(), &n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.Created(c, n)
}

func (h *Handler) MarkRead(c echo.Context) error {
	ident, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}

	var body struct {
		ID   *uuid.UUID `json:"id"`
		Read *bool      `json:"read"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := httpx.ResolveID(c, body.ID)
	if err != nil {
		return err
	}

	if ident.Role != auth.RoleAdmin {
		n, err := h.svc.GetNotification(c.Request().Context(), id)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if n.RecipientUserID != ident.UserID {
			return echo.NewHTTPError(http.StatusForbidden, "not the recipient")
		}
	}

	read := true
	if body.Read != nil {
		read = *body.Read
	}
	n, err := h.svc.MarkRead(c.Request().Context(), id, read)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return httpx.OK(c, n)
}

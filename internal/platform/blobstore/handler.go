package blobstore

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carebridge/portal/internal/platform/httpx"
)

// Handler receives the PUT leg of the two-phase upload. The URL signature
// is the only credential checked here; auth middleware is not applied so
// browser clients can PUT directly against the minted URL.
type Handler struct {
	signer *Signer
	store  Store
}

func NewHandler(signer *Signer, store Store) *Handler {
	return &Handler{signer: signer, store: store}
}

// RegisterRoutes mounts the upload receiver on the root echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.PUT("/uploads/*", h.handlePut)
}

func (h *Handler) handlePut(c echo.Context) error {
	path := c.Param("*")

	err := h.signer.Verify(path, c.QueryParam("expires"), c.QueryParam("sig"))
	switch {
	case errors.Is(err, ErrExpiredSignature):
		return echo.NewHTTPError(http.StatusForbidden, "upload url expired")
	case err != nil:
		return echo.NewHTTPError(http.StatusForbidden, "invalid upload url")
	}

	obj, err := h.store.Put(path, c.Request().Body)
	if errors.Is(err, ErrFileTooLarge) {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	}
	if err != nil {
		return err
	}

	return httpx.OK(c, obj)
}

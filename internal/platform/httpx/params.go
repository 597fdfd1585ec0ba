package httpx

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ResolveID picks a record id from a decoded body field or the id query
// parameter. Update and delete requests carry the target id this way
// rather than in the path.
func ResolveID(c echo.Context, bodyID *uuid.UUID) (uuid.UUID, error) {
	if bodyID != nil && *bodyID != uuid.Nil {
		return *bodyID, nil
	}
	if raw := c.QueryParam("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		return id, nil
	}
	return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "id is required")
}

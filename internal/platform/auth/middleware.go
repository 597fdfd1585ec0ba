package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

type contextKey string

const identityKey contextKey = "identity"

// Middleware authenticates every request via the given Provider and stores
// the resulting Identity on the request context. Requests without a valid
// identity are rejected with 401 before any handler runs.
func Middleware(p Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := p.Authenticate(c)
			if err != nil {
				return err
			}
			ctx := context.WithValue(c.Request().Context(), identityKey, id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// MustIdentity returns the authenticated caller or a 401 error.
func MustIdentity(c echo.Context) (*Identity, error) {
	id, ok := IdentityFromContext(c.Request().Context())
	if !ok || id == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
)

// ctxIdentity extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: a parseable role and a
// user id must both be present, otherwise the token is structurally valid
// but operationally unusable.
func ctxIdentity(c echo.Context) (ports.Identity, error) {
	raw, _ := c.Get("role").(string)
	role, ok := domain.ParseRole(raw)
	if !ok {
		return ports.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return ports.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
	}

	return ports.Identity{UserID: userID, Role: role}, nil
}

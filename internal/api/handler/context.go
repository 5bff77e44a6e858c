package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/proconnect/verification-system/internal/core/ports"
)

// ctxActor extracts the acting principal injected by the Auth middleware and
// performs a fast-fail check before any service call: both claims must be
// present, since a token without a user identity is structurally valid but
// operationally unusable.
func ctxActor(c echo.Context) (ports.Actor, error) {
	role, _ := c.Get("role").(string)
	if role == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
	}

	return ports.Actor{ID: userID, Role: role}, nil
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authgate/session-service/internal/core/domain"
)

// ctxSession extracts the session injected by the BearerAuth middleware and
// fast-fails before any service call: a missing session means the middleware
// did not run or the route is misconfigured.
func ctxSession(c echo.Context) (*domain.Session, error) {
	session, _ := c.Get("session").(*domain.Session)
	if session == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return session, nil
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/authgate/session-service/internal/core/domain"
	"github.com/authgate/session-service/internal/core/ports"
)

// BearerAuth resolves the Authorization bearer token to a live session and
// injects it into the request context. Expired and unknown tokens both yield
// a bare 401.
func BearerAuth(authService ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			session, err := authService.Session(c.Request().Context(), parts[1])
			if err != nil {
				if errors.Is(err, domain.ErrSessionNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
				}
				return err
			}

			c.Set("session", session)
			c.Set("user_id", session.UserID)

			return next(c)
		}
	}
}

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// internalTokenHeader carries the shared secret of the external sweep
// scheduler.
const internalTokenHeader = "X-Internal-Token"

// Internal gates operational endpoints behind a static token. An empty
// configured token disables the endpoints entirely rather than leaving them
// open.
func Internal(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token == "" {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "internal endpoints disabled"})
			}

			got := c.Request().Header.Get(internalTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid internal token"})
			}
			return next(c)
		}
	}
}

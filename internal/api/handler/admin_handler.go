package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/authgate/session-service/internal/api/metrics"
	"github.com/authgate/session-service/internal/core/ports"
)

// AdminHandler exposes the operational endpoints consumed by external
// schedulers rather than end users.
type AdminHandler struct {
	authService ports.AuthService
}

func NewAdminHandler(authService ports.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// sweepResponse reports how many expired sessions a sweep removed. The
// removed_count field name is part of the stable wire contract.
type sweepResponse struct {
	RemovedCount int `json:"removed_count"`
}

// Sweep deletes all expired sessions. The external scheduler invokes it on a
// recurring interval; running it twice back to back removes nothing the
// second time.
//
// @Summary      Sweep expired sessions
// @Tags         admin
// @Produce      json
// @Success      200  {object}  sweepResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /internal/sweep [post]
func (h *AdminHandler) Sweep(c echo.Context) error {
	start := time.Now()
	removed, err := h.authService.RunExpirySweep(c.Request().Context())
	if err != nil {
		return err
	}

	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	metrics.SweepRemovedTotal.Add(float64(removed))

	return c.JSON(http.StatusOK, sweepResponse{RemovedCount: removed})
}

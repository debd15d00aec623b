package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// HealthHandlerImpl reports liveness and the running build.
type HealthHandlerImpl struct {
	version string
	started time.Time
}

// NewHealthHandler creates a health handler whose uptime counts from now.
func NewHealthHandler(version string) HealthHandler {
	return &HealthHandlerImpl{version: version, started: time.Now()}
}

// HandleHealth answers GET /api/health.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return respond(c, http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}

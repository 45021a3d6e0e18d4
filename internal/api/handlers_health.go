// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/drawing-board/backend/internal/scene"
	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version  string
	sessions SessionManager
	formats  *scene.Registry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, sessions SessionManager, formats *scene.Registry) HealthHandler {
	if formats == nil {
		formats = scene.DefaultRegistry()
	}
	return &HealthHandlerImpl{
		version:  version,
		sessions: sessions,
		formats:  formats,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	boards := 0
	if h.sessions != nil {
		boards = h.sessions.Count()
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":             "ok",
		"version":            h.version,
		"boards":             boards,
		"documentFormats":    h.formats.Names(),
		"supportedDocuments": scene.SupportedVersions,
	})
}

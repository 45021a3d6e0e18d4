// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/drawing-board/backend/internal/board"
	"github.com/drawing-board/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// BoardHandler handles board session lifecycle and events
type BoardHandler interface {
	HandleCreateBoard(c echo.Context) error
	HandleListBoards(c echo.Context) error
	HandleGetBoard(c echo.Context) error
	HandleDeleteBoard(c echo.Context) error
	HandleKeepAlive(c echo.Context) error
	HandleUpdateConfig(c echo.Context) error
	HandleClear(c echo.Context) error
	HandleRefresh(c echo.Context) error
	HandleUpload(c echo.Context) error
	HandleLoadDocument(c echo.Context) error
	HandleUnloadDocument(c echo.Context) error
	HandleLoadImage(c echo.Context) error
	HandleRemoveImage(c echo.Context) error
	HandleFrame(c echo.Context) error
	HandleBackground(c echo.Context) error
	HandlePreview(c echo.Context) error
}

// ExportHandler handles board exports
type ExportHandler interface {
	HandleExportPNG(c echo.Context) error
	HandleExportJSON(c echo.Context) error
	HandleExportMsgpack(c echo.Context) error
	HandleExportPDF(c echo.Context) error
}

// ArtifactHandler serves previously exported files
type ArtifactHandler interface {
	HandleListArtifacts(c echo.Context) error
	HandleGetArtifact(c echo.Context) error
	HandleDownloadArtifact(c echo.Context) error
	HandleDeleteArtifact(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// WebSocketEventHandler runs the board event loop over a websocket
type WebSocketEventHandler interface {
	HandleWebSocket(c echo.Context) error
}

// SessionManager is the subset of session.Manager the handlers use
type SessionManager interface {
	Defaults() models.BoardConfig
	Create(cfg *models.BoardConfig) (models.BoardSession, board.Pass, error)
	Apply(id string, ev board.Event) (models.BoardSession, board.Pass, error)
	Get(id string) (models.BoardSession, bool)
	Snapshot(id string) (board.State, bool)
	TouchSession(id string) bool
	Delete(id string) (models.BoardSession, bool)
	List() []models.BoardSession
	Count() int
}

// routes.go - Route registration helpers
package api

import (
	"github.com/drawing-board/backend/internal/raster"
	"github.com/drawing-board/backend/internal/scene"
	"github.com/drawing-board/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	SessionMgr       SessionManager
	Store            storage.Store
	Exporter         *raster.Exporter
	Formats          *scene.Registry
	MaxUploadSize    int64
	WSMaxMessageSize int64
	Version          string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Board     BoardHandler
	Export    ExportHandler
	Artifacts ArtifactHandler
	WebSocket WebSocketEventHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	h := NewHandler(deps.SessionMgr, deps.Store, deps.Exporter, deps.Formats, deps.MaxUploadSize)
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.SessionMgr, h.formats),
		Board:     h,
		Export:    h,
		Artifacts: h,
		WebSocket: NewWebSocketHandler(h, deps.WSMaxMessageSize),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/api/health", handlers.Health.HandleHealth)

	boardGroup := e.Group("/api/board")
	boardGroup.POST("", handlers.Board.HandleCreateBoard)
	boardGroup.GET("", handlers.Board.HandleListBoards)
	boardGroup.GET("/:id", handlers.Board.HandleGetBoard)
	boardGroup.DELETE("/:id", handlers.Board.HandleDeleteBoard)
	boardGroup.POST("/:id/keepalive", handlers.Board.HandleKeepAlive)
	boardGroup.PUT("/:id/config", handlers.Board.HandleUpdateConfig)
	boardGroup.POST("/:id/clear", handlers.Board.HandleClear)
	boardGroup.POST("/:id/refresh", handlers.Board.HandleRefresh)
	boardGroup.POST("/:id/upload", handlers.Board.HandleUpload)
	boardGroup.POST("/:id/document", handlers.Board.HandleLoadDocument)
	boardGroup.DELETE("/:id/document", handlers.Board.HandleUnloadDocument)
	boardGroup.POST("/:id/image", handlers.Board.HandleLoadImage)
	boardGroup.DELETE("/:id/image", handlers.Board.HandleRemoveImage)
	boardGroup.POST("/:id/frame", handlers.Board.HandleFrame)
	boardGroup.GET("/:id/background.png", handlers.Board.HandleBackground)
	boardGroup.GET("/:id/preview.png", handlers.Board.HandlePreview)

	boardGroup.GET("/:id/export/png", handlers.Export.HandleExportPNG)
	boardGroup.GET("/:id/export/json", handlers.Export.HandleExportJSON)
	boardGroup.GET("/:id/export/msgpack", handlers.Export.HandleExportMsgpack)
	boardGroup.GET("/:id/export/pdf", handlers.Export.HandleExportPDF)

	artifactGroup := e.Group("/api/artifacts")
	artifactGroup.GET("", handlers.Artifacts.HandleListArtifacts)
	artifactGroup.GET("/:id", handlers.Artifacts.HandleGetArtifact)
	artifactGroup.GET("/:id/download", handlers.Artifacts.HandleDownloadArtifact)
	artifactGroup.DELETE("/:id", handlers.Artifacts.HandleDeleteArtifact)
}

// RegisterWebSocketRoutes registers WebSocket routes
func RegisterWebSocketRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/api/ws/board/:id", handlers.WebSocket.HandleWebSocket)
}

// SetupMiddleware configures the error handler shared by every route
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/drawing-board/backend/internal/api"
	"github.com/drawing-board/backend/internal/background"
	"github.com/drawing-board/backend/internal/board"
	"github.com/drawing-board/backend/internal/config"
	"github.com/drawing-board/backend/internal/models"
	"github.com/drawing-board/backend/internal/raster"
	"github.com/drawing-board/backend/internal/scene"
	"github.com/drawing-board/backend/internal/session"
	"github.com/drawing-board/backend/internal/storage"
	"github.com/drawing-board/backend/internal/web"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "DrawingBoard.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.SetLevel(cfg.GetLogLevel())
	log.SetHeader("${time_rfc3339} ${level}")
	api.ExposeErrorDetails = cfg.GetLogLevel() == log.DEBUG
	if cfg.Board.MaxImagePixels > 0 {
		background.MaxPixels = cfg.Board.MaxImagePixels
	}

	defaults, err := config.LoadBoardDefaults(cfg.Board.DefaultsFile)
	if err != nil {
		log.Warnf("[Config] Ignoring board defaults: %v", err)
		defaults = models.DefaultBoardConfig()
	}

	formats := scene.DefaultRegistry()

	// Initialize session manager
	sessionMgr := session.NewManagerWithOptions(session.Options{
		MaxSessions: cfg.Session.MaxSessions,
		KeepAlive:   time.Duration(cfg.Session.KeepAliveMinutes) * time.Minute,
		Defaults:    defaults,
		Env:         board.Env{GridColor: cfg.Board.GridLineColor, Formats: formats},
	})

	// Start background session cleanup
	go func() {
		interval := time.Duration(cfg.Session.CleanupIntervalMinutes) * time.Minute
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOldSessions(time.Duration(cfg.Session.SessionTimeoutMinutes) * time.Minute)
		}
	}()

	// Check if running in embedded mode (page built into binary)
	embeddedMode := web.HasEmbeddedFiles()

	handlers := api.NewHandlers(&api.Dependencies{
		SessionMgr:       sessionMgr,
		Store:            storage.NewMemoryStore(cfg.Export.MaxArtifacts),
		Exporter:         raster.NewExporter(raster.WithLabel(cfg.Export.FileLabel)),
		Formats:          formats,
		MaxUploadSize:    cfg.GetMaxUploadSize(),
		WSMaxMessageSize: int64(cfg.Advanced.WebSocketMaxMessageSize) * 1024,
		Version:          Version,
	})

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(cfg.GetLogLevel())
	api.SetupMiddleware(e)

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/keepalive") ||
				strings.HasSuffix(path, "/frame") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          log.ERROR,
	}))

	// Compression middleware; websocket upgrades and binary exports pass through
	if cfg.Advanced.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Advanced.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				path := c.Request().URL.Path
				return strings.HasPrefix(path, "/api/ws/") ||
					strings.HasSuffix(path, ".png") ||
					strings.HasSuffix(path, "/export/png") ||
					strings.HasSuffix(path, "/export/pdf")
			},
		}))
	}

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  origins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			ExposeHeaders: []string{echo.HeaderContentDisposition, "X-Artifact-Id"},
		}))
	}

	api.RegisterRoutes(e, handlers)
	api.RegisterWebSocketRoutes(e, handlers)

	// Register embedded page if available
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			log.Warnf("[Server] Failed to register static routes: %v", err)
		} else {
			log.Info("[Server] Serving embedded page from binary")
		}
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Drawing Board Server                            ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Board:      %-45s║\n", fmt.Sprintf("%dx%d, max %d sessions", defaults.Width, defaults.Height, cfg.Session.MaxSessions))
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}

	e.Logger.Fatal(e.StartServer(s))
}

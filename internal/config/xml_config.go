// Package config provides XML-based configuration management for local deployment.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/gommon/bytes"
	"github.com/labstack/gommon/log"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"DrawingBoard"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Board defaults and document settings
	Board BoardConfig `xml:"Board"`

	// Session lifecycle
	Session SessionConfig `xml:"Session"`

	// Export retention
	Export ExportConfig `xml:"Export"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// BoardConfig contains drawing board settings
type BoardConfig struct {
	DefaultsFile   string `xml:"DefaultsFile"`
	GridLineColor  string `xml:"GridLineColor"`
	MaxUploadSize  string `xml:"MaxUploadSize"`
	MaxImagePixels int64  `xml:"MaxImagePixels"`
}

// SessionConfig contains board session settings
type SessionConfig struct {
	MaxSessions            int `xml:"MaxSessions"`
	SessionTimeoutMinutes  int `xml:"SessionTimeoutMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
	KeepAliveMinutes       int `xml:"KeepAliveMinutes"`
}

// ExportConfig contains export settings
type ExportConfig struct {
	FileLabel    string `xml:"FileLabel"`
	MaxArtifacts int    `xml:"MaxArtifacts"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel                string `xml:"LogLevel"`
	EnableRequestLogging    bool   `xml:"EnableRequestLogging"`
	EnableCompression       bool   `xml:"EnableCompression"`
	CompressionLevel        int    `xml:"CompressionLevel"`
	WebSocketMaxMessageSize int    `xml:"WebSocketMaxMessageSizeKB"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "127.0.0.1",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "32M",
		},
		Board: BoardConfig{
			DefaultsFile:   "./data/defaults/board.yaml",
			GridLineColor:  "#282828",
			MaxUploadSize:  "20M",
			MaxImagePixels: 40_000_000,
		},
		Session: SessionConfig{
			MaxSessions:            10,
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
			KeepAliveMinutes:       5,
		},
		Export: ExportConfig{
			FileLabel:    "tablero",
			MaxArtifacts: 50,
		},
		Advanced: AdvancedConfig{
			LogLevel:                "info",
			EnableRequestLogging:    true,
			EnableCompression:       true,
			CompressionLevel:        5,
			WebSocketMaxMessageSize: 16384,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Drawing Board Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// BOARD_DEFAULTS override
	if defaults := os.Getenv("BOARD_DEFAULTS"); defaults != "" {
		c.Board.DefaultsFile = defaults
	}

	// LOG_LEVEL override
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if c.Board.DefaultsFile != "" && !filepath.IsAbs(c.Board.DefaultsFile) {
		c.Board.DefaultsFile = filepath.Join(configDir, c.Board.DefaultsFile)
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// GetMaxUploadSize returns the upload limit in bytes. Unparseable values
// fall back to 20MB.
func (c *AppConfig) GetMaxUploadSize() int64 {
	n, err := bytes.Parse(c.Board.MaxUploadSize)
	if err != nil || n <= 0 {
		return 20 << 20
	}
	return n
}

// GetLogLevel maps the configured level name to a gommon log level.
func (c *AppConfig) GetLogLevel() log.Lvl {
	switch strings.ToLower(strings.TrimSpace(c.Advanced.LogLevel)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

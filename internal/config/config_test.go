package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drawing-board/backend/internal/models"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "DrawingBoard.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, filepath.Join(dir, "data/defaults/board.yaml"), cfg.Board.DefaultsFile)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<DrawingBoard>")
	assert.Contains(t, string(data), "<GridLineColor>#282828</GridLineColor>")
	assert.Contains(t, string(data), "<MaxImagePixels>40000000</MaxImagePixels>")
}

func TestLoadConfigPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "DrawingBoard.config")
	content := `<?xml version="1.0" encoding="UTF-8"?>
<DrawingBoard>
  <Server><Port>9000</Port></Server>
  <Export><FileLabel>board</FileLabel></Export>
  <Advanced><LogLevel>debug</LogLevel></Advanced>
</DrawingBoard>`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "board", cfg.Export.FileLabel)
	assert.Equal(t, 10, cfg.Session.MaxSessions, "omitted sections keep defaults")
	assert.Equal(t, log.DEBUG, cfg.GetLogLevel())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("BOARD_DEFAULTS", "/etc/board.yaml")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "c.config"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/etc/board.yaml", cfg.Board.DefaultsFile)
	assert.Equal(t, log.WARN, cfg.GetLogLevel())
	assert.Equal(t, "127.0.0.1:7070", cfg.GetServerAddr())
}

func TestLoadConfigInvalidXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.config")
	require.NoError(t, os.WriteFile(path, []byte("<DrawingBoard><Server>"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestGetMaxUploadSize(t *testing.T) {
	cfg := DefaultConfig()
	assert.Greater(t, cfg.GetMaxUploadSize(), int64(19_000_000))

	cfg.Board.MaxUploadSize = "512"
	assert.Equal(t, int64(512), cfg.GetMaxUploadSize())

	cfg.Board.MaxUploadSize = "lots"
	assert.Equal(t, int64(20<<20), cfg.GetMaxUploadSize())
}

func TestBoardDefaults(t *testing.T) {
	cfg, err := ParseBoardDefaults(strings.NewReader("width: 700\ngrid_enabled: true\nfill_opacity: 0.5\n"))
	require.NoError(t, err)
	assert.Equal(t, 700, cfg.Width)
	assert.True(t, cfg.GridEnabled)
	assert.Equal(t, 0.5, cfg.FillOpacity)
	assert.Equal(t, 300, cfg.Height, "unspecified keys keep built-in defaults")

	_, err = ParseBoardDefaults(strings.NewReader("width: 10000\n"))
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = ParseBoardDefaults(strings.NewReader("width: [1, 2\n"))
	assert.Error(t, err)
}

func TestLoadBoardDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadBoardDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBoardConfig(), cfg)
}

package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/drawing-board/backend/internal/colors"
)

// Tool is the active drawing mode of the surface.
type Tool string

const (
	ToolFreedraw  Tool = "freedraw"
	ToolLine      Tool = "line"
	ToolRect      Tool = "rect"
	ToolCircle    Tool = "circle"
	ToolTransform Tool = "transform"
	ToolPolygon   Tool = "polygon"
	ToolPoint     Tool = "point"
)

// Tools lists the recognized drawing modes in menu order.
var Tools = []Tool{ToolFreedraw, ToolLine, ToolRect, ToolCircle, ToolTransform, ToolPolygon, ToolPoint}

// Configuration bounds accepted from the controls.
const (
	MinWidth       = 300
	MaxWidth       = 700
	MinHeight      = 200
	MaxHeight      = 600
	MinStrokeWidth = 1
	MaxStrokeWidth = 30
	MinGridSize    = 10
	MaxGridSize    = 100
)

// BoardConfig is the user's configuration for one render pass.
type BoardConfig struct {
	Width           int     `json:"width" yaml:"width"`
	Height          int     `json:"height" yaml:"height"`
	Tool            Tool    `json:"tool" yaml:"tool"`
	StrokeWidth     int     `json:"strokeWidth" yaml:"stroke_width"`
	StrokeColor     string  `json:"strokeColor" yaml:"stroke_color"`
	BackgroundColor string  `json:"backgroundColor" yaml:"background_color"`
	FillColor       string  `json:"fillColor" yaml:"fill_color"`
	FillOpacity     float64 `json:"fillOpacity" yaml:"fill_opacity"`
	GridEnabled     bool    `json:"gridEnabled" yaml:"grid_enabled"`
	GridSize        int     `json:"gridSize" yaml:"grid_size"`
	ShowHandles     bool    `json:"showHandles" yaml:"show_handles"`
}

// DefaultBoardConfig returns the control defaults of a fresh page.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		Width:           500,
		Height:          300,
		Tool:            ToolFreedraw,
		StrokeWidth:     15,
		StrokeColor:     "#FFFFFF",
		BackgroundColor: "#000000",
		FillColor:       "#FFA500",
		FillOpacity:     0.3,
		GridEnabled:     false,
		GridSize:        25,
		ShowHandles:     true,
	}
}

// ValidationError lists every configuration field that is out of range.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid board configuration: %s", strings.Join(e.Fields, ", "))
}

// Validate checks every field against the control bounds.
func (c BoardConfig) Validate() error {
	var bad []string
	if c.Width < MinWidth || c.Width > MaxWidth {
		bad = append(bad, "width")
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		bad = append(bad, "height")
	}
	if !c.Tool.Valid() {
		bad = append(bad, "tool")
	}
	if c.StrokeWidth < MinStrokeWidth || c.StrokeWidth > MaxStrokeWidth {
		bad = append(bad, "strokeWidth")
	}
	if _, err := colors.ParseHex(c.StrokeColor); err != nil {
		bad = append(bad, "strokeColor")
	}
	if _, err := colors.ParseHex(c.BackgroundColor); err != nil {
		bad = append(bad, "backgroundColor")
	}
	if _, err := colors.ParseHex(c.FillColor); err != nil {
		bad = append(bad, "fillColor")
	}
	if math.IsNaN(c.FillOpacity) || c.FillOpacity < 0 || c.FillOpacity > 1 {
		bad = append(bad, "fillOpacity")
	}
	if c.GridSize < MinGridSize || c.GridSize > MaxGridSize {
		bad = append(bad, "gridSize")
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

// Valid reports whether t is a recognized drawing mode.
func (t Tool) Valid() bool {
	for _, known := range Tools {
		if t == known {
			return true
		}
	}
	return false
}

// SurfaceKey is the identity of the live drawing surface. A new key means a
// fresh surface: geometry changes and clear actions both produce one.
func SurfaceKey(cfg BoardConfig, epoch int) string {
	return fmt.Sprintf("canvas_%d_%d_%d", cfg.Width, cfg.Height, epoch)
}

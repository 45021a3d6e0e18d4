// Package board maps a board's previous state and one event to its next
// state and the render pass the drawing surface should apply.
package board

import (
	"image"

	"github.com/drawing-board/backend/internal/background"
	"github.com/drawing-board/backend/internal/colors"
	"github.com/drawing-board/backend/internal/models"
	"github.com/drawing-board/backend/internal/scene"
)

// State is everything a board remembers between passes.
type State struct {
	Config models.BoardConfig
	Epoch  int

	// Document is the last document that decoded cleanly.
	Document       *models.Scene
	DocumentFormat string
	// Image is the raw upload. Its stretched decode is kept in stretched
	// until the image or the board size changes.
	Image     []byte
	imageSum  string
	stretched stretchedImage

	// Live is the scene last reported by the surface, or the initial scene
	// right after a reset.
	Live  models.Scene
	Frame *image.NRGBA

	SurfaceKey string
	Initial    models.Scene
	Background background.Decision

	initialDigest string
	passes        int
}

type stretchedImage struct {
	key    string
	img    *image.RGBA
	format string
}

// NewState returns the state of a board that has not rendered yet.
func NewState(cfg models.BoardConfig) State {
	return State{Config: cfg, Live: scene.EmptyScene(), Initial: scene.EmptyScene()}
}

// Passes counts the passes rendered so far.
func (s State) Passes() int { return s.passes }

// Pass is what the surface is told to do.
type Pass struct {
	SurfaceKey string              `json:"surfaceKey"`
	Reset      bool                `json:"reset"`
	Config     models.BoardConfig  `json:"config"`
	Background background.Decision `json:"background"`
	Initial    models.Scene        `json:"initialScene"`
	Fill       colors.Composite    `json:"fill"`
	FillStyle  string              `json:"fillStyle"`
	HasFrame   bool                `json:"hasFrame"`
	Warnings   []string            `json:"warnings"`
}

// Env is the fixed context of every pass.
type Env struct {
	GridColor string
	Formats   *scene.Registry
}

// DefaultEnv uses the default grid color and document formats.
func DefaultEnv() Env {
	return Env{GridColor: scene.DefaultGridColor, Formats: scene.DefaultRegistry()}
}

package board

import (
	"image"

	"github.com/drawing-board/backend/internal/models"
)

// Event is one user interaction or surface report.
type Event interface {
	EventName() string
}

// ConfigChanged replaces the board configuration. Callers validate first.
type ConfigChanged struct {
	Config models.BoardConfig
}

// ClearBoard starts a fresh surface with the same configuration.
type ClearBoard struct{}

// LoadDocument offers a serialized scene (JSON or msgpack).
type LoadDocument struct {
	Data []byte
	Name string
}

// UnloadDocument forgets the loaded document.
type UnloadDocument struct{}

// LoadImage offers a background image.
type LoadImage struct {
	Data []byte
	Name string
}

// RemoveImage drops the background image.
type RemoveImage struct{}

// SurfaceFrame is the surface reporting its current state. Either field may
// be nil. Dropped is set when reported pixels were refused before decoding;
// such a frame is ignored with a warning.
type SurfaceFrame struct {
	Scene   *models.Scene
	Pixels  image.Image
	Dropped error
}

// Refresh re-runs the pass without changing anything.
type Refresh struct{}

func (ConfigChanged) EventName() string  { return "config" }
func (ClearBoard) EventName() string     { return "clear" }
func (LoadDocument) EventName() string   { return "load_document" }
func (UnloadDocument) EventName() string { return "unload_document" }
func (LoadImage) EventName() string      { return "load_image" }
func (RemoveImage) EventName() string    { return "remove_image" }
func (SurfaceFrame) EventName() string   { return "frame" }
func (Refresh) EventName() string        { return "refresh" }

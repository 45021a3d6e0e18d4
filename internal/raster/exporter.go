// Package raster turns the drawing surface into files: PNG and PDF exports,
// plus a headless renderer for scenes that arrive without pixels.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"time"
)

// DefaultLabel prefixes export filenames.
const DefaultLabel = "tablero"

var (
	// ErrEmptyBuffer is returned when there is nothing to export.
	ErrEmptyBuffer = errors.New("empty image buffer")
	// ErrBufferSize is returned when posted pixels do not match the board size.
	ErrBufferSize = errors.New("image buffer size mismatch")
)

// Exporter names and encodes exports. The zero value is not usable; use NewExporter.
type Exporter struct {
	label string
	now   func() time.Time
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithLabel sets the filename prefix.
func WithLabel(label string) ExporterOption {
	return func(e *Exporter) {
		if label != "" {
			e.label = label
		}
	}
}

// WithClock replaces time.Now for filename timestamps.
func WithClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) { e.now = now }
}

func NewExporter(opts ...ExporterOption) *Exporter {
	e := &Exporter{label: DefaultLabel, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Filename returns <label>_YYYYMMDD_HHMMSS<ext> for the current clock.
func (e *Exporter) Filename(ext string) string {
	return fmt.Sprintf("%s_%s%s", e.label, e.now().Format("20060102_150405"), ext)
}

// ExportPNG encodes buf as an 8-bit RGBA PNG with the buffer's dimensions.
func (e *Exporter) ExportPNG(buf image.Image) ([]byte, string, error) {
	if err := CheckBuffer(buf); err != nil {
		return nil, "", err
	}
	var out bytes.Buffer
	if err := png.Encode(&out, ToNRGBA(buf)); err != nil {
		return nil, "", fmt.Errorf("encoding png: %w", err)
	}
	return out.Bytes(), e.Filename(".png"), nil
}

// CheckBuffer rejects nil and zero-area images.
func CheckBuffer(buf image.Image) error {
	if buf == nil {
		return ErrEmptyBuffer
	}
	if b := buf.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyBuffer, b.Dx(), b.Dy())
	}
	return nil
}

// CheckSize rejects a buffer whose dimensions are not width×height.
func CheckSize(buf image.Image, width, height int) error {
	if err := CheckBuffer(buf); err != nil {
		return err
	}
	if b := buf.Bounds(); b.Dx() != width || b.Dy() != height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrBufferSize, b.Dx(), b.Dy(), width, height)
	}
	return nil
}

// ToNRGBA returns buf as non-premultiplied 8-bit RGBA anchored at the origin.
func ToNRGBA(buf image.Image) *image.NRGBA {
	if n, ok := buf.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := buf.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), buf, b.Min, draw.Src)
	return out
}

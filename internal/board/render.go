package board

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/drawing-board/backend/internal/background"
	"github.com/drawing-board/backend/internal/colors"
	"github.com/drawing-board/backend/internal/models"
	"github.com/drawing-board/backend/internal/raster"
	"github.com/drawing-board/backend/internal/scene"
)

// Render applies ev to prev and derives the next pass. It never fails:
// problems with uploads or frames become warnings on the pass and leave the
// affected part of the state as it was.
func Render(prev State, ev Event, env Env) (State, Pass) {
	if env.Formats == nil {
		env.Formats = scene.DefaultRegistry()
	}
	if env.GridColor == "" {
		env.GridColor = scene.DefaultGridColor
	}

	next := prev
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	rasterizeFrame := false
	switch e := ev.(type) {
	case ConfigChanged:
		if err := e.Config.Validate(); err != nil {
			warn("configuration rejected: %v", err)
			break
		}
		next.Config = e.Config
	case ClearBoard:
		next.Epoch++
	case LoadDocument:
		doc, format, err := env.Formats.DecodeAny(e.Data)
		if err != nil {
			warn("could not read document %s: %v", displayName(e.Name), err)
			break
		}
		if err := scene.CheckVersion(doc.Version); err != nil {
			warn("document loaded with %v", err)
		}
		next.Document = &doc
		next.DocumentFormat = format.Name()
	case UnloadDocument:
		next.Document = nil
		next.DocumentFormat = ""
	case LoadImage:
		img, format, err := background.DecodeImage(e.Data, next.Config.Width, next.Config.Height)
		if err != nil {
			warn("could not read image %s: %v", displayName(e.Name), err)
			break
		}
		next.Image = e.Data
		next.imageSum = sumOf(e.Data)
		next.stretched = stretchedImage{key: next.stretchKey(), img: img, format: format}
	case RemoveImage:
		next.Image = nil
		next.imageSum = ""
		next.stretched = stretchedImage{}
	case SurfaceFrame:
		if e.Dropped != nil {
			warn("frame ignored: %v", e.Dropped)
			break
		}
		if e.Pixels != nil {
			if err := raster.CheckSize(e.Pixels, next.Config.Width, next.Config.Height); err != nil {
				warn("frame ignored: %v", err)
				break
			}
			next.Frame = raster.ToNRGBA(e.Pixels)
		}
		if e.Scene != nil {
			next.Live = *e.Scene
			rasterizeFrame = e.Pixels == nil
		}
	case Refresh, nil:
	default:
		warn("unknown event %s", ev.EventName())
	}

	cfg := next.Config
	decision := resolveBackground(&next, warn)

	grid := scene.EmptyScene()
	if decision.Kind == background.KindGrid {
		g, err := scene.GenerateGrid(cfg.Width, cfg.Height, cfg.GridSize, env.GridColor)
		if err != nil {
			warn("grid disabled: %v", err)
		} else {
			grid = g
		}
	}
	initial := scene.Merge(grid, next.Document)

	fill, err := colors.ToComposite(cfg.FillColor, cfg.FillOpacity)
	if err != nil {
		warn("fill color: %v", err)
	}

	key := models.SurfaceKey(cfg, next.Epoch)
	digest := digestOf(initial)
	reset := key != prev.SurfaceKey || digest != prev.initialDigest
	if reset {
		next.Live = scene.Merge(initial, nil)
		next.Frame = nil
		rasterizeFrame = false
	}

	if rasterizeFrame {
		img, err := raster.Rasterize(next.Live, decision, cfg.Width, cfg.Height)
		if err != nil {
			warn("frame could not be rasterized: %v", err)
		} else {
			next.Frame = img
		}
	}

	next.SurfaceKey = key
	next.Initial = initial
	next.Background = decision
	next.initialDigest = digest
	next.passes++

	if warnings == nil {
		warnings = []string{}
	}
	return next, Pass{
		SurfaceKey: key,
		Reset:      reset,
		Config:     cfg,
		Background: decision,
		Initial:    initial,
		Fill:       fill,
		FillStyle:  fill.String(),
		HasFrame:   next.Frame != nil,
		Warnings:   warnings,
	}
}

// resolveBackground falls back to the plain color when the stored image
// no longer resolves at the current size. A stretched image is reused while
// the upload and the board size stay the same.
func resolveBackground(s *State, warn func(string, ...any)) background.Decision {
	in := background.Input{
		GridEnabled: s.Config.GridEnabled,
		Image:       s.Image,
		PlainColor:  s.Config.BackgroundColor,
		Width:       s.Config.Width,
		Height:      s.Config.Height,
	}
	key := ""
	if len(s.Image) > 0 && !s.Config.GridEnabled {
		key = s.stretchKey()
		if s.stretched.key == key {
			in.Stretched, in.Format = s.stretched.img, s.stretched.format
		}
	}
	d, err := background.Resolve(in)
	if err == nil {
		if d.Kind == background.KindImage {
			s.stretched = stretchedImage{key: key, img: d.Image, format: d.Format}
		}
		return d
	}
	if errors.Is(err, background.ErrImageDecode) {
		warn("background image ignored: %v", err)
		in.Image = nil
		if d, err = background.Resolve(in); err == nil {
			return d
		}
	}
	warn("background: %v", err)
	return background.Decision{Kind: background.KindPlain, Color: models.DefaultBoardConfig().BackgroundColor}
}

// stretchKey identifies the upload stretched to the board size.
func (s *State) stretchKey() string {
	if s.imageSum == "" {
		s.imageSum = sumOf(s.Image)
	}
	return fmt.Sprintf("%s_%dx%d", s.imageSum, s.Config.Width, s.Config.Height)
}

func sumOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// digestOf identifies a scene by its canonical encoding.
func digestOf(s models.Scene) string {
	data, err := scene.Encode(s)
	if err != nil {
		return ""
	}
	return sumOf(data)
}

func displayName(name string) string {
	if name == "" {
		return "upload"
	}
	return fmt.Sprintf("%q", name)
}

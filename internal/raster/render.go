package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/transform"
	"github.com/drawing-board/backend/internal/background"
	"github.com/drawing-board/backend/internal/colors"
	"github.com/drawing-board/backend/internal/models"
	"github.com/gogpu/gg"
	"github.com/labstack/gommon/log"
)

// Rasterize draws s over the background decision on a width×height surface.
// Opaque objects have no geometry to draw and are skipped, as are objects
// whose geometry cannot be traced.
func Rasterize(s models.Scene, d background.Decision, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyBuffer, width, height)
	}

	dc, err := newSurface(d, width, height)
	if err != nil {
		return nil, err
	}
	defer dc.Close()

	for i, o := range s.Objects {
		if o.IsOpaque() {
			continue
		}
		if err := drawObject(dc, o); err != nil {
			log.Warnf("[Raster] skipping object %d (%s): %v", i, o.Kind(), err)
			dc.ClearPath()
		}
	}

	_ = dc.FlushGPU()
	return ToNRGBA(dc.Image()), nil
}

func newSurface(d background.Decision, width, height int) (*gg.Context, error) {
	if d.Kind == background.KindImage && d.Image != nil {
		// The decision's image is shared between passes; draw on a copy.
		img := &image.RGBA{Pix: append([]uint8(nil), d.Image.Pix...), Stride: d.Image.Stride, Rect: d.Image.Rect}
		if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
			img = transform.Resize(img, width, height, transform.Linear)
		}
		return gg.NewContextForImage(img), nil
	}

	base, err := colors.ParseHex(d.Color)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	dc := gg.NewContext(width, height)
	dc.ClearWithColor(gg.FromColor(base))
	return dc, nil
}

func drawObject(dc *gg.Context, o models.Object) error {
	fill, hasFill := paint(o.Style.Fill)
	stroke, hasStroke := paint(o.Style.Stroke)
	hasStroke = hasStroke && o.Style.StrokeWidth > 0

	switch g := o.Geometry.(type) {
	case models.Line:
		dc.DrawLine(g.X1, g.Y1, g.X2, g.Y2)
		hasFill = false
	case models.Rect:
		dc.DrawRectangle(g.Left, g.Top, g.Width, g.Height)
	case models.Circle:
		dc.DrawCircle(g.Left+g.Radius, g.Top+g.Radius, g.Radius)
	case models.Point:
		// A point is a dot in its stroke color.
		dc.DrawCircle(g.Left+g.Radius, g.Top+g.Radius, g.Radius)
		fill, hasFill = stroke, hasStroke
		hasStroke = false
	case models.Polygon:
		if len(g.Points) == 0 {
			return nil
		}
		dc.MoveTo(g.Points[0].X, g.Points[0].Y)
		for _, p := range g.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
	case models.Path:
		if err := tracePath(dc, g); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported geometry %T", o.Geometry)
	}

	if hasFill {
		setColor(dc, fill)
		if err := dc.FillPreserve(); err != nil {
			return err
		}
	}
	if hasStroke {
		setColor(dc, stroke)
		dc.SetLineWidth(o.Style.StrokeWidth)
		dc.SetLineCap(gg.LineCapRound)
		dc.SetLineJoin(gg.LineJoinRound)
		return dc.Stroke()
	}
	dc.ClearPath()
	return nil
}

var pathArity = map[string]int{"M": 2, "L": 2, "Q": 4, "C": 6}

func tracePath(dc *gg.Context, p models.Path) error {
	for _, cmd := range p.Path {
		a := cmd.Args
		if need := pathArity[cmd.Op]; len(a) < need {
			return fmt.Errorf("path command %s needs %d arguments, got %d", cmd.Op, need, len(a))
		}
		switch cmd.Op {
		case "M":
			dc.MoveTo(a[0], a[1])
		case "L":
			dc.LineTo(a[0], a[1])
		case "Q":
			dc.QuadraticTo(a[0], a[1], a[2], a[3])
		case "C":
			dc.CubicTo(a[0], a[1], a[2], a[3], a[4], a[5])
		case "Z", "z":
			dc.ClosePath()
		default:
			log.Debugf("[Raster] skipping path command %q", cmd.Op)
		}
	}
	return nil
}

// paint parses a scene color. Unparseable and fully transparent colors do not paint.
func paint(s string) (color.NRGBA, bool) {
	c, err := colors.Parse(s)
	if err != nil {
		log.Debugf("[Raster] ignoring color %q: %v", s, err)
		return color.NRGBA{}, false
	}
	return c, c.A > 0
}

func setColor(dc *gg.Context, c color.NRGBA) {
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

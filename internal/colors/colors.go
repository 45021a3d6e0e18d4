// Package colors converts hex colors and opacities into the forms the
// drawing surface and the rasterizer expect.
package colors

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidColorFormat is returned for anything but 6 hex digits with an optional '#'.
	ErrInvalidColorFormat = errors.New("invalid color format")
	// ErrInvalidOpacity is returned for opacities outside [0, 1].
	ErrInvalidOpacity = errors.New("invalid opacity")
)

// Composite is a color with its opacity fixed to 3 decimals.
type Composite struct {
	R       uint8  `json:"r"`
	G       uint8  `json:"g"`
	B       uint8  `json:"b"`
	Opacity string `json:"opacity"`
}

// String renders the composite as rgba(r,g,b,o.ooo).
func (c Composite) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, c.Opacity)
}

// ToComposite combines a hex color and an opacity in [0, 1].
func ToComposite(hex string, opacity float64) (Composite, error) {
	rgb, err := ParseHex(hex)
	if err != nil {
		return Composite{}, err
	}
	if math.IsNaN(opacity) || opacity < 0 || opacity > 1 {
		return Composite{}, fmt.Errorf("%w: %v", ErrInvalidOpacity, opacity)
	}
	return Composite{
		R:       rgb.R,
		G:       rgb.G,
		B:       rgb.B,
		Opacity: strconv.FormatFloat(opacity, 'f', 3, 64),
	}, nil
}

// ParseHex parses "#RRGGBB" or "RRGGBB" into an opaque color.
func ParseHex(hex string) (color.NRGBA, error) {
	digits := strings.TrimPrefix(hex, "#")
	if len(digits) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, hex)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, hex)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Parse accepts the stroke and fill forms found in scene documents:
// hex colors and rgba()/rgb() composites. Empty and "transparent" give a
// fully transparent color.
func Parse(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || strings.EqualFold(s, "transparent"):
		return color.NRGBA{}, nil
	case strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "rgb("):
		return parseFunctional(s)
	default:
		return ParseHex(s)
	}
}

func parseFunctional(s string) (color.NRGBA, error) {
	open := strings.IndexByte(s, '(')
	if !strings.HasSuffix(s, ")") || open < 0 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, s)
	}
	parts := strings.Split(s[open+1:len(s)-1], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, s)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, s)
		}
		ch[i] = uint8(v)
	}
	alpha := 1.0
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColorFormat, s)
		}
		if math.IsNaN(a) || a < 0 || a > 1 {
			return color.NRGBA{}, fmt.Errorf("%w: %v", ErrInvalidOpacity, a)
		}
		alpha = a
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: uint8(math.Round(alpha * 255))}, nil
}

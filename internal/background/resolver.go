// Package background decides what sits underneath the drawing surface:
// a grid, an uploaded image, or a plain color.
package background

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/transform"
	"github.com/drawing-board/backend/internal/colors"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrImageDecode is returned when an uploaded background cannot be read as an image.
var ErrImageDecode = errors.New("background image could not be decoded")

// DefaultMaxPixels bounds the declared size of an upload before it is decoded.
const DefaultMaxPixels = 40_000_000

// MaxPixels is the largest width×height DecodeImage will allocate for.
var MaxPixels int64 = DefaultMaxPixels

// Kind is the background strategy of a pass.
type Kind string

const (
	KindGrid  Kind = "grid"
	KindImage Kind = "image"
	KindPlain Kind = "plain"
)

// Input is everything the resolver looks at. Image is the raw upload, if any.
// Stretched, when set, is Image already decoded at Width×Height and is used
// instead of decoding again.
type Input struct {
	GridEnabled bool
	Image       []byte
	Stretched   *image.RGBA
	Format      string
	PlainColor  string
	Width       int
	Height      int
}

// Decision is the resolved background. Color is always set and is the base
// fill under a grid overlay. Image is set only for KindImage and is exactly
// Width×Height.
type Decision struct {
	Kind   Kind        `json:"kind"`
	Color  string      `json:"color"`
	Image  *image.RGBA `json:"-"`
	Format string      `json:"format,omitempty"`
}

// Resolve applies the precedence grid, then image, then plain color.
// An image that cannot be decoded yields an error wrapping ErrImageDecode;
// falling back to the plain color is up to the caller.
func Resolve(in Input) (Decision, error) {
	if _, err := colors.ParseHex(in.PlainColor); err != nil {
		return Decision{}, fmt.Errorf("background color: %w", err)
	}

	switch {
	case in.GridEnabled:
		return Decision{Kind: KindGrid, Color: in.PlainColor}, nil
	case len(in.Image) > 0 && in.Stretched != nil:
		return Decision{Kind: KindImage, Color: in.PlainColor, Image: in.Stretched, Format: in.Format}, nil
	case len(in.Image) > 0:
		img, format, err := DecodeImage(in.Image, in.Width, in.Height)
		if err != nil {
			return Decision{}, err
		}
		return Decision{Kind: KindImage, Color: in.PlainColor, Image: img, Format: format}, nil
	default:
		return Decision{Kind: KindPlain, Color: in.PlainColor}, nil
	}
}

// DecodeImage sniffs and decodes data, then stretches it to width×height
// with a linear filter. The aspect ratio is not preserved. The header is
// read first so an image declaring more than MaxPixels is never allocated.
func DecodeImage(data []byte, width, height int) (*image.RGBA, string, error) {
	if width <= 0 || height <= 0 {
		return nil, "", fmt.Errorf("%w: target size %dx%d", ErrImageDecode, width, height)
	}
	if err := Sniff(data); err != nil {
		return nil, "", err
	}
	if err := CheckDimensions(data, MaxPixels); err != nil {
		return nil, "", err
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return transform.Resize(src, width, height, transform.Linear), format, nil
}

// CheckDimensions reads only the image header and rejects empty images and
// images whose width×height exceeds maxPixels.
func CheckDimensions(data []byte, maxPixels int64) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image %dx%d", ErrImageDecode, cfg.Width, cfg.Height)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageDecode, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}

// Sniff checks the magic bytes of data against the supported image types.
func Sniff(data []byte) error {
	if !filetype.IsImage(data) {
		return fmt.Errorf("%w: not an image", ErrImageDecode)
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return fmt.Errorf("%w: unknown image type", ErrImageDecode)
	}
	if !supported[kind.Extension] {
		return fmt.Errorf("%w: unsupported image type %s", ErrImageDecode, kind.MIME.Value)
	}
	return nil
}

var supported = map[string]bool{
	"png":  true,
	"jpg":  true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

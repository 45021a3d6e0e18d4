// fixtures.go - Shared images and documents for tests
package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"time"
)

// SampleDocument is a small scene document with one of each common shape.
const SampleDocument = `{
  "version": "4.6.0",
  "objects": [
    {"type": "rect", "left": 10, "top": 10, "width": 50, "height": 30, "stroke": "#FFFFFF", "strokeWidth": 3, "fill": "rgba(255,165,0,0.300)"},
    {"type": "line", "x1": 0, "y1": 0, "x2": 100, "y2": 100, "stroke": "#FF0000", "strokeWidth": 2},
    {"type": "path", "path": [["M", 5, 5], ["Q", 20, 40, 60, 5]], "stroke": "#00FF00", "strokeWidth": 4, "fill": null}
  ]
}`

// GridDocument is a document that carries an exported grid line.
const GridDocument = `{"version":"4.6.0","objects":[{"type":"line","x1":0,"y1":0,"x2":0,"y2":300,"stroke":"#282828","strokeWidth":1,"selectable":false,"evented":false,"excludeFromExport":true}]}`

// MalformedDocument is not valid JSON.
const MalformedDocument = `{"version": "4.6.0", "objects": [`

// FixedTime is the clock used for predictable export names.
var FixedTime = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.Local)

// FixedClock returns FixedTime.
func FixedClock() time.Time { return FixedTime }

// SolidImage returns a w×h image filled with c.
func SolidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// PNG encodes a solid w×h image.
func PNG(w, h int, c color.Color) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, SolidImage(w, h, c)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// JPEG encodes a solid w×h image at full quality.
func JPEG(w, h int, c color.Color) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, SolidImage(w, h, c), &jpeg.Options{Quality: 100}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// CorruptPNG has a valid PNG signature followed by garbage.
func CorruptPNG() []byte {
	data := PNG(4, 4, color.White)
	out := make([]byte, 0, 64)
	out = append(out, data[:16]...)
	return append(out, bytes.Repeat([]byte{0xde, 0xad}, 24)...)
}

// PNGHeader is a PNG that declares w×h RGBA pixels but carries no pixel data.
func PNGHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(kind string, body []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(body)))
		buf.Write(n[:])
		crc := crc32.NewIEEE()
		crc.Write([]byte(kind))
		crc.Write(body)
		buf.WriteString(kind)
		buf.Write(body)
		binary.BigEndian.PutUint32(n[:], crc.Sum32())
		buf.Write(n[:])
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	chunk("IHDR", ihdr)
	chunk("IDAT", nil)
	chunk("IEND", nil)
	return buf.Bytes()
}

// HalvesPNG encodes a w×h image whose left half is left and right half is right.
func HalvesPNG(w, h int, left, right color.Color) []byte {
	img := SolidImage(w, h, left)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			img.Set(x, y, right)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

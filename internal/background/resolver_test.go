package background

import (
	"image/color"
	"testing"

	"github.com/drawing-board/backend/internal/colors"
	"github.com/drawing-board/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrecedence(t *testing.T) {
	img := testutil.PNG(10, 10, color.White)

	tests := []struct {
		name string
		in   Input
		want Kind
	}{
		{"grid beats image", Input{GridEnabled: true, Image: img, PlainColor: "#000000", Width: 500, Height: 300}, KindGrid},
		{"grid alone", Input{GridEnabled: true, PlainColor: "#000000", Width: 500, Height: 300}, KindGrid},
		{"image beats plain", Input{Image: img, PlainColor: "#000000", Width: 500, Height: 300}, KindImage},
		{"plain", Input{PlainColor: "#123456", Width: 500, Height: 300}, KindPlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Resolve(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Kind)
			assert.Equal(t, tt.in.PlainColor, d.Color)
			if tt.want == KindImage {
				assert.NotNil(t, d.Image)
			} else {
				assert.Nil(t, d.Image)
			}
		})
	}
}

func TestResolveStretchesImage(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	d, err := Resolve(Input{
		Image:      testutil.HalvesPNG(1000, 800, red, blue),
		PlainColor: "#000000",
		Width:      500,
		Height:     300,
	})
	require.NoError(t, err)
	require.Equal(t, KindImage, d.Kind)
	assert.Equal(t, "png", d.Format)
	assert.Equal(t, 500, d.Image.Bounds().Dx())
	assert.Equal(t, 300, d.Image.Bounds().Dy())

	// Both halves survive a stretch; a crop to 500 wide would keep only red.
	left := d.Image.RGBAAt(10, 150)
	assert.InDelta(t, 255, int(left.R), 1)
	assert.InDelta(t, 0, int(left.B), 1)
	right := d.Image.RGBAAt(490, 150)
	assert.InDelta(t, 0, int(right.R), 1)
	assert.InDelta(t, 255, int(right.B), 1)
	assert.InDelta(t, 255, int(right.A), 1)
}

func TestResolveJPEG(t *testing.T) {
	d, err := Resolve(Input{
		Image:      testutil.JPEG(64, 48, color.White),
		PlainColor: "#000000",
		Width:      300,
		Height:     200,
	})
	require.NoError(t, err)
	assert.Equal(t, "jpeg", d.Format)
	assert.Equal(t, 300, d.Image.Bounds().Dx())
	assert.Equal(t, 200, d.Image.Bounds().Dy())
}

func TestResolveUndecodableImage(t *testing.T) {
	for name, data := range map[string][]byte{
		"text":        []byte("definitely not an image"),
		"corrupt png": testutil.CorruptPNG(),
		"pdf":         []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Resolve(Input{Image: data, PlainColor: "#000000", Width: 500, Height: 300})
			assert.ErrorIs(t, err, ErrImageDecode)
		})
	}
}

func TestResolveBadPlainColor(t *testing.T) {
	_, err := Resolve(Input{PlainColor: "black", Width: 500, Height: 300})
	assert.ErrorIs(t, err, colors.ErrInvalidColorFormat)
}

func TestDecodeImageRejectsEmptyTarget(t *testing.T) {
	_, _, err := DecodeImage(testutil.PNG(4, 4, color.White), 0, 300)
	assert.ErrorIs(t, err, ErrImageDecode)
}

func TestDecodeImageRejectsOversizedHeader(t *testing.T) {
	data := testutil.PNGHeader(20000, 20000)
	require.Less(t, len(data), 100)

	_, _, err := DecodeImage(data, 500, 300)
	require.ErrorIs(t, err, ErrImageDecode)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestCheckDimensions(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		max     int64
		wantErr bool
	}{
		{"within ceiling", testutil.PNG(40, 30, color.White), 1200, false},
		{"over ceiling", testutil.PNG(40, 30, color.White), 1199, true},
		{"no ceiling", testutil.PNGHeader(20000, 20000), 0, false},
		{"empty image", testutil.PNGHeader(0, 10), 100, true},
		{"not an image", []byte("plain text"), 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDimensions(tt.data, tt.max)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrImageDecode)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveUsesStretchedImage(t *testing.T) {
	stretched, format, err := DecodeImage(testutil.PNG(8, 8, color.White), 500, 300)
	require.NoError(t, err)

	// The raw bytes are not decoded again when a stretched copy is supplied.
	d, err := Resolve(Input{Image: testutil.CorruptPNG(), Stretched: stretched, Format: format, PlainColor: "#000000", Width: 500, Height: 300})
	require.NoError(t, err)
	assert.Equal(t, KindImage, d.Kind)
	assert.Same(t, stretched, d.Image)
	assert.Equal(t, "png", d.Format)

	d, err = Resolve(Input{GridEnabled: true, Image: testutil.CorruptPNG(), Stretched: stretched, PlainColor: "#000000", Width: 500, Height: 300})
	require.NoError(t, err)
	assert.Equal(t, KindGrid, d.Kind)
	assert.Nil(t, d.Image)
}

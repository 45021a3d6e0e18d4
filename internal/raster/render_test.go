package raster

import (
	"image/color"
	"testing"

	"github.com/drawing-board/backend/internal/background"
	"github.com/drawing-board/backend/internal/models"
	"github.com/drawing-board/backend/internal/scene"
	"github.com/drawing-board/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(hex string) background.Decision {
	return background.Decision{Kind: background.KindPlain, Color: hex}
}

func TestRasterizeBackground(t *testing.T) {
	img, err := Rasterize(scene.EmptyScene(), plain("#102030"), 300, 200)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Rect.Dx())
	assert.Equal(t, 200, img.Rect.Dy())
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, img.NRGBAAt(150, 100))
}

func TestRasterizeImageBackground(t *testing.T) {
	d, err := background.Resolve(background.Input{
		Image:      testutil.PNG(40, 40, color.NRGBA{G: 255, A: 255}),
		PlainColor: "#000000",
		Width:      300,
		Height:     200,
	})
	require.NoError(t, err)

	img, err := Rasterize(scene.EmptyScene(), d, 300, 200)
	require.NoError(t, err)
	px := img.NRGBAAt(150, 100)
	assert.InDelta(t, 255, int(px.G), 1)
	assert.InDelta(t, 0, int(px.R), 1)
}

func TestRasterizeShapes(t *testing.T) {
	s, err := scene.Decode([]byte(`{"version":"4.6.0","objects":[
		{"type":"rect","left":10,"top":10,"width":80,"height":60,"stroke":"#FFFFFF","strokeWidth":2,"fill":"#FF0000"},
		{"type":"circle","left":150,"top":20,"radius":30,"stroke":"","strokeWidth":0,"fill":"#0000FF"},
		{"type":"point","left":250,"top":150,"radius":10,"stroke":"#00FF00","strokeWidth":20},
		{"type":"path","path":[["M",10,150],["Q",40,190,80,150],["L",120,150]],"stroke":"#FFFF00","strokeWidth":6,"fill":null},
		{"type":"polygon","points":[{"x":200,"y":100},{"x":290,"y":100},{"x":245,"y":140}],"stroke":"#FFFFFF","strokeWidth":1,"fill":"#FF00FF"},
		{"type":"triangle","left":1}
	]}`))
	require.NoError(t, err)

	img, err := Rasterize(s, plain("#000000"), 300, 200)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(50, 40), "rect fill")
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, img.NRGBAAt(180, 50), "circle fill")
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, img.NRGBAAt(260, 160), "point dot")
	assert.Equal(t, color.NRGBA{R: 255, B: 255, A: 255}, img.NRGBAAt(245, 110), "polygon fill")
	assert.Equal(t, color.NRGBA{A: 255}, img.NRGBAAt(295, 5), "untouched background")
}

func TestRasterizeGridOverlay(t *testing.T) {
	grid, err := scene.GenerateGrid(300, 200, 50, "#FFFFFF")
	require.NoError(t, err)

	img, err := Rasterize(grid, background.Decision{Kind: background.KindGrid, Color: "#000000"}, 300, 200)
	require.NoError(t, err)
	assert.Greater(t, img.NRGBAAt(50, 25).R, uint8(0), "vertical grid line")
	assert.Equal(t, uint8(0), img.NRGBAAt(25, 25).R, "cell interior")
}

func TestRasterizeSkipsBrokenPath(t *testing.T) {
	s := models.Scene{Version: "4.6.0", Objects: []models.Object{{
		Geometry: models.Path{Path: []models.PathCommand{{Op: "Q", Args: []float64{1}}}},
		Style:    models.Style{Stroke: "#FFFFFF", StrokeWidth: 3},
	}}}
	_, err := Rasterize(s, plain("#000000"), 300, 200)
	assert.NoError(t, err)
}

func TestRasterizeRejectsBadInput(t *testing.T) {
	_, err := Rasterize(scene.EmptyScene(), plain("#000000"), 0, 200)
	assert.ErrorIs(t, err, ErrEmptyBuffer)

	_, err = Rasterize(scene.EmptyScene(), plain("nope"), 300, 200)
	assert.Error(t, err)
}

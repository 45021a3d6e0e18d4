package colors

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToComposite(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		opacity float64
		want    Composite
		wantStr string
	}{
		{"default fill", "#FFA500", 0.3, Composite{255, 165, 0, "0.300"}, "rgba(255,165,0,0.300)"},
		{"no hash", "00ff00", 1, Composite{0, 255, 0, "1.000"}, "rgba(0,255,0,1.000)"},
		{"transparent black", "#000000", 0, Composite{0, 0, 0, "0.000"}, "rgba(0,0,0,0.000)"},
		{"rounds to three places", "#102030", 0.12345, Composite{16, 32, 48, "0.123"}, "rgba(16,32,48,0.123)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToComposite(tt.hex, tt.opacity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantStr, got.String())
		})
	}
}

func TestToCompositeErrors(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		opacity float64
		want    error
	}{
		{"short", "#FFF", 0.5, ErrInvalidColorFormat},
		{"not hex", "#GGGGGG", 0.5, ErrInvalidColorFormat},
		{"named", "orange", 0.5, ErrInvalidColorFormat},
		{"empty", "", 0.5, ErrInvalidColorFormat},
		{"double hash", "##FFA500", 0.5, ErrInvalidColorFormat},
		{"negative opacity", "#FFA500", -0.1, ErrInvalidOpacity},
		{"opacity above one", "#FFA500", 1.5, ErrInvalidOpacity},
		{"nan opacity", "#FFA500", math.NaN(), ErrInvalidOpacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToComposite(tt.hex, tt.opacity)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("rgba(255,165,0,0.500)")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 165, B: 0, A: 128}, c)

	c, err = Parse("rgb(1, 2, 3)")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, c)

	c, err = Parse("#282828")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x28, G: 0x28, B: 0x28, A: 255}, c)

	c, err = Parse("transparent")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{}, c)

	_, err = Parse("rgba(300,0,0,1)")
	assert.ErrorIs(t, err, ErrInvalidColorFormat)
}

func TestParseRejectsBadAlpha(t *testing.T) {
	for _, s := range []string{"rgba(1,2,3,NaN)", "rgba(1,2,3,nan)", "rgba(1,2,3,-0.1)", "rgba(1,2,3,1.5)", "rgba(1,2,3,Inf)"} {
		t.Run(s, func(t *testing.T) {
			_, err := Parse(s)
			assert.ErrorIs(t, err, ErrInvalidOpacity)
		})
	}
}

func TestCompositeRoundTripsThroughParse(t *testing.T) {
	comp, err := ToComposite("#FFA500", 0.3)
	require.NoError(t, err)

	c, err := Parse(comp.String())
	require.NoError(t, err)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(165), c.G)
	assert.Equal(t, uint8(0), c.B)
}

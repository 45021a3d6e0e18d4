package scene

import (
	"testing"

	"github.com/drawing-board/backend/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectObject(left float64) models.Object {
	style := models.DefaultStyle()
	style.Stroke = "#FFFFFF"
	style.StrokeWidth = 15
	return models.Object{
		Geometry: models.Rect{Left: left, Top: 10, Width: 40, Height: 20},
		Style:    style,
	}
}

func TestMerge(t *testing.T) {
	grid, err := GenerateGrid(100, 50, 25, DefaultGridColor)
	require.NoError(t, err)
	loaded := models.Scene{Version: "5.3.0", Objects: []models.Object{rectObject(1), rectObject(2)}}

	t.Run("no document returns the grid", func(t *testing.T) {
		got := Merge(grid, nil)
		if diff := cmp.Diff(grid, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Merge mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty grid returns the document", func(t *testing.T) {
		got := Merge(EmptyScene(), &loaded)
		if diff := cmp.Diff(loaded, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Merge mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("grid first then document", func(t *testing.T) {
		got := Merge(grid, &loaded)
		assert.Equal(t, "5.3.0", got.Version)
		require.Len(t, got.Objects, len(grid.Objects)+2)
		assert.Equal(t, grid.Objects, got.Objects[:len(grid.Objects)])
		assert.Equal(t, loaded.Objects, got.Objects[len(grid.Objects):])
	})

	t.Run("older document version still wins", func(t *testing.T) {
		old := models.Scene{Version: "3.0.0", Objects: []models.Object{rectObject(1)}}
		assert.Equal(t, "3.0.0", Merge(grid, &old).Version)
	})

	t.Run("result does not alias inputs", func(t *testing.T) {
		got := Merge(grid, &loaded)
		got.Objects[0] = rectObject(99)
		got.Objects[len(got.Objects)-1] = rectObject(99)
		assert.Equal(t, models.KindLine, grid.Objects[0].Kind())
		assert.Equal(t, rectObject(2), loaded.Objects[1])

		only := Merge(EmptyScene(), &loaded)
		only.Objects[0] = rectObject(42)
		assert.Equal(t, rectObject(1), loaded.Objects[0])
	})

	t.Run("no deduplication", func(t *testing.T) {
		again := models.Scene{Version: "4.6.0", Objects: grid.Objects}
		got := Merge(grid, &again)
		assert.Len(t, got.Objects, 2*len(grid.Objects))
	})
}

func TestStripExcluded(t *testing.T) {
	grid, err := GenerateGrid(100, 50, 25, DefaultGridColor)
	require.NoError(t, err)
	opaque := models.Object{Raw: []byte(`{"type":"triangle","excludeFromExport":true}`)}
	kept := models.Object{Raw: []byte(`{"type":"triangle"}`)}
	merged := Merge(grid, &models.Scene{Version: "4.6.0", Objects: []models.Object{rectObject(1), opaque, kept}})

	got := StripExcluded(merged)
	assert.Equal(t, "4.6.0", got.Version)
	assert.Equal(t, []models.Object{rectObject(1), kept}, got.Objects)
	assert.Len(t, merged.Objects, len(grid.Objects)+3)
}

// Package scene builds, merges and serializes drawing-board scenes.
package scene

import (
	"errors"
	"fmt"

	"github.com/drawing-board/backend/internal/colors"
	"github.com/drawing-board/backend/internal/models"
)

// DefaultGridColor is the stroke of generated grid lines.
const DefaultGridColor = "#282828"

// ErrInvalidGrid is returned for non-positive grid dimensions or step.
var ErrInvalidGrid = errors.New("invalid grid")

// GenerateGrid returns non-interactive line objects forming a grid:
// verticals by ascending x, then horizontals by ascending y.
// The result holds ceil(width/step) + ceil(height/step) objects.
func GenerateGrid(width, height, step int, lineColor string) (models.Scene, error) {
	if width <= 0 || height <= 0 || step <= 0 {
		return models.Scene{}, fmt.Errorf("%w: %dx%d step %d", ErrInvalidGrid, width, height, step)
	}
	if _, err := colors.ParseHex(lineColor); err != nil {
		return models.Scene{}, fmt.Errorf("%w: line color: %w", ErrInvalidGrid, err)
	}

	style := gridStyle(lineColor)
	count := (width+step-1)/step + (height+step-1)/step
	objects := make([]models.Object, 0, count)

	for x := 0; x < width; x += step {
		objects = append(objects, models.Object{
			Geometry: models.Line{X1: float64(x), Y1: 0, X2: float64(x), Y2: float64(height)},
			Style:    style,
		})
	}
	for y := 0; y < height; y += step {
		objects = append(objects, models.Object{
			Geometry: models.Line{X1: 0, Y1: float64(y), X2: float64(width), Y2: float64(y)},
			Style:    style,
		})
	}

	return models.Scene{Version: models.DefaultSceneVersion, Objects: objects}, nil
}

// EmptyScene is the grid fragment when the grid is disabled.
func EmptyScene() models.Scene {
	return models.NewScene(models.DefaultSceneVersion)
}

func gridStyle(lineColor string) models.Style {
	return models.Style{
		Stroke:            lineColor,
		StrokeWidth:       1,
		Selectable:        false,
		Evented:           false,
		ExcludeFromExport: true,
	}
}

package scene

import "github.com/drawing-board/backend/internal/models"

// Merge layers a loaded document over a grid fragment. Grid objects come
// first so loaded content draws on top, and the loaded version wins.
//
// No deduplication happens: a document exported with its grid lines and
// loaded again while the grid is on carries both sets.
func Merge(grid models.Scene, loaded *models.Scene) models.Scene {
	if loaded == nil {
		return clone(grid)
	}
	if grid.IsEmpty() {
		return clone(*loaded)
	}

	objects := make([]models.Object, 0, len(grid.Objects)+len(loaded.Objects))
	objects = append(objects, grid.Objects...)
	objects = append(objects, loaded.Objects...)
	return models.Scene{Version: loaded.Version, Objects: objects, Extra: loaded.Extra}
}

// clone copies the object list so callers never share a backing array.
func clone(s models.Scene) models.Scene {
	objects := make([]models.Object, len(s.Objects))
	copy(objects, s.Objects)
	return models.Scene{Version: s.Version, Objects: objects, Extra: s.Extra}
}

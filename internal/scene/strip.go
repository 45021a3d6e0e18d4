package scene

import "github.com/drawing-board/backend/internal/models"

// StripExcluded drops every object flagged excludeFromExport, such as grid
// lines, keeping the rest in order.
func StripExcluded(s models.Scene) models.Scene {
	objects := make([]models.Object, 0, len(s.Objects))
	for _, o := range s.Objects {
		if o.ExcludedFromExport() {
			continue
		}
		objects = append(objects, o)
	}
	return models.Scene{Version: s.Version, Objects: objects, Extra: s.Extra}
}

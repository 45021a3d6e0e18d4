package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/drawing-board/backend/internal/models"
)

// ErrMalformedDocument is returned when a document cannot be read as a scene.
var ErrMalformedDocument = errors.New("malformed document")

// Encode writes s as indented JSON in canonical field order.
func Encode(s models.Scene) ([]byte, error) {
	compact, err := s.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding scene: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting scene: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a JSON scene document. Only the document envelope can
// fail; unreadable objects are carried through as opaque entries.
func Decode(data []byte) (models.Scene, error) {
	if !json.Valid(data) {
		return models.Scene{}, fmt.Errorf("%w: invalid JSON", ErrMalformedDocument)
	}
	var s models.Scene
	if err := s.UnmarshalJSON(data); err != nil {
		return models.Scene{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return s, nil
}

package scene

import (
	"fmt"

	"github.com/drawing-board/backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// EncodeMsgpack writes s in the binary document format.
func EncodeMsgpack(s models.Scene) ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding scene: %w", err)
	}
	return data, nil
}

// DecodeMsgpack parses a binary scene document.
func DecodeMsgpack(data []byte) (models.Scene, error) {
	if len(data) == 0 {
		return models.Scene{}, fmt.Errorf("%w: empty input", ErrMalformedDocument)
	}
	var s models.Scene
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return models.Scene{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return s, nil
}

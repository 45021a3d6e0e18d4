package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/png"
	"strings"

	"github.com/drawing-board/backend/internal/background"
	"github.com/drawing-board/backend/internal/board"
	"github.com/drawing-board/backend/internal/models"
	"github.com/drawing-board/backend/internal/raster"
	"github.com/drawing-board/backend/internal/scene"
)

// FramePayload is a surface report. Scene is the live document as the
// surface serializes it; Pixels is a base64 PNG, optionally as a data URL.
type FramePayload struct {
	Scene  json.RawMessage `json:"scene,omitempty"`
	Pixels string          `json:"pixels,omitempty"`
}

// FilePayload carries a file over the websocket.
type FilePayload struct {
	Name string `json:"name"`
	Data string `json:"data"` // Base64 encoded file
}

// PassResponse is the reply to every board event.
type PassResponse struct {
	Session models.BoardSession `json:"session"`
	Pass    board.Pass          `json:"pass"`
}

// BoardView is the current state of a board as the client sees it.
type BoardView struct {
	Session        models.BoardSession `json:"session"`
	Background     background.Decision `json:"background"`
	DocumentFormat string              `json:"documentFormat,omitempty"`
	Scene          models.Scene        `json:"scene"`
	Passes         int                 `json:"passes"`
}

// Event converts the payload into a SurfaceFrame for a width×height board.
// Both fields are optional, but a payload with neither is rejected. Pixels
// declaring any other size are not decoded; the frame carries the reason.
func (p FramePayload) Event(width, height int) (board.SurfaceFrame, error) {
	var ev board.SurfaceFrame
	if len(bytes.TrimSpace(p.Scene)) > 0 && !bytes.Equal(bytes.TrimSpace(p.Scene), []byte("null")) {
		s, err := scene.Decode(p.Scene)
		if err != nil {
			return ev, NewBadRequestError("invalid frame scene", err)
		}
		ev.Scene = &s
	}
	if p.Pixels != "" {
		data, err := decodeBase64(p.Pixels)
		if err != nil {
			return ev, NewBadRequestError("invalid frame pixels", err)
		}
		hdr, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return ev, NewBadRequestError("invalid frame pixels", err)
		}
		if hdr.Width != width || hdr.Height != height {
			ev.Dropped = fmt.Errorf("%w: got %dx%d, want %dx%d", raster.ErrBufferSize, hdr.Width, hdr.Height, width, height)
			return ev, nil
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return ev, NewBadRequestError("invalid frame pixels", err)
		}
		ev.Pixels = img
	}
	if ev.Scene == nil && ev.Pixels == nil {
		return ev, NewBadRequestError("frame needs a scene or pixels", nil)
	}
	return ev, nil
}

// Bytes decodes the file contents.
func (p FilePayload) Bytes() ([]byte, error) {
	data, err := decodeBase64(p.Data)
	if err != nil {
		return nil, NewBadRequestError("invalid base64 data", err)
	}
	return data, nil
}

// decodeBase64 accepts plain base64 or a data URL.
func decodeBase64(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		s = s[i+1:]
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}

// mergeConfig overlays a partial JSON configuration on base.
func mergeConfig(base models.BoardConfig, raw []byte) (models.BoardConfig, error) {
	cfg := base
	if len(bytes.TrimSpace(raw)) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return base, NewBadRequestError("invalid configuration", err)
	}
	return cfg, nil
}

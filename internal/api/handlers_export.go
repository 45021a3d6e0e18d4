package api

import (
	"fmt"
	"image"
	"net/http"
	"strconv"

	"github.com/drawing-board/backend/internal/board"
	"github.com/drawing-board/backend/internal/models"
	"github.com/drawing-board/backend/internal/scene"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// HandleExportPNG exports the last frame the surface reported.
func (h *Handler) HandleExportPNG(c echo.Context) error {
	id, state, err := h.snapshot(c)
	if err != nil {
		return err
	}
	data, name, err := h.exporter.ExportPNG(frameOf(state))
	if err != nil {
		return err
	}
	return h.sendArtifact(c, id, name, "image/png", data)
}

// HandleExportPDF exports the last frame as a single-page PDF.
func (h *Handler) HandleExportPDF(c echo.Context) error {
	id, state, err := h.snapshot(c)
	if err != nil {
		return err
	}
	data, name, err := h.exporter.ExportPDF(frameOf(state), c.QueryParam("title"))
	if err != nil {
		return err
	}
	return h.sendArtifact(c, id, name, "application/pdf", data)
}

// HandleExportJSON exports the live scene as a JSON document.
// With ?clean=true, export-excluded objects such as grid lines are dropped.
func (h *Handler) HandleExportJSON(c echo.Context) error {
	return h.exportDocument(c, "json")
}

// HandleExportMsgpack exports the live scene as a msgpack document.
func (h *Handler) HandleExportMsgpack(c echo.Context) error {
	return h.exportDocument(c, "msgpack")
}

func (h *Handler) exportDocument(c echo.Context, format string) error {
	id, state, err := h.snapshot(c)
	if err != nil {
		return err
	}
	clean := false
	if v := c.QueryParam("clean"); v != "" {
		clean, err = strconv.ParseBool(v)
		if err != nil {
			return NewBadRequestError("clean must be a boolean", err)
		}
	}

	f, err := h.formats.ByName(format)
	if err != nil {
		return NewInternalError("document format unavailable", err)
	}
	doc := state.Live
	if clean {
		doc = scene.StripExcluded(doc)
	}
	data, err := f.Encode(doc)
	if err != nil {
		return NewInternalError("failed to encode scene", err)
	}
	return h.sendArtifact(c, id, h.exporter.Filename(f.Extension()), f.MIMEType(), data)
}

// sendArtifact retains the export and sends it as an attachment. A store
// failure is logged; the client still gets its file.
func (h *Handler) sendArtifact(c echo.Context, sessionID, name, mimeType string, data []byte) error {
	if h.store != nil {
		if info, err := h.store.Save(sessionID, name, mimeType, data); err != nil {
			log.Warnf("[Export] Failed to retain %s: %v", name, err)
		} else {
			c.Response().Header().Set("X-Artifact-Id", info.ID)
		}
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, mimeType, data)
}

func (h *Handler) snapshot(c echo.Context) (string, board.State, error) {
	id := c.Param("id")
	state, ok := h.sessions.Snapshot(id)
	if !ok {
		return id, board.State{}, NewNotFoundError("board", id)
	}
	return id, state, nil
}

// frameOf avoids handing a typed nil to the exporter.
func frameOf(state board.State) image.Image {
	if state.Frame == nil {
		return nil
	}
	return state.Frame
}

// HandleListArtifacts returns recent exports, newest first.
func (h *Handler) HandleListArtifacts(c echo.Context) error {
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return NewBadRequestError("limit must be a non-negative integer", err)
		}
		limit = n
	}
	list, err := h.store.List(limit)
	if err != nil {
		return NewInternalError("failed to list artifacts", err)
	}
	if list == nil {
		list = []*models.Artifact{}
	}
	return c.JSON(http.StatusOK, list)
}

// HandleGetArtifact returns an artifact's metadata.
func (h *Handler) HandleGetArtifact(c echo.Context) error {
	info, err := h.store.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDownloadArtifact sends an artifact's contents.
func (h *Handler) HandleDownloadArtifact(c echo.Context) error {
	info, data, err := h.store.Open(c.Param("id"))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", info.Name))
	return c.Blob(http.StatusOK, info.MIMEType, data)
}

// HandleDeleteArtifact removes an artifact.
func (h *Handler) HandleDeleteArtifact(c echo.Context) error {
	if err := h.store.Delete(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

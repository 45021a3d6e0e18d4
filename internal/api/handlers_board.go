package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/drawing-board/backend/internal/background"
	"github.com/drawing-board/backend/internal/board"
	"github.com/drawing-board/backend/internal/raster"
	"github.com/drawing-board/backend/internal/scene"
	"github.com/drawing-board/backend/internal/storage"
	"github.com/drawing-board/backend/internal/upload"
	"github.com/labstack/echo/v4"
)

// Handler handles board, export and artifact requests.
type Handler struct {
	sessions  SessionManager
	store     storage.Store
	exporter  *raster.Exporter
	formats   *scene.Registry
	maxUpload int64
}

// NewHandler creates a new API handler. Nil exporter and formats fall back
// to their defaults; maxUpload of 0 means upload.DefaultMaxSize.
func NewHandler(sessions SessionManager, store storage.Store, exporter *raster.Exporter, formats *scene.Registry, maxUpload int64) *Handler {
	if exporter == nil {
		exporter = raster.NewExporter()
	}
	if formats == nil {
		formats = scene.DefaultRegistry()
	}
	if maxUpload <= 0 {
		maxUpload = upload.DefaultMaxSize
	}
	return &Handler{
		sessions:  sessions,
		store:     store,
		exporter:  exporter,
		formats:   formats,
		maxUpload: maxUpload,
	}
}

// HandleCreateBoard starts a board. The body, when present, is a partial
// configuration laid over the defaults.
func (h *Handler) HandleCreateBoard(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewBadRequestError("failed to read body", err)
	}
	cfg, err := mergeConfig(h.sessions.Defaults(), raw)
	if err != nil {
		return err
	}
	sess, pass, err := h.sessions.Create(&cfg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, PassResponse{Session: sess, Pass: pass})
}

// HandleListBoards returns the live boards, most recently used first.
func (h *Handler) HandleListBoards(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.List())
}

// HandleGetBoard returns the board summary with its live scene.
func (h *Handler) HandleGetBoard(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		return NewNotFoundError("board", id)
	}
	state, ok := h.sessions.Snapshot(id)
	if !ok {
		return NewNotFoundError("board", id)
	}
	return c.JSON(http.StatusOK, BoardView{
		Session:        sess,
		Background:     state.Background,
		DocumentFormat: state.DocumentFormat,
		Scene:          state.Live,
		Passes:         state.Passes(),
	})
}

// HandleDeleteBoard closes a board.
func (h *Handler) HandleDeleteBoard(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessions.Delete(id)
	if !ok {
		return NewNotFoundError("board", id)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleKeepAlive extends the board's lifetime without rendering.
func (h *Handler) HandleKeepAlive(c echo.Context) error {
	id := c.Param("id")
	if !h.sessions.TouchSession(id) {
		return NewNotFoundError("board", id)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleUpdateConfig applies a partial configuration over the current one.
func (h *Handler) HandleUpdateConfig(c echo.Context) error {
	id := c.Param("id")
	state, ok := h.sessions.Snapshot(id)
	if !ok {
		return NewNotFoundError("board", id)
	}
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewBadRequestError("failed to read body", err)
	}
	cfg, err := mergeConfig(state.Config, raw)
	if err != nil {
		return err
	}
	return h.apply(c, board.ConfigChanged{Config: cfg})
}

// HandleClear starts a fresh surface.
func (h *Handler) HandleClear(c echo.Context) error {
	return h.apply(c, board.ClearBoard{})
}

// HandleRefresh re-runs the pass without changing anything.
func (h *Handler) HandleRefresh(c echo.Context) error {
	return h.apply(c, board.Refresh{})
}

// UploadResponse is a pass together with what the upload was taken for.
type UploadResponse struct {
	PassResponse
	Upload upload.Classification `json:"upload"`
}

// HandleUpload sniffs the posted file and loads it as a document or an
// image. Files that are neither are offered as documents so the pass
// carries the decode warning.
func (h *Handler) HandleUpload(c echo.Context) error {
	data, name, err := h.readUpload(c)
	if err != nil {
		return err
	}
	class := upload.Classify(data, h.formats)

	var ev board.Event = board.LoadDocument{Data: data, Name: name}
	if class.Kind == upload.KindImage {
		ev = board.LoadImage{Data: data, Name: name}
	}
	sess, pass, err := h.sessions.Apply(c.Param("id"), ev)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UploadResponse{
		PassResponse: PassResponse{Session: sess, Pass: pass},
		Upload:       class,
	})
}

// HandleLoadDocument loads a JSON or msgpack scene document.
func (h *Handler) HandleLoadDocument(c echo.Context) error {
	data, name, err := h.readUpload(c)
	if err != nil {
		return err
	}
	return h.apply(c, board.LoadDocument{Data: data, Name: name})
}

// HandleUnloadDocument forgets the loaded document.
func (h *Handler) HandleUnloadDocument(c echo.Context) error {
	return h.apply(c, board.UnloadDocument{})
}

// HandleLoadImage sets the background image.
func (h *Handler) HandleLoadImage(c echo.Context) error {
	data, name, err := h.readUpload(c)
	if err != nil {
		return err
	}
	return h.apply(c, board.LoadImage{Data: data, Name: name})
}

// HandleRemoveImage drops the background image.
func (h *Handler) HandleRemoveImage(c echo.Context) error {
	return h.apply(c, board.RemoveImage{})
}

// HandleFrame records a surface report.
func (h *Handler) HandleFrame(c echo.Context) error {
	var p FramePayload
	if err := json.NewDecoder(c.Request().Body).Decode(&p); err != nil {
		return NewBadRequestError("invalid frame body", err)
	}
	id := c.Param("id")
	state, ok := h.sessions.Snapshot(id)
	if !ok {
		return NewNotFoundError("board", id)
	}
	ev, err := p.Event(state.Config.Width, state.Config.Height)
	if err != nil {
		return err
	}
	return h.apply(c, ev)
}

// HandleBackground serves the resolved background image, stretched to the
// board size. Boards without an image background have none to serve.
func (h *Handler) HandleBackground(c echo.Context) error {
	id := c.Param("id")
	state, ok := h.sessions.Snapshot(id)
	if !ok {
		return NewNotFoundError("board", id)
	}
	if state.Background.Kind != background.KindImage || state.Background.Image == nil {
		return NewNotFoundError("background image", id)
	}
	data, _, err := h.exporter.ExportPNG(state.Background.Image)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

// HandlePreview rasterizes the live scene over the resolved background.
func (h *Handler) HandlePreview(c echo.Context) error {
	id := c.Param("id")
	state, ok := h.sessions.Snapshot(id)
	if !ok {
		return NewNotFoundError("board", id)
	}
	img, err := raster.Rasterize(state.Live, state.Background, state.Config.Width, state.Config.Height)
	if err != nil {
		return NewInternalError("failed to render preview", err)
	}
	data, _, err := h.exporter.ExportPNG(img)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

func (h *Handler) apply(c echo.Context, ev board.Event) error {
	sess, pass, err := h.sessions.Apply(c.Param("id"), ev)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PassResponse{Session: sess, Pass: pass})
}

// readUpload reads the multipart "file" field under the size limit.
func (h *Handler) readUpload(c echo.Context) ([]byte, string, error) {
	if _, ok := h.sessions.Get(c.Param("id")); !ok {
		return nil, "", NewNotFoundError("board", c.Param("id"))
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", NewBadRequestError("missing file field", err)
	}
	data, err := upload.ReadFile(fh, h.maxUpload)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Filename, nil
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/drawing-board/backend/internal/board"
	"github.com/drawing-board/backend/internal/session"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// WebSocket message types for the board protocol
const (
	// Client -> Server messages
	MsgTypeConfig         = "config"
	MsgTypeClear          = "clear"
	MsgTypeRefresh        = "refresh"
	MsgTypeLoadDocument   = "document"
	MsgTypeUnloadDocument = "document:unload"
	MsgTypeLoadImage      = "image"
	MsgTypeRemoveImage    = "image:remove"
	MsgTypeFrame          = "frame"
	MsgTypePing           = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypePass      = "pass"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

// DefaultWSMaxMessageSize bounds a single inbound message when none is configured.
const DefaultWSMaxMessageSize = 16 << 20

// WSMessage is the envelope of every message in both directions.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSErrorResponse is the payload of an error message.
type WSErrorResponse struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// WebSocketHandler runs one board's event loop per connection: each inbound
// message is one event and is answered with the resulting pass.
type WebSocketHandler struct {
	handler        *Handler
	upgrader       websocket.Upgrader
	maxMessageSize int64
}

// NewWebSocketHandler creates a websocket handler over h's sessions.
func NewWebSocketHandler(h *Handler, maxMessageSize int64) *WebSocketHandler {
	if maxMessageSize <= 0 {
		maxMessageSize = DefaultWSMaxMessageSize
	}
	return &WebSocketHandler{
		handler: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		maxMessageSize: maxMessageSize,
	}
}

// HandleWebSocket upgrades the connection for board :id.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	id := c.Param("id")
	if _, ok := wsh.handler.sessions.Get(id); !ok {
		return NewNotFoundError("board", id)
	}

	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()
	ws.SetReadLimit(wsh.maxMessageSize)

	log.Infof("[WebSocket %s] Client connected", shortID(id))

	// The greeting carries the current pass so a reconnecting surface can resync.
	sess, pass, err := wsh.handler.sessions.Apply(id, board.Refresh{})
	if err != nil {
		wsh.sendError(ws, "", err)
		return nil
	}
	wsh.sendMessage(ws, WSMessage{
		Type:      MsgTypeConnected,
		ID:        id,
		Payload:   mustJSON(PassResponse{Session: sess, Pass: pass}),
		Timestamp: time.Now().UnixMilli(),
	})

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("[WebSocket %s] Connection error: %v", shortID(id), err)
			}
			break
		}

		if msg.Type == MsgTypePing {
			wsh.handler.sessions.TouchSession(id)
			wsh.sendMessage(ws, WSMessage{Type: MsgTypePong, ID: msg.ID, Timestamp: time.Now().UnixMilli()})
			continue
		}

		ev, err := wsh.decodeEvent(id, msg)
		if err != nil {
			wsh.sendError(ws, msg.ID, err)
			continue
		}
		sess, pass, err := wsh.handler.sessions.Apply(id, ev)
		if err != nil {
			wsh.sendError(ws, msg.ID, err)
			if errors.Is(err, session.ErrSessionNotFound) {
				break
			}
			continue
		}
		wsh.sendMessage(ws, WSMessage{
			Type:      MsgTypePass,
			ID:        msg.ID,
			Payload:   mustJSON(PassResponse{Session: sess, Pass: pass}),
			Timestamp: time.Now().UnixMilli(),
		})
	}

	log.Infof("[WebSocket %s] Client disconnected", shortID(id))
	return nil
}

// decodeEvent maps a message onto a board event.
func (wsh *WebSocketHandler) decodeEvent(id string, msg WSMessage) (board.Event, error) {
	switch msg.Type {
	case MsgTypeConfig:
		state, ok := wsh.handler.sessions.Snapshot(id)
		if !ok {
			return nil, NewNotFoundError("board", id)
		}
		cfg, err := mergeConfig(state.Config, msg.Payload)
		if err != nil {
			return nil, err
		}
		return board.ConfigChanged{Config: cfg}, nil
	case MsgTypeClear:
		return board.ClearBoard{}, nil
	case MsgTypeRefresh:
		return board.Refresh{}, nil
	case MsgTypeUnloadDocument:
		return board.UnloadDocument{}, nil
	case MsgTypeRemoveImage:
		return board.RemoveImage{}, nil
	case MsgTypeLoadDocument, MsgTypeLoadImage:
		var p FilePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, NewBadRequestError("invalid file payload", err)
		}
		data, err := p.Bytes()
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > wsh.handler.maxUpload {
			return nil, NewPayloadTooLargeError(wsh.handler.maxUpload)
		}
		if msg.Type == MsgTypeLoadImage {
			return board.LoadImage{Data: data, Name: p.Name}, nil
		}
		return board.LoadDocument{Data: data, Name: p.Name}, nil
	case MsgTypeFrame:
		var p FramePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, NewBadRequestError("invalid frame payload", err)
		}
		state, ok := wsh.handler.sessions.Snapshot(id)
		if !ok {
			return nil, NewNotFoundError("board", id)
		}
		return p.Event(state.Config.Width, state.Config.Height)
	default:
		return nil, &APIError{Status: http.StatusBadRequest, Code: "INVALID_TYPE", Message: "Unknown message type: " + msg.Type}
	}
}

func (wsh *WebSocketHandler) sendMessage(ws *websocket.Conn, msg WSMessage) {
	if err := ws.WriteJSON(msg); err != nil {
		log.Warnf("[WebSocket] Failed to send %s: %v", msg.Type, err)
	}
}

func (wsh *WebSocketHandler) sendError(ws *websocket.Conn, msgID string, err error) {
	apiErr := toAPIError(err)
	wsh.sendMessage(ws, WSMessage{
		Type: MsgTypeError,
		ID:   msgID,
		Payload: mustJSON(WSErrorResponse{
			Type:    MsgTypeError,
			Message: apiErr.Message,
			Code:    apiErr.Code,
			Fields:  apiErr.Fields,
		}),
		Timestamp: time.Now().UnixMilli(),
	})
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`null`)
	}
	return data
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/drawing-board/backend/internal/testutil"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialBoard(t *testing.T, srv *httptest.Server, id string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/board/" + id
	return websocket.DefaultDialer.Dial(url, nil)
}

func readMessage(t *testing.T, ws *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg WSMessage
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func TestWebSocketEventLoop(t *testing.T) {
	s := newTestServer(t, 0)
	srv := httptest.NewServer(s.e)
	defer srv.Close()
	id := s.createBoard(t, "").Session.ID

	ws, _, err := dialBoard(t, srv, id)
	require.NoError(t, err)
	defer ws.Close()

	hello := readMessage(t, ws)
	assert.Equal(t, MsgTypeConnected, hello.Type)
	var greeting PassResponse
	require.NoError(t, json.Unmarshal(hello.Payload, &greeting))
	assert.Equal(t, id, greeting.Session.ID)
	assert.Equal(t, "canvas_500_300_0", greeting.Pass.SurfaceKey)

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, ws.WriteJSON(WSMessage{Type: MsgTypePing, ID: "p1"}))
		msg := readMessage(t, ws)
		assert.Equal(t, MsgTypePong, msg.Type)
		assert.Equal(t, "p1", msg.ID)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, ws.WriteJSON(WSMessage{Type: MsgTypeClear, ID: "c1"}))
		msg := readMessage(t, ws)
		require.Equal(t, MsgTypePass, msg.Type)
		assert.Equal(t, "c1", msg.ID)
		var resp PassResponse
		require.NoError(t, json.Unmarshal(msg.Payload, &resp))
		assert.Equal(t, 1, resp.Session.Epoch)
		assert.True(t, resp.Pass.Reset)
	})

	t.Run("partial config", func(t *testing.T) {
		require.NoError(t, ws.WriteJSON(WSMessage{Type: MsgTypeConfig, ID: "cfg", Payload: json.RawMessage(`{"tool":"rect"}`)}))
		msg := readMessage(t, ws)
		require.Equal(t, MsgTypePass, msg.Type)
		var resp PassResponse
		require.NoError(t, json.Unmarshal(msg.Payload, &resp))
		assert.Equal(t, "rect", string(resp.Session.Config.Tool))
		assert.Equal(t, 500, resp.Session.Config.Width)
	})

	t.Run("invalid config", func(t *testing.T) {
		require.NoError(t, ws.WriteJSON(WSMessage{Type: MsgTypeConfig, ID: "bad", Payload: json.RawMessage(`{"tool":"spray"}`)}))
		msg := readMessage(t, ws)
		require.Equal(t, MsgTypeError, msg.Type)
		var resp WSErrorResponse
		require.NoError(t, json.Unmarshal(msg.Payload, &resp))
		assert.Equal(t, "VALIDATION_ERROR", resp.Code)
		assert.Equal(t, []string{"tool"}, resp.Fields)
	})

	t.Run("document", func(t *testing.T) {
		payload := mustJSON(FilePayload{
			Name: "drawing.json",
			Data: base64.StdEncoding.EncodeToString([]byte(testutil.SampleDocument)),
		})
		require.NoError(t, ws.WriteJSON(WSMessage{Type: MsgTypeLoadDocument, ID: "doc", Payload: payload}))
		msg := readMessage(t, ws)
		require.Equal(t, MsgTypePass, msg.Type)
		var resp PassResponse
		require.NoError(t, json.Unmarshal(msg.Payload, &resp))
		assert.True(t, resp.Session.HasDocument)
		assert.Len(t, resp.Pass.Initial.Objects, 3)
	})

	t.Run("unknown type", func(t *testing.T) {
		require.NoError(t, ws.WriteJSON(WSMessage{Type: "spray", ID: "x"}))
		msg := readMessage(t, ws)
		require.Equal(t, MsgTypeError, msg.Type)
		var resp WSErrorResponse
		require.NoError(t, json.Unmarshal(msg.Payload, &resp))
		assert.Equal(t, "INVALID_TYPE", resp.Code)
	})
}

func TestWebSocketUnknownBoard(t *testing.T) {
	s := newTestServer(t, 0)
	srv := httptest.NewServer(s.e)
	defer srv.Close()

	_, resp, err := dialBoard(t, srv, "missing")

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

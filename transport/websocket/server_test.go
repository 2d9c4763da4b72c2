package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe/internal/entity"
	"github.com/rocketscienceinc/tictactoe/internal/pkg"
	"github.com/rocketscienceinc/tictactoe/internal/repository"
	"github.com/rocketscienceinc/tictactoe/internal/usecase"
)

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
	resp *http.Response
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewGameManager(logger, repository.NewMemoryGameRepository(time.Hour))
	server := New(logger, manager, time.Hour)

	httpServer := httptest.NewServer(server.Handler(ctx))
	t.Cleanup(httpServer.Close)

	return httpServer
}

func dial(t *testing.T, httpServer *httptest.Server, header http.Header) *testClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + wsPath

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testClient{t: t, conn: conn, resp: resp}
}

func (c *testClient) send(action string, payload any) Payload {
	c.t.Helper()

	msg := map[string]any{"action": action}
	if payload != nil {
		msg["payload"] = payload
	}
	require.NoError(c.t, c.conn.WriteJSON(msg))

	return c.receive(action)
}

func (c *testClient) receive(action string) Payload {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var reply Message
	require.NoError(c.t, c.conn.ReadJSON(&reply))
	require.Equal(c.t, action, reply.Action)

	var payload Payload
	require.NoError(c.t, json.Unmarshal(reply.Payload, &payload))

	return payload
}

func (c *testClient) move(cell string) Payload {
	c.t.Helper()

	return c.send(actionMove, map[string]string{"cell": cell})
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == pkg.SessionCookieName {
			return cookie
		}
	}

	t.Fatalf("session cookie not set")

	return nil
}

func TestServer_Connect(t *testing.T) {
	// Given: a running server
	httpServer := newTestServer(t)

	// When: a browser without a session connects
	client := dial(t, httpServer, nil)
	payload := client.send(actionConnect, nil)

	// Then: a session cookie is issued and a new game is returned
	cookie := sessionCookie(t, client.resp)
	assert.NotEmpty(t, cookie.Value)

	require.NotNil(t, payload.Game)
	assert.Equal(t, entity.MarkX, payload.Game.Turn)
	assert.Equal(t, 0, payload.Game.Moves)
	assert.Equal(t, entity.StatusInProgress, payload.Game.Status)
	assert.False(t, payload.Game.CanReset)
}

func TestServer_PlayGame(t *testing.T) {
	// Given: a connected browser
	httpServer := newTestServer(t)
	client := dial(t, httpServer, nil)
	client.send(actionConnect, nil)

	// When: X takes the top row
	for _, cell := range []string{"0|0", "1|1", "0|1", "2|2"} {
		payload := client.move(cell)
		require.Empty(t, payload.Error)
		require.Empty(t, payload.Rejected)
	}
	payload := client.move("0|2")

	// Then: X wins and reset is offered
	require.NotNil(t, payload.Game)
	assert.Equal(t, entity.StatusWin, payload.Game.Status)
	assert.Equal(t, entity.MarkX, payload.Game.Winner)
	assert.Equal(t, 5, payload.Game.Moves)
	assert.True(t, payload.Game.CanReset)

	// Then: further moves are rejected
	payload = client.move("2|0")
	assert.Equal(t, "game_finished", payload.Rejected)
	assert.Equal(t, 5, payload.Game.Moves)

	// When: the game is reset
	payload = client.send(actionReset, nil)

	// Then: a new game starts
	require.NotNil(t, payload.Game)
	assert.Equal(t, 0, payload.Game.Moves)
	assert.Equal(t, entity.Board{}, payload.Game.Board)
	assert.Equal(t, entity.MarkX, payload.Game.Turn)
}

func TestServer_MoveRejections(t *testing.T) {
	httpServer := newTestServer(t)
	client := dial(t, httpServer, nil)

	t.Run("Occupied cell", func(t *testing.T) {
		client.move("1|1")

		payload := client.move("1|1")

		assert.Equal(t, "cell_occupied", payload.Rejected)
		assert.Equal(t, 1, payload.Game.Moves)
	})

	t.Run("Malformed cell id", func(t *testing.T) {
		for _, cell := range []string{"a|b", "3|3", "11"} {
			payload := client.move(cell)

			assert.Contains(t, payload.Error, "invalid cell", "cell %q", cell)
			assert.Nil(t, payload.Game)
		}
	})

	t.Run("Missing cell", func(t *testing.T) {
		payload := client.send(actionMove, map[string]string{})

		assert.Equal(t, "Cell is required", payload.Error)
	})

	t.Run("Unknown action", func(t *testing.T) {
		payload := client.send("game:undo", nil)

		assert.Equal(t, "unknown action", payload.Error)
	})

	t.Run("Malformed message", func(t *testing.T) {
		require.NoError(t, client.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

		payload := client.receive(actionError)

		assert.Equal(t, "malformed message", payload.Error)
	})
}

func TestServer_OversizedMessage(t *testing.T) {
	// Given: a connected browser
	httpServer := newTestServer(t)
	client := dial(t, httpServer, nil)

	// When: it sends a message over the size limit
	msg := map[string]any{
		"action":  actionMove,
		"payload": map[string]string{"cell": strings.Repeat("0", 2*maxMessageBytes)},
	}
	require.NoError(t, client.conn.WriteJSON(msg))

	// Then: the server closes the connection as too big
	require.NoError(t, client.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := client.conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseMessageTooBig), "error %v", err)
}

func TestServer_SessionSurvivesReconnect(t *testing.T) {
	// Given: a browser that played one move
	httpServer := newTestServer(t)
	first := dial(t, httpServer, nil)
	first.move("0|0")
	cookie := sessionCookie(t, first.resp)
	require.NoError(t, first.conn.Close())

	// When: it reconnects with the same cookie
	header := http.Header{}
	header.Add("Cookie", pkg.SessionCookieName+"="+cookie.Value)
	second := dial(t, httpServer, header)
	payload := second.send(actionConnect, nil)

	// Then: the same game is returned and no new cookie is issued
	assert.Equal(t, 1, payload.Game.Moves)
	assert.Equal(t, entity.MarkX, payload.Game.Board[0][0])
	assert.Empty(t, second.resp.Cookies())
}

func TestSameHostOrigin(t *testing.T) {
	cases := []struct {
		origin string
		host   string
		want   bool
	}{
		{origin: "", host: "localhost:9091", want: true},
		{origin: "http://localhost:8080", host: "localhost:9091", want: true},
		{origin: "http://LOCALHOST", host: "localhost", want: true},
		{origin: "http://evil.example", host: "localhost:9091", want: false},
		{origin: "://bad", host: "localhost:9091", want: false},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, wsPath, nil)
		req.Host = tc.host
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}

		assert.Equal(t, tc.want, sameHostOrigin(req), "origin %q host %q", tc.origin, tc.host)
	}
}

package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, validator OriginValidator) (*WebSocketManager, *httptest.Server) {
	t.Helper()

	manager := NewWebSocketManager(validator, nil)
	server := httptest.NewServer(http.HandlerFunc(manager.HandleWebSocket))
	t.Cleanup(func() {
		server.Close()
		_ = manager.Shutdown(context.Background())
	})

	return manager, server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebSocketManager_BroadcastRoundTrip(t *testing.T) {
	manager, server := newTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		return manager.GetConnectedClients() == 1
	}, 2*time.Second, 10*time.Millisecond)

	manager.BroadcastMessage(UpdateMessage{Type: MessageReload, Target: "stories.yml"})

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg UpdateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageReload, msg.Type)
	assert.Equal(t, "stories.yml", msg.Target)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestWebSocketManager_RejectsOrigin(t *testing.T) {
	validator := OriginValidatorFunc(func(origin string) bool {
		return origin == "http://localhost:6006"
	})
	_, server := newTestServer(t, validator)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, wsURL(server), &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://evil.example"}},
	})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.Dial(ctx, wsURL(server), &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://localhost:6006"}},
	})
	require.NoError(t, err)
	conn.Close(websocket.StatusNormalClosure, "")
}

func TestWebSocketManager_ClientDisconnect(t *testing.T) {
	manager, server := newTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(server), nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return manager.GetConnectedClients() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))

	assert.Eventually(t, func() bool {
		return manager.GetConnectedClients() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketManager_ShutdownIsIdempotent(t *testing.T) {
	manager, server := newTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(server), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool {
		return manager.GetConnectedClients() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, manager.Shutdown(ctx))
	require.NoError(t, manager.Shutdown(ctx))
	assert.True(t, manager.IsShutdown())
	assert.Equal(t, 0, manager.GetConnectedClients())

	_, _, err = conn.Read(ctx)
	assert.Error(t, err)

	// Broadcasting after shutdown must not block or panic.
	manager.BroadcastMessage(UpdateMessage{Type: MessageReload})

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSameOrigin(t *testing.T) {
	tests := []struct {
		origin string
		host   string
		want   bool
	}{
		{"http://localhost:6006", "localhost:6006", true},
		{"http://LOCALHOST:6006", "localhost:6006", true},
		{"http://localhost:6007", "localhost:6006", false},
		{"null", "localhost:6006", false},
		{"://bad", "localhost:6006", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, sameOrigin(tt.origin, tt.host))
		})
	}
}

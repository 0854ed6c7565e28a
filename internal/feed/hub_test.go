package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"msgboard/internal/model"
)

var testOrigins = []string{"http://localhost:8080", "http://127.0.0.1:8080"}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()

	hub := NewHub(zap.NewNop(), testOrigins)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(hub.Router())
	t.Cleanup(func() {
		cancel()
		server.Close()
	})

	return hub, strings.Replace(server.URL, "http://", "ws://", 1) + "/ws"
}

func dial(t *testing.T, url, origin string) (*websocket.Conn, error) {
	t.Helper()
	header := http.Header{}
	header.Set("Origin", origin)
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	return ws, err
}

func TestHub_PublishReachesSubscriber(t *testing.T) {
	req := require.New(t)
	hub, url := startHub(t)

	ws, err := dial(t, url, "http://localhost:8080")
	req.NoError(err)
	defer ws.Close()

	req.Eventually(func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	sent := model.Message{Username: "bob", Message: "hello", Timestamp: 1001}
	hub.Publish(sent)

	req.NoError(ws.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var got model.Message
	req.NoError(ws.ReadJSON(&got))
	req.Equal(sent, got)
}

func TestHub_ForbiddenOrigin(t *testing.T) {
	hub, url := startHub(t)

	_, err := dial(t, url, "http://forbidden.example.com")
	require.Error(t, err)
	require.Equal(t, 0, hub.ClientCount())
}

func TestHub_ClientDisconnectIsRemoved(t *testing.T) {
	req := require.New(t)
	hub, url := startHub(t)

	ws, err := dial(t, url, "http://127.0.0.1:8080")
	req.NoError(err)
	req.Eventually(func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	ws.Close()
	req.Eventually(func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_PublishDoesNotBlockWhenSaturated(t *testing.T) {
	// No Run loop: the buffer fills and further publishes are dropped.
	hub := NewHub(zap.NewNop(), testOrigins)

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.Publish(model.Message{Timestamp: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full feed")
	}
}

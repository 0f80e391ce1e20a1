package api

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-scout/internal/bus"
	"github.com/sells-group/deal-scout/internal/model"
)

func dialWS(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebsocket_PingPong(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	conn := dialWS(t, srv.URL)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, msgType)
	assert.Equal(t, "pong", string(data))
}

func TestWebsocket_ReceivesBroadcast(t *testing.T) {
	srv, _, b, _ := newTestServer(t)
	conn := dialWS(t, srv.URL)

	waitForSubscribers(t, b, 1)
	b.Broadcast(bus.NewOpportunities([]model.DealSummary{
		{ID: "d1", CompanyName: "Acme"},
	}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev model.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, model.EventNewOpportunities, ev.Type)
	assert.Equal(t, 1, ev.Data.Count)
	require.Len(t, ev.Data.Deals, 1)
	assert.Equal(t, "Acme", ev.Data.Deals[0].CompanyName)
}

func TestWebsocket_UnsubscribesOnClose(t *testing.T) {
	srv, _, b, _ := newTestServer(t)
	conn := dialWS(t, srv.URL)

	waitForSubscribers(t, b, 1)
	conn.Close()
	waitForSubscribers(t, b, 0)
}

func waitForSubscribers(t *testing.T, b *bus.Bus, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.Count() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, want, b.Count())
}

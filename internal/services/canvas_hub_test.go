package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// wsPair upgrades one connection through an in-process server and returns
// both ends.
func wsPair(t *testing.T) (server *websocket.Conn, client *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	accepted := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("server side of the WebSocket never arrived")
	}
	t.Cleanup(func() { server.Close() })

	return server, client
}

func TestCanvasHub_BroadcastReachesSubscriber(t *testing.T) {
	hub := NewCanvasHub()
	server, client := wsPair(t)

	hub.Register("trip-1", "user-1", server)
	require.Equal(t, 1, hub.SubscriberCount("trip-1"))

	hub.Broadcast("trip-1", CanvasEvent{
		Type: EventCardCreated,
		Data: map[string]string{"id": "card-1"},
	})

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, payload, err := client.ReadMessage()
	require.NoError(t, err)

	var event CanvasEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	require.Equal(t, EventCardCreated, event.Type)
	require.Equal(t, "trip-1", event.TripID)
}

func TestCanvasHub_BroadcastIsScopedToTrip(t *testing.T) {
	hub := NewCanvasHub()
	server, client := wsPair(t)

	hub.Register("trip-2", "user-1", server)

	hub.Broadcast("trip-1", CanvasEvent{Type: EventTripUpdated})

	client.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := client.ReadMessage()
	require.Error(t, err)
}

func TestCanvasHub_Unregister(t *testing.T) {
	hub := NewCanvasHub()
	server, _ := wsPair(t)

	hub.Register("trip-1", "user-1", server)
	hub.Unregister("trip-1", server)
	require.Equal(t, 0, hub.SubscriberCount("trip-1"))

	// Unregistering twice is a no-op.
	hub.Unregister("trip-1", server)
}

func TestCanvasHub_BroadcastWithoutSubscribers(t *testing.T) {
	hub := NewCanvasHub()
	hub.Broadcast("trip-1", CanvasEvent{Type: EventTripDeleted})
}

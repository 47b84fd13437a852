package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techadnank9/alien-miniapp-uber/internal/domain"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	// Give the server side a beat to register the client with the hub
	time.Sleep(100 * time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) rideEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev rideEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	return ev
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	hub, url := startHub(t)
	c1 := dial(t, url)
	c2 := dial(t, url)

	ride := &domain.Ride{ID: "r1", RiderID: "u1", Status: domain.RideStatusMatching, FareCents: 500}
	hub.BroadcastRideUpdate(ride)

	for _, conn := range []*websocket.Conn{c1, c2} {
		ev := readEvent(t, conn)
		assert.Equal(t, "ride:update", ev.Event)
		require.NotNil(t, ev.Ride)
		assert.Equal(t, "r1", ev.Ride.ID)
		assert.Equal(t, domain.RideStatusMatching, ev.Ride.Status)
		assert.Equal(t, int64(500), ev.Ride.FareCents)
	}
}

func TestLateSubscriberMissesEarlierEvents(t *testing.T) {
	hub, url := startHub(t)
	early := dial(t, url)

	hub.BroadcastRideUpdate(&domain.Ride{ID: "r1", Status: domain.RideStatusMatching})
	// Drain the event on the early connection before the late one joins
	assert.Equal(t, "r1", readEvent(t, early).Ride.ID)

	late := dial(t, url)
	hub.BroadcastRideUpdate(&domain.Ride{ID: "r2", Status: domain.RideStatusAssigned})

	// The late subscriber sees only the event published after it connected
	ev := readEvent(t, late)
	assert.Equal(t, "r2", ev.Ride.ID)
}

func TestPerRideOrderingPreserved(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)

	statuses := []domain.RideStatus{
		domain.RideStatusMatching,
		domain.RideStatusAssigned,
		domain.RideStatusStarted,
		domain.RideStatusCompleted,
	}
	for _, s := range statuses {
		hub.BroadcastRideUpdate(&domain.Ride{ID: "r1", Status: s})
	}
	for _, want := range statuses {
		assert.Equal(t, want, readEvent(t, conn).Ride.Status)
	}
}

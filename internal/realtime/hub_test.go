package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kcald/internal/testutil"
)

func dialTestHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	srv := httptest.NewServer(http.HandlerFunc(hub.Handle))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	for i := 0; i < 100; i++ {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d", want)
}

func TestHub_RegistersClient(t *testing.T) {
	hub := NewHub(&testutil.MockLogger{})
	_, cleanup := dialTestHub(t, hub)
	defer cleanup()

	waitForClients(t, hub, 1)
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := NewHub(&testutil.MockLogger{})
	conn, cleanup := dialTestHub(t, hub)
	defer cleanup()

	waitForClients(t, hub, 1)

	hub.Broadcast(EventGoalChanged, map[string]int{"dailyGoal": 1800})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, EventGoalChanged, event.Type)
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub(&testutil.MockLogger{})
	assert.NotPanics(t, func() {
		hub.Broadcast(EventDayRollover, nil)
	})
}

func TestHub_ClientRemovedOnDisconnect(t *testing.T) {
	hub := NewHub(&testutil.MockLogger{})
	conn, cleanup := dialTestHub(t, hub)
	defer cleanup()

	waitForClients(t, hub, 1)
	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(&testutil.MockLogger{})
	_, cleanup := dialTestHub(t, hub)
	defer cleanup()

	waitForClients(t, hub, 1)
	hub.Close()
	assert.Zero(t, hub.ClientCount())
}

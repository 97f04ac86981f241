package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub)

	// Registration goes through the hub loop; keep broadcasting until a
	// frame arrives rather than racing the register channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-done:
				return
			default:
				hub.Broadcast(Message{Type: "round-settled", Round: 1, Answer: "3"})
				time.Sleep(time.Millisecond)
			}
		}
	}()

	var msg Message
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	done <- struct{}{}

	require.Equal(t, "round-settled", msg.Type)
	require.Equal(t, 1, msg.Round)
	require.Equal(t, "3", msg.Answer)
}

// Keepalive pings and broadcast frames go to the same connection; with
// the ping interval compressed to near-zero the two paths overlap
// constantly, which panics unless every write is serialized through the
// connection's write pump.
func TestHub_PingsAndBroadcastsDoNotOverlap(t *testing.T) {
	oldPeriod := pingPeriod
	pingPeriod = time.Millisecond
	defer func() { pingPeriod = oldPeriod }()

	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				hub.Broadcast(Message{Type: "wager-placed", Amount: int64(i)})
				time.Sleep(time.Millisecond)
			}
		}()
	}

	// Reading also answers the server's pings with pongs, keeping the
	// connection alive for the duration.
	received := 0
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for received < 50 {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, "wager-placed", msg.Type)
		received++
	}

	wg.Wait()
}

func TestHub_UnregisterOnClientDisconnect(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub)

	// Wait for registration to land.
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients) == 1
	}, 2*time.Second, 5*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients) == 0
	}, 2*time.Second, 5*time.Millisecond)
}

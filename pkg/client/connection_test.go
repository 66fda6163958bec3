package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jwebster45206/vargacet/pkg/protocol"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsServer runs an httptest server that hands each upgraded socket to fn.
func wsServer(t *testing.T, fn func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		fn(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// stateRecorder collects state transitions and give-up signals.
type stateRecorder struct {
	mu      sync.Mutex
	states  []State
	gaveUp  bool
	updated chan struct{}
}

func newStateRecorder() *stateRecorder {
	return &stateRecorder{updated: make(chan struct{}, 64)}
}

func (r *stateRecorder) onState(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
	r.updated <- struct{}{}
}

func (r *stateRecorder) onGiveUp(error) {
	r.mu.Lock()
	r.gaveUp = true
	r.mu.Unlock()
	r.updated <- struct{}{}
}

func (r *stateRecorder) snapshot() ([]State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...), r.gaveUp
}

// waitFor polls the recorder until cond holds or the deadline passes.
func (r *stateRecorder) waitFor(t *testing.T, cond func([]State, bool) bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		states, gaveUp := r.snapshot()
		if cond(states, gaveUp) {
			return
		}
		select {
		case <-r.updated:
		case <-deadline:
			t.Fatalf("condition not reached; states=%v gaveUp=%v", states, gaveUp)
		}
	}
}

func TestTerminalClosesDoNotReconnect(t *testing.T) {
	for _, code := range []int{protocol.CloseNormal, protocol.CloseRoomFull, protocol.CloseGameEnded} {
		var dials int
		var mu sync.Mutex
		srv := wsServer(t, func(conn *websocket.Conn) {
			mu.Lock()
			dials++
			mu.Unlock()
			msg := websocket.FormatCloseMessage(code, "done")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			// Let the client read the close frame.
			_, _, _ = conn.ReadMessage()
			_ = conn.Close()
		})

		rec := newStateRecorder()
		cm := NewConnectionManager(Config{
			URL:           wsURL(srv),
			MaxRetries:    3,
			BaseDelay:     10 * time.Millisecond,
			OnStateChange: rec.onState,
			OnGiveUp:      rec.onGiveUp,
		})
		if err := cm.Connect(context.Background()); err != nil {
			t.Fatalf("connect: %v", err)
		}

		rec.waitFor(t, func(states []State, _ bool) bool {
			// connected then back to disconnected, with no second attempt
			return len(states) >= 3 && states[len(states)-1] == StateDisconnected
		})
		time.Sleep(100 * time.Millisecond) // would be enough for a retry dial

		mu.Lock()
		got := dials
		mu.Unlock()
		if got != 1 {
			t.Errorf("code %d: dials = %d, want 1 (terminal close must not reconnect)", code, got)
		}
		_, gaveUp := rec.snapshot()
		if gaveUp {
			t.Errorf("code %d: terminal close reported as give-up", code)
		}
	}
}

func TestAbnormalCloseReconnects(t *testing.T) {
	var mu sync.Mutex
	var dials int
	srv := wsServer(t, func(conn *websocket.Conn) {
		mu.Lock()
		dials++
		n := dials
		mu.Unlock()
		if n == 1 {
			// Abrupt drop, no close frame: retryable.
			_ = conn.Close()
			return
		}
		// Second connection stays up.
		_, _, _ = conn.ReadMessage()
	})

	rec := newStateRecorder()
	cm := NewConnectionManager(Config{
		URL:           wsURL(srv),
		MaxRetries:    5,
		BaseDelay:     5 * time.Millisecond,
		OnStateChange: rec.onState,
		OnGiveUp:      rec.onGiveUp,
	})
	if err := cm.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer cm.Close()

	rec.waitFor(t, func(states []State, _ bool) bool {
		connects := 0
		for _, s := range states {
			if s == StateConnected {
				connects++
			}
		}
		return connects >= 2
	})

	mu.Lock()
	got := dials
	mu.Unlock()
	if got < 2 {
		t.Errorf("dials = %d, want at least 2", got)
	}
}

func TestGiveUpAfterMaxRetries(t *testing.T) {
	srv := wsServer(t, func(conn *websocket.Conn) { _ = conn.Close() })
	// Point at a dead port so every dial fails.
	deadURL := wsURL(srv)
	srv.Close()

	rec := newStateRecorder()
	cm := NewConnectionManager(Config{
		URL:           deadURL,
		MaxRetries:    2,
		BaseDelay:     time.Millisecond,
		OnStateChange: rec.onState,
		OnGiveUp:      rec.onGiveUp,
	})
	if err := cm.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	rec.waitFor(t, func(_ []State, gaveUp bool) bool { return gaveUp })

	if cm.State() != StateDisconnected {
		t.Errorf("state after give-up = %s, want disconnected", cm.State())
	}
}

func TestSendRejectedWhileDisconnected(t *testing.T) {
	cm := NewConnectionManager(Config{URL: "ws://127.0.0.1:0/never"})
	env, _ := protocol.NewEnvelope(protocol.TypeEndTurn, protocol.EndTurn{})
	if err := cm.Send(env); err != ErrNotConnected {
		t.Errorf("Send while disconnected = %v, want ErrNotConnected", err)
	}
}

func TestConnectTwiceRejected(t *testing.T) {
	srv := wsServer(t, func(conn *websocket.Conn) {
		_, _, _ = conn.ReadMessage()
	})

	cm := NewConnectionManager(Config{URL: wsURL(srv), BaseDelay: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cm.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := cm.Connect(ctx); err != ErrAlreadyRunning {
		t.Errorf("second Connect = %v, want ErrAlreadyRunning", err)
	}
	_ = cm.Close()
}

func TestInboundMessagesDelivered(t *testing.T) {
	srv := wsServer(t, func(conn *websocket.Conn) {
		env, _ := protocol.NewEnvelope(protocol.TypeError, protocol.ErrorPayload{Message: "nope"})
		_ = conn.WriteJSON(env)
		// Unparseable payload must be dropped without killing the session.
		_ = conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
		env2, _ := protocol.NewEnvelope(protocol.TypeError, protocol.ErrorPayload{Message: "still here"})
		_ = conn.WriteJSON(env2)
		_, _, _ = conn.ReadMessage()
	})

	got := make(chan protocol.Envelope, 4)
	cm := NewConnectionManager(Config{
		URL:     wsURL(srv),
		Handler: func(env protocol.Envelope) { got <- env },
	})
	if err := cm.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer cm.Close()

	for _, want := range []string{"nope", "still here"} {
		select {
		case env := <-got:
			var p protocol.ErrorPayload
			if err := env.Decode(&p); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p.Message != want {
				t.Errorf("message = %q, want %q", p.Message, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for inbound message")
		}
	}
}

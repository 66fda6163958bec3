// Package client implements the player-side session: a reconnecting
// websocket connection to the game authority and a prediction engine that
// mirrors the authority's rules over the latest snapshot.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/jwebster45206/vargacet/pkg/protocol"
)

// State is the connection lifecycle state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

var (
	// ErrNotConnected is returned by Send when the session is not in the
	// connected state. Sends are rejected, never queued.
	ErrNotConnected = errors.New("session is not connected")
	// ErrAlreadyRunning is returned by Connect when a session loop is
	// already active.
	ErrAlreadyRunning = errors.New("session is already running")
)

const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 500 * time.Millisecond
)

// MessageHandler receives inbound envelopes in arrival order.
type MessageHandler func(protocol.Envelope)

// Config configures a ConnectionManager.
type Config struct {
	URL        string
	MaxRetries int           // reconnect attempts before giving up; default 5
	BaseDelay  time.Duration // backoff base; delay is BaseDelay * 2^attempt

	Handler       MessageHandler
	OnStateChange func(State)
	OnGiveUp      func(error) // persistent disconnection, retries exhausted

	Logger *slog.Logger
}

// ConnectionManager maintains a logical game session over a websocket.
// Transport closes with code 1000 (normal), 4000 (room full) or 4001 (game
// ended) are terminal; any other close schedules a reconnect with
// exponential backoff until MaxRetries is exhausted.
type ConnectionManager struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	conn    *websocket.Conn
	retries int
	running bool
	closed  bool // user called Close; never reconnect

	sendMu sync.Mutex

	bo *backoff.ExponentialBackOff
}

// NewConnectionManager builds a session manager. It does not dial until
// Connect is called.
func NewConnectionManager(cfg Config) *ConnectionManager {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.BaseDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = time.Minute
	bo.MaxElapsedTime = 0 // retries are capped by MaxRetries, not elapsed time

	return &ConnectionManager{
		cfg:    cfg,
		logger: logger,
		state:  StateDisconnected,
		bo:     bo,
	}
}

// State returns the current connection state.
func (c *ConnectionManager) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts the session loop. Dialing, reconnection and give-up are
// reported through the configured callbacks; inbound messages are delivered
// to the handler in arrival order on a single goroutine.
func (c *ConnectionManager) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = true
	c.closed = false
	c.retries = 0
	c.bo.Reset()
	c.mu.Unlock()

	go c.run(ctx)
	return nil
}

// Send writes an envelope to the authority. It fails immediately when the
// session is not connected; callers must not assume retry buffering.
func (c *ConnectionManager) Send(env protocol.Envelope) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()
	if !connected || conn == nil {
		return ErrNotConnected
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return conn.WriteJSON(env)
}

// Close ends the session intentionally with a normal close. No reconnect
// is attempted afterwards.
func (c *ConnectionManager) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}

	c.sendMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.sendMu.Unlock()
	return conn.Close()
}

func (c *ConnectionManager) run(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	for {
		c.setState(StateConnecting)
		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			c.logger.Warn("dial failed", "url", c.cfg.URL, "error", err)
			c.setState(StateDisconnected)
			if c.userClosed() || ctx.Err() != nil {
				return
			}
			if !c.waitForRetry(ctx) {
				c.giveUp(err)
				return
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.retries = 0
		c.bo.Reset()
		c.mu.Unlock()
		c.setState(StateConnected)
		c.logger.Info("session connected", "url", c.cfg.URL)

		readErr := c.readLoop(conn)
		_ = conn.Close()
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		c.setState(StateDisconnected)

		if c.userClosed() || ctx.Err() != nil {
			return
		}
		if code, terminal := classifyClose(readErr); terminal {
			c.logger.Info("session closed", "code", code)
			return
		}
		c.logger.Warn("transport closed", "error", readErr)
		if !c.waitForRetry(ctx) {
			c.giveUp(readErr)
			return
		}
	}
}

// readLoop delivers inbound messages until the transport fails. Messages
// that do not parse are logged and dropped, not fatal to the session.
func (c *ConnectionManager) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Warn("dropping unparseable message", "error", err)
			continue
		}
		if c.cfg.Handler != nil {
			c.cfg.Handler(env)
		}
	}
}

// waitForRetry consumes one retry attempt and sleeps out the backoff delay.
// It returns false when the retry budget is exhausted or the context ends.
func (c *ConnectionManager) waitForRetry(ctx context.Context) bool {
	c.mu.Lock()
	if c.retries >= c.cfg.MaxRetries {
		c.mu.Unlock()
		return false
	}
	c.retries++
	attempt := c.retries
	delay := c.bo.NextBackOff()
	c.mu.Unlock()

	c.logger.Info("scheduling reconnect", "attempt", attempt, "delay", delay)
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *ConnectionManager) giveUp(err error) {
	c.logger.Error("giving up on session", "error", err, "retries", c.cfg.MaxRetries)
	if c.cfg.OnGiveUp != nil {
		c.cfg.OnGiveUp(err)
	}
}

func (c *ConnectionManager) userClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *ConnectionManager) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()
	if c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(s)
	}
}

// classifyClose extracts the websocket close code from a read error and
// reports whether it ends the session for good.
func classifyClose(err error) (int, bool) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code, protocol.IsTerminalClose(closeErr.Code)
	}
	// No close frame (network failure, abrupt drop): retryable.
	return 0, false
}

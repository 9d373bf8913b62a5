package push

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/park285/tactic-client/internal/obslog"
)

// WebSocketFeed reads raw frames from the push server. The match is passed as
// the match_id query parameter. A dropped connection is redialed with
// exponential backoff up to maxReconnectAttempts times.
type WebSocketFeed struct {
	wsURL string

	conn  *websocket.Conn
	connM sync.Mutex

	state    State
	stateM   sync.RWMutex
	stateCbs []StateCallback
	cbM      sync.RWMutex

	maxReconnectAttempts int
	pingInterval         time.Duration

	handler Handler
	dialURL string

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc

	headerProvider func() map[string]string
	logger         *zap.Logger
}

// NewWebSocketFeed creates a feed for wsURL. pingInterval <= 0 uses 30s.
func NewWebSocketFeed(wsURL string, maxReconnectAttempts int, pingInterval time.Duration) *WebSocketFeed {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &WebSocketFeed{
		wsURL:                wsURL,
		state:                StateDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		pingInterval:         pingInterval,
		stopCh:               make(chan struct{}),
		logger:               obslog.L(),
	}
}

func (f *WebSocketFeed) SetLogger(l *zap.Logger) {
	if l != nil {
		f.logger = l
	}
}

// SetHeaderProvider injects headers into every handshake.
func (f *WebSocketFeed) SetHeaderProvider(h func() map[string]string) {
	f.headerProvider = h
}

func (f *WebSocketFeed) OnStateChange(cb StateCallback) {
	f.cbM.Lock()
	f.stateCbs = append(f.stateCbs, cb)
	f.cbM.Unlock()
}

func (f *WebSocketFeed) State() State {
	f.stateM.RLock()
	defer f.stateM.RUnlock()
	return f.state
}

// Subscribe dials the push server and starts delivering frames to h. A
// feed serves one match; calling Subscribe again while connected is a no-op.
func (f *WebSocketFeed) Subscribe(ctx context.Context, matchID string, h Handler) error {
	if s := f.State(); s == StateConnected || s == StateConnecting || s == StateReconnecting {
		return nil
	}
	if h == nil {
		return errors.New("push: nil handler")
	}
	u, err := withMatchID(f.wsURL, matchID)
	if err != nil {
		return err
	}
	f.handler = h
	f.dialURL = u
	f.rootCtx, f.rootCancel = context.WithCancel(context.Background())
	f.setState(StateConnecting)

	conn, err := f.dial(ctx)
	if err != nil {
		f.logger.Warn("push_ws_dial_failed", zap.String("url", u), zap.Error(err))
		f.setState(StateFailed)
		f.scheduleReconnect()
		return err
	}
	f.attach(conn)
	return nil
}

func (f *WebSocketFeed) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, f.dialURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      f.buildHeaders(),
	})
	return conn, err
}

func (f *WebSocketFeed) attach(conn *websocket.Conn) {
	f.connM.Lock()
	f.conn = conn
	f.connM.Unlock()
	f.setState(StateConnected)
	f.logger.Info("push_ws_connected", zap.String("url", f.dialURL))

	f.wg.Add(2)
	go f.listen(conn)
	go f.pingLoop(conn)
}

func (f *WebSocketFeed) listen(conn *websocket.Conn) {
	defer f.wg.Done()
	for {
		_, data, err := conn.Read(f.rootCtx)
		if err != nil {
			if f.isStopping() {
				return
			}
			f.logger.Warn("push_ws_read_failed", zap.Error(err))
			f.setState(StateDisconnected)
			_ = f.closeConn(conn, websocket.StatusGoingAway, "reconnect")
			f.scheduleReconnect()
			return
		}
		f.handler(data)
	}
}

func (f *WebSocketFeed) pingLoop(conn *websocket.Conn) {
	defer f.wg.Done()
	t := time.NewTicker(f.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-f.stopCh:
			return
		case <-f.rootCtx.Done():
			return
		case <-t.C:
			if f.current() != conn {
				return
			}
			ctx, cancel := context.WithTimeout(f.rootCtx, 3*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			if failures >= 2 {
				// closing wakes listen, which owns the reconnect
				_ = f.closeConn(conn, websocket.StatusGoingAway, "ping failure")
				return
			}
		}
	}
}

func (f *WebSocketFeed) scheduleReconnect() {
	if f.maxReconnectAttempts <= 0 || f.isStopping() {
		return
	}
	f.setState(StateReconnecting)

	go func() {
		for attempt := 1; attempt <= f.maxReconnectAttempts; attempt++ {
			select {
			case <-f.stopCh:
				return
			case <-time.After(backoffDuration(attempt)):
			}
			conn, err := f.dial(f.rootCtx)
			if err != nil {
				f.logger.Debug("push_ws_redial_failed", zap.Int("attempt", attempt), zap.Error(err))
				continue
			}
			if f.isStopping() {
				_ = conn.Close(websocket.StatusNormalClosure, "close")
				return
			}
			f.attach(conn)
			return
		}
		f.setState(StateFailed)
	}()
}

func (f *WebSocketFeed) setState(state State) {
	f.stateM.Lock()
	f.state = state
	f.stateM.Unlock()

	f.cbM.RLock()
	callbacks := make([]StateCallback, len(f.stateCbs))
	copy(callbacks, f.stateCbs)
	f.cbM.RUnlock()
	for _, cb := range callbacks {
		if cb != nil {
			cb(state)
		}
	}
}

func (f *WebSocketFeed) Close(ctx context.Context) error {
	f.stopOnce.Do(func() { close(f.stopCh) })
	if conn := f.current(); conn != nil {
		_ = f.closeConn(conn, websocket.StatusNormalClosure, "close")
	}
	if f.rootCancel != nil {
		f.rootCancel()
	}

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		f.setState(StateDisconnected)
		return nil
	}
}

func (f *WebSocketFeed) current() *websocket.Conn {
	f.connM.Lock()
	defer f.connM.Unlock()
	return f.conn
}

func (f *WebSocketFeed) closeConn(conn *websocket.Conn, code websocket.StatusCode, reason string) error {
	f.connM.Lock()
	if f.conn == conn {
		f.conn = nil
	}
	f.connM.Unlock()
	return conn.Close(code, reason)
}

func (f *WebSocketFeed) isStopping() bool {
	select {
	case <-f.stopCh:
		return true
	default:
		return false
	}
}

func (f *WebSocketFeed) buildHeaders() http.Header {
	hdr := http.Header{}
	if f.headerProvider == nil {
		return hdr
	}
	for k, v := range f.headerProvider() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		hdr.Set(k, v)
	}
	return hdr
}

func withMatchID(raw, matchID string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return "", errors.New("push: unsupported websocket scheme " + u.Scheme)
	}
	if strings.TrimSpace(matchID) != "" {
		q := u.Query()
		q.Set("match_id", matchID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 200 * time.Millisecond
}

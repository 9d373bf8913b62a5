// Package session owns the player's session: connection lifecycle, the
// unit/target selection machine, action dispatch and reconciliation of
// snapshots from request/response and push. All state lives in one loop
// goroutine; inputs and network completions reach it as Events.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/park285/tactic-client/internal/board"
	"github.com/park285/tactic-client/internal/msgcat"
	"github.com/park285/tactic-client/internal/obslog"
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrStopped      = errors.New("session controller stopped")
)

// Gateway is the network collaborator.
type Gateway interface {
	Connect(ctx context.Context) (string, error)
	FetchState(ctx context.Context, matchID string) (*board.GameState, error)
	SubmitAction(ctx context.Context, matchID, playerID string, action board.Action) (*board.GameState, error)
	RequestAIAction(ctx context.Context, matchID, player string) (board.Action, error)
}

// StalePolicy decides what happens to a snapshot whose turn counter is
// lower than the one held.
type StalePolicy int

const (
	// LastWriteWins applies every snapshot in arrival order and logs a
	// warning when an older one overwrites a newer one.
	LastWriteWins StalePolicy = iota
	// RejectStale drops snapshots with a lower turn counter.
	RejectStale
)

func ParseStalePolicy(s string) (StalePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last_write_wins":
		return LastWriteWins, nil
	case "reject_stale":
		return RejectStale, nil
	default:
		return LastWriteWins, fmt.Errorf("unknown stale policy %q", s)
	}
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithCatalog(cat *msgcat.Catalog) Option {
	return func(c *Controller) {
		if cat != nil {
			c.cat = cat
		}
	}
}

func WithStalePolicy(p StalePolicy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithOnChange registers a callback run on the loop goroutine after every
// processed event. It must not call Submit synchronously.
func WithOnChange(fn func(View)) Option {
	return func(c *Controller) { c.onChange = fn }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

type Controller struct {
	inbox chan Event
	gw    Gateway

	status   ConnectionStatus
	matchID  string
	playerID string
	state    *board.GameState
	sel      Selector
	cursor   Cursor
	journal  *Journal

	policy   StalePolicy
	cat      *msgcat.Catalog
	logger   *zap.Logger
	onChange func(View)
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New starts the controller loop. It runs until parent is cancelled or Close.
func New(parent context.Context, gw Gateway, playerID string, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(parent)
	c := &Controller{
		inbox:    make(chan Event, 64),
		gw:       gw,
		playerID: playerID,
		policy:   LastWriteWins,
		logger:   obslog.L(),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cat == nil {
		c.cat = msgcat.MustDefault()
	}
	c.journal = newJournal(c.now)
	c.note(zapcore.InfoLevel, "session.welcome", nil)

	go c.loop()
	return c
}

// Submit enqueues ev. It blocks while the inbox is full.
func (c *Controller) Submit(ev Event) error {
	if ev == nil {
		return errors.New("nil event")
	}
	if c.ctx.Err() != nil {
		return ErrStopped
	}
	select {
	case c.inbox <- ev:
		return nil
	case <-c.ctx.Done():
		return ErrStopped
	}
}

// View returns a snapshot taken between two events.
func (c *Controller) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case c.inbox <- getView{reply: reply}:
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-c.ctx.Done():
		return View{}, ErrStopped
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-c.done:
		return View{}, ErrStopped
	}
}

func (c *Controller) Close() {
	c.cancel()
	<-c.done
}

func (c *Controller) Done() <-chan struct{} { return c.done }

func (c *Controller) loop() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.inbox:
			if gv, ok := ev.(getView); ok {
				gv.reply <- c.view()
				continue
			}
			c.handle(ev)
			if c.onChange != nil {
				c.onChange(c.view())
			}
		}
	}
}

func (c *Controller) handle(ev Event) {
	switch e := ev.(type) {
	case Connect:
		c.connect()
	case connectDone:
		c.connected(e)
	case CoordinateChosen:
		c.choose(e.Coord)
	case CursorMoved:
		c.cursor.Move(e.Direction)
	case CursorConfirmed:
		c.choose(c.cursor.Pos())
	case ClearSelection:
		c.sel.Reset()
		c.note(zapcore.InfoLevel, "selection.cleared", nil)
	case SubmitEndTurn:
		c.dispatch(board.EndTurn(), c.playerID)
	case actionDone:
		c.actionCompleted(e)
	case RefreshRequested:
		if c.status.State != Connected {
			c.note(zapcore.WarnLevel, "session.not_connected", nil)
			return
		}
		c.refresh()
	case refreshDone:
		c.refreshed(e)
	case PushPayload:
		c.applyPush(e.Raw)
	case RequestAIMove:
		c.requestAI()
	case aiDone:
		c.aiCompleted(e)
	case getView:
		e.reply <- c.view()
	default:
		c.logger.Warn("session_unknown_event", zap.String("type", fmt.Sprintf("%T", ev)))
	}
}

func (c *Controller) connect() {
	if c.status.State == Connecting {
		c.logger.Debug("session_connect_in_flight")
		return
	}
	c.status = ConnectionStatus{State: Connecting}
	c.matchID = ""
	c.note(zapcore.InfoLevel, "session.connecting", nil)
	c.spawn(func(ctx context.Context) Event {
		id, err := c.gw.Connect(ctx)
		return connectDone{matchID: id, err: err}
	})
}

func (c *Controller) connected(e connectDone) {
	if e.err == nil && strings.TrimSpace(e.matchID) == "" {
		e.err = errors.New("server returned an empty match id")
	}
	if e.err != nil {
		c.status = ConnectionStatus{State: Errored, Reason: e.err.Error()}
		c.matchID = ""
		c.note(zapcore.ErrorLevel, "session.connect_failed", map[string]any{"Reason": e.err.Error()})
		return
	}
	c.status = ConnectionStatus{State: Connected}
	c.matchID = e.matchID
	c.note(zapcore.InfoLevel, "session.connected", map[string]any{"MatchID": e.matchID})
	c.refresh()
}

func (c *Controller) refresh() {
	matchID := c.matchID
	c.spawn(func(ctx context.Context) Event {
		st, err := c.gw.FetchState(ctx, matchID)
		return refreshDone{state: st, err: err}
	})
}

func (c *Controller) refreshed(e refreshDone) {
	if e.err != nil {
		c.note(zapcore.ErrorLevel, "session.refresh_failed", map[string]any{"Reason": e.err.Error()})
		return
	}
	if c.reconcile(e.state, "refresh") {
		c.note(zapcore.InfoLevel, "session.refreshed", nil)
	}
}

func (c *Controller) choose(coord board.Coord) {
	outcome, act := c.sel.Choose(coord, c.state, c.playerID)
	data := map[string]any{"Coord": coord.String()}
	switch outcome {
	case OutcomeSelected:
		c.note(zapcore.InfoLevel, "selection.selected", data)
	case OutcomeAction:
		c.dispatch(act, c.playerID)
	case OutcomeAwaiting:
		c.note(zapcore.InfoLevel, "selection.awaiting", nil)
	case OutcomeNoState:
		c.note(zapcore.WarnLevel, "selection.no_state", nil)
	case OutcomeNoUnit:
		c.note(zapcore.InfoLevel, "selection.no_unit", data)
	case OutcomeNotYours:
		c.note(zapcore.WarnLevel, "selection.not_yours", data)
	case OutcomeOutOfBounds:
		c.note(zapcore.WarnLevel, "selection.out_of_bounds", data)
	}
}

// dispatch submits act on behalf of actor. Selection is reset only when the
// attempt ends, so an in-flight EndTurn or AI action leaves it untouched.
func (c *Controller) dispatch(act board.Action, actor string) {
	if c.status.State != Connected || c.matchID == "" {
		c.logger.Warn("action_dispatch_skipped", zap.String("action", act.String()), zap.Error(ErrNotConnected))
		c.note(zapcore.WarnLevel, "session.not_connected", nil)
		c.sel.Reset()
		return
	}
	c.note(zapcore.InfoLevel, "action.sending", map[string]any{"Action": act.String()})
	matchID := c.matchID
	c.spawn(func(ctx context.Context) Event {
		st, err := c.gw.SubmitAction(ctx, matchID, actor, act)
		return actionDone{action: act, actor: actor, state: st, err: err}
	})
}

func (c *Controller) actionCompleted(e actionDone) {
	c.sel.Reset()
	if e.err != nil {
		c.logger.Error("action_failed", zap.String("action", e.action.String()), zap.String("actor", e.actor), zap.Error(e.err))
		c.note(zapcore.ErrorLevel, "action.failed", map[string]any{"Reason": e.err.Error()})
		return
	}
	c.reconcile(e.state, "action")
	c.note(zapcore.InfoLevel, "action.success", nil)
}

func (c *Controller) applyPush(raw []byte) {
	switch msg := DecodePush(raw).(type) {
	case Unrecognized:
		c.logger.Debug("push_payload_dropped", zap.String("reason", msg.Reason))
	case StateUpdate:
		if msg.MatchID != "" && c.matchID != "" && msg.MatchID != c.matchID {
			c.logger.Debug("push_payload_other_match", zap.String("match_id", msg.MatchID))
			return
		}
		if c.reconcile(msg.State, "push") {
			c.note(zapcore.InfoLevel, "push.state_update", nil)
		}
	}
}

func (c *Controller) requestAI() {
	if c.status.State != Connected {
		c.note(zapcore.WarnLevel, "session.not_connected", nil)
		return
	}
	if c.state == nil {
		c.note(zapcore.WarnLevel, "selection.no_state", nil)
		return
	}
	if c.state.IsTurnOf(c.playerID) {
		c.note(zapcore.InfoLevel, "ai.not_needed", nil)
		return
	}
	matchID, actor := c.matchID, c.state.Turn
	c.logger.Info("ai_request", zap.String("match_id", matchID), zap.String("actor", actor))
	c.spawn(func(ctx context.Context) Event {
		act, err := c.gw.RequestAIAction(ctx, matchID, actor)
		return aiDone{actor: actor, action: act, err: err}
	})
}

func (c *Controller) aiCompleted(e aiDone) {
	if e.err != nil {
		c.note(zapcore.ErrorLevel, "ai.failed", map[string]any{"Reason": e.err.Error()})
		return
	}
	c.note(zapcore.InfoLevel, "ai.chose", map[string]any{"Action": e.action.String()})
	c.dispatch(e.action, e.actor)
}

// reconcile replaces the held snapshot wholesale, subject to the stale policy.
func (c *Controller) reconcile(st *board.GameState, source string) bool {
	if st == nil {
		return false
	}
	if c.state != nil && st.TurnCount < c.state.TurnCount {
		fields := []zap.Field{
			zap.String("source", source),
			zap.Int("incoming_turn", st.TurnCount),
			zap.Int("current_turn", c.state.TurnCount),
		}
		if c.policy == RejectStale {
			c.logger.Warn("stale_snapshot_rejected", fields...)
			c.note(zapcore.WarnLevel, "action.stale_rejected", map[string]any{"Incoming": st.TurnCount, "Current": c.state.TurnCount})
			return false
		}
		c.logger.Warn("stale_snapshot_applied", fields...)
	}
	c.state = st
	c.logger.Debug("state_replaced", zap.String("source", source), zap.Int("turn_count", st.TurnCount), zap.String("turn", st.Turn))
	return true
}

func (c *Controller) spawn(call func(ctx context.Context) Event) {
	go func() {
		ev := call(c.ctx)
		select {
		case c.inbox <- ev:
		case <-c.ctx.Done():
		}
	}()
}

// note writes a journal entry and mirrors it to the structured log.
func (c *Controller) note(level zapcore.Level, key string, data map[string]any) {
	text := c.cat.Text(key, data)
	c.journal.Add(text)
	if ce := c.logger.Check(level, "journal"); ce != nil {
		ce.Write(zap.String("key", key), zap.String("text", text))
	}
}

func (c *Controller) view() View {
	v := View{
		Status:    c.status,
		MatchID:   c.matchID,
		PlayerID:  c.playerID,
		State:     c.state,
		Selection: c.sel.State(),
		Cursor:    c.cursor.Pos(),
		Journal:   c.journal.Entries(),
	}
	if origin, ok := c.sel.Pending(); ok {
		v.Selected = &origin
	}
	if c.state != nil {
		v.YourTurn = c.state.IsTurnOf(c.playerID)
		v.UnitCounts = c.state.Board.UnitCounts()
	}
	return v
}

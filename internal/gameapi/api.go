package gameapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/tactic-client/internal/board"
)

// envelope is the server's response wrapper. Success is only sent by
// endpoints that can refuse a request.
type envelope struct {
	Success *bool           `json:"success,omitempty"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

type MatchSummary struct {
	ID string `json:"id"`
}

type createMatchRequest struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

type actionRequest struct {
	MatchID  string       `json:"match_id"`
	PlayerID string       `json:"player_id"`
	Action   board.Action `json:"action"`
}

type aiActionRequest struct {
	MatchID  string `json:"match_id"`
	AIPlayer string `json:"ai_player"`
}

// Players names the two seats used when a match has to be created.
type Players struct {
	Local    string
	Opponent string
}

// Gateway binds a Client to the local seats so Connect matches the
// session's capability signature.
type Gateway struct {
	*Client
	players Players
}

func NewGateway(c *Client, players Players) *Gateway {
	return &Gateway{Client: c, players: players}
}

// Connect joins the first listed match or creates one for the configured seats.
func (g *Gateway) Connect(ctx context.Context) (string, error) {
	matches, err := g.ListMatches(ctx)
	if err != nil {
		return "", err
	}
	if len(matches) > 0 && strings.TrimSpace(matches[0].ID) != "" {
		g.logger.Info("match_join_existing", zap.String("match_id", matches[0].ID))
		return matches[0].ID, nil
	}
	return g.CreateMatch(ctx, g.players.Local, g.players.Opponent)
}

// ListMatches returns the matches the server currently tracks. A data field
// that is not a list is treated as "no matches".
func (c *Client) ListMatches(ctx context.Context) ([]MatchSummary, error) {
	const op = "list matches"
	env, err := c.getEnvelope(ctx, op, "/matches")
	if err != nil {
		return nil, err
	}
	var out []MatchSummary
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &out) != nil {
		return nil, nil
	}
	return out, nil
}

func (c *Client) CreateMatch(ctx context.Context, player1, player2 string) (string, error) {
	const op = "create match"
	status, body, err := c.do(ctx, fasthttp.MethodPost, "/match/create", createMatchRequest{Player1: player1, Player2: player2}, false)
	if err != nil {
		return "", connErr(op, err)
	}
	if !isSuccess(status) {
		return "", statusErr(op, status)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", decodeErr(op, err)
	}
	var id string
	if err := json.Unmarshal(env.Data, &id); err != nil || strings.TrimSpace(id) == "" {
		return "", &Error{Kind: ErrDecodeFailure, Op: op, Reason: "match id not returned"}
	}
	c.logger.Info("match_create", zap.String("match_id", id), zap.String("player1", player1), zap.String("player2", player2))
	return id, nil
}

// FetchState reads the authoritative snapshot of a match.
func (c *Client) FetchState(ctx context.Context, matchID string) (*board.GameState, error) {
	const op = "fetch state"
	env, err := c.getEnvelope(ctx, op, "/state?match_id="+url.QueryEscape(matchID))
	if err != nil {
		return nil, err
	}
	st, err := board.DecodeState(env.Data)
	if err != nil {
		return nil, decodeErr(op, err)
	}
	return st, nil
}

// SubmitAction posts an action and returns the resulting snapshot. A non-2xx
// status or success=false is a server refusal.
func (c *Client) SubmitAction(ctx context.Context, matchID, playerID string, action board.Action) (*board.GameState, error) {
	const op = "submit action"
	req := actionRequest{MatchID: matchID, PlayerID: playerID, Action: action}
	status, body, err := c.do(ctx, fasthttp.MethodPost, "/action", req, false)
	if err != nil {
		return nil, connErr(op, err)
	}
	if !isSuccess(status) {
		return nil, rejectedErr(op, "HTTP error: "+truncate(strings.TrimSpace(string(body)), 512))
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, decodeErr(op, err)
	}
	if env.Success == nil || !*env.Success {
		return nil, rejectedErr(op, env.Error)
	}
	st, err := board.DecodeState(env.Data)
	if err != nil {
		return nil, decodeErr(op, err)
	}
	return st, nil
}

// RequestAIAction asks the server-side decision maker to pick an action for player.
func (c *Client) RequestAIAction(ctx context.Context, matchID, player string) (board.Action, error) {
	const op = "request ai action"
	status, body, err := c.do(ctx, fasthttp.MethodPost, "/ai/action", aiActionRequest{MatchID: matchID, AIPlayer: player}, false)
	if err != nil {
		return board.Action{}, connErr(op, err)
	}
	if !isSuccess(status) {
		return board.Action{}, statusErr(op, status)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return board.Action{}, decodeErr(op, err)
	}
	if env.Success != nil && !*env.Success {
		return board.Action{}, rejectedErr(op, env.Error)
	}
	var action board.Action
	if err := json.Unmarshal(env.Data, &action); err != nil {
		return board.Action{}, decodeErr(op, err)
	}
	return action, nil
}

func (c *Client) getEnvelope(ctx context.Context, op, path string) (*envelope, error) {
	status, body, err := c.do(ctx, fasthttp.MethodGet, path, nil, true)
	if err != nil {
		return nil, connErr(op, err)
	}
	if !isSuccess(status) {
		return nil, statusErr(op, status)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, decodeErr(op, err)
	}
	return &env, nil
}

// IsRejected reports whether err is a server refusal rather than a transport problem.
func IsRejected(err error) bool { return errors.Is(err, ErrActionRejected) }

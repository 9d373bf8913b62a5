// Package push delivers raw out-of-band payloads for one match. Feeds do not
// interpret payloads; decoding belongs to the session.
package push

import (
	"context"
	"fmt"
	"strings"

	"github.com/park285/tactic-client/internal/config"
)

// Handler receives one raw payload. It is called from the feed's goroutine
// and must not block for long.
type Handler func(raw []byte)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type StateCallback func(state State)

// Feed is a best-effort subscription to a match's updates.
type Feed interface {
	Subscribe(ctx context.Context, matchID string, h Handler) error
	Close(ctx context.Context) error
}

// FromConfig builds the feed selected by PUSH_TRANSPORT. It returns nil, nil
// when push is disabled.
func FromConfig(cfg *config.AppConfig) (Feed, error) {
	switch cfg.PushTransport {
	case config.PushNone:
		return nil, nil
	case config.PushWS:
		return NewWebSocketFeed(cfg.PushURL, 5, 0), nil
	case config.PushRedis:
		f, err := NewRedisFeed(cfg.RedisURL, cfg.RedisChannel)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported push transport: %s", cfg.PushTransport)
	}
}

// ChannelFor expands the {match_id} placeholder of a channel template.
func ChannelFor(template, matchID string) string {
	if !strings.Contains(template, "{match_id}") {
		return template
	}
	return strings.ReplaceAll(template, "{match_id}", strings.TrimSpace(matchID))
}

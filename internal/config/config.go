package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PushNone  = "none"
	PushWS    = "ws"
	PushRedis = "redis"

	StaleLastWriteWins = "last_write_wins"
	StaleReject        = "reject_stale"
)

type AppConfig struct {
	ServerBaseURL string

	PushTransport string
	PushURL       string
	RedisURL      string
	RedisChannel  string

	PlayerID   string
	OpponentID string
	ClientID   string

	HTTPTimeout time.Duration
	HTTPRetry   int

	StalePolicy string
	MessagesDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		PlayerID:     "player1",
		OpponentID:   "ai",
		RedisChannel: "match:{match_id}:updates",
		HTTPTimeout:  10 * time.Second,
		HTTPRetry:    3,
		StalePolicy:  StaleLastWriteWins,
	}

	cfg.ServerBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("SERVER_BASE_URL")), "/")
	cfg.PushURL = strings.TrimSpace(os.Getenv("PUSH_URL"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if v := strings.TrimSpace(os.Getenv("REDIS_CHANNEL")); v != "" {
		cfg.RedisChannel = v
	}
	if v := strings.TrimSpace(os.Getenv("PLAYER_ID")); v != "" {
		cfg.PlayerID = v
	}
	if v := strings.TrimSpace(os.Getenv("OPPONENT_ID")); v != "" {
		cfg.OpponentID = v
	}
	cfg.ClientID = strings.TrimSpace(os.Getenv("CLIENT_ID"))
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeout = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_RETRY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPRetry = n
		}
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("STALE_POLICY"))); v != "" {
		switch v {
		case StaleLastWriteWins, StaleReject:
			cfg.StalePolicy = v
		default:
			return nil, errors.New("STALE_POLICY must be last_write_wins or reject_stale")
		}
	}

	transport := strings.ToLower(strings.TrimSpace(os.Getenv("PUSH_TRANSPORT")))
	if transport == "" {
		transport = PushNone
		if cfg.PushURL != "" {
			transport = PushWS
		}
	}
	cfg.PushTransport = transport

	if cfg.ServerBaseURL == "" {
		return nil, errors.New("SERVER_BASE_URL is required")
	}
	switch cfg.PushTransport {
	case PushNone:
	case PushWS:
		if cfg.PushURL == "" {
			return nil, errors.New("PUSH_URL is required when PUSH_TRANSPORT=ws")
		}
	case PushRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required when PUSH_TRANSPORT=redis")
		}
	default:
		return nil, errors.New("PUSH_TRANSPORT must be ws, redis or none")
	}

	return cfg, nil
}

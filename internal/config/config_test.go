package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SERVER_BASE_URL", "PUSH_URL", "PUSH_TRANSPORT", "REDIS_URL", "REDIS_CHANNEL",
		"PLAYER_ID", "OPPONENT_ID", "CLIENT_ID", "HTTP_TIMEOUT_SEC", "HTTP_RETRY",
		"STALE_POLICY", "MESSAGES_DIR",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("SERVER_BASE_URL", "http://localhost:3000/")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerBaseURL != "http://localhost:3000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.ServerBaseURL)
	}
	if cfg.PlayerID != "player1" || cfg.OpponentID != "ai" {
		t.Fatalf("unexpected player defaults: %q %q", cfg.PlayerID, cfg.OpponentID)
	}
	if cfg.PushTransport != PushNone {
		t.Fatalf("expected no push transport, got %q", cfg.PushTransport)
	}
	if cfg.HTTPTimeout != 10*time.Second || cfg.HTTPRetry != 3 {
		t.Fatalf("unexpected http defaults: %v %d", cfg.HTTPTimeout, cfg.HTTPRetry)
	}
	if cfg.StalePolicy != StaleLastWriteWins {
		t.Fatalf("unexpected stale policy %q", cfg.StalePolicy)
	}
	if cfg.ClientID == "" {
		t.Fatalf("expected generated client id")
	}
}

func TestLoadRequiresBaseURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SERVER_BASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without SERVER_BASE_URL")
	}
}

func TestLoadPushTransport(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PUSH_URL", "ws://localhost:3000/ws")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PushTransport != PushWS {
		t.Fatalf("expected ws transport inferred from PUSH_URL, got %q", cfg.PushTransport)
	}

	t.Setenv("PUSH_TRANSPORT", "redis")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for redis transport without REDIS_URL")
	}
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	if cfg, err = Load(); err != nil || cfg.PushTransport != PushRedis {
		t.Fatalf("expected redis transport: %v %+v", err, cfg)
	}

	t.Setenv("PUSH_TRANSPORT", "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown transport")
	}
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PLAYER_ID", "player2")
	t.Setenv("HTTP_TIMEOUT_SEC", "3")
	t.Setenv("HTTP_RETRY", "nope")
	t.Setenv("STALE_POLICY", "REJECT_STALE")
	t.Setenv("CLIENT_ID", "fixed")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PlayerID != "player2" || cfg.HTTPTimeout != 3*time.Second || cfg.HTTPRetry != 3 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.StalePolicy != StaleReject || cfg.ClientID != "fixed" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}

	t.Setenv("STALE_POLICY", "newest")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown stale policy")
	}
}

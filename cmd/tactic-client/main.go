package main

import (
	"bufio"
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"go.uber.org/zap"

	appcfg "github.com/park285/tactic-client/internal/config"
	"github.com/park285/tactic-client/internal/gameapi"
	"github.com/park285/tactic-client/internal/msgcat"
	"github.com/park285/tactic-client/internal/obslog"
	"github.com/park285/tactic-client/internal/push"
	"github.com/park285/tactic-client/internal/session"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("messages error: %v", err)
	}
	policy, err := session.ParseStalePolicy(cfg.StalePolicy)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	headers := func() map[string]string {
		return map[string]string{"X-Client-Id": cfg.ClientID, "X-Player-Id": cfg.PlayerID}
	}
	client := gameapi.NewClient(cfg.ServerBaseURL,
		gameapi.WithHeaderProvider(headers),
		gameapi.WithTimeout(cfg.HTTPTimeout),
		gameapi.WithRetry(cfg.HTTPRetry),
		gameapi.WithLogger(logger),
	)
	gw := gameapi.NewGateway(client, gameapi.Players{Local: cfg.PlayerID, Opponent: cfg.OpponentID})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	views := make(chan session.View, 1)
	ctrl := session.New(ctx, gw, cfg.PlayerID,
		session.WithLogger(logger),
		session.WithCatalog(cat),
		session.WithStalePolicy(policy),
		session.WithOnChange(func(v session.View) {
			// keep only the newest view
			select {
			case <-views:
			default:
			}
			views <- v
		}),
	)

	logger.Info("client_start",
		zap.String("server", cfg.ServerBaseURL),
		zap.String("player", cfg.PlayerID),
		zap.String("push", cfg.PushTransport),
		zap.String("client_id", cfg.ClientID),
	)

	printTitle()
	subs := &subscriber{cfg: cfg, ctrl: ctrl, logger: logger, headers: headers}
	defer subs.close()

	if v, err := ctrl.View(ctx); err == nil {
		render(v)
	}

	go readInput(ctx, ctrl, stop)

	for {
		select {
		case <-ctx.Done():
			ctrl.Close()
			return
		case v := <-views:
			render(v)
			if v.Status.State == session.Connected {
				subs.ensure(ctx, v.MatchID)
			}
		}
	}
}

func printTitle() {
	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Tac", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("tic", pterm.FgDarkGray.ToStyle()),
	).Srender()
	if err == nil {
		pterm.Print(title)
	}
	pterm.Info.Println("type help for commands")
}

func readInput(ctx context.Context, ctrl *session.Controller, stop func()) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		cmd, err := parseCommand(sc.Text())
		if err != nil {
			pterm.Warning.Println(err.Error())
			continue
		}
		switch {
		case cmd.quit:
			stop()
			return
		case cmd.help:
			pterm.Println(helpText)
			continue
		}
		if err := ctrl.Submit(cmd.event); err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
	stop()
}

// subscriber keeps one push feed attached to the active match.
type subscriber struct {
	cfg     *appcfg.AppConfig
	ctrl    *session.Controller
	logger  *zap.Logger
	headers func() map[string]string

	mu      sync.Mutex
	feed    push.Feed
	matchID string
}

func (s *subscriber) ensure(ctx context.Context, matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if matchID == "" || matchID == s.matchID {
		return
	}
	s.closeLocked()

	feed, err := push.FromConfig(s.cfg)
	if err != nil {
		s.logger.Error("push_feed_init_failed", zap.Error(err))
		return
	}
	if feed == nil {
		return
	}
	if ws, ok := feed.(*push.WebSocketFeed); ok {
		ws.SetLogger(s.logger)
		ws.SetHeaderProvider(s.headers)
		ws.OnStateChange(func(state push.State) {
			s.logger.Info("push_ws_state", zap.String("state", state.String()))
		})
	}
	if rf, ok := feed.(*push.RedisFeed); ok {
		rf.SetLogger(s.logger)
	}
	handler := func(raw []byte) {
		_ = s.ctrl.Submit(session.PushPayload{Raw: raw})
	}
	if err := feed.Subscribe(ctx, matchID, handler); err != nil {
		s.logger.Warn("push_subscribe_failed", zap.String("match_id", matchID), zap.Error(err))
	}
	s.feed = feed
	s.matchID = matchID
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *subscriber) closeLocked() {
	if s.feed == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.feed.Close(ctx); err != nil {
		s.logger.Warn("push_feed_close", zap.Error(err))
	}
	s.feed = nil
	s.matchID = ""
}

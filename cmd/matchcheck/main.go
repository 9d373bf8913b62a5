package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/park285/tactic-client/internal/gameapi"
	"github.com/park285/tactic-client/internal/push"
	"github.com/park285/tactic-client/internal/session"
)

// matchcheck probes a game server: match list, the first match's state and,
// if PUSH_URL is set, the push feed for a short window.
func main() {
	baseURL := os.Getenv("SERVER_BASE_URL")
	pushURL := os.Getenv("PUSH_URL")
	clientID := os.Getenv("CLIENT_ID")

	if baseURL == "" {
		log.Fatal("SERVER_BASE_URL is required")
	}

	headers := func() map[string]string {
		m := map[string]string{}
		if clientID != "" {
			m["X-Client-Id"] = clientID
		}
		return m
	}

	client := gameapi.NewClient(baseURL,
		gameapi.WithHeaderProvider(headers),
		gameapi.WithTimeout(8*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	matches, err := client.ListMatches(ctx)
	if err != nil {
		log.Fatalf("/matches error: %v", err)
	}
	log.Printf("/matches ok: %d match(es)", len(matches))
	if len(matches) == 0 {
		log.Println("no match to inspect; skipping state and push checks")
		return
	}
	matchID := matches[0].ID

	st, err := client.FetchState(ctx, matchID)
	if err != nil {
		log.Printf("/state error: %v", err)
	} else {
		log.Printf("/state ok: match=%s turn=%s turn_count=%d phase=%s", matchID, st.Turn, st.TurnCount, st.Phase)
		fmt.Println(strings.Join(st.Board.ASCII(nil), "\n"))
	}

	if pushURL == "" {
		log.Println("PUSH_URL not set; skipping push check")
		return
	}

	ws := push.NewWebSocketFeed(pushURL, 0, 0)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state push.State) {
		log.Printf("push state: %s", state)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	err = ws.Subscribe(cctx, matchID, func(raw []byte) {
		switch msg := session.DecodePush(raw).(type) {
		case session.StateUpdate:
			fmt.Printf("push state_update turn=%s turn_count=%d\n", msg.State.Turn, msg.State.TurnCount)
		case session.Unrecognized:
			fmt.Printf("push ignored: %s\n", msg.Reason)
		}
	})
	if err != nil {
		log.Printf("push connect error: %v", err)
		return
	}

	// Observe for a short window
	t := time.NewTimer(10 * time.Second)
	<-t.C
	_ = ws.Close(context.Background())
}

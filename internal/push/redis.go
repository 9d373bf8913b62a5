package push

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/tactic-client/internal/obslog"
)

// RedisFeed subscribes to a per-match pub/sub channel. The channel name comes
// from a template in which {match_id} is replaced.
type RedisFeed struct {
	rdb      *redis.Client
	template string
	logger   *zap.Logger

	mu     sync.Mutex
	ps     *redis.PubSub
	wg     sync.WaitGroup
	closed bool
}

func NewRedisFeed(redisURL, channelTemplate string) (*RedisFeed, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("REDIS_URL required for redis push feed")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	return NewRedisFeedFromClient(redis.NewClient(opts), channelTemplate), nil
}

func NewRedisFeedFromClient(rdb *redis.Client, channelTemplate string) *RedisFeed {
	if strings.TrimSpace(channelTemplate) == "" {
		channelTemplate = "match:{match_id}:updates"
	}
	return &RedisFeed{rdb: rdb, template: channelTemplate, logger: obslog.L()}
}

func (f *RedisFeed) SetLogger(l *zap.Logger) {
	if l != nil {
		f.logger = l
	}
}

// Subscribe waits for the subscription to be confirmed, then forwards every
// published message to h until Close.
func (f *RedisFeed) Subscribe(ctx context.Context, matchID string, h Handler) error {
	if h == nil {
		return errors.New("push: nil handler")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("push: feed closed")
	}
	if f.ps != nil {
		return nil
	}
	channel := ChannelFor(f.template, matchID)
	ps := f.rdb.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("redis subscribe %s: %w", channel, err)
	}
	f.ps = ps
	f.logger.Info("push_redis_subscribed", zap.String("channel", channel))

	ch := ps.Channel()
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for msg := range ch {
			h([]byte(msg.Payload))
		}
	}()
	return nil
}

func (f *RedisFeed) Close(ctx context.Context) error {
	f.mu.Lock()
	f.closed = true
	ps := f.ps
	f.ps = nil
	f.mu.Unlock()

	if ps != nil {
		_ = ps.Close()
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
	}
	return f.rdb.Close()
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}

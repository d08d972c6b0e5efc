// internal/notify/redis.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"coursemarket/internal/logger"
	"coursemarket/internal/purchase"
)

// Redis publishes each callback as JSON on a pub/sub channel.
type Redis struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

var _ purchase.Listener = (*Redis)(nil)

// NewRedis connects to addr and checks the connection.
func NewRedis(ctx context.Context, addr, channel string, log *logger.Logger) (*Redis, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{
		log:     log.With("listener", "redis", "channel", channel),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (r *Redis) publish(ctx context.Context, n Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, r.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", n.Type, err)
	}
	return nil
}

func (r *Redis) BalanceChanged(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	return r.publish(ctx, balanceChanged(accountID, balance))
}

func (r *Redis) CourseUnlocked(ctx context.Context, accountID uuid.UUID, courseID string) error {
	return r.publish(ctx, unlocked(TypeCourseUnlocked, accountID, courseID, nil))
}

func (r *Redis) PackUnlocked(ctx context.Context, accountID uuid.UUID, packID string, courseIDs []string) error {
	return r.publish(ctx, unlocked(TypePackUnlocked, accountID, packID, courseIDs))
}

func (r *Redis) LessonUnlocked(ctx context.Context, accountID uuid.UUID, lessonID string) error {
	return r.publish(ctx, unlocked(TypeLessonUnlocked, accountID, lessonID, nil))
}

// Subscribe delivers notifications on the channel to onMsg until ctx ends.
func (r *Redis) Subscribe(ctx context.Context, onMsg func(Notification)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	sub := r.rdb.Subscribe(ctx, r.channel)
	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var n Notification
				if err := json.Unmarshal([]byte(m.Payload), &n); err != nil {
					r.log.Warn("bad notification payload", "error", err)
					continue
				}
				onMsg(n)
			}
		}
	}()
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

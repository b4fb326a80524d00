package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/salesagent-backend/internal/observability"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

const (
	DefaultChannel = "salesagent.events"

	EventTurnCompleted = "turn.completed"
)

// TurnEvent is broadcast after every pipeline run that produced a response.
type TurnEvent struct {
	Event          string    `json:"event"`
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	Channel        string    `json:"channel"`
	Intent         string    `json:"current_intent"`
	Worker         string    `json:"last_worker"`
	WorkflowStep   string    `json:"workflow_step"`
	CartItemsCount int       `json:"cart_items_count"`
	ErrorCount     int       `json:"error_count"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type EventBus interface {
	Publish(ctx context.Context, ev TurnEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev TurnEvent)) error
	Close() error
}

type eventBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewEventBus(log *logger.Logger, rdb *goredis.Client, channel string) (EventBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &eventBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *eventBus) Publish(ctx context.Context, ev TurnEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	if ev.Event == "" {
		ev.Event = EventTurnCompleted
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = b.rdb.Publish(ctx, b.channel, raw).Err()
	observability.Current().IncEventPublished(ev.Event, err)
	return err
}

func (b *eventBus) StartForwarder(ctx context.Context, onEvent func(ev TurnEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev TurnEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad redis event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}

// Close is a no-op; the client is owned by whoever created it.
func (b *eventBus) Close() error {
	return nil
}

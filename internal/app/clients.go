package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/salesagent-backend/internal/clients/redis"
	"github.com/yungbote/salesagent-backend/internal/platform/llm"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type Clients struct {
	Redis  *goredis.Client
	Events redis.EventBus
	LLM    llm.Client
}

// wireClients connects the optional backends. Redis is skipped without REDIS_ADDR; a missing
// LLM key leaves LLM nil and every worker on its rule-based path.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rdb, err := redis.NewClient(ctx, addr)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		bus, err := redis.NewEventBus(log, rdb, cfg.RedisChannel)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		out.Redis = rdb
		out.Events = bus
	} else {
		log.Warn("REDIS_ADDR not set; customer cache and turn events disabled")
	}

	client, err := llm.NewClient(log, cfg.LLMConfig())
	if err != nil {
		log.Warn("LLM client disabled; using rule-based fallbacks", "error", err)
	} else {
		out.LLM = client
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Events != nil {
		_ = c.Events.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

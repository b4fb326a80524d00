package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

func TestNewEventBusValidates(t *testing.T) {
	if _, err := NewEventBus(nil, nil, ""); err == nil {
		t.Fatalf("expected error without logger")
	}
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if _, err := NewEventBus(log, nil, ""); err == nil {
		t.Fatalf("expected error without client")
	}
	if _, err := NewClient(context.Background(), " "); err == nil {
		t.Fatalf("expected error without address")
	}
}

func TestEventBusRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb, err := NewClient(ctx, addr)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer rdb.Close()

	bus, err := NewEventBus(log, rdb, "test.events."+time.Now().Format("150405.000000"))
	if err != nil {
		t.Fatalf("NewEventBus: %v", err)
	}
	got := make(chan TurnEvent, 1)
	if err := bus.StartForwarder(ctx, func(ev TurnEvent) { got <- ev }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	if err := bus.Publish(ctx, TurnEvent{SessionID: "s1", UserID: "u1", Intent: "greeting"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case ev := <-got:
		if ev.Event != EventTurnCompleted || ev.SessionID != "s1" || ev.Intent != "greeting" {
			t.Fatalf("event: got=%+v", ev)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for event")
	}
}

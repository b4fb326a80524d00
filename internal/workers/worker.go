package workers

import (
	"context"
	"strings"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
)

// Result is what a worker hands back to the dispatcher. Data is free-form structured output
// that ends up on the worker output entry.
type Result struct {
	Content    string
	Data       map[string]any
	Confidence float64
}

// Worker handles one routed intent family. Process may mutate rec (cart lines, metadata);
// it must not append worker outputs itself.
type Worker interface {
	Name() string
	Process(ctx context.Context, rec *conversation.Record) (Result, error)
}

// DB wraps ctx for service calls made from a worker.
func DB(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx}
}

// ContainsAny reports whether text contains any of the patterns.
func ContainsAny(text string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// Rule is one entry of an ordered keyword matcher.
type Rule[T any] struct {
	Label    T
	Patterns []string
}

// Match walks rules in order and returns the first label with a pattern inside text.
func Match[T any](text string, rules []Rule[T]) (T, bool) {
	for _, r := range rules {
		if ContainsAny(text, r.Patterns...) {
			return r.Label, true
		}
	}
	var zero T
	return zero, false
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

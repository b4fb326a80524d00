package workers

import (
	"context"
	"testing"

	"github.com/yungbote/salesagent-backend/internal/conversation"
)

type namedWorker string

func (n namedWorker) Name() string { return string(n) }

func (n namedWorker) Process(context.Context, *conversation.Record) (Result, error) {
	return Result{Content: string(n)}, nil
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(namedWorker("cart"), namedWorker("loyalty"))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, ok := r.Get("cart"); !ok {
		t.Fatalf("Get(cart): missing")
	}
	if _, ok := r.Get("inventory"); ok {
		t.Fatalf("Get(inventory): unexpected worker")
	}
	if err := r.Register(namedWorker("cart")); err == nil {
		t.Fatalf("duplicate Register: expected error")
	}
	if err := r.Register(namedWorker("")); err == nil {
		t.Fatalf("empty name: expected error")
	}
	if got := len(r.Names()); got != 2 {
		t.Fatalf("Names: want=2 got=%d", got)
	}
}

func TestMatchFirstRuleWins(t *testing.T) {
	rules := []Rule[string]{
		{Label: "first", Patterns: []string{"add"}},
		{Label: "second", Patterns: []string{"add to cart", "remove"}},
	}
	cases := []struct {
		text string
		want string
		ok   bool
	}{
		{"please add to cart", "first", true},
		{"remove it", "second", true},
		{"hello", "", false},
	}
	for _, tc := range cases {
		got, ok := Match(tc.text, rules)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("Match(%q): want=%q/%v got=%q/%v", tc.text, tc.want, tc.ok, got, ok)
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(1.3, 0.1, 1) != 1 || Clamp(-1, 0.1, 1) != 0.1 || Clamp(0.5, 0.1, 1) != 0.5 {
		t.Fatalf("Clamp: unexpected bounds")
	}
}

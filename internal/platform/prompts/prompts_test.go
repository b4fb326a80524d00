package prompts

import (
	"strings"
	"testing"
)

func TestCatalogHasEveryPrompt(t *testing.T) {
	want := []Name{SalesAgentSystem, IntentAnalysis, RecommendationAgent, InventoryAgent, CartAgent, LoyaltyAgent}
	for _, n := range want {
		p, err := Build(n, Input{})
		if err != nil {
			t.Fatalf("Build(%s): %v", n, err)
		}
		if p.System == "" || p.User == "" {
			t.Fatalf("Build(%s): empty system or user", n)
		}
		if p.Version < 1 {
			t.Fatalf("Build(%s): want version>=1 got=%d", n, p.Version)
		}
	}
	if got := len(Names()); got != len(want) {
		t.Fatalf("Names: want=%d got=%d", len(want), got)
	}
}

func TestBuildIntentAnalysis(t *testing.T) {
	p, err := Build(IntentAnalysis, Input{
		UserMessage: "add a laptop",
		LoyaltyTier: "gold",
		Recent:      []Turn{{Role: "user", Content: "hi"}},
		CartItems:   []CartLine{{Name: "Phone", Quantity: 1, Price: 10, LineTotal: 10}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, needle := range []string{`"add a laptop"`, "Loyalty tier: gold", "user: hi", "Current cart: 1 items"} {
		if !strings.Contains(p.User, needle) {
			t.Fatalf("intent prompt missing %q:\n%s", needle, p.User)
		}
	}
}

func TestBuildDefaults(t *testing.T) {
	p, err := Build(SalesAgentSystem, Input{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.System, "Customer: Customer") || !strings.Contains(p.System, "Loyalty tier: bronze") {
		t.Fatalf("defaults not applied:\n%s", p.System)
	}
	if p.User != "Hello" {
		t.Fatalf("user default: want=%q got=%q", "Hello", p.User)
	}
}

func TestBuildCartMoney(t *testing.T) {
	p, err := Build(CartAgent, Input{
		CartItems: []CartLine{{Name: "Laptop", Quantity: 2, Price: 999.99, LineTotal: 1999.98}},
		Subtotal:  1999.98,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.User, "Laptop (2x $999.99) = $1999.98") {
		t.Fatalf("cart line not rendered:\n%s", p.User)
	}
}

func TestBuildUnknown(t *testing.T) {
	if _, err := Build(Name("nope"), Input{}); err == nil {
		t.Fatalf("expected error for unknown prompt")
	}
}

func TestFingerprintStable(t *testing.T) {
	a, _ := Build(LoyaltyAgent, Input{LoyaltyPoints: 10})
	b, _ := Build(LoyaltyAgent, Input{LoyaltyPoints: 10})
	c, _ := Build(LoyaltyAgent, Input{LoyaltyPoints: 20})
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("fingerprint not stable")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatalf("fingerprint ignores input")
	}
}

package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/platform/llm/llmtest"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestRouteCoversVocabulary(t *testing.T) {
	want := map[conversation.Intent]Target{
		conversation.IntentGreeting:       TargetOrchestrator,
		conversation.IntentBrowse:         TargetRecommendation,
		conversation.IntentSearch:         TargetRecommendation,
		conversation.IntentRecommend:      TargetRecommendation,
		conversation.IntentAddToCart:      TargetCart,
		conversation.IntentCheckout:       TargetCart,
		conversation.IntentInventoryCheck: TargetInventory,
		conversation.IntentLoyalty:        TargetLoyalty,
		conversation.IntentSupport:        TargetOrchestrator,
		conversation.IntentGeneralChat:    TargetOrchestrator,
	}
	for _, i := range conversation.Intents() {
		got := Route(i)
		if got == "" {
			t.Fatalf("Route(%s): empty target", i)
		}
		if got != want[i] {
			t.Fatalf("Route(%s): want=%s got=%s", i, want[i], got)
		}
	}
	if got := Route("teleport"); got != TargetOrchestrator {
		t.Fatalf("Route(unknown): want=%s got=%s", TargetOrchestrator, got)
	}
	if len(Targets()) != len(conversation.Intents()) {
		t.Fatalf("Targets: want=%d got=%d", len(conversation.Intents()), len(Targets()))
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		intent   conversation.Intent
		maxConf  float64
		wantConf float64
	}{
		{name: "valid", in: `{"intent":"checkout","confidence":0.92,"reasoning":"pay"}`, intent: conversation.IntentCheckout, wantConf: 0.92},
		{name: "fenced", in: "```json\n{\"intent\":\"loyalty\",\"confidence\":0.8}\n```", intent: conversation.IntentLoyalty, wantConf: 0.8},
		{name: "uppercase label", in: `{"intent":"Add_To_Cart","confidence":0.7}`, intent: conversation.IntentAddToCart, wantConf: 0.7},
		{name: "missing confidence", in: `{"intent":"browse"}`, intent: conversation.IntentBrowse, wantConf: 0.5},
		{name: "out of range confidence", in: `{"intent":"search","confidence":4}`, intent: conversation.IntentSearch, wantConf: 1},
		{name: "not json", in: "I think they want to check out", intent: conversation.IntentGeneralChat, maxConf: FallbackConfidence},
		{name: "unknown label", in: `{"intent":"refund","confidence":0.99}`, intent: conversation.IntentGeneralChat, maxConf: FallbackConfidence},
		{name: "empty", in: "", intent: conversation.IntentGeneralChat, maxConf: FallbackConfidence},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.in)
			if got.Intent != tc.intent {
				t.Fatalf("intent: want=%s got=%s", tc.intent, got.Intent)
			}
			if tc.maxConf > 0 && got.Confidence > tc.maxConf {
				t.Fatalf("confidence: want<=%v got=%v", tc.maxConf, got.Confidence)
			}
			if tc.wantConf > 0 && got.Confidence != tc.wantConf {
				t.Fatalf("confidence: want=%v got=%v", tc.wantConf, got.Confidence)
			}
		})
	}
}

func TestParseEntities(t *testing.T) {
	got := Parse(`{"intent":"search","confidence":0.9,"entities":[{"type":"product","value":"laptop"},{"bad":1}]}`)
	if len(got.Entities) != 1 || got.Entities[0].Value != "laptop" {
		t.Fatalf("entities: got=%+v", got.Entities)
	}
}

func TestClassifyUsesPrompt(t *testing.T) {
	fake := llmtest.New(`{"intent":"inventory_check","confidence":0.88}`)
	c := NewClassifier(testLogger(t), fake)
	rec := conversation.NewRecord("u1", conversation.ChannelWeb, "s1")
	rec.AddUserMessage("is the laptop in stock?")

	got, err := c.Classify(context.Background(), "is the laptop in stock?", rec)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Intent != conversation.IntentInventoryCheck {
		t.Fatalf("intent: want=%s got=%s", conversation.IntentInventoryCheck, got.Intent)
	}
	if fake.CallCount() != 1 {
		t.Fatalf("calls: want=1 got=%d", fake.CallCount())
	}
	if !strings.Contains(fake.Calls[0][1].Content, "is the laptop in stock?") {
		t.Fatalf("prompt missing user message")
	}
}

func TestClassifyTransportError(t *testing.T) {
	c := NewClassifier(testLogger(t), llmtest.Failing(nil))
	_, err := c.Classify(context.Background(), "hi", nil)
	if !errors.Is(err, llmtest.ErrScripted) {
		t.Fatalf("Classify: want ErrScripted got=%v", err)
	}
}

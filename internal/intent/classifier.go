package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/platform/llm"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
	"github.com/yungbote/salesagent-backend/internal/platform/prompts"
)

const (
	// FallbackConfidence is the ceiling applied when the model output cannot be trusted.
	FallbackConfidence = 0.3
	defaultConfidence  = 0.5
	recentTurns        = 5
)

type Entity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type Result struct {
	Intent     conversation.Intent `json:"intent"`
	Confidence float64             `json:"confidence"`
	Entities   []Entity            `json:"entities,omitempty"`
	Reasoning  string              `json:"reasoning,omitempty"`
}

type Classifier struct {
	log *logger.Logger
	llm llm.Client
}

func NewClassifier(baseLog *logger.Logger, client llm.Client) *Classifier {
	return &Classifier{log: baseLog.With("component", "IntentClassifier"), llm: client}
}

// Classify labels text given the run's record. Transport failures are returned; anything the
// model says is coerced into the vocabulary.
func (c *Classifier) Classify(ctx context.Context, text string, rec *conversation.Record) (Result, error) {
	if c == nil || c.llm == nil {
		return Result{}, fmt.Errorf("intent classifier not configured")
	}
	p, err := prompts.Build(prompts.IntentAnalysis, promptInput(text, rec))
	if err != nil {
		return Result{}, err
	}
	out, err := c.llm.Complete(ctx, []llm.Message{
		{Role: "system", Content: p.System},
		{Role: "user", Content: p.User},
	}, llm.WithJSONResponse(), llm.WithTemperature(0))
	if err != nil {
		return Result{}, err
	}
	res := Parse(out.Content)
	if res.Intent == conversation.IntentGeneralChat && res.Confidence <= FallbackConfidence {
		c.log.Debug("intent fell back to general_chat", "reasoning", res.Reasoning)
	}
	return res, nil
}

// Parse turns raw model output into a Result. It never fails: unparsable output and unknown
// labels both degrade to general_chat at or below FallbackConfidence.
func Parse(content string) Result {
	obj, err := llm.ParseJSONObject(content)
	if err != nil {
		return Result{
			Intent:     conversation.IntentGeneralChat,
			Confidence: FallbackConfidence,
			Reasoning:  "could not parse intent from model output",
		}
	}
	conf, ok := llm.Float(obj, "confidence")
	if !ok {
		conf = defaultConfidence
	}
	conf = clamp01(conf)

	res := Result{
		Confidence: conf,
		Reasoning:  llm.String(obj, "reasoning"),
	}
	for _, e := range llm.Objects(obj, "entities") {
		typ, val := llm.String(e, "type"), llm.String(e, "value")
		if typ != "" || val != "" {
			res.Entities = append(res.Entities, Entity{Type: typ, Value: val})
		}
	}

	label, ok := conversation.ParseIntent(llm.String(obj, "intent"))
	if !ok {
		res.Intent = conversation.IntentGeneralChat
		if res.Confidence > FallbackConfidence {
			res.Confidence = FallbackConfidence
		}
		return res
	}
	res.Intent = label
	return res
}

func promptInput(text string, rec *conversation.Record) prompts.Input {
	in := prompts.Input{UserMessage: text}
	if rec == nil {
		return in
	}
	for _, m := range rec.RecentMessages(recentTurns) {
		in.Recent = append(in.Recent, prompts.Turn{Role: string(m.Role), Content: m.Content})
	}
	for _, it := range rec.Cart {
		in.CartItems = append(in.CartItems, prompts.CartLine{
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
			LineTotal: it.LineTotal(),
		})
	}
	if rec.Customer != nil {
		in.LoyaltyTier = string(rec.Customer.LoyaltyTier)
		in.PastPurchases = len(rec.Customer.PastPurchases)
		in.CustomerName = strings.TrimSpace(rec.Customer.Name)
	}
	return in
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

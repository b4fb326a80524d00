package orchestrator

import (
	"context"
	"strings"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/platform/prompts"
	"github.com/yungbote/salesagent-backend/internal/workers"
)

// generalChat asks the model for a free-text reply grounded in the last few turns and the
// current cart and loyalty state. Any failure yields the canned reply.
func (o *Orchestrator) generalChat(ctx context.Context, rec *conversation.Record) workers.Result {
	if o.llm == nil {
		return workers.Result{Content: ChatFallback, Confidence: fallbackConfidence}
	}
	p, err := prompts.Build(prompts.SalesAgentSystem, chatInput(rec))
	if err != nil {
		o.log.Warn("sales prompt", "error", err)
		return workers.Result{Content: ChatFallback, Confidence: fallbackConfidence}
	}

	cctx, cancel := context.WithTimeout(ctx, o.cfg.LLMTimeout)
	defer cancel()
	text, err := o.llm.GenerateText(cctx, p.System, p.User)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			o.log.Warn("general chat generation failed", "session_id", rec.SessionID, "error", err)
		}
		return workers.Result{Content: ChatFallback, Confidence: fallbackConfidence}
	}
	return workers.Result{Content: strings.TrimSpace(text), Confidence: chatConfidence}
}

func chatInput(rec *conversation.Record) prompts.Input {
	in := prompts.Input{
		SessionID:     rec.SessionID,
		Channel:       string(rec.Channel),
		CurrentIntent: string(rec.CurrentIntent),
		LoyaltyTier:   string(rec.Tier()),
		CustomerName:  rec.CustomerName(""),
	}
	if m, ok := rec.LatestUserMessage(); ok {
		in.UserMessage = m.Content
	}
	for _, m := range rec.RecentMessages(chatHistoryTurns) {
		if m.Role == conversation.RoleSystem {
			continue
		}
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
		in.LoyaltyPoints = rec.Customer.LoyaltyPoints
		in.TotalSpent = rec.Customer.TotalSpent
	}
	return in
}

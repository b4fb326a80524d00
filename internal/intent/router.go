package intent

import "github.com/yungbote/salesagent-backend/internal/conversation"

// Target names a pipeline destination: the orchestrator's inline responder or a worker.
type Target string

const (
	TargetOrchestrator   Target = "sales_orchestrator"
	TargetRecommendation Target = "recommendation"
	TargetCart           Target = "cart"
	TargetInventory      Target = "inventory"
	TargetLoyalty        Target = "loyalty"
)

var routes = map[conversation.Intent]Target{
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

// Route resolves an intent to its target. Unmapped labels go to the orchestrator.
func Route(i conversation.Intent) Target {
	if t, ok := routes[i]; ok {
		return t
	}
	return TargetOrchestrator
}

// Targets returns a copy of the routing table.
func Targets() map[conversation.Intent]Target {
	out := make(map[conversation.Intent]Target, len(routes))
	for k, v := range routes {
		out[k] = v
	}
	return out
}

func (t Target) IsWorker() bool {
	return t != "" && t != TargetOrchestrator
}

package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/salesagent-backend/internal/clients/redis"
	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/intent"
	"github.com/yungbote/salesagent-backend/internal/observability"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/llm"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
	"github.com/yungbote/salesagent-backend/internal/services"
	"github.com/yungbote/salesagent-backend/internal/workers"
)

// Name is the identity the orchestrator uses for inline replies and its own error records.
const Name = string(intent.TargetOrchestrator)

// ErrorHandler labels the worker output produced when the execute step itself blows up.
const ErrorHandler = "error_handler"

const (
	StepContextRetrieved   = "context_retrieved"
	StepIntentAnalyzed     = "intent_analyzed"
	StepRoutingDecided     = "routing_decided"
	StepAgentExecuted      = "agent_executed"
	StepResponseAggregated = "response_aggregated"
	StepConversationSaved  = "conversation_saved"
)

// Run-scoped metadata keys.
const (
	MetaRoutingDecision = "routing_decision"
	MetaFinalResponse   = "final_response"
)

const (
	GreetingTemplate = "Hello %s! 👋 I'm here to help you with your shopping needs. What can I assist you with today?"
	SupportMessage   = "I'm here to help! Please let me know what specific assistance you need - whether it's about products, your account, orders, or anything else. I'll do my best to help resolve your issue."
	ChatFallback     = "I'm here to help you with your shopping needs. What can I assist you with today?"
	ExecutionApology = "I apologize, but I'm having trouble processing your request right now. Please try again or rephrase your question."
	DispatchApology  = "I apologize, but I'm having trouble %s right now. Let me help you directly."
	DefaultResponse  = "Thank you for your message. I'm here to help you with your shopping needs. Current cart: %d items."
)

// dispatchActivity describes what each worker does, for apologies.
var dispatchActivity = map[intent.Target]string{
	intent.TargetCart:           "managing your cart",
	intent.TargetInventory:      "checking product availability",
	intent.TargetLoyalty:        "accessing your loyalty account",
	intent.TargetRecommendation: "finding product recommendations",
}

// DispatchMessage is the apology shown when a worker fails.
func DispatchMessage(worker string) string {
	activity, ok := dispatchActivity[intent.Target(worker)]
	if !ok {
		activity = "with the " + strings.ReplaceAll(worker, "_", " ") + " service"
	}
	return fmt.Sprintf(DispatchApology, activity)
}

const (
	directConfidence   = 1.0
	chatConfidence     = 0.9
	fallbackConfidence = 0.5
	dispatchConfidence = 0.3
	errorConfidence    = 0.1
	chatHistoryTurns   = 5
	publishTimeout     = 2 * time.Second
)

// Publisher receives a summary of every completed run.
type Publisher interface {
	Publish(ctx context.Context, ev redis.TurnEvent) error
}

type Config struct {
	WorkflowTimeout time.Duration
	AgentTimeout    time.Duration
	LLMTimeout      time.Duration
}

func (c Config) withDefaults() Config {
	if c.WorkflowTimeout <= 0 {
		c.WorkflowTimeout = 120 * time.Second
	}
	if c.AgentTimeout <= 0 {
		c.AgentTimeout = 30 * time.Second
	}
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = 45 * time.Second
	}
	return c
}

type Deps struct {
	Customers     services.CustomerService
	Conversations services.ConversationService
	Classifier    *intent.Classifier
	Workers       *workers.Registry
	LLM           llm.Client // nil ok: general chat uses the canned reply
	Events        Publisher  // nil ok
}

type Orchestrator struct {
	log           *logger.Logger
	customers     services.CustomerService
	conversations services.ConversationService
	classifier    *intent.Classifier
	workers       *workers.Registry
	llm           llm.Client
	events        Publisher
	cfg           Config
	steps         []step
}

type step struct {
	name string
	run  func(ctx context.Context, rec *conversation.Record) error
}

func New(baseLog *logger.Logger, deps Deps, cfg Config) *Orchestrator {
	o := &Orchestrator{
		log:           baseLog.With("component", "SalesOrchestrator"),
		customers:     deps.Customers,
		conversations: deps.Conversations,
		classifier:    deps.Classifier,
		workers:       deps.Workers,
		llm:           deps.LLM,
		events:        deps.Events,
		cfg:           cfg.withDefaults(),
	}
	o.steps = []step{
		{name: "retrieve_context", run: o.retrieveContext},
		{name: "analyze_intent", run: o.analyzeIntent},
		{name: "route_decision", run: o.routeDecision},
		{name: "execute_agent", run: o.executeAgent},
		{name: "aggregate_response", run: o.aggregateResponse},
		{name: "save_to_db", run: o.saveToDB},
	}
	return o
}

// ProcessMessage runs the six pipeline steps in order and always hands the record back.
// Failures inside a step land in rec.Errors; nothing is returned as a Go error.
func (o *Orchestrator) ProcessMessage(ctx context.Context, rec *conversation.Record) *conversation.Record {
	if rec == nil {
		rec = conversation.NewRecord("", "", "")
	}
	if rec.Metadata == nil {
		rec.Metadata = map[string]any{}
	}
	if strings.TrimSpace(rec.SessionID) == "" {
		rec.SessionID = uuid.NewString()
	}
	if err := validate(rec); err != nil {
		rec.AddError("Process message failed: "+err.Error(), Name)
		observability.Current().IncPipelineRun("invalid", "")
		return rec
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.WorkflowTimeout)
	defer cancel()
	ctx, span := observability.StartSpan(ctx, "pipeline.process_message",
		attribute.String("session.id", rec.SessionID),
		attribute.String("channel", string(rec.Channel)),
	)
	started := time.Now()

	for _, s := range o.steps {
		o.runStep(ctx, s, rec)
	}

	outcome := "ok"
	if rec.HasErrors() {
		outcome = "degraded"
	}
	observability.Current().IncPipelineRun(outcome, string(rec.CurrentIntent))
	span.SetAttributes(
		attribute.String("intent", string(rec.CurrentIntent)),
		attribute.String("worker", rec.LastWorker),
		attribute.Int("errors", rec.ErrorCount()),
	)
	observability.EndSpan(span, nil)
	o.log.Info("message processed",
		"session_id", rec.SessionID,
		"intent", rec.CurrentIntent,
		"worker", rec.LastWorker,
		"errors", rec.ErrorCount(),
		"duration_ms", time.Since(started).Milliseconds(),
	)

	o.publish(ctx, rec)
	return rec
}

func validate(rec *conversation.Record) error {
	if strings.TrimSpace(rec.UserID) == "" {
		return fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(string(rec.Channel)) == "" {
		return fmt.Errorf("channel is required")
	}
	return nil
}

func (o *Orchestrator) runStep(ctx context.Context, s step, rec *conversation.Record) {
	sctx, span := observability.StartSpan(ctx, "pipeline."+s.name)
	started := time.Now()
	before := rec.ErrorCount()
	err := s.run(sctx, rec)
	status := "ok"
	if err != nil || rec.ErrorCount() > before {
		status = "error"
	}
	observability.Current().ObservePipelineStep(s.name, status, time.Since(started))
	observability.EndSpan(span, err)
}

func (o *Orchestrator) retrieveContext(ctx context.Context, rec *conversation.Record) error {
	defer func() { rec.WorkflowStep = StepContextRetrieved }()
	if o.customers == nil {
		rec.AddSystemMessage("No existing customer profile found")
		return nil
	}
	c, err := o.customers.Get(dbctx.Context{Ctx: ctx}, rec.UserID)
	if err != nil {
		o.log.Warn("customer lookup failed", "user_id", rec.UserID, "error", err)
		rec.AddError("Context retrieval failed", Name)
		rec.AddSystemMessage("Unable to retrieve customer context")
		return err
	}
	if c == nil {
		rec.AddSystemMessage("No existing customer profile found")
		return nil
	}
	rec.MergeCustomer(*c)
	rec.AddSystemMessage("Customer context retrieved successfully")
	return nil
}

func (o *Orchestrator) analyzeIntent(ctx context.Context, rec *conversation.Record) error {
	defer func() { rec.WorkflowStep = StepIntentAnalyzed }()
	if !hasConversation(rec) {
		rec.SetIntent(conversation.IntentGreeting)
		return nil
	}
	msg, ok := rec.LatestUserMessage()
	if !ok {
		rec.SetIntent(conversation.IntentGeneralChat)
		return nil
	}

	res, err := o.classifier.Classify(ctx, msg.Content, rec)
	if err != nil {
		o.log.Warn("intent classification failed", "session_id", rec.SessionID, "error", err)
		rec.SetIntent(conversation.IntentGeneralChat)
		rec.AddError("Intent analysis failed: "+err.Error(), Name)
		return err
	}
	rec.SetIntent(res.Intent)
	rec.AddMessage(conversation.RoleSystem,
		fmt.Sprintf("Intent detected: %s (confidence: %.2f)", res.Intent, res.Confidence),
		Name,
		map[string]any{"entities": res.Entities, "reasoning": res.Reasoning},
	)
	return nil
}

// hasConversation reports whether anything other than pipeline bookkeeping is in the log.
func hasConversation(rec *conversation.Record) bool {
	for _, m := range rec.Messages {
		if m.Role != conversation.RoleSystem {
			return true
		}
	}
	return false
}

func (o *Orchestrator) routeDecision(_ context.Context, rec *conversation.Record) error {
	target := intent.Route(rec.CurrentIntent)
	rec.SetMeta(MetaRoutingDecision, target)
	rec.AddSystemMessage(fmt.Sprintf("Routing to %s for intent: %s", target, rec.CurrentIntent))
	rec.WorkflowStep = StepRoutingDecided
	return nil
}

func (o *Orchestrator) target(rec *conversation.Record) intent.Target {
	if t, ok := rec.Metadata[MetaRoutingDecision].(intent.Target); ok && t != "" {
		return t
	}
	return intent.Route(rec.CurrentIntent)
}

func (o *Orchestrator) executeAgent(ctx context.Context, rec *conversation.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("execute step panic", "session_id", rec.SessionID, "panic", r)
			err = errFromRecover(r)
			rec.AddWorkerOutput(conversation.WorkerOutput{
				Worker:     ErrorHandler,
				Content:    ExecutionApology,
				Data:       map[string]any{"error": err.Error()},
				Confidence: errorConfidence,
			})
			rec.AddError("Agent execution failed: "+err.Error(), Name)
		}
		rec.WorkflowStep = StepAgentExecuted
	}()

	target := o.target(rec)
	started := time.Now()
	var (
		out  workers.Result
		name = string(target)
	)
	w, ok := o.workers.Get(name)
	if !target.IsWorker() || !ok {
		name = Name
		out = o.directResponse(ctx, rec)
	} else {
		var derr error
		out, derr = o.dispatch(ctx, w, rec)
		if derr != nil {
			o.log.Warn("worker dispatch failed", "worker", name, "session_id", rec.SessionID, "error", derr)
			out = workers.Result{
				Content:    DispatchMessage(name),
				Data:       map[string]any{"error": derr.Error()},
				Confidence: dispatchConfidence,
			}
			rec.AddError("Agent execution failed: "+derr.Error(), Name)
			err = derr
		}
	}
	latency := time.Since(started)

	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.Current().ObserveWorker(name, status, latency, out.Confidence)

	rec.AddWorkerOutput(conversation.WorkerOutput{
		Worker:     name,
		Content:    out.Content,
		Data:       out.Data,
		Confidence: out.Confidence,
		Latency:    latency,
	})
	rec.AddMessage(conversation.RoleAssistant, out.Content, name, nil)
	return err
}

// dispatch runs one worker under the agent timeout. A panic inside the worker comes back as an
// error so the caller can apologise on its behalf.
func (o *Orchestrator) dispatch(ctx context.Context, w workers.Worker, rec *conversation.Record) (res workers.Result, err error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.AgentTimeout)
	defer cancel()
	ctx, span := observability.StartSpan(ctx, "worker."+w.Name())
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("worker panic", "worker", w.Name(), "panic", r)
			err = errFromRecover(r)
		}
		observability.EndSpan(span, err)
	}()
	return w.Process(ctx, rec)
}

func (o *Orchestrator) directResponse(ctx context.Context, rec *conversation.Record) workers.Result {
	switch rec.CurrentIntent {
	case conversation.IntentGreeting:
		return workers.Result{
			Content:    fmt.Sprintf(GreetingTemplate, customerName(rec)),
			Confidence: directConfidence,
		}
	case conversation.IntentSupport:
		return workers.Result{Content: SupportMessage, Confidence: directConfidence}
	default:
		return o.generalChat(ctx, rec)
	}
}

func customerName(rec *conversation.Record) string {
	if rec.Customer == nil || strings.TrimSpace(rec.Customer.Name) == "" {
		return "Customer"
	}
	return strings.TrimSpace(rec.Customer.Name)
}

func (o *Orchestrator) aggregateResponse(_ context.Context, rec *conversation.Record) error {
	final := fmt.Sprintf(DefaultResponse, rec.CartItemsCount())
	if out, ok := rec.LastWorkerOutput(); ok {
		final = out.Content
	}
	rec.SetMeta(MetaFinalResponse, final)
	rec.WorkflowStep = StepResponseAggregated
	return nil
}

func (o *Orchestrator) saveToDB(ctx context.Context, rec *conversation.Record) error {
	if o.conversations == nil {
		return nil
	}
	// The log is written even when the run overran its budget.
	sctx := context.WithoutCancel(ctx)
	if err := o.conversations.Save(dbctx.Context{Ctx: sctx}, rec); err != nil {
		o.log.Error("conversation save failed", "session_id", rec.SessionID, "error", err)
		rec.AddError("Database save failed: "+err.Error(), Name)
		return err
	}
	rec.WorkflowStep = StepConversationSaved
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, rec *conversation.Record) {
	if o.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := o.events.Publish(pctx, redis.TurnEvent{
		Event:          redis.EventTurnCompleted,
		SessionID:      rec.SessionID,
		UserID:         rec.UserID,
		Channel:        string(rec.Channel),
		Intent:         string(rec.CurrentIntent),
		Worker:         rec.LastWorker,
		WorkflowStep:   rec.WorkflowStep,
		CartItemsCount: rec.CartItemsCount(),
		ErrorCount:     rec.ErrorCount(),
	})
	if err != nil {
		o.log.Warn("turn event publish failed", "session_id", rec.SessionID, "error", err)
	}
}

// FinalResponse is the user-facing text chosen by the aggregate step.
func FinalResponse(rec *conversation.Record) string {
	if s := rec.MetaString(MetaFinalResponse); s != "" {
		return s
	}
	if out, ok := rec.LastWorkerOutput(); ok {
		return out.Content
	}
	return fmt.Sprintf(DefaultResponse, rec.CartItemsCount())
}

type panicError struct{ val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.val) }

func errFromRecover(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return &panicError{val: v}
}

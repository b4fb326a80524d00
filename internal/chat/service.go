package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/orchestrator"
	pkgerrors "github.com/yungbote/salesagent-backend/internal/pkg/errors"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
	"github.com/yungbote/salesagent-backend/internal/services"
)

// Pipeline runs one conversation turn. *orchestrator.Orchestrator satisfies it.
type Pipeline interface {
	ProcessMessage(ctx context.Context, rec *conversation.Record) *conversation.Record
}

type Request struct {
	UserID    string                 `json:"user_id"`
	Channel   string                 `json:"channel"`
	Message   string                 `json:"message"`
	SessionID string                 `json:"session_id,omitempty"`
	Location  *conversation.Location `json:"location,omitempty"`
	// Context is copied into run metadata and never persisted.
	Context map[string]any `json:"context,omitempty"`
}

type Response struct {
	SessionID            string `json:"session_id"`
	UserID               string `json:"user_id"`
	Response             string `json:"response"`
	CurrentIntent        string `json:"current_intent"`
	LastWorker           string `json:"last_worker"`
	CartItemsCount       int    `json:"cart_items_count"`
	WorkflowStep         string `json:"workflow_step"`
	HasErrors            bool   `json:"has_errors"`
	ErrorCount           int    `json:"error_count"`
	ConversationComplete bool   `json:"conversation_complete"`
}

type Service interface {
	// HandleMessage hydrates the session, runs the pipeline for one user message and maps the
	// resulting record onto the response payload.
	HandleMessage(ctx context.Context, req Request) (*Response, error)
	// Session returns the stored session state. userID, when set, must own the session.
	Session(ctx context.Context, sessionID, userID string) (*types.ChannelSession, error)
}

type service struct {
	log           *logger.Logger
	pipeline      Pipeline
	conversations services.ConversationService
	carts         services.CartService
	maxHistory    int
}

func NewService(baseLog *logger.Logger, pipeline Pipeline, conversations services.ConversationService, carts services.CartService) Service {
	return &service{
		log:           baseLog.With("service", "ChatService"),
		pipeline:      pipeline,
		conversations: conversations,
		carts:         carts,
		maxHistory:    conversation.MaxConversationHistory,
	}
}

func (s *service) HandleMessage(ctx context.Context, req Request) (*Response, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, fmt.Errorf("user_id is required: %w", pkgerrors.ErrInvalidArgument)
	}
	channel, ok := conversation.ParseChannel(req.Channel)
	if !ok {
		return nil, fmt.Errorf("unsupported channel %q: %w", req.Channel, pkgerrors.ErrInvalidArgument)
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, fmt.Errorf("message is required: %w", pkgerrors.ErrInvalidArgument)
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	rec := conversation.NewRecord(userID, channel, sessionID)
	if err := s.hydrate(ctx, rec); err != nil {
		return nil, err
	}
	if req.Location != nil {
		rec.MergeCustomer(conversation.CustomerContext{UserID: userID, Location: req.Location})
	}
	for k, v := range req.Context {
		rec.SetMeta(k, v)
	}
	rec.AddUserMessage(text)
	rec.TrimHistory(s.maxHistory)

	rec = s.pipeline.ProcessMessage(ctx, rec)
	for _, e := range rec.Errors {
		s.log.Debug("turn error", "session_id", rec.SessionID, "worker", e.Worker, "error", e.Message)
	}
	return ToResponse(rec), nil
}

// hydrate loads the last persisted message log of the session and the user's stored cart.
func (s *service) hydrate(ctx context.Context, rec *conversation.Record) error {
	dbc := dbctx.Context{Ctx: ctx}
	hist, err := s.conversations.LatestHistory(dbc, rec.SessionID)
	if err != nil {
		return fmt.Errorf("load session history: %w", err)
	}
	if hist != nil {
		if hist.UserID != "" && hist.UserID != rec.UserID {
			return fmt.Errorf("session %s: %w", rec.SessionID, pkgerrors.ErrForbidden)
		}
		rec.Messages = append(rec.Messages, hist.Messages...)
		rec.TrimHistory(s.maxHistory)
	}

	if s.carts == nil {
		return nil
	}
	items, err := s.carts.Get(dbc, rec.UserID)
	if err != nil {
		// The cart worker resyncs on view, so a missing snapshot is survivable.
		s.log.Warn("cart hydrate failed", "user_id", rec.UserID, "error", err)
		return nil
	}
	rec.ReplaceCart(items)
	return nil
}

func (s *service) Session(ctx context.Context, sessionID, userID string) (*types.ChannelSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required: %w", pkgerrors.ErrInvalidArgument)
	}
	row, err := s.conversations.GetSession(dbctx.Context{Ctx: ctx}, sessionID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, pkgerrors.ErrNotFound)
	}
	if userID = strings.TrimSpace(userID); userID != "" && row.UserID != userID {
		return nil, fmt.Errorf("session %s: %w", sessionID, pkgerrors.ErrForbidden)
	}
	return row, nil
}

// ToResponse maps a finished record onto the client payload.
func ToResponse(rec *conversation.Record) *Response {
	return &Response{
		SessionID:            rec.SessionID,
		UserID:               rec.UserID,
		Response:             orchestrator.FinalResponse(rec),
		CurrentIntent:        string(rec.CurrentIntent),
		LastWorker:           rec.LastWorker,
		CartItemsCount:       rec.CartItemsCount(),
		WorkflowStep:         rec.WorkflowStep,
		HasErrors:            rec.HasErrors(),
		ErrorCount:           rec.ErrorCount(),
		ConversationComplete: true,
	}
}

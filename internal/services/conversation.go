package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/salesagent-backend/internal/conversation"
	"github.com/yungbote/salesagent-backend/internal/data/repos"
	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

// History is the last persisted snapshot of a session.
type History struct {
	SessionID string                 `json:"session_id"`
	UserID    string                 `json:"user_id"`
	Channel   string                 `json:"channel"`
	Messages  []conversation.Message `json:"messages"`
	Metadata  map[string]any         `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
}

type ConversationService interface {
	// Save appends the run's message log and upserts the session row in one transaction.
	Save(dbc dbctx.Context, rec *conversation.Record) error
	LatestHistory(dbc dbctx.Context, sessionID string) (*History, error)
	GetSession(dbc dbctx.Context, sessionID string) (*types.ChannelSession, error)
}

type conversationService struct {
	db        *gorm.DB
	log       *logger.Logger
	logs      repos.ConversationLogRepo
	sessions  repos.ChannelSessionRepo
	dbTimeout time.Duration
}

func NewConversationService(db *gorm.DB, baseLog *logger.Logger, logs repos.ConversationLogRepo, sessions repos.ChannelSessionRepo, dbTimeout time.Duration) ConversationService {
	return &conversationService{
		db:        db,
		log:       baseLog.With("service", "ConversationService"),
		logs:      logs,
		sessions:  sessions,
		dbTimeout: dbTimeout,
	}
}

// LogMetadata is the run summary stored next to the message list.
func LogMetadata(rec *conversation.Record) map[string]any {
	return map[string]any{
		"current_intent":   string(rec.CurrentIntent),
		"last_worker":      rec.LastWorker,
		"cart_items_count": rec.CartItemsCount(),
		"workflow_step":    rec.WorkflowStep,
		"error_count":      rec.ErrorCount(),
		"channel":          string(rec.Channel),
	}
}

func (s *conversationService) Save(dbc dbctx.Context, rec *conversation.Record) error {
	if rec == nil || strings.TrimSpace(rec.SessionID) == "" {
		return fmt.Errorf("record without session id")
	}
	msgs, err := json.Marshal(rec.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	meta, err := json.Marshal(LogMetadata(rec))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	logRow := &types.ConversationLog{
		SessionID: rec.SessionID,
		UserID:    rec.UserID,
		Channel:   string(rec.Channel),
		Messages:  datatypes.JSON(msgs),
		Metadata:  datatypes.JSON(meta),
	}
	sessRow := &types.ChannelSession{
		SessionID:     rec.SessionID,
		UserID:        rec.UserID,
		Channel:       string(rec.Channel),
		CurrentIntent: string(rec.CurrentIntent),
		LastWorker:    rec.LastWorker,
		WorkflowStep:  rec.WorkflowStep,
		IsActive:      rec.IsActive,
	}

	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	run := func(tx dbctx.Context) error {
		if err := s.logs.Create(tx, logRow); err != nil {
			return fmt.Errorf("append conversation log: %w", err)
		}
		if err := s.sessions.Upsert(tx, sessRow); err != nil {
			return fmt.Errorf("upsert channel session: %w", err)
		}
		return nil
	}
	if inner.Tx != nil {
		return run(inner)
	}
	return s.db.WithContext(inner.Ctx).Transaction(func(tx *gorm.DB) error {
		return run(dbctx.Context{Ctx: inner.Ctx, Tx: tx})
	})
}

func (s *conversationService) LatestHistory(dbc dbctx.Context, sessionID string) (*History, error) {
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	row, err := s.logs.LatestBySession(inner, sessionID)
	if err != nil {
		return nil, fmt.Errorf("latest conversation log: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	out := &History{
		SessionID: row.SessionID,
		UserID:    row.UserID,
		Channel:   row.Channel,
		CreatedAt: row.CreatedAt,
	}
	if len(row.Messages) > 0 {
		if err := json.Unmarshal(row.Messages, &out.Messages); err != nil {
			s.log.Warn("unreadable conversation log messages", "session_id", sessionID, "error", err)
			out.Messages = nil
		}
	}
	if len(row.Metadata) > 0 {
		_ = json.Unmarshal(row.Metadata, &out.Metadata)
	}
	return out, nil
}

func (s *conversationService) GetSession(dbc dbctx.Context, sessionID string) (*types.ChannelSession, error) {
	inner, cancel := dbc.WithTimeout(s.dbTimeout)
	defer cancel()
	row, err := s.sessions.GetBySessionID(inner, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get channel session: %w", err)
	}
	return row, nil
}

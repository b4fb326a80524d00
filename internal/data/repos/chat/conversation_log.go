package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type ConversationLogRepo interface {
	Create(dbc dbctx.Context, row *types.ConversationLog) error
	LatestBySession(dbc dbctx.Context, sessionID string) (*types.ConversationLog, error)
	CountBySession(dbc dbctx.Context, sessionID string) (int64, error)
}

type conversationLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationLogRepo(db *gorm.DB, baseLog *logger.Logger) ConversationLogRepo {
	return &conversationLogRepo{db: db, log: baseLog.With("repo", "ConversationLogRepo")}
}

func (r *conversationLogRepo) Create(dbc dbctx.Context, row *types.ConversationLog) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *conversationLogRepo) LatestBySession(dbc dbctx.Context, sessionID string) (*types.ConversationLog, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, nil
	}
	var rows []types.ConversationLog
	if err := t.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *conversationLogRepo) CountBySession(dbc dbctx.Context, sessionID string) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).Model(&types.ConversationLog{}).Where("session_id = ?", sessionID).Count(&n).Error
	return n, err
}

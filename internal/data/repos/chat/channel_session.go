package chat

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/salesagent-backend/internal/domain"
	"github.com/yungbote/salesagent-backend/internal/platform/dbctx"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

type ChannelSessionRepo interface {
	// Upsert writes the row keyed by session_id. Concurrent runs for one session are
	// last-write-wins.
	Upsert(dbc dbctx.Context, row *types.ChannelSession) error
	GetBySessionID(dbc dbctx.Context, sessionID string) (*types.ChannelSession, error)
}

type channelSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChannelSessionRepo(db *gorm.DB, baseLog *logger.Logger) ChannelSessionRepo {
	return &channelSessionRepo{db: db, log: baseLog.With("repo", "ChannelSessionRepo")}
}

func (r *channelSessionRepo) Upsert(dbc dbctx.Context, row *types.ChannelSession) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "channel", "current_intent", "last_worker", "workflow_step", "is_active", "updated_at"}),
		}).
		Create(row).Error
}

func (r *channelSessionRepo) GetBySessionID(dbc dbctx.Context, sessionID string) (*types.ChannelSession, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, nil
	}
	var rows []types.ChannelSession
	if err := t.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

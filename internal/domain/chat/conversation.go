package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConversationLog is one append-only snapshot of a session's message list, written at
// the end of every pipeline run.
type ConversationLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID string    `gorm:"type:text;not null;index" json:"session_id"`
	UserID    string    `gorm:"type:text;not null;index" json:"user_id"`
	Channel   string    `gorm:"type:text;not null" json:"channel"`

	Messages datatypes.JSON `json:"messages"`
	Metadata datatypes.JSON `json:"metadata"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (ConversationLog) TableName() string { return "conversation_logs" }

// ChannelSession is the lightweight per-session state row, keyed by session id.
type ChannelSession struct {
	SessionID     string    `gorm:"type:text;primaryKey" json:"session_id"`
	UserID        string    `gorm:"type:text;not null;index" json:"user_id"`
	Channel       string    `gorm:"type:text;not null" json:"channel"`
	CurrentIntent string    `gorm:"type:text" json:"current_intent"`
	LastWorker    string    `gorm:"type:text" json:"last_worker"`
	WorkflowStep  string    `gorm:"type:text" json:"workflow_step"`
	IsActive      bool      `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;index" json:"updated_at"`
}

func (ChannelSession) TableName() string { return "channel_sessions" }

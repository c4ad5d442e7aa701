package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LogType represents the kind of event a chain log records
type LogType string

const (
	LogTypeCreated     LogType = "CREATED"
	LogTypeSuccess     LogType = "SUCCESS"
	LogTypeBroken      LogType = "BROKEN"
	LogTypePaused      LogType = "PAUSED"
	LogTypeResumed     LogType = "RESUMED"
	LogTypeRuleUpdated LogType = "RULE_UPDATED"
)

// ChainLog is an immutable timestamped event attached to a chain. Logs are
// append-only; a chain's newest-first log sequence is its audit trail.
//
// SUCCESS logs whose metadata carries status "started" are in-progress
// markers written at session start and are excluded from completed views.
type ChainLog struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	ChainID   string         `json:"chain_id" gorm:"not null;type:varchar(64);index:idx_chain_logs_chain"`
	Type      LogType        `json:"type" gorm:"not null;type:varchar(16)"`
	Title     *string        `json:"title,omitempty"`
	Message   string         `json:"message"`
	Duration  *int           `json:"duration,omitempty"` // seconds, SUCCESS only
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null;index"`

	// Foreign Key Relations
	Chain *Chain `json:"chain,omitempty" gorm:"foreignKey:ChainID;constraint:OnDelete:CASCADE"`

	// Many-to-Many Relations
	Tags []*Tag `json:"tags,omitempty" gorm:"many2many:chain_log_tags"`
}

func (l *ChainLog) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// InProgress reports whether the log is a started-session marker rather
// than a completed session record.
func (l *ChainLog) InProgress() bool {
	if l.Type != LogTypeSuccess {
		return false
	}
	meta := ParseLogMetadata(l.Metadata)
	return meta.Status == SessionStatusStarted || meta.Status == SessionStatusInProgress
}

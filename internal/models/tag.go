package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag represents a named label attachable to any chain log. Tags are created
// on demand when a log references an unknown name, and outlive their logs.
type Tag struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name      string    `json:"name" gorm:"not null;unique;index:idx_tags_name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`

	// Many-to-Many Relations
	Logs []*ChainLog `json:"logs,omitempty" gorm:"many2many:chain_log_tags"`
}

func (t *Tag) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

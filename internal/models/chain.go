package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChainStatus represents the lifecycle status of a chain
type ChainStatus string

const (
	ChainStatusActive   ChainStatus = "ACTIVE"
	ChainStatusBroken   ChainStatus = "BROKEN"
	ChainStatusArchived ChainStatus = "ARCHIVED"
)

// Terminal reports whether the status permits no further transitions.
func (s ChainStatus) Terminal() bool {
	return s == ChainStatusBroken || s == ChainStatusArchived
}

// Chain represents one execution of a commitment streak for a context.
// At most one chain per context holds status ACTIVE; breaking a chain is
// terminal and a fresh chain (counter 0) continues the context.
type Chain struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(64)"`
	ContextID       string      `json:"context_id" gorm:"not null;type:varchar(64);index:idx_chains_context_status"`
	Counter         int         `json:"counter" gorm:"not null;default:0"`
	Status          ChainStatus `json:"status" gorm:"not null;type:varchar(16);index:idx_chains_context_status"`
	TotalDuration   int         `json:"total_duration" gorm:"not null;default:0"`   // seconds
	LongestSession  int         `json:"longest_session" gorm:"not null;default:0"`  // seconds
	AverageDuration int         `json:"average_duration" gorm:"not null;default:0"` // seconds
	BrokenAt        *time.Time  `json:"broken_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time   `json:"updated_at" gorm:"not null"`

	// Foreign Key Relations
	Context *SacredContext `json:"context,omitempty" gorm:"foreignKey:ContextID;constraint:OnDelete:CASCADE"`

	// One-to-Many Relations
	Logs []*ChainLog `json:"logs,omitempty" gorm:"foreignKey:ChainID;constraint:OnDelete:CASCADE"`
}

func (c *Chain) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SacredContext represents a named behavioral commitment (e.g. "Deep Work").
// Its Rules and Environment columns hold JSON blobs; use ParseRules and
// ParseEnvironment for typed access.
type SacredContext struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name        string         `json:"name" gorm:"not null;unique"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Color       string         `json:"color"`
	Rules       datatypes.JSON `json:"rules"`
	Environment datatypes.JSON `json:"environment"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"not null"`

	// One-to-Many Relations
	Chains []*Chain `json:"chains,omitempty" gorm:"foreignKey:ContextID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a fresh id unless the caller supplied one.
// Seed contexts keep their human-readable ids ("deep-work", "study", ...).
func (c *SacredContext) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ContextWithActiveChain is a SacredContext annotated with its current
// ACTIVE chain, if any. Used to populate the context-selection view.
type ContextWithActiveChain struct {
	SacredContext
	ActiveChain *Chain `json:"active_chain,omitempty"`
}

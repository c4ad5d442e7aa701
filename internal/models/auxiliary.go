package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuxiliaryStatus represents the state of a reservation
type AuxiliaryStatus string

const (
	AuxiliaryStatusPending   AuxiliaryStatus = "PENDING"
	AuxiliaryStatusFulfilled AuxiliaryStatus = "FULFILLED"
	AuxiliaryStatusFailed    AuxiliaryStatus = "FAILED"
	AuxiliaryStatusCancelled AuxiliaryStatus = "CANCELLED"
)

// AuxiliaryChain is a reservation: a promise to start the target context
// within DelayMinutes. PENDING is the only non-terminal state; the deadline
// is advisory and an external caller decides when to fulfill, fail or cancel
// based on wall-clock time. At most one PENDING reservation per context.
type AuxiliaryChain struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(64)"`
	TargetContextID string          `json:"target_context_id" gorm:"not null;type:varchar(64);index:idx_auxiliary_target_status"`
	DelayMinutes    int             `json:"delay_minutes" gorm:"not null"`
	Deadline        time.Time       `json:"deadline" gorm:"not null"`
	Description     string          `json:"description"`
	Reminder        bool            `json:"reminder" gorm:"not null;default:true"`
	Status          AuxiliaryStatus `json:"status" gorm:"not null;type:varchar(16);index:idx_auxiliary_target_status"`
	FulfilledAt     *time.Time      `json:"fulfilled_at,omitempty"`
	FailedAt        *time.Time      `json:"failed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"not null"`

	// Foreign Key Relations
	TargetContext *SacredContext `json:"target_context,omitempty" gorm:"foreignKey:TargetContextID;constraint:OnDelete:CASCADE"`
}

func (a *AuxiliaryChain) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kutbudev/ctdp/internal/models"
	"gorm.io/gorm"
)

// Hardcoded reservation defaults, used when neither a previous reservation
// nor the context rules supply values.
const (
	defaultReservationDelay   = 15 // minutes
	defaultReservationTrigger = "snap fingers"
)

// ScheduleInput describes a new reservation.
type ScheduleInput struct {
	TargetContextID string `json:"target_context_id"`
	DelayMinutes    int    `json:"delay_minutes,omitempty"`
	Description     string `json:"description,omitempty"`
	Reminder        *bool  `json:"reminder,omitempty"`
}

// AuxiliaryInfo pre-fills the reservation dialog: the user's last-used
// values, falling back to the context rules, then hardcoded defaults.
type AuxiliaryInfo struct {
	DelayMinutes  int    `json:"delay_minutes"`
	Description   string `json:"description"`
	Reminder      bool   `json:"reminder"`
	TriggerAction string `json:"trigger_action"`
}

// ScheduleAuxiliaryTask creates a PENDING reservation against the target
// context. The context's main chain is started (counter 0) when absent, and
// a CREATED log on it records the commitment. One PENDING reservation per
// context.
func (s *ChainService) ScheduleAuxiliaryTask(input ScheduleInput) (string, error) {
	var auxiliaryID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var context models.SacredContext
		if err := tx.First(&context, "id = ?", input.TargetContextID).Error; err != nil {
			return err
		}

		var pending int64
		err := tx.Model(&models.AuxiliaryChain{}).
			Where("target_context_id = ? AND status = ?", context.ID, models.AuxiliaryStatusPending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return ErrReservationPending
		}

		delay := input.DelayMinutes
		if delay <= 0 {
			delay = defaultReservationDelay
		}
		reminder := true
		if input.Reminder != nil {
			reminder = *input.Reminder
		}

		now := time.Now()
		aux := models.AuxiliaryChain{
			TargetContextID: context.ID,
			DelayMinutes:    delay,
			Deadline:        now.Add(time.Duration(delay) * time.Minute),
			Description:     input.Description,
			Reminder:        reminder,
			Status:          models.AuxiliaryStatusPending,
		}
		if err := tx.Create(&aux).Error; err != nil {
			return err
		}

		chain, err := findActiveChain(tx, context.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			chain = &models.Chain{
				ContextID: context.ID,
				Counter:   0,
				Status:    models.ChainStatusActive,
			}
			if err := tx.Create(chain).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		meta, err := models.MarshalMetadata(models.LogMetadata{AuxiliaryID: aux.ID}, nil)
		if err != nil {
			return err
		}
		entry := models.ChainLog{
			ChainID:  chain.ID,
			Type:     models.LogTypeCreated,
			Message:  fmt.Sprintf("Reserved: start %s within %d minutes", context.Name, delay),
			Metadata: meta,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		auxiliaryID = aux.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrReservationPending) {
			return "", err
		}
		log.Printf("schedule reservation for context %s: %v", input.TargetContextID, err)
		return "", fmt.Errorf("failed to schedule auxiliary task: %w", err)
	}
	return auxiliaryID, nil
}

// GetUpcomingAuxiliaryTasks returns the PENDING reservations whose deadline
// has not passed, soonest first, target context joined.
func (s *ChainService) GetUpcomingAuxiliaryTasks() ([]models.AuxiliaryChain, error) {
	var tasks []models.AuxiliaryChain
	err := s.db.Where("status = ? AND deadline >= ?", models.AuxiliaryStatusPending, time.Now()).
		Preload("TargetContext").
		Order("deadline ASC").
		Find(&tasks).Error
	if err != nil {
		log.Printf("list upcoming reservations: %v", err)
		return nil, fmt.Errorf("failed to get upcoming auxiliary tasks: %w", err)
	}
	return tasks, nil
}

// FulfillAuxiliaryTask honors a PENDING reservation: the reservation becomes
// FULFILLED and the target's ACTIVE chain gets a SUCCESS log plus a
// lightweight counter bump (no duration bookkeeping). Best effort: returns
// false for missing or non-PENDING reservations and on storage failure.
func (s *ChainService) FulfillAuxiliaryTask(auxiliaryID string) bool {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var aux models.AuxiliaryChain
		if err := tx.First(&aux, "id = ?", auxiliaryID).Error; err != nil {
			return err
		}
		if aux.Status != models.AuxiliaryStatusPending {
			return fmt.Errorf("reservation is %s, not PENDING", aux.Status)
		}

		now := time.Now()
		aux.Status = models.AuxiliaryStatusFulfilled
		aux.FulfilledAt = &now
		aux.UpdatedAt = now
		if err := tx.Save(&aux).Error; err != nil {
			return err
		}

		chain, err := findActiveChain(tx, aux.TargetContextID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		meta, err := models.MarshalMetadata(models.LogMetadata{AuxiliaryID: aux.ID}, nil)
		if err != nil {
			return err
		}
		entry := models.ChainLog{
			ChainID:  chain.ID,
			Type:     models.LogTypeSuccess,
			Message:  "Reservation honored on time",
			Metadata: meta,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		chain.Counter++
		chain.UpdatedAt = now
		return tx.Save(chain).Error
	})
	if err != nil {
		log.Printf("fulfill reservation %s: %v", auxiliaryID, err)
		return false
	}
	return true
}

// FailAuxiliaryTask marks a missed deadline. Only PENDING reservations can
// fail; terminal ones are left untouched.
func (s *ChainService) FailAuxiliaryTask(auxiliaryID string) bool {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var aux models.AuxiliaryChain
		if err := tx.First(&aux, "id = ?", auxiliaryID).Error; err != nil {
			return err
		}
		if aux.Status != models.AuxiliaryStatusPending {
			return fmt.Errorf("reservation is %s, not PENDING", aux.Status)
		}
		now := time.Now()
		aux.Status = models.AuxiliaryStatusFailed
		aux.FailedAt = &now
		aux.UpdatedAt = now
		return tx.Save(&aux).Error
	})
	if err != nil {
		log.Printf("fail reservation %s: %v", auxiliaryID, err)
		return false
	}
	return true
}

// CancelAuxiliaryTask aborts a PENDING reservation. Reneging on a commitment
// is itself a discipline violation: the target's ACTIVE main chain gets a
// BROKEN log describing the cancellation and is then force-broken.
func (s *ChainService) CancelAuxiliaryTask(auxiliaryID, reason string) bool {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var aux models.AuxiliaryChain
		if err := tx.First(&aux, "id = ?", auxiliaryID).Error; err != nil {
			return err
		}
		if aux.Status != models.AuxiliaryStatusPending {
			return fmt.Errorf("reservation is %s, not PENDING", aux.Status)
		}

		now := time.Now()
		aux.Status = models.AuxiliaryStatusCancelled
		aux.UpdatedAt = now
		if err := tx.Save(&aux).Error; err != nil {
			return err
		}

		chain, err := findActiveChain(tx, aux.TargetContextID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		message := "Reservation cancelled"
		if reason != "" {
			message = fmt.Sprintf("Reservation cancelled: %s", reason)
		}
		meta, err := models.MarshalMetadata(models.LogMetadata{
			AuxiliaryID: aux.ID,
			Reason:      reason,
		}, nil)
		if err != nil {
			return err
		}
		entry := models.ChainLog{
			ChainID:  chain.ID,
			Type:     models.LogTypeBroken,
			Message:  message,
			Metadata: meta,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		_, err = breakChainTx(tx, chain.ID, message, map[string]any{"auxiliaryId": aux.ID})
		return err
	})
	if err != nil {
		log.Printf("cancel reservation %s: %v", auxiliaryID, err)
		return false
	}
	return true
}

// GetContextAuxiliaryInfo returns reservation-dialog defaults for a context.
func (s *ChainService) GetContextAuxiliaryInfo(contextID string) (*AuxiliaryInfo, error) {
	var context models.SacredContext
	if err := s.db.First(&context, "id = ?", contextID).Error; err != nil {
		log.Printf("load context %s for reservation info: %v", contextID, err)
		return nil, fmt.Errorf("failed to get auxiliary info: %w", err)
	}
	rules := context.ParseRules()

	info := AuxiliaryInfo{
		DelayMinutes:  rules.PresetTime,
		Reminder:      true,
		TriggerAction: rules.TriggerAction,
	}
	if info.DelayMinutes <= 0 {
		info.DelayMinutes = defaultReservationDelay
	}
	if info.TriggerAction == "" {
		info.TriggerAction = defaultReservationTrigger
	}

	var last models.AuxiliaryChain
	err := s.db.Where("target_context_id = ?", contextID).
		Order("created_at DESC").
		First(&last).Error
	switch {
	case err == nil:
		info.DelayMinutes = last.DelayMinutes
		info.Description = last.Description
		info.Reminder = last.Reminder
	case !errors.Is(err, gorm.ErrRecordNotFound):
		log.Printf("load last reservation for context %s: %v", contextID, err)
		return nil, fmt.Errorf("failed to get auxiliary info: %w", err)
	}

	return &info, nil
}

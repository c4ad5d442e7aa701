package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kutbudev/ctdp/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskInfo is the optional task snapshot supplied when starting a session.
type TaskInfo struct {
	Title            string   `json:"title,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	ExpectedDuration int      `json:"expected_duration,omitempty"` // seconds
}

// StartResult is the aggregate returned by StartOrContinueChain.
type StartResult struct {
	Chain      *models.Chain `json:"chain"`
	IsNewChain bool          `json:"is_new_chain"`
}

// IncrementInput describes a completed session.
type IncrementInput struct {
	Duration int      `json:"duration"` // seconds
	Title    string   `json:"title,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// BreakInput describes a discipline violation.
type BreakInput struct {
	Reason   string         `json:"reason"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// StartOrContinueChain looks up the context's ACTIVE chain, creating a fresh
// one (counter 0, CREATED log) when none exists. A new chain also gets a
// default reservation derived from the context rules when the rules carry a
// preset delay and no PENDING reservation targets the context yet. When
// taskInfo names a task, a started-session marker log is appended either way.
func (s *ChainService) StartOrContinueChain(contextID string, taskInfo *TaskInfo) (*StartResult, error) {
	var result StartResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		chain, err := findActiveChain(tx, contextID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			var context models.SacredContext
			if err := tx.First(&context, "id = ?", contextID).Error; err != nil {
				return err
			}
			chain = &models.Chain{
				ContextID: contextID,
				Counter:   0,
				Status:    models.ChainStatusActive,
			}
			if err := tx.Create(chain).Error; err != nil {
				return err
			}
			var extra map[string]any
			if taskInfo != nil {
				extra = map[string]any{"taskInfo": taskInfo}
			}
			meta, err := models.MarshalMetadata(models.LogMetadata{
				StartTime: time.Now().Format(time.RFC3339),
			}, extra)
			if err != nil {
				return err
			}
			created := models.ChainLog{
				ChainID:  chain.ID,
				Type:     models.LogTypeCreated,
				Message:  "New chain created",
				Metadata: meta,
			}
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
			if err := ensureDefaultReservation(tx, &context); err != nil {
				return err
			}
			result.IsNewChain = true
		case err != nil:
			return err
		}

		if taskInfo != nil && taskInfo.Title != "" {
			meta, err := models.MarshalMetadata(models.LogMetadata{
				Status:    models.SessionStatusStarted,
				StartTime: time.Now().Format(time.RFC3339),
			}, nil)
			if err != nil {
				return err
			}
			tags, err := connectOrCreateTags(tx, taskInfo.Tags)
			if err != nil {
				return err
			}
			marker := models.ChainLog{
				ChainID:  chain.ID,
				Type:     models.LogTypeSuccess,
				Title:    &taskInfo.Title,
				Metadata: meta,
				Tags:     tags,
			}
			if err := tx.Create(&marker).Error; err != nil {
				return err
			}
		}

		loaded, err := loadChain(tx, chain.ID)
		if err != nil {
			return err
		}
		result.Chain = loaded
		return nil
	})
	if err != nil {
		log.Printf("start or continue chain for context %s: %v", contextID, err)
		return nil, fmt.Errorf("failed to start or continue chain: %w", err)
	}
	return &result, nil
}

// ensureDefaultReservation creates the rules-derived reservation for a newly
// started chain, unless a PENDING one already targets the context.
func ensureDefaultReservation(tx *gorm.DB, context *models.SacredContext) error {
	rules := context.ParseRules()
	if rules.PresetTime <= 0 {
		return nil
	}
	var pending int64
	err := tx.Model(&models.AuxiliaryChain{}).
		Where("target_context_id = ? AND status = ?", context.ID, models.AuxiliaryStatusPending).
		Count(&pending).Error
	if err != nil || pending > 0 {
		return err
	}
	description := rules.TriggerAction
	if description == "" {
		description = "Start " + context.Name
	}
	aux := models.AuxiliaryChain{
		TargetContextID: context.ID,
		DelayMinutes:    rules.PresetTime,
		Deadline:        time.Now().Add(time.Duration(rules.PresetTime) * time.Minute),
		Description:     description,
		Reminder:        true,
		Status:          models.AuxiliaryStatusPending,
	}
	return tx.Create(&aux).Error
}

// IncrementChain records a completed session: counter +1, duration totals
// updated, SUCCESS log appended and the chain's average duration recomputed,
// all in one transaction. This is the "seal stays unbroken" success path.
func (s *ChainService) IncrementChain(chainID string, input IncrementInput) (*models.Chain, error) {
	var updated *models.Chain
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var chain models.Chain
		if err := tx.First(&chain, "id = ?", chainID).Error; err != nil {
			return err
		}
		if chain.Status != models.ChainStatusActive {
			return ErrChainNotActive
		}

		now := time.Now()
		chain.Counter++
		chain.TotalDuration += input.Duration
		if input.Duration > chain.LongestSession {
			chain.LongestSession = input.Duration
		}
		chain.UpdatedAt = now
		if err := tx.Save(&chain).Error; err != nil {
			return err
		}

		prev := chain.Counter - 1
		next := chain.Counter
		meta, err := models.MarshalMetadata(models.LogMetadata{
			PreviousCounter: &prev,
			NewCounter:      &next,
			CompletedAt:     now.Format(time.RFC3339),
		}, nil)
		if err != nil {
			return err
		}
		tags, err := connectOrCreateTags(tx, input.Tags)
		if err != nil {
			return err
		}
		duration := input.Duration
		entry := models.ChainLog{
			ChainID:  chainID,
			Type:     models.LogTypeSuccess,
			Duration: &duration,
			Message:  fmt.Sprintf("Session complete, chain grows to #%d", next),
			Metadata: meta,
			Tags:     tags,
		}
		if input.Title != "" {
			entry.Title = &input.Title
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if err := recomputeAverageDuration(tx, chainID); err != nil {
			return err
		}

		loaded, err := loadChain(tx, chainID)
		if err != nil {
			return err
		}
		updated = loaded
		return nil
	})
	if err != nil {
		log.Printf("increment chain %s: %v", chainID, err)
		return nil, fmt.Errorf("failed to increment chain: %w", err)
	}
	return updated, nil
}

// BreakChain marks a discipline violation: the chain becomes BROKEN
// (terminal) and a BROKEN log carries the reason. The next
// StartOrContinueChain for the same context starts over at counter 0.
func (s *ChainService) BreakChain(chainID string, input BreakInput) (*models.Chain, error) {
	var broken *models.Chain
	err := s.db.Transaction(func(tx *gorm.DB) error {
		chain, err := breakChainTx(tx, chainID, input.Reason, input.Metadata)
		if err != nil {
			return err
		}
		loaded, err := loadChain(tx, chain.ID)
		if err != nil {
			return err
		}
		broken = loaded
		return nil
	})
	if err != nil {
		log.Printf("break chain %s: %v", chainID, err)
		return nil, fmt.Errorf("failed to break chain: %w", err)
	}
	return broken, nil
}

// breakChainTx is the shared break path, also invoked when cancelling a
// reservation force-breaks the linked main chain.
func breakChainTx(tx *gorm.DB, chainID, reason string, extra map[string]any) (*models.Chain, error) {
	var chain models.Chain
	if err := tx.First(&chain, "id = ?", chainID).Error; err != nil {
		return nil, err
	}
	if chain.Status != models.ChainStatusActive {
		return nil, ErrChainNotActive
	}

	now := time.Now()
	chain.Status = models.ChainStatusBroken
	chain.BrokenAt = &now
	chain.UpdatedAt = now
	if err := tx.Save(&chain).Error; err != nil {
		return nil, err
	}

	finalCounter := chain.Counter
	meta, err := models.MarshalMetadata(models.LogMetadata{
		FinalCounter: &finalCounter,
		BrokenAt:     now.Format(time.RFC3339),
	}, extra)
	if err != nil {
		return nil, err
	}
	entry := models.ChainLog{
		ChainID:  chainID,
		Type:     models.LogTypeBroken,
		Message:  reason,
		Metadata: meta,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &chain, nil
}

// GetChain returns a single chain with its context and newest-first logs.
func (s *ChainService) GetChain(chainID string) (*models.Chain, error) {
	chain, err := loadChain(s.db, chainID)
	if err != nil {
		log.Printf("get chain %s: %v", chainID, err)
		return nil, fmt.Errorf("failed to fetch chain: %w", err)
	}
	return chain, nil
}

// ArchiveChain soft-deletes a chain for housekeeping. Best effort: failures
// are logged and reported as false, never raised.
func (s *ChainService) ArchiveChain(chainID string) bool {
	res := s.db.Model(&models.Chain{}).
		Where("id = ?", chainID).
		Updates(map[string]any{
			"status":     models.ChainStatusArchived,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		log.Printf("archive chain %s: %v", chainID, res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		log.Printf("archive chain %s: no such chain", chainID)
		return false
	}
	return true
}

// UpdateTaskTitle renames the in-flight task: the chain's most recent titled
// log is updated in place, or a fresh in-progress marker is created when the
// chain has no titled log yet.
func (s *ChainService) UpdateTaskTitle(chainID, title string) (*models.ChainLog, error) {
	var result *models.ChainLog
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		var entry models.ChainLog
		err := tx.Where("chain_id = ? AND title IS NOT NULL", chainID).
			Order("created_at DESC").
			First(&entry).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			meta, err := models.MarshalMetadata(models.LogMetadata{
				Status: models.SessionStatusInProgress,
			}, nil)
			if err != nil {
				return err
			}
			entry = models.ChainLog{
				ChainID:  chainID,
				Type:     models.LogTypeSuccess,
				Title:    &title,
				Metadata: meta,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			merged := map[string]any{}
			if len(entry.Metadata) > 0 {
				if err := json.Unmarshal(entry.Metadata, &merged); err != nil {
					return err
				}
			}
			merged["titleUpdatedAt"] = now.Format(time.RFC3339)
			data, err := json.Marshal(merged)
			if err != nil {
				return err
			}
			entry.Title = &title
			entry.Metadata = datatypes.JSON(data)
			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
		}
		result = &entry
		return nil
	})
	if err != nil {
		log.Printf("update task title on chain %s: %v", chainID, err)
		return nil, fmt.Errorf("failed to update task title: %w", err)
	}
	return result, nil
}

// UpdateExceptionRules promotes break reasons into permanently allowed
// exceptions: the items are merged into the context's rules blob, and the
// context's ACTIVE chain (if any) gets a RULE_UPDATED audit log.
func (s *ChainService) UpdateExceptionRules(contextID string, exceptionRules []string) (*models.SacredContext, error) {
	var updated *models.SacredContext
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var context models.SacredContext
		if err := tx.First(&context, "id = ?", contextID).Error; err != nil {
			return err
		}
		if err := context.MergeRules(map[string]any{"items": exceptionRules}); err != nil {
			return err
		}
		context.UpdatedAt = time.Now()
		if err := tx.Save(&context).Error; err != nil {
			return err
		}

		chain, err := findActiveChain(tx, contextID)
		if err == nil {
			meta, err := models.MarshalMetadata(models.LogMetadata{}, map[string]any{
				"items": exceptionRules,
			})
			if err != nil {
				return err
			}
			entry := models.ChainLog{
				ChainID:  chain.ID,
				Type:     models.LogTypeRuleUpdated,
				Message:  "Exception rules updated",
				Metadata: meta,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		updated = &context
		return nil
	})
	if err != nil {
		log.Printf("update exception rules for context %s: %v", contextID, err)
		return nil, fmt.Errorf("failed to update exception rules: %w", err)
	}
	return updated, nil
}

// PauseSession appends a PAUSED log to an ACTIVE chain.
func (s *ChainService) PauseSession(chainID, note string) (*models.ChainLog, error) {
	return s.appendSessionLog(chainID, models.LogTypePaused, note, "Session paused")
}

// ResumeSession appends a RESUMED log to an ACTIVE chain.
func (s *ChainService) ResumeSession(chainID, note string) (*models.ChainLog, error) {
	return s.appendSessionLog(chainID, models.LogTypeResumed, note, "Session resumed")
}

func (s *ChainService) appendSessionLog(chainID string, logType models.LogType, note, fallback string) (*models.ChainLog, error) {
	message := note
	if message == "" {
		message = fallback
	}
	var entry models.ChainLog
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var chain models.Chain
		if err := tx.First(&chain, "id = ?", chainID).Error; err != nil {
			return err
		}
		if chain.Status != models.ChainStatusActive {
			return ErrChainNotActive
		}
		entry = models.ChainLog{
			ChainID: chainID,
			Type:    logType,
			Message: message,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		log.Printf("append %s log to chain %s: %v", logType, chainID, err)
		return nil, fmt.Errorf("failed to record %s event: %w", logType, err)
	}
	return &entry, nil
}

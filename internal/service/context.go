package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kutbudev/ctdp/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContextInput carries the editable fields of a sacred context. Nil fields
// are left untouched on update.
type ContextInput struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Icon        *string        `json:"icon,omitempty"`
	Color       *string        `json:"color,omitempty"`
	Rules       map[string]any `json:"rules,omitempty"`
	Environment map[string]any `json:"environment,omitempty"`
}

// SettingsInput carries a partial settings update. Nil fields keep their
// current value.
type SettingsInput struct {
	DefaultSessionDuration *int    `json:"default_session_duration,omitempty"`
	DefaultBreakDuration   *int    `json:"default_break_duration,omitempty"`
	EnableNotifications    *bool   `json:"enable_notifications,omitempty"`
	EnableSounds           *bool   `json:"enable_sounds,omitempty"`
	StrictRuleMode         *bool   `json:"strict_rule_mode,omitempty"`
	AllowRuleUpdates       *bool   `json:"allow_rule_updates,omitempty"`
	Theme                  *string `json:"theme,omitempty"`
	Language               *string `json:"language,omitempty"`
}

// GetContextsWithActiveChains returns every context in creation order, each
// annotated with its ACTIVE chain carrying the 10 most recent logs. Feeds
// the context-selection view; no side effects.
func (s *ChainService) GetContextsWithActiveChains() ([]models.ContextWithActiveChain, error) {
	var contexts []models.SacredContext
	if err := s.db.Order("created_at ASC").Find(&contexts).Error; err != nil {
		log.Printf("list contexts: %v", err)
		return nil, fmt.Errorf("failed to fetch contexts with active chains: %w", err)
	}

	result := make([]models.ContextWithActiveChain, 0, len(contexts))
	for _, ctx := range contexts {
		annotated := models.ContextWithActiveChain{SacredContext: ctx}
		var chain models.Chain
		err := s.db.Where("context_id = ? AND status = ?", ctx.ID, models.ChainStatusActive).
			Preload("Logs", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at DESC").Limit(10)
			}).
			Preload("Logs.Tags").
			First(&chain).Error
		switch {
		case err == nil:
			annotated.ActiveChain = &chain
		case !errors.Is(err, gorm.ErrRecordNotFound):
			log.Printf("load active chain for context %s: %v", ctx.ID, err)
			return nil, fmt.Errorf("failed to fetch contexts with active chains: %w", err)
		}
		result = append(result, annotated)
	}
	return result, nil
}

// GetContextWithAllChains returns one context with its full chain history,
// newest chains first, logs and tags included.
func (s *ChainService) GetContextWithAllChains(contextID string) (*models.SacredContext, error) {
	var context models.SacredContext
	err := s.db.
		Preload("Chains", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Chains.Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Chains.Logs.Tags").
		First(&context, "id = ?", contextID).Error
	if err != nil {
		log.Printf("load context %s with chains: %v", contextID, err)
		return nil, fmt.Errorf("failed to fetch context with chains: %w", err)
	}
	return &context, nil
}

// CreateSacredContext creates a new behavioral commitment.
func (s *ChainService) CreateSacredContext(input ContextInput) (*models.SacredContext, error) {
	if input.Name == nil || *input.Name == "" {
		return nil, fmt.Errorf("failed to create context: name is required")
	}
	rules, err := models.MarshalJSONValue(input.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	environment, err := models.MarshalJSONValue(input.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	context := models.SacredContext{
		Name:        *input.Name,
		Rules:       rules,
		Environment: environment,
	}
	if input.Description != nil {
		context.Description = *input.Description
	}
	if input.Icon != nil {
		context.Icon = *input.Icon
	}
	if input.Color != nil {
		context.Color = *input.Color
	}
	if err := s.db.Create(&context).Error; err != nil {
		log.Printf("create context %q: %v", *input.Name, err)
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	return &context, nil
}

// UpdateSacredContext applies the non-nil fields of input.
func (s *ChainService) UpdateSacredContext(contextID string, input ContextInput) (*models.SacredContext, error) {
	var context models.SacredContext
	if err := s.db.First(&context, "id = ?", contextID).Error; err != nil {
		log.Printf("update context %s: %v", contextID, err)
		return nil, fmt.Errorf("failed to update context: %w", err)
	}

	if input.Name != nil {
		context.Name = *input.Name
	}
	if input.Description != nil {
		context.Description = *input.Description
	}
	if input.Icon != nil {
		context.Icon = *input.Icon
	}
	if input.Color != nil {
		context.Color = *input.Color
	}
	if input.Rules != nil {
		rules, err := models.MarshalJSONValue(input.Rules)
		if err != nil {
			return nil, fmt.Errorf("failed to update context: %w", err)
		}
		context.Rules = rules
	}
	if input.Environment != nil {
		environment, err := models.MarshalJSONValue(input.Environment)
		if err != nil {
			return nil, fmt.Errorf("failed to update context: %w", err)
		}
		context.Environment = environment
	}
	context.UpdatedAt = time.Now()

	if err := s.db.Save(&context).Error; err != nil {
		log.Printf("update context %s: %v", contextID, err)
		return nil, fmt.Errorf("failed to update context: %w", err)
	}
	return &context, nil
}

// DeleteSacredContext removes a context with all of its chains, logs and
// reservations. Refused while a chain is still ACTIVE.
func (s *ChainService) DeleteSacredContext(contextID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var context models.SacredContext
		if err := tx.First(&context, "id = ?", contextID).Error; err != nil {
			return err
		}

		var activeChains int64
		err := tx.Model(&models.Chain{}).
			Where("context_id = ? AND status = ?", contextID, models.ChainStatusActive).
			Count(&activeChains).Error
		if err != nil {
			return err
		}
		if activeChains > 0 {
			return ErrContextHasActiveChain
		}

		// Explicit cascade so behavior does not depend on driver FK support.
		var chainIDs []string
		err = tx.Model(&models.Chain{}).
			Where("context_id = ?", contextID).
			Pluck("id", &chainIDs).Error
		if err != nil {
			return err
		}
		if len(chainIDs) > 0 {
			if err := tx.Exec("DELETE FROM chain_log_tags WHERE chain_log_id IN (SELECT id FROM chain_logs WHERE chain_id IN ?)", chainIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("chain_id IN ?", chainIDs).Delete(&models.ChainLog{}).Error; err != nil {
				return err
			}
			if err := tx.Where("context_id = ?", contextID).Delete(&models.Chain{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("target_context_id = ?", contextID).Delete(&models.AuxiliaryChain{}).Error; err != nil {
			return err
		}
		return tx.Delete(&context).Error
	})
	if err != nil {
		if errors.Is(err, ErrContextHasActiveChain) {
			return err
		}
		log.Printf("delete context %s: %v", contextID, err)
		return fmt.Errorf("failed to delete context: %w", err)
	}
	return nil
}

// GetAllTags lists every tag, name ascending.
func (s *ChainService) GetAllTags() ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.Order("name ASC").Find(&tags).Error; err != nil {
		log.Printf("list tags: %v", err)
		return nil, fmt.Errorf("failed to fetch tags: %w", err)
	}
	return tags, nil
}

// CreateTag upserts a tag by name, refreshing its color.
func (s *ChainService) CreateTag(name, color string) (*models.Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("failed to create tag: name is required")
	}
	tag := models.Tag{Name: name, Color: color}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"color"}),
	}).Create(&tag).Error
	if err != nil {
		log.Printf("create tag %q: %v", name, err)
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	// Re-read so the caller sees the canonical row after an upsert.
	if err := s.db.Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

// GetSettings returns the global settings row, creating it at first call.
func (s *ChainService) GetSettings() (*models.Settings, error) {
	var settings models.Settings
	err := s.db.Where("id = ?", models.DefaultSettingsID).
		Attrs(models.DefaultSettings()).
		FirstOrCreate(&settings).Error
	if err != nil {
		log.Printf("load settings: %v", err)
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}
	return &settings, nil
}

// UpdateSettings applies the non-nil fields of input to the singleton row.
func (s *ChainService) UpdateSettings(input SettingsInput) (*models.Settings, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return nil, err
	}
	if input.DefaultSessionDuration != nil {
		settings.DefaultSessionDuration = *input.DefaultSessionDuration
	}
	if input.DefaultBreakDuration != nil {
		settings.DefaultBreakDuration = *input.DefaultBreakDuration
	}
	if input.EnableNotifications != nil {
		settings.EnableNotifications = *input.EnableNotifications
	}
	if input.EnableSounds != nil {
		settings.EnableSounds = *input.EnableSounds
	}
	if input.StrictRuleMode != nil {
		settings.StrictRuleMode = *input.StrictRuleMode
	}
	if input.AllowRuleUpdates != nil {
		settings.AllowRuleUpdates = *input.AllowRuleUpdates
	}
	if input.Theme != nil {
		settings.Theme = *input.Theme
	}
	if input.Language != nil {
		settings.Language = *input.Language
	}
	settings.UpdatedAt = time.Now()

	if err := s.db.Save(settings).Error; err != nil {
		log.Printf("update settings: %v", err)
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return settings, nil
}

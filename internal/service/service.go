package service

import (
	"math"

	"github.com/kutbudev/ctdp/internal/models"
	"gorm.io/gorm"
)

// ChainService owns the chain lifecycle state machine and the auxiliary
// scheduling subsystem. It mediates between persistent storage and the
// operation boundary: every public method is one named operation.
//
// The service is constructed once at process start with an injected
// database handle; it holds no other state.
type ChainService struct {
	db *gorm.DB
}

// NewChainService creates a service bound to the given database handle.
func NewChainService(db *gorm.DB) *ChainService {
	return &ChainService{db: db}
}

// loadChain fetches a chain with its context and full newest-first log
// trail, tags included. This is the aggregate shape returned to callers.
func loadChain(tx *gorm.DB, chainID string) (*models.Chain, error) {
	var chain models.Chain
	err := tx.
		Preload("Context").
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Logs.Tags").
		First(&chain, "id = ?", chainID).Error
	if err != nil {
		return nil, err
	}
	return &chain, nil
}

// findActiveChain returns the context's ACTIVE chain, or
// gorm.ErrRecordNotFound when none exists.
func findActiveChain(tx *gorm.DB, contextID string) (*models.Chain, error) {
	var chain models.Chain
	err := tx.Where("context_id = ? AND status = ?", contextID, models.ChainStatusActive).
		First(&chain).Error
	if err != nil {
		return nil, err
	}
	return &chain, nil
}

// connectOrCreateTags resolves tag names to rows, creating missing ones.
func connectOrCreateTags(tx *gorm.DB, names []string) ([]*models.Tag, error) {
	tags := make([]*models.Tag, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		var tag models.Tag
		if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	return tags, nil
}

// recomputeAverageDuration persists the mean duration over the chain's
// completed SUCCESS logs, rounded to the nearest second. Started-session
// markers carry no duration and are excluded by the IS NOT NULL filter.
func recomputeAverageDuration(tx *gorm.DB, chainID string) error {
	var row struct {
		N     int64
		Total int64
	}
	err := tx.Model(&models.ChainLog{}).
		Select("COUNT(*) AS n, COALESCE(SUM(duration), 0) AS total").
		Where("chain_id = ? AND type = ? AND duration IS NOT NULL", chainID, models.LogTypeSuccess).
		Scan(&row).Error
	if err != nil || row.N == 0 {
		return err
	}
	avg := int(math.Round(float64(row.Total) / float64(row.N)))
	return tx.Model(&models.Chain{}).
		Where("id = ?", chainID).
		Update("average_duration", avg).Error
}

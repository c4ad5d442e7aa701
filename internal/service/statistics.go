package service

import (
	"fmt"
	"log"
	"time"

	"github.com/kutbudev/ctdp/internal/models"
)

// ChainStatistics is the global rollup across all chains.
type ChainStatistics struct {
	TotalChains            int64   `json:"total_chains"`
	ActiveChains           int64   `json:"active_chains"`
	BrokenChains           int64   `json:"broken_chains"`
	LongestChain           int     `json:"longest_chain"`
	TotalFocusTime         int     `json:"total_focus_time"` // seconds
	AverageSessionDuration float64 `json:"average_session_duration"`
	SessionsToday          int64   `json:"sessions_today"`
	CurrentStreak          int     `json:"current_streak"` // consecutive days
}

// ContextStatistics is the per-context rollup.
type ContextStatistics struct {
	ContextID       string     `json:"context_id"`
	ContextName     string     `json:"context_name"`
	TotalSessions   int        `json:"total_sessions"`
	TotalDuration   int        `json:"total_duration"` // seconds
	AverageDuration float64    `json:"average_duration"`
	LongestChain    int        `json:"longest_chain"`
	CurrentChain    int        `json:"current_chain"`
	SuccessRate     float64    `json:"success_rate"` // percent
	LastSessionDate *time.Time `json:"last_session_date,omitempty"`
}

// GetChainStatistics aggregates across all chains. Sessions count completed
// SUCCESS logs only; started-session markers are excluded.
func (s *ChainService) GetChainStatistics() (*ChainStatistics, error) {
	stats := &ChainStatistics{}

	if err := s.db.Model(&models.Chain{}).Count(&stats.TotalChains).Error; err != nil {
		log.Printf("count chains: %v", err)
		return nil, fmt.Errorf("failed to get chain statistics: %w", err)
	}
	err := s.db.Model(&models.Chain{}).
		Where("status = ?", models.ChainStatusActive).
		Count(&stats.ActiveChains).Error
	if err != nil {
		log.Printf("count active chains: %v", err)
		return nil, fmt.Errorf("failed to get chain statistics: %w", err)
	}
	err = s.db.Model(&models.Chain{}).
		Where("status = ?", models.ChainStatusBroken).
		Count(&stats.BrokenChains).Error
	if err != nil {
		log.Printf("count broken chains: %v", err)
		return nil, fmt.Errorf("failed to get chain statistics: %w", err)
	}

	var chains []models.Chain
	if err := s.db.Find(&chains).Error; err != nil {
		log.Printf("load chains for statistics: %v", err)
		return nil, fmt.Errorf("failed to get chain statistics: %w", err)
	}
	for _, c := range chains {
		if c.Counter > stats.LongestChain {
			stats.LongestChain = c.Counter
		}
		stats.TotalFocusTime += c.TotalDuration
	}

	var totalSessions int64
	err = s.db.Model(&models.ChainLog{}).
		Where("type = ? AND duration IS NOT NULL", models.LogTypeSuccess).
		Count(&totalSessions).Error
	if err != nil {
		log.Printf("count sessions: %v", err)
		return nil, fmt.Errorf("failed to get chain statistics: %w", err)
	}
	if totalSessions > 0 {
		stats.AverageSessionDuration = float64(stats.TotalFocusTime) / float64(totalSessions)
	}

	midnight := localMidnight(time.Now())
	err = s.db.Model(&models.ChainLog{}).
		Where("type = ? AND duration IS NOT NULL AND created_at >= ?", models.LogTypeSuccess, midnight).
		Count(&stats.SessionsToday).Error
	if err != nil {
		log.Printf("count sessions today: %v", err)
		return nil, fmt.Errorf("failed to get chain statistics: %w", err)
	}

	streak, err := s.currentStreak()
	if err != nil {
		log.Printf("compute streak: %v", err)
		return nil, fmt.Errorf("failed to get chain statistics: %w", err)
	}
	stats.CurrentStreak = streak

	return stats, nil
}

// currentStreak counts consecutive local calendar days with at least one
// completed session, ending today or yesterday. A streak is not considered
// broken before the current day is over.
func (s *ChainService) currentStreak() (int, error) {
	var stamps []time.Time
	err := s.db.Model(&models.ChainLog{}).
		Where("type = ? AND duration IS NOT NULL", models.LogTypeSuccess).
		Order("created_at DESC").
		Pluck("created_at", &stamps).Error
	if err != nil {
		return 0, err
	}
	if len(stamps) == 0 {
		return 0, nil
	}

	days := make(map[string]bool, len(stamps))
	for _, ts := range stamps {
		days[ts.Local().Format("2006-01-02")] = true
	}

	day := time.Now()
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
		if !days[day.Format("2006-01-02")] {
			return 0, nil
		}
	}

	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// GetContextStatistics computes the per-context rollup for every context.
func (s *ChainService) GetContextStatistics() ([]ContextStatistics, error) {
	var contexts []models.SacredContext
	err := s.db.
		Preload("Chains").
		Preload("Chains.Logs", "type = ? AND duration IS NOT NULL", models.LogTypeSuccess).
		Order("created_at ASC").
		Find(&contexts).Error
	if err != nil {
		log.Printf("load contexts for statistics: %v", err)
		return nil, fmt.Errorf("failed to get context statistics: %w", err)
	}

	result := make([]ContextStatistics, 0, len(contexts))
	for _, ctx := range contexts {
		cs := ContextStatistics{
			ContextID:   ctx.ID,
			ContextName: ctx.Name,
		}

		successfulChains := 0
		for _, chain := range ctx.Chains {
			cs.TotalDuration += chain.TotalDuration
			if chain.Counter > cs.LongestChain {
				cs.LongestChain = chain.Counter
			}
			if chain.Status == models.ChainStatusActive {
				cs.CurrentChain = chain.Counter
			}
			if chain.Counter > 0 {
				successfulChains++
			}
			for _, entry := range chain.Logs {
				cs.TotalSessions++
				if cs.LastSessionDate == nil || entry.CreatedAt.After(*cs.LastSessionDate) {
					ts := entry.CreatedAt
					cs.LastSessionDate = &ts
				}
			}
		}

		if cs.TotalSessions > 0 {
			cs.AverageDuration = float64(cs.TotalDuration) / float64(cs.TotalSessions)
		}
		if len(ctx.Chains) > 0 {
			cs.SuccessRate = float64(successfulChains) / float64(len(ctx.Chains)) * 100
		}

		result = append(result, cs)
	}
	return result, nil
}

func localMidnight(t time.Time) time.Time {
	year, month, day := t.Local().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

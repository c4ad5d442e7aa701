package service

import (
	"testing"
	"time"

	"github.com/kutbudev/ctdp/internal/models"
)

func TestGetChainStatistics_Empty(t *testing.T) {
	svc := newTestService(t)

	stats, err := svc.GetChainStatistics()
	if err != nil {
		t.Fatalf("GetChainStatistics() error = %v", err)
	}
	if stats.TotalChains != 0 || stats.ActiveChains != 0 || stats.BrokenChains != 0 {
		t.Errorf("chain counts = %d/%d/%d, want zeros", stats.TotalChains, stats.ActiveChains, stats.BrokenChains)
	}
	if stats.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0", stats.CurrentStreak)
	}
}

func TestGetChainStatistics(t *testing.T) {
	svc := newTestService(t)
	work := createTestContext(t, svc, "deep work", nil)
	gym := createTestContext(t, svc, "fitness", nil)

	workChain := startTestChain(t, svc, work.ID)
	if _, err := svc.IncrementChain(workChain.ID, IncrementInput{Duration: 1800}); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := svc.IncrementChain(workChain.ID, IncrementInput{Duration: 3600}); err != nil {
		t.Fatalf("increment: %v", err)
	}

	gymChain := startTestChain(t, svc, gym.ID)
	if _, err := svc.IncrementChain(gymChain.ID, IncrementInput{Duration: 600}); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := svc.BreakChain(gymChain.ID, BreakInput{Reason: "skipped"}); err != nil {
		t.Fatalf("break: %v", err)
	}

	stats, err := svc.GetChainStatistics()
	if err != nil {
		t.Fatalf("GetChainStatistics() error = %v", err)
	}
	if stats.TotalChains != 2 {
		t.Errorf("TotalChains = %d, want 2", stats.TotalChains)
	}
	if stats.ActiveChains != 1 {
		t.Errorf("ActiveChains = %d, want 1", stats.ActiveChains)
	}
	if stats.BrokenChains != 1 {
		t.Errorf("BrokenChains = %d, want 1", stats.BrokenChains)
	}
	if stats.LongestChain != 2 {
		t.Errorf("LongestChain = %d, want 2", stats.LongestChain)
	}
	if stats.TotalFocusTime != 6000 {
		t.Errorf("TotalFocusTime = %d, want 6000", stats.TotalFocusTime)
	}
	if stats.AverageSessionDuration != 2000 {
		t.Errorf("AverageSessionDuration = %v, want 2000", stats.AverageSessionDuration)
	}
	if stats.SessionsToday != 3 {
		t.Errorf("SessionsToday = %d, want 3", stats.SessionsToday)
	}
	if stats.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", stats.CurrentStreak)
	}
}

func TestGetChainStatistics_StreakAcrossDays(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)
	chain := startTestChain(t, svc, ctx.ID)

	if _, err := svc.IncrementChain(chain.ID, IncrementInput{Duration: 600}); err != nil {
		t.Fatalf("increment: %v", err)
	}

	// Backdate extra sessions to the two previous days.
	for _, daysAgo := range []int{1, 2} {
		duration := 600
		entry := models.ChainLog{
			ChainID:  chain.ID,
			Type:     models.LogTypeSuccess,
			Duration: &duration,
			Message:  "backdated session",
		}
		if err := svc.db.Create(&entry).Error; err != nil {
			t.Fatalf("create backdated log: %v", err)
		}
		stamp := time.Now().AddDate(0, 0, -daysAgo)
		err := svc.db.Model(&models.ChainLog{}).
			Where("id = ?", entry.ID).
			Update("created_at", stamp).Error
		if err != nil {
			t.Fatalf("backdate log: %v", err)
		}
	}

	stats, err := svc.GetChainStatistics()
	if err != nil {
		t.Fatalf("GetChainStatistics() error = %v", err)
	}
	if stats.CurrentStreak != 3 {
		t.Errorf("CurrentStreak = %d, want 3 consecutive days", stats.CurrentStreak)
	}
	if stats.SessionsToday != 1 {
		t.Errorf("SessionsToday = %d, backdated sessions must not count", stats.SessionsToday)
	}
}

func TestGetChainStatistics_StartedMarkersExcluded(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)

	// A started session has a marker log but no duration yet.
	if _, err := svc.StartOrContinueChain(ctx.ID, &TaskInfo{Title: "Draft"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	stats, err := svc.GetChainStatistics()
	if err != nil {
		t.Fatalf("GetChainStatistics() error = %v", err)
	}
	if stats.SessionsToday != 0 {
		t.Errorf("SessionsToday = %d, started markers must not count", stats.SessionsToday)
	}
	if stats.AverageSessionDuration != 0 {
		t.Errorf("AverageSessionDuration = %v, want 0 without completed sessions", stats.AverageSessionDuration)
	}
	if stats.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0 without completed sessions", stats.CurrentStreak)
	}
}

func TestGetContextStatistics(t *testing.T) {
	svc := newTestService(t)
	work := createTestContext(t, svc, "deep work", nil)
	gym := createTestContext(t, svc, "fitness", nil)

	// First work chain breaks at 1, the second runs to 2.
	first := startTestChain(t, svc, work.ID)
	if _, err := svc.IncrementChain(first.ID, IncrementInput{Duration: 1200}); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := svc.BreakChain(first.ID, BreakInput{Reason: "phone"}); err != nil {
		t.Fatalf("break: %v", err)
	}
	second := startTestChain(t, svc, work.ID)
	if _, err := svc.IncrementChain(second.ID, IncrementInput{Duration: 1800}); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := svc.IncrementChain(second.ID, IncrementInput{Duration: 600}); err != nil {
		t.Fatalf("increment: %v", err)
	}

	stats, err := svc.GetContextStatistics()
	if err != nil {
		t.Fatalf("GetContextStatistics() error = %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("contexts = %d, want 2", len(stats))
	}

	workStats := stats[0]
	if workStats.ContextID != work.ID {
		t.Fatalf("stats[0] is %s, want the first-created context", workStats.ContextName)
	}
	if workStats.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, want 3", workStats.TotalSessions)
	}
	if workStats.TotalDuration != 3600 {
		t.Errorf("TotalDuration = %d, want 3600", workStats.TotalDuration)
	}
	if workStats.AverageDuration != 1200 {
		t.Errorf("AverageDuration = %v, want 1200", workStats.AverageDuration)
	}
	if workStats.LongestChain != 2 {
		t.Errorf("LongestChain = %d, want 2", workStats.LongestChain)
	}
	if workStats.CurrentChain != 2 {
		t.Errorf("CurrentChain = %d, want 2", workStats.CurrentChain)
	}
	if workStats.SuccessRate != 100 {
		t.Errorf("SuccessRate = %v, want 100 (both chains reached 1+)", workStats.SuccessRate)
	}
	if workStats.LastSessionDate == nil {
		t.Error("LastSessionDate is nil with completed sessions")
	}

	gymStats := stats[1]
	if gymStats.ContextID != gym.ID {
		t.Fatalf("stats[1] is %s, want the fitness context", gymStats.ContextName)
	}
	if gymStats.TotalSessions != 0 {
		t.Errorf("fitness TotalSessions = %d, want 0", gymStats.TotalSessions)
	}
	if gymStats.SuccessRate != 0 {
		t.Errorf("fitness SuccessRate = %v, want 0", gymStats.SuccessRate)
	}
	if gymStats.LastSessionDate != nil {
		t.Error("fitness LastSessionDate set without sessions")
	}
}

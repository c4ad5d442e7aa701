package service

import (
	"errors"
	"testing"

	"github.com/kutbudev/ctdp/internal/models"
)

func TestStartOrContinueChain_CreatesNewChain(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)

	result, err := svc.StartOrContinueChain(ctx.ID, nil)
	if err != nil {
		t.Fatalf("StartOrContinueChain() error = %v", err)
	}
	if !result.IsNewChain {
		t.Error("IsNewChain = false, want true for first start")
	}
	if result.Chain.Counter != 0 {
		t.Errorf("Counter = %d, want 0", result.Chain.Counter)
	}
	if result.Chain.Status != models.ChainStatusActive {
		t.Errorf("Status = %s, want %s", result.Chain.Status, models.ChainStatusActive)
	}
	if got := countLogs(t, svc, result.Chain.ID, models.LogTypeCreated); got != 1 {
		t.Errorf("CREATED logs = %d, want 1", got)
	}
}

func TestStartOrContinueChain_ReusesActiveChain(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)

	first, err := svc.StartOrContinueChain(ctx.ID, nil)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	second, err := svc.StartOrContinueChain(ctx.ID, nil)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}

	if second.IsNewChain {
		t.Error("IsNewChain = true on second start, want false")
	}
	if first.Chain.ID != second.Chain.ID {
		t.Errorf("second start returned chain %s, want %s", second.Chain.ID, first.Chain.ID)
	}

	var active int64
	err = svc.db.Model(&models.Chain{}).
		Where("context_id = ? AND status = ?", ctx.ID, models.ChainStatusActive).
		Count(&active).Error
	if err != nil {
		t.Fatalf("count active chains: %v", err)
	}
	if active != 1 {
		t.Errorf("active chains = %d, want 1", active)
	}
}

func TestStartOrContinueChain_TaskMarker(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)

	result, err := svc.StartOrContinueChain(ctx.ID, &TaskInfo{
		Title: "Write report",
		Tags:  []string{"writing", "urgent"},
	})
	if err != nil {
		t.Fatalf("StartOrContinueChain() error = %v", err)
	}

	var marker *models.ChainLog
	for _, entry := range result.Chain.Logs {
		if entry.Type == models.LogTypeSuccess {
			marker = entry
		}
	}
	if marker == nil {
		t.Fatal("no SUCCESS marker log for started task")
	}
	if marker.Title == nil || *marker.Title != "Write report" {
		t.Errorf("marker title = %v, want \"Write report\"", marker.Title)
	}
	if marker.Duration != nil {
		t.Error("marker has a duration, started sessions must not")
	}
	if !marker.InProgress() {
		t.Error("InProgress() = false for started-session marker")
	}
	if len(marker.Tags) != 2 {
		t.Errorf("marker tags = %d, want 2", len(marker.Tags))
	}
}

func TestStartOrContinueChain_DefaultReservation(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", map[string]any{
		"presetTime":    10,
		"triggerAction": "sit at desk",
	})

	startTestChain(t, svc, ctx.ID)

	var aux models.AuxiliaryChain
	err := svc.db.Where("target_context_id = ? AND status = ?", ctx.ID, models.AuxiliaryStatusPending).
		First(&aux).Error
	if err != nil {
		t.Fatalf("expected a default reservation: %v", err)
	}
	if aux.DelayMinutes != 10 {
		t.Errorf("DelayMinutes = %d, want 10", aux.DelayMinutes)
	}
	if aux.Description != "sit at desk" {
		t.Errorf("Description = %q, want trigger action", aux.Description)
	}

	// Starting again must not stack a second reservation.
	startTestChain(t, svc, ctx.ID)
	var pending int64
	err = svc.db.Model(&models.AuxiliaryChain{}).
		Where("target_context_id = ? AND status = ?", ctx.ID, models.AuxiliaryStatusPending).
		Count(&pending).Error
	if err != nil {
		t.Fatalf("count reservations: %v", err)
	}
	if pending != 1 {
		t.Errorf("pending reservations = %d, want 1", pending)
	}
}

func TestStartOrContinueChain_UnknownContext(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.StartOrContinueChain("no-such-context", nil); err == nil {
		t.Error("StartOrContinueChain() with unknown context, want error")
	}
}

func TestIncrementChain(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)
	chain := startTestChain(t, svc, ctx.ID)

	updated, err := svc.IncrementChain(chain.ID, IncrementInput{Duration: 1800, Title: "Session 1"})
	if err != nil {
		t.Fatalf("IncrementChain() error = %v", err)
	}
	if updated.Counter != 1 {
		t.Errorf("Counter = %d, want 1", updated.Counter)
	}
	if updated.TotalDuration != 1800 {
		t.Errorf("TotalDuration = %d, want 1800", updated.TotalDuration)
	}
	if updated.LongestSession != 1800 {
		t.Errorf("LongestSession = %d, want 1800", updated.LongestSession)
	}
	if updated.AverageDuration != 1800 {
		t.Errorf("AverageDuration = %d, want 1800", updated.AverageDuration)
	}

	updated, err = svc.IncrementChain(chain.ID, IncrementInput{Duration: 3600})
	if err != nil {
		t.Fatalf("second IncrementChain() error = %v", err)
	}
	if updated.Counter != 2 {
		t.Errorf("Counter = %d, want 2", updated.Counter)
	}
	if updated.TotalDuration != 5400 {
		t.Errorf("TotalDuration = %d, want 5400", updated.TotalDuration)
	}
	if updated.LongestSession != 3600 {
		t.Errorf("LongestSession = %d, want 3600", updated.LongestSession)
	}
	if updated.AverageDuration != 2700 {
		t.Errorf("AverageDuration = %d, want 2700", updated.AverageDuration)
	}
	if got := countLogs(t, svc, chain.ID, models.LogTypeSuccess); got != 2 {
		t.Errorf("SUCCESS logs = %d, want 2", got)
	}
}

func TestIncrementChain_NotActive(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)
	chain := startTestChain(t, svc, ctx.ID)

	if _, err := svc.BreakChain(chain.ID, BreakInput{Reason: "phone"}); err != nil {
		t.Fatalf("BreakChain() error = %v", err)
	}
	_, err := svc.IncrementChain(chain.ID, IncrementInput{Duration: 100})
	if !errors.Is(err, ErrChainNotActive) {
		t.Errorf("IncrementChain() on broken chain error = %v, want ErrChainNotActive", err)
	}
}

func TestBreakChain(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)
	chain := startTestChain(t, svc, ctx.ID)
	if _, err := svc.IncrementChain(chain.ID, IncrementInput{Duration: 600}); err != nil {
		t.Fatalf("IncrementChain() error = %v", err)
	}

	broken, err := svc.BreakChain(chain.ID, BreakInput{Reason: "checked phone mid session"})
	if err != nil {
		t.Fatalf("BreakChain() error = %v", err)
	}
	if broken.Status != models.ChainStatusBroken {
		t.Errorf("Status = %s, want %s", broken.Status, models.ChainStatusBroken)
	}
	if broken.BrokenAt == nil {
		t.Error("BrokenAt is nil after break")
	}
	if broken.Counter != 1 {
		t.Errorf("Counter = %d, counter must survive the break", broken.Counter)
	}

	var entry models.ChainLog
	err = svc.db.Where("chain_id = ? AND type = ?", chain.ID, models.LogTypeBroken).First(&entry).Error
	if err != nil {
		t.Fatalf("load BROKEN log: %v", err)
	}
	if entry.Message != "checked phone mid session" {
		t.Errorf("BROKEN log message = %q, want the break reason", entry.Message)
	}

	// The next start begins a fresh chain at zero.
	result, err := svc.StartOrContinueChain(ctx.ID, nil)
	if err != nil {
		t.Fatalf("restart after break: %v", err)
	}
	if !result.IsNewChain {
		t.Error("IsNewChain = false after break, want a fresh chain")
	}
	if result.Chain.ID == chain.ID {
		t.Error("restart reused the broken chain")
	}
	if result.Chain.Counter != 0 {
		t.Errorf("fresh chain Counter = %d, want 0", result.Chain.Counter)
	}
}

func TestBreakChain_AlreadyBroken(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)
	chain := startTestChain(t, svc, ctx.ID)

	if _, err := svc.BreakChain(chain.ID, BreakInput{Reason: "first"}); err != nil {
		t.Fatalf("first break: %v", err)
	}
	_, err := svc.BreakChain(chain.ID, BreakInput{Reason: "second"})
	if !errors.Is(err, ErrChainNotActive) {
		t.Errorf("second break error = %v, want ErrChainNotActive", err)
	}
}

func TestArchiveChain(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)
	chain := startTestChain(t, svc, ctx.ID)

	if !svc.ArchiveChain(chain.ID) {
		t.Fatal("ArchiveChain() = false, want true")
	}
	var got models.Chain
	if err := svc.db.First(&got, "id = ?", chain.ID).Error; err != nil {
		t.Fatalf("load chain: %v", err)
	}
	if got.Status != models.ChainStatusArchived {
		t.Errorf("Status = %s, want %s", got.Status, models.ChainStatusArchived)
	}

	if svc.ArchiveChain("no-such-chain") {
		t.Error("ArchiveChain() = true for unknown chain, want false")
	}
}

func TestUpdateTaskTitle(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)

	result, err := svc.StartOrContinueChain(ctx.ID, &TaskInfo{Title: "Draft"})
	if err != nil {
		t.Fatalf("start with task: %v", err)
	}
	chainID := result.Chain.ID

	entry, err := svc.UpdateTaskTitle(chainID, "Final report")
	if err != nil {
		t.Fatalf("UpdateTaskTitle() error = %v", err)
	}
	if entry.Title == nil || *entry.Title != "Final report" {
		t.Errorf("Title = %v, want \"Final report\"", entry.Title)
	}

	// In-place rename, no extra log rows.
	if got := countLogs(t, svc, chainID, models.LogTypeSuccess); got != 1 {
		t.Errorf("SUCCESS logs = %d, want 1 after in-place rename", got)
	}
}

func TestUpdateTaskTitle_NoTitledLog(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)
	chain := startTestChain(t, svc, ctx.ID)

	entry, err := svc.UpdateTaskTitle(chain.ID, "Late title")
	if err != nil {
		t.Fatalf("UpdateTaskTitle() error = %v", err)
	}
	if entry.Title == nil || *entry.Title != "Late title" {
		t.Errorf("Title = %v, want \"Late title\"", entry.Title)
	}
	if !entry.InProgress() {
		t.Error("fresh titled log is not an in-progress marker")
	}
}

func TestUpdateExceptionRules(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", map[string]any{
		"items":         []string{"no phone"},
		"presetTime":    0,
		"triggerAction": "sit down",
	})
	chain := startTestChain(t, svc, ctx.ID)

	updated, err := svc.UpdateExceptionRules(ctx.ID, []string{"no phone", "bathroom break allowed"})
	if err != nil {
		t.Fatalf("UpdateExceptionRules() error = %v", err)
	}

	rules := updated.ParseRules()
	if len(rules.Items) != 2 {
		t.Fatalf("rules items = %d, want 2", len(rules.Items))
	}
	if rules.Items[1] != "bathroom break allowed" {
		t.Errorf("items[1] = %q, want the new exception", rules.Items[1])
	}
	// Merge keeps unrelated keys.
	if rules.TriggerAction != "sit down" {
		t.Errorf("TriggerAction = %q, merge must preserve other keys", rules.TriggerAction)
	}

	if got := countLogs(t, svc, chain.ID, models.LogTypeRuleUpdated); got != 1 {
		t.Errorf("RULE_UPDATED logs = %d, want 1", got)
	}
}

func TestPauseAndResumeSession(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)
	chain := startTestChain(t, svc, ctx.ID)

	if _, err := svc.PauseSession(chain.ID, "coffee"); err != nil {
		t.Fatalf("PauseSession() error = %v", err)
	}
	if _, err := svc.ResumeSession(chain.ID, ""); err != nil {
		t.Fatalf("ResumeSession() error = %v", err)
	}

	if got := countLogs(t, svc, chain.ID, models.LogTypePaused); got != 1 {
		t.Errorf("PAUSED logs = %d, want 1", got)
	}
	if got := countLogs(t, svc, chain.ID, models.LogTypeResumed); got != 1 {
		t.Errorf("RESUMED logs = %d, want 1", got)
	}

	if _, err := svc.BreakChain(chain.ID, BreakInput{Reason: "done"}); err != nil {
		t.Fatalf("BreakChain() error = %v", err)
	}
	if _, err := svc.PauseSession(chain.ID, ""); !errors.Is(err, ErrChainNotActive) {
		t.Errorf("PauseSession() on broken chain error = %v, want ErrChainNotActive", err)
	}
}

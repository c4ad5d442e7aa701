package service

import (
	"errors"
	"testing"

	"github.com/kutbudev/ctdp/internal/models"
	"gorm.io/gorm"
)

func TestCreateSacredContext(t *testing.T) {
	svc := newTestService(t)
	name := "deep work"
	desc := "no distractions"

	context, err := svc.CreateSacredContext(ContextInput{
		Name:        &name,
		Description: &desc,
		Rules:       map[string]any{"items": []string{"no phone"}},
	})
	if err != nil {
		t.Fatalf("CreateSacredContext() error = %v", err)
	}
	if context.ID == "" {
		t.Error("ID is empty, want a generated id")
	}
	if context.Name != "deep work" {
		t.Errorf("Name = %q, want \"deep work\"", context.Name)
	}
	rules := context.ParseRules()
	if len(rules.Items) != 1 || rules.Items[0] != "no phone" {
		t.Errorf("rules items = %v, want [no phone]", rules.Items)
	}
}

func TestCreateSacredContext_NameRequired(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.CreateSacredContext(ContextInput{}); err == nil {
		t.Error("CreateSacredContext() without name, want error")
	}
	empty := ""
	if _, err := svc.CreateSacredContext(ContextInput{Name: &empty}); err == nil {
		t.Error("CreateSacredContext() with empty name, want error")
	}
}

func TestUpdateSacredContext_PartialUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", map[string]any{"items": []string{"no phone"}})

	icon := "🧠"
	updated, err := svc.UpdateSacredContext(ctx.ID, ContextInput{Icon: &icon})
	if err != nil {
		t.Fatalf("UpdateSacredContext() error = %v", err)
	}
	if updated.Icon != "🧠" {
		t.Errorf("Icon = %q, want the new icon", updated.Icon)
	}
	if updated.Name != "deep work" {
		t.Errorf("Name = %q, untouched fields must survive", updated.Name)
	}
	rules := updated.ParseRules()
	if len(rules.Items) != 1 {
		t.Errorf("rules items = %v, untouched rules must survive", rules.Items)
	}
}

func TestDeleteSacredContext(t *testing.T) {
	svc := newTestService(t)
	ctx := createTestContext(t, svc, "deep work", nil)
	chain := startTestChain(t, svc, ctx.ID)

	// Refused while a chain is ACTIVE.
	err := svc.DeleteSacredContext(ctx.ID)
	if !errors.Is(err, ErrContextHasActiveChain) {
		t.Fatalf("delete with active chain error = %v, want ErrContextHasActiveChain", err)
	}

	if _, err := svc.BreakChain(chain.ID, BreakInput{Reason: "giving up"}); err != nil {
		t.Fatalf("break: %v", err)
	}
	if err := svc.DeleteSacredContext(ctx.ID); err != nil {
		t.Fatalf("DeleteSacredContext() error = %v", err)
	}

	// The whole history goes with the context.
	var contexts, chains, logs int64
	svc.db.Model(&models.SacredContext{}).Count(&contexts)
	svc.db.Model(&models.Chain{}).Count(&chains)
	svc.db.Model(&models.ChainLog{}).Count(&logs)
	if contexts != 0 || chains != 0 || logs != 0 {
		t.Errorf("rows after delete = %d contexts, %d chains, %d logs, want all 0", contexts, chains, logs)
	}
}

func TestDeleteSacredContext_Unknown(t *testing.T) {
	svc := newTestService(t)
	err := svc.DeleteSacredContext("no-such-context")
	if err == nil {
		t.Fatal("DeleteSacredContext() with unknown id, want error")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("error = %v, want wrapped ErrRecordNotFound", err)
	}
}

func TestGetContextsWithActiveChains(t *testing.T) {
	svc := newTestService(t)
	work := createTestContext(t, svc, "deep work", nil)
	gym := createTestContext(t, svc, "fitness", nil)
	startTestChain(t, svc, work.ID)

	contexts, err := svc.GetContextsWithActiveChains()
	if err != nil {
		t.Fatalf("GetContextsWithActiveChains() error = %v", err)
	}
	if len(contexts) != 2 {
		t.Fatalf("contexts = %d, want 2", len(contexts))
	}
	if contexts[0].ID != work.ID {
		t.Error("contexts not in creation order")
	}
	if contexts[0].ActiveChain == nil {
		t.Error("deep work ActiveChain is nil, chain was started")
	}
	if contexts[1].ActiveChain != nil {
		t.Errorf("%s ActiveChain set, no chain was started", gym.Name)
	}
}

func TestCreateTag_UpsertByName(t *testing.T) {
	svc := newTestService(t)

	tag, err := svc.CreateTag("urgent", "#ff0000")
	if err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	again, err := svc.CreateTag("urgent", "#00ff00")
	if err != nil {
		t.Fatalf("second CreateTag() error = %v", err)
	}

	if tag.ID != again.ID {
		t.Errorf("upsert created a second row: %s vs %s", tag.ID, again.ID)
	}
	if again.Color != "#00ff00" {
		t.Errorf("Color = %q, want refreshed color", again.Color)
	}

	tags, err := svc.GetAllTags()
	if err != nil {
		t.Fatalf("GetAllTags() error = %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("tags = %d, want 1", len(tags))
	}
}

func TestSettings_DefaultsAndPartialUpdate(t *testing.T) {
	svc := newTestService(t)

	settings, err := svc.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if settings.ID != models.DefaultSettingsID {
		t.Errorf("ID = %q, want %q", settings.ID, models.DefaultSettingsID)
	}
	if settings.DefaultSessionDuration != 3600 {
		t.Errorf("DefaultSessionDuration = %d, want 3600", settings.DefaultSessionDuration)
	}

	theme := "dark"
	updated, err := svc.UpdateSettings(SettingsInput{Theme: &theme})
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if updated.Theme != "dark" {
		t.Errorf("Theme = %q, want \"dark\"", updated.Theme)
	}
	if updated.DefaultSessionDuration != 3600 {
		t.Errorf("DefaultSessionDuration = %d, untouched fields must survive", updated.DefaultSessionDuration)
	}

	// Still a single row.
	var rows int64
	svc.db.Model(&models.Settings{}).Count(&rows)
	if rows != 1 {
		t.Errorf("settings rows = %d, want 1", rows)
	}
}

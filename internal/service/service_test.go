package service

import (
	"path/filepath"
	"testing"

	"github.com/kutbudev/ctdp/internal/config"
	"github.com/kutbudev/ctdp/internal/models"
	"github.com/kutbudev/ctdp/internal/repository"
)

func newTestService(t *testing.T) *ChainService {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "ctdp_test.db"),
		},
	}
	db, err := repository.Open(cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		repository.Close(db)
	})
	return NewChainService(db)
}

func createTestContext(t *testing.T, svc *ChainService, name string, rules map[string]any) *models.SacredContext {
	t.Helper()
	input := ContextInput{Name: &name}
	if rules != nil {
		input.Rules = rules
	}
	context, err := svc.CreateSacredContext(input)
	if err != nil {
		t.Fatalf("create context %q: %v", name, err)
	}
	return context
}

func startTestChain(t *testing.T, svc *ChainService, contextID string) *models.Chain {
	t.Helper()
	result, err := svc.StartOrContinueChain(contextID, nil)
	if err != nil {
		t.Fatalf("start chain on context %s: %v", contextID, err)
	}
	return result.Chain
}

func countLogs(t *testing.T, svc *ChainService, chainID string, logType models.LogType) int64 {
	t.Helper()
	var n int64
	err := svc.db.Model(&models.ChainLog{}).
		Where("chain_id = ? AND type = ?", chainID, logType).
		Count(&n).Error
	if err != nil {
		t.Fatalf("count %s logs: %v", logType, err)
	}
	return n
}

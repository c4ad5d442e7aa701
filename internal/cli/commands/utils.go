package commands

import (
	"fmt"

	"github.com/kutbudev/ctdp/internal/config"
	"github.com/kutbudev/ctdp/internal/repository"
	"github.com/kutbudev/ctdp/internal/service"
)

// Helper functions shared across commands

// withService opens the configured database, makes sure baseline rows exist
// and hands a ready service to the command body.
func withService(fn func(svc *service.ChainService) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := repository.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repository.Close(db)

	if err := repository.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if err := repository.EnsureDefaults(db); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}
	return fn(service.NewChainService(db))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatSeconds(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm", seconds/60)
	}
	return fmt.Sprintf("%dh%02dm", seconds/3600, (seconds%3600)/60)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

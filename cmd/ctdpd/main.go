package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kutbudev/ctdp/internal/api"
	"github.com/kutbudev/ctdp/internal/config"
	"github.com/kutbudev/ctdp/internal/repository"
	"github.com/kutbudev/ctdp/internal/service"
	"gorm.io/gorm"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "ctdpd",
		Short: "CTDP daemon - HTTP API and database maintenance for the discipline tracker.",
		Long: `ctdpd hosts the chain-of-tasks discipline protocol over HTTP and carries
the schema migration and seeding tasks for its database.`,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSeedCmd())

	if err := rootCmd.Execute(); err != nil {
		// Cobra prints the error, so we just need to exit.
		os.Exit(1)
	}
}

func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := repository.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, db, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			defer repository.Close(db)

			if err := repository.Migrate(db); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			if err := repository.EnsureDefaults(db); err != nil {
				return fmt.Errorf("seed defaults: %w", err)
			}

			router := api.NewRouter(service.NewChainService(db))
			log.Printf("listening on %s", cfg.Server.Addr())
			return router.Run(cfg.Server.Addr())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer repository.Close(db)

			if err := repository.Migrate(db); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			fmt.Println("✅ Schema is up to date")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write default settings, contexts and tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer repository.Close(db)

			if err := repository.Migrate(db); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			if err := repository.EnsureDefaults(db); err != nil {
				return fmt.Errorf("seed defaults: %w", err)
			}
			fmt.Println("✅ Defaults seeded")
			return nil
		},
	}
}

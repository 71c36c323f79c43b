package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/steviethebear/codex-machina-sub002/internal/config"
	"github.com/steviethebear/codex-machina-sub002/internal/database"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"

	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "codex",
	Short:         "Codex reward ledger backend",
	Long:          "Codex backend: notes, links, quests and the XP/SP reward ledger behind them.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides CONFIG_PATH env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(promoteCmd)
}

// resolveConfigPath returns --config, then CONFIG_PATH, then the default location.
func resolveConfigPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}

// bootstrap loads config, initialises logging and opens the database.
func bootstrap(cmd *cobra.Command) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(resolveConfigPath(cmd))
	if err != nil {
		return nil, nil, errors.New(errors.ErrConfigLoad, "failed to load config", err)
	}

	if err := logger.Init(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, errors.New(errors.ErrDatabaseConnect, "failed to connect to database", err)
	}
	return cfg, db, nil
}

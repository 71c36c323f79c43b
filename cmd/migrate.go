package main

import (
	"github.com/spf13/cobra"
	"github.com/steviethebear/codex-machina-sub002/internal/database"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/internal/service"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema and seed the achievement catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return err
		}

		catalog := service.DefaultCatalog()
		if err := repository.NewAchievementRepository(db).Seed(cmd.Context(), catalog); err != nil {
			return err
		}

		logger.WithFields(map[string]interface{}{
			"achievements": len(catalog),
		}).Info("Achievement catalog seeded")
		return nil
	},
}

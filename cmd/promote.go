package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/steviethebear/codex-machina-sub002/internal/database"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/internal/service"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <user-id>",
	Short: "Grant the admin role to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}

		_, db, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer database.Close(db)

		users := service.NewUserService(db, repository.NewUserRepository(db), repository.NewStatsRepository(db))
		if err := users.Promote(cmd.Context(), userID); err != nil {
			return err
		}

		fmt.Printf("user %s is now an admin\n", userID)
		return nil
	},
}

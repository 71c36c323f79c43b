package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/steviethebear/codex-machina-sub002/internal/database"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/internal/service"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repair character stats that drifted from the ledger",
	Long: `Repair character stats that drifted from the ledger.

Safe to run while serve is up: the run takes a Postgres advisory lock shared with
the scheduled reconciliation and fails with CONFLICT if that job is in progress.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer database.Close(db)

		svc := service.NewReconcileService(
			repository.NewStatsRepository(db),
			repository.NewLedgerRepository(db),
			database.NewAdvisoryLock(db, database.ReconcileLockKey),
		)
		report, err := svc.Reconcile(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("checked %d, repaired %d\n", report.Checked, report.Repaired)
		return nil
	},
}

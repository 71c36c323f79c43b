package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"
)

const reconcileBatchSize = 200

type ReconcileReport struct {
	Checked  int `json:"checked"`
	Repaired int `json:"repaired"`
}

// RunLock keeps a job from running in two processes at once. TryRun reports false
// without calling fn when the job is already running elsewhere.
type RunLock interface {
	TryRun(ctx context.Context, fn func(ctx context.Context) error) (bool, error)
}

// ReconcileService checks character_stats against the stats-applied ledger.
type ReconcileService struct {
	statsRepo  *repository.StatsRepository
	ledgerRepo *repository.LedgerRepository
	lock       RunLock
}

// NewReconcileService takes an optional lock; nil runs without cross-process exclusion.
func NewReconcileService(statsRepo *repository.StatsRepository, ledgerRepo *repository.LedgerRepository, lock RunLock) *ReconcileService {
	return &ReconcileService{
		statsRepo:  statsRepo,
		ledgerRepo: ledgerRepo,
		lock:       lock,
	}
}

// Reconcile walks every stats row in pages and overwrites rows that drifted from the
// sum of the user's stats-applied ledger entries. It fails with CONFLICT when another
// process holds the reconcile lock.
func (s *ReconcileService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	if s.lock == nil {
		return s.reconcileAll(ctx)
	}

	var report *ReconcileReport
	ran, err := s.lock.TryRun(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.reconcileAll(ctx)
		return err
	})
	if !ran {
		if err != nil {
			return nil, errors.New(errors.ErrDatabase, "failed to take reconcile lock", err)
		}
		return nil, errors.New(errors.ErrConflict, "reconciliation already running", nil)
	}
	return report, err
}

func (s *ReconcileService) reconcileAll(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}

	for offset := 0; ; offset += reconcileBatchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		batch, err := s.statsRepo.GetPaginated(ctx, offset, reconcileBatchSize)
		if err != nil {
			return report, errors.New(errors.ErrDatabase, "failed to load stats", err)
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			repaired, err := s.reconcileOne(ctx, &batch[i])
			if err != nil {
				logger.WithFields(logrus.Fields{
					"user_id": batch[i].UserID,
					"error":   err,
				}).Error("Failed to reconcile stats")
				continue
			}
			report.Checked++
			if repaired {
				report.Repaired++
			}
		}

		if len(batch) < reconcileBatchSize {
			break
		}
	}

	logger.WithFields(logrus.Fields{
		"checked":  report.Checked,
		"repaired": report.Repaired,
	}).Info("Stats reconciliation finished")
	return report, nil
}

func (s *ReconcileService) reconcileOne(ctx context.Context, stats *models.CharacterStats) (bool, error) {
	totals, err := s.ledgerRepo.SumByUser(ctx, stats.UserID, true)
	if err != nil {
		return false, err
	}

	expected := models.CharacterStats{
		UserID:       stats.UserID,
		XPTotal:      totals.XP,
		SPReading:    totals.SPReading,
		SPThinking:   totals.SPThinking,
		SPWriting:    totals.SPWriting,
		SPEngagement: totals.SPEngagement,
	}
	if expected.XPTotal == stats.XPTotal && expected.SkillPoints() == stats.SkillPoints() {
		return false, nil
	}

	logger.WithFields(logrus.Fields{
		"user_id":     stats.UserID,
		"xp_stored":   stats.XPTotal,
		"xp_expected": expected.XPTotal,
		"sp_stored":   stats.SkillPoints(),
		"sp_expected": expected.SkillPoints(),
	}).Warn("Stats drifted from ledger, repairing")

	if err := s.statsRepo.Overwrite(ctx, &expected); err != nil {
		return false, err
	}
	return true, nil
}

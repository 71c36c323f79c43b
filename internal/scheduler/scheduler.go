package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/steviethebear/codex-machina-sub002/internal/config"
	"github.com/steviethebear/codex-machina-sub002/internal/service"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"
)

const hubSweepBatch = 100

var log = logger.Component("scheduler")

// Reconciler and HubSweeper are the two maintenance jobs the scheduler drives.
type Reconciler interface {
	Reconcile(ctx context.Context) (*service.ReconcileReport, error)
}

type HubSweeper interface {
	SweepMissedHubs(ctx context.Context, limit int) (int, error)
}

type RewardScheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	sweeper    HubSweeper
	cfg        config.SchedulerConfig

	// reconcileMu keeps a manual run from overlapping the scheduled one.
	reconcileMu sync.Mutex
}

func NewRewardScheduler(reconciler Reconciler, sweeper HubSweeper, cfg config.SchedulerConfig) *RewardScheduler {
	return &RewardScheduler{
		cron:       cron.New(cron.WithSeconds()),
		reconciler: reconciler,
		sweeper:    sweeper,
		cfg:        cfg,
	}
}

func (s *RewardScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.ReconcileCron, s.reconcile); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.HubSweepCron, s.sweepHubs); err != nil {
		return err
	}

	s.cron.Start()
	log.WithFields(map[string]interface{}{
		"reconcile_cron": s.cfg.ReconcileCron,
		"hub_sweep_cron": s.cfg.HubSweepCron,
	}).Info("Reward scheduler started")
	return nil
}

func (s *RewardScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Reward scheduler stopped")
}

func (s *RewardScheduler) reconcile() {
	_, err := s.TriggerReconcile(context.Background())
	switch {
	case errors.Is(err, errors.ErrConflict):
		log.Info("Reconciliation running in another process, skipped")
	case err != nil:
		log.WithField("error", err).Error("Scheduled reconciliation failed")
	}
}

func (s *RewardScheduler) sweepHubs() {
	granted, err := s.sweeper.SweepMissedHubs(context.Background(), hubSweepBatch)
	if err != nil {
		log.WithField("error", err).Error("Scheduled hub sweep failed")
		return
	}
	log.WithField("granted", granted).Debug("Hub sweep completed")
}

// TriggerReconcile runs reconciliation now, waiting for any run already in progress.
func (s *RewardScheduler) TriggerReconcile(ctx context.Context) (*service.ReconcileReport, error) {
	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	log.Info("Starting stats reconciliation")
	return s.reconciler.Reconcile(ctx)
}

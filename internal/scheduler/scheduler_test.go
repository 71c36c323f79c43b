package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/steviethebear/codex-machina-sub002/internal/config"
	"github.com/steviethebear/codex-machina-sub002/internal/service"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingReconciler records how many runs overlapped.
type countingReconciler struct {
	calls     atomic.Int32
	active    atomic.Int32
	maxActive atomic.Int32
}

func (r *countingReconciler) Reconcile(ctx context.Context) (*service.ReconcileReport, error) {
	r.calls.Add(1)
	now := r.active.Add(1)
	for {
		seen := r.maxActive.Load()
		if now <= seen || r.maxActive.CompareAndSwap(seen, now) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	r.active.Add(-1)
	return &service.ReconcileReport{Checked: 1}, nil
}

type recordingSweeper struct {
	limits []int
}

func (s *recordingSweeper) SweepMissedHubs(ctx context.Context, limit int) (int, error) {
	s.limits = append(s.limits, limit)
	return 0, nil
}

func validConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:       true,
		ReconcileCron: "0 0 3 * * *",
		HubSweepCron:  "0 */10 * * * *",
	}
}

func TestTriggerReconcileNeverOverlaps(t *testing.T) {
	reconciler := &countingReconciler{}
	s := NewRewardScheduler(reconciler, &recordingSweeper{}, validConfig())

	const runs = 8
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := s.TriggerReconcile(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 1, report.Checked)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(runs), reconciler.calls.Load())
	assert.Equal(t, int32(1), reconciler.maxActive.Load())
}

func TestStartRejectsInvalidCron(t *testing.T) {
	cfg := validConfig()
	cfg.ReconcileCron = "not a cron"
	s := NewRewardScheduler(&countingReconciler{}, &recordingSweeper{}, cfg)
	assert.Error(t, s.Start())

	cfg = validConfig()
	cfg.HubSweepCron = "every tuesday"
	s = NewRewardScheduler(&countingReconciler{}, &recordingSweeper{}, cfg)
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := NewRewardScheduler(&countingReconciler{}, &recordingSweeper{}, validConfig())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}

func TestSweepHubsUsesBatchLimit(t *testing.T) {
	sweeper := &recordingSweeper{}
	s := NewRewardScheduler(&countingReconciler{}, sweeper, validConfig())

	s.sweepHubs()
	assert.Equal(t, []int{hubSweepBatch}, sweeper.limits)
}

func TestScheduledReconcileRunsReconciler(t *testing.T) {
	reconciler := &countingReconciler{}
	s := NewRewardScheduler(reconciler, &recordingSweeper{}, validConfig())

	s.reconcile()
	assert.Equal(t, int32(1), reconciler.calls.Load())
}

type busyReconciler struct{}

func (busyReconciler) Reconcile(ctx context.Context) (*service.ReconcileReport, error) {
	return nil, errors.New(errors.ErrConflict, "reconciliation already running", nil)
}

func TestTriggerReconcileSurfacesConflict(t *testing.T) {
	s := NewRewardScheduler(busyReconciler{}, &recordingSweeper{}, validConfig())

	_, err := s.TriggerReconcile(context.Background())
	assert.True(t, errors.Is(err, errors.ErrConflict))

	// the cron entry treats a held lock as a skipped run
	s.reconcile()
}

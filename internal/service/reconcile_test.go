package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileRepairsDrift(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	healthy := env.newUser(t, "alice")
	drifted := env.newUser(t, "bob")

	_, err := env.bonuses.AwardXP(ctx, healthy, Bonus{Type: models.BonusStreak, XP: 10, SP: models.SkillPoints{Reading: 2}}, nil)
	require.NoError(t, err)
	_, err = env.bonuses.AwardXP(ctx, drifted, Bonus{Type: models.BonusCombo, XP: 30, SP: models.SkillPoints{Writing: 4}}, nil)
	require.NoError(t, err)
	// ledger-only points are not part of the stats total
	_, err = env.ledger.AwardPoints(ctx, drifted, 500, "note_created", nil)
	require.NoError(t, err)

	require.NoError(t, env.statsRepo.Overwrite(ctx, &models.CharacterStats{UserID: drifted, XPTotal: 999, SPWriting: 1}))

	report, err := env.reconcile.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Repaired)

	stats := env.stats(t, drifted)
	assert.Equal(t, int64(30), stats.XPTotal)
	assert.Equal(t, models.SkillPoints{Writing: 4}, stats.SkillPoints())

	report, err = env.reconcile.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Repaired)
}

// fixedLock reports the lock as held or free without touching a database.
type fixedLock struct {
	held bool
	err  error
}

func (l *fixedLock) TryRun(ctx context.Context, fn func(ctx context.Context) error) (bool, error) {
	if l.err != nil || l.held {
		return false, l.err
	}
	return true, fn(ctx)
}

func TestReconcileSkipsWhenLockHeld(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")
	require.NoError(t, env.statsRepo.Overwrite(ctx, &models.CharacterStats{UserID: user, XPTotal: 999}))

	held := NewReconcileService(env.statsRepo, env.ledgerRepo, &fixedLock{held: true})
	report, err := held.Reconcile(ctx)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.Equal(t, int64(999), env.stats(t, user).XPTotal)

	broken := NewReconcileService(env.statsRepo, env.ledgerRepo, &fixedLock{err: stderrors.New("connection lost")})
	_, err = broken.Reconcile(ctx)
	assert.True(t, errors.Is(err, errors.ErrDatabase))

	free := NewReconcileService(env.statsRepo, env.ledgerRepo, &fixedLock{})
	report, err = free.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Repaired)
	assert.Zero(t, env.stats(t, user).XPTotal)
}

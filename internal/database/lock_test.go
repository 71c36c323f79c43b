package database_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/steviethebear/codex-machina-sub002/internal/database"
	"github.com/steviethebear/codex-machina-sub002/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvisoryLockRunsWithoutPostgres(t *testing.T) {
	db := testutil.OpenTestDB(t)
	lock := database.NewAdvisoryLock(db, database.ReconcileLockKey)

	calls := 0
	ran, err := lock.TryRun(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, calls)
}

func TestAdvisoryLockReturnsJobError(t *testing.T) {
	db := testutil.OpenTestDB(t)
	lock := database.NewAdvisoryLock(db, database.ReconcileLockKey)
	boom := stderrors.New("boom")

	ran, err := lock.TryRun(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.True(t, ran)
	assert.ErrorIs(t, err, boom)
}

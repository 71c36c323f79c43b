package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hubFixture is a hub candidate note owned by owner plus helpers to grow its link count.
type hubFixture struct {
	env   *testEnv
	owner uuid.UUID
	hub   *models.Note
}

func newHubFixture(t *testing.T) *hubFixture {
	env := newTestEnv(t)
	owner := env.newUser(t, "alice")
	return &hubFixture{env: env, owner: owner, hub: env.newNote(t, owner, models.NotePermanent)}
}

func (f *hubFixture) addLinks(t *testing.T, n int) {
	for i := 0; i < n; i++ {
		other := f.env.newNote(t, f.owner, models.NoteFleeting)
		// alternate direction: both endpoints count
		if i%2 == 0 {
			f.env.link(t, f.owner, f.hub.ID, other.ID)
		} else {
			f.env.link(t, f.owner, other.ID, f.hub.ID)
		}
	}
}

func (f *hubFixture) hubBonusCount(t *testing.T) int64 {
	return countRows(t, f.env.db, &models.LedgerEntry{}, "user_id = ? AND reason = ?", f.owner, "bonus_hub_formation")
}

func TestHubBelowThreshold(t *testing.T) {
	f := newHubFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		status, err := f.env.hubs.CheckHubStatus(ctx, f.hub.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(i), status.ConnectionCount)
		assert.False(t, status.IsHub)
		assert.False(t, status.JustBecameHub)
		assert.False(t, status.BonusGranted)
		f.addLinks(t, 1)
	}
	assert.Zero(t, f.hubBonusCount(t))
}

func TestHubExactlyAtThreshold(t *testing.T) {
	f := newHubFixture(t)
	f.addLinks(t, 5)

	status, err := f.env.hubs.CheckHubStatus(context.Background(), f.hub.ID)
	require.NoError(t, err)
	assert.True(t, status.IsHub)
	assert.True(t, status.JustBecameHub)
	assert.True(t, status.BonusGranted)
	assert.Equal(t, int64(5), status.ConnectionCount)
	assert.Equal(t, int64(5), status.Threshold)

	assert.Equal(t, int64(1), f.hubBonusCount(t))
	stats := f.env.stats(t, f.owner)
	assert.Equal(t, int64(50), stats.XPTotal)
	assert.Equal(t, int64(10), stats.SPThinking)

	notes, err := f.env.notifications.List(context.Background(), f.owner, true, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationBonus, notes[0].Type)
}

func TestHubJumpPastThresholdStillGrantsOnce(t *testing.T) {
	f := newHubFixture(t)
	ctx := context.Background()
	f.addLinks(t, 4)

	status, err := f.env.hubs.CheckHubStatus(ctx, f.hub.ID)
	require.NoError(t, err)
	assert.False(t, status.IsHub)

	f.addLinks(t, 2)

	status, err = f.env.hubs.CheckHubStatus(ctx, f.hub.ID)
	require.NoError(t, err)
	assert.True(t, status.IsHub)
	assert.False(t, status.JustBecameHub)
	assert.True(t, status.BonusGranted)

	status, err = f.env.hubs.CheckHubStatus(ctx, f.hub.ID)
	require.NoError(t, err)
	assert.False(t, status.BonusGranted)

	assert.Equal(t, int64(1), f.hubBonusCount(t))
}

func TestHubPassingThroughThresholdGrantsOnce(t *testing.T) {
	f := newHubFixture(t)
	ctx := context.Background()
	f.addLinks(t, 5)

	status, err := f.env.hubs.CheckHubStatus(ctx, f.hub.ID)
	require.NoError(t, err)
	assert.True(t, status.BonusGranted)

	status, err = f.env.hubs.CheckHubStatus(ctx, f.hub.ID)
	require.NoError(t, err)
	assert.True(t, status.JustBecameHub)
	assert.False(t, status.BonusGranted)

	f.addLinks(t, 1)

	status, err = f.env.hubs.CheckHubStatus(ctx, f.hub.ID)
	require.NoError(t, err)
	assert.True(t, status.IsHub)
	assert.False(t, status.JustBecameHub)
	assert.False(t, status.BonusGranted)

	assert.Equal(t, int64(1), f.hubBonusCount(t))
	assert.Equal(t, int64(50), f.env.stats(t, f.owner).XPTotal)
}

func TestHubUnknownNote(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.hubs.CheckHubStatus(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSweepMissedHubs(t *testing.T) {
	f := newHubFixture(t)
	ctx := context.Background()
	f.addLinks(t, 7)

	granted, err := f.env.hubs.SweepMissedHubs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, granted)

	granted, err = f.env.hubs.SweepMissedHubs(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, granted)

	assert.Equal(t, int64(1), f.hubBonusCount(t))
}

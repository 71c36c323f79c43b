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

func TestCreateLinkAcrossOwnersEarnsBridgeBuilder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")
	mine := env.newNote(t, alice, models.NotePermanent)
	theirs := env.newNote(t, bob, models.NotePermanent)

	result, err := env.links.Create(ctx, alice, mine.ID, theirs.ID)
	require.NoError(t, err)
	assert.True(t, result.BridgeBuilder)
	require.NotNil(t, result.SourceHub)
	assert.Equal(t, int64(1), result.SourceHub.ConnectionCount)

	stats := env.stats(t, alice)
	assert.Equal(t, int64(10), stats.XPTotal)
	assert.Equal(t, int64(3), stats.SPThinking)
	assert.Zero(t, countRows(t, env.db, &models.LedgerEntry{}, "user_id = ? AND reason = ?", alice, "link_created"))
}

func TestCreateLinkSameOwnerEarnsPoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	a := env.newNote(t, alice, models.NotePermanent)
	b := env.newNote(t, alice, models.NoteLiterature)

	result, err := env.links.Create(ctx, alice, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, result.BridgeBuilder)
	assert.Equal(t, int64(1), countRows(t, env.db, &models.LedgerEntry{}, "user_id = ? AND reason = ? AND xp = ?", alice, "link_created", 5))
	assert.Zero(t, env.stats(t, alice).XPTotal)
}

func TestCreateLinkRejectsSelfAndDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	a := env.newNote(t, alice, models.NotePermanent)
	b := env.newNote(t, alice, models.NotePermanent)

	_, err := env.links.Create(ctx, alice, a.ID, a.ID)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = env.links.Create(ctx, alice, a.ID, b.ID)
	require.NoError(t, err)

	_, err = env.links.Create(ctx, alice, b.ID, a.ID)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	_, err = env.links.Create(ctx, alice, a.ID, b.ID)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	// rejected duplicates earn nothing
	assert.Equal(t, int64(1), countRows(t, env.db, &models.LedgerEntry{}, "user_id = ? AND reason = ?", alice, "link_created"))
	assert.Equal(t, int64(1), countRows(t, env.db, &models.Link{}, "pair_key = ?", models.LinkPairKey(a.ID, b.ID)))

	_, err = env.links.Create(ctx, alice, a.ID, uuid.New())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestCreateLinkFormsHub(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	hub := env.newNote(t, alice, models.NotePermanent)

	var last *LinkResult
	for i := 0; i < 5; i++ {
		other := env.newNote(t, alice, models.NoteFleeting)
		var err error
		last, err = env.links.Create(ctx, alice, other.ID, hub.ID)
		require.NoError(t, err)
	}

	require.NotNil(t, last.TargetHub)
	assert.True(t, last.TargetHub.JustBecameHub)
	assert.True(t, last.TargetHub.BonusGranted)
	assert.Contains(t, last.Achievements, "Hub Architect")
}

func TestHubOwners(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	granted := &HubStatus{BonusGranted: true}
	none := &HubStatus{}

	tests := []struct {
		name           string
		source, target *HubStatus
		sourceOwner    uuid.UUID
		targetOwner    uuid.UUID
		want           []uuid.UUID
	}{
		{"no hubs", none, none, alice, bob, nil},
		{"source only", granted, none, alice, bob, []uuid.UUID{alice}},
		{"target only same owner", none, granted, alice, alice, []uuid.UUID{alice}},
		{"both same owner", granted, granted, alice, alice, []uuid.UUID{alice}},
		{"both different owners", granted, granted, alice, bob, []uuid.UUID{alice, bob}},
		{"failed check", nil, granted, alice, bob, []uuid.UUID{bob}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &LinkResult{SourceHub: tt.source, TargetHub: tt.target}
			got := hubOwners(result, &models.Note{UserID: tt.sourceOwner}, &models.Note{UserID: tt.targetOwner})
			assert.Equal(t, tt.want, got)
		})
	}
}

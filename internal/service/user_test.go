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

func TestRegisterIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := uuid.New()

	first, err := env.users.Register(ctx, id, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, first.Role)

	second, err := env.users.Register(ctx, id, "alice-renamed")
	require.NoError(t, err)
	assert.Equal(t, "alice", second.Handle)

	stats, err := env.statsRepo.GetByUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Zero(t, stats.XPTotal)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.newUser(t, "alice")

	_, err := env.users.Register(ctx, uuid.New(), "alice")
	assert.True(t, errors.Is(err, errors.ErrConflict))

	_, err = env.users.Register(ctx, uuid.New(), "al")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = env.users.Register(ctx, uuid.Nil, "nobody")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestPromote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.newUser(t, "alice")

	assert.True(t, errors.Is(env.users.RequireAdmin(ctx, id), errors.ErrForbidden))
	require.NoError(t, env.users.Promote(ctx, id))
	assert.NoError(t, env.users.RequireAdmin(ctx, id))

	assert.True(t, errors.Is(env.users.Promote(ctx, uuid.New()), errors.ErrNotFound))
}

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

func TestModerateAtomRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.newUser(t, "alice")
	student := env.newUser(t, "mallory")
	note := env.newNote(t, owner, models.NotePermanent)

	_, err := env.moderation.ModerateAtom(ctx, student, note.ID, models.NoteHidden, "spam")
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	stored, err := env.noteRepo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotePublished, stored.Status)
	assert.Zero(t, countRows(t, env.db, &models.ModerationAction{}, "note_id = ?", note.ID))
}

func TestModerateAtomRecordsAuditAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.newUser(t, "alice")
	admin := env.newAdmin(t, "root")
	note := env.newNote(t, owner, models.NotePermanent)

	moderated, err := env.moderation.ModerateAtom(ctx, admin, note.ID, models.NoteFlagged, "needs sources")
	require.NoError(t, err)
	assert.Equal(t, models.NoteFlagged, moderated.Status)

	history, err := env.moderation.History(ctx, admin, note.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.NotePublished, history[0].FromStatus)
	assert.Equal(t, models.NoteFlagged, history[0].ToStatus)
	assert.Equal(t, admin, history[0].ActorID)

	notes, err := env.notifications.List(ctx, owner, true, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationModeration, notes[0].Type)
	assert.Contains(t, notes[0].Body, "needs sources")
}

func TestModerateAtomValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.newAdmin(t, "root")
	note := env.newNote(t, admin, models.NotePermanent)

	_, err := env.moderation.ModerateAtom(ctx, admin, note.ID, "deleted", "")
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = env.moderation.ModerateAtom(ctx, admin, uuid.New(), models.NoteHidden, "")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestAnalyticsOverview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.newAdmin(t, "root")
	student := env.newUser(t, "alice")
	a := env.newNote(t, student, models.NotePermanent)
	b := env.newNote(t, student, models.NoteFleeting)
	env.link(t, student, a.ID, b.ID)
	_, err := env.bonuses.AwardXP(ctx, student, Bonus{Type: models.BonusStreak, XP: 40}, nil)
	require.NoError(t, err)

	_, err = env.analytics.Overview(ctx, student)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	overview, err := env.analytics.Overview(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), overview.Users)
	assert.Equal(t, int64(1), overview.NotesByType[models.NotePermanent])
	assert.Equal(t, int64(1), overview.NotesByType[models.NoteFleeting])
	assert.Equal(t, int64(1), overview.Links)
	assert.Equal(t, int64(40), overview.LedgerXP)
	require.NotEmpty(t, overview.TopUsers)
	assert.Equal(t, student, overview.TopUsers[0].UserID)
}

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

func TestAwardXPLedgerMatchesBonus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")
	trigger := uuid.New()

	award, err := env.bonuses.AwardXP(ctx, user, Bonus{
		Type:     models.BonusScholar,
		XP:       15,
		SP:       models.SkillPoints{Writing: 5},
		Metadata: map[string]interface{}{"quality_score": 9},
	}, &trigger)
	require.NoError(t, err)

	entry := award.Entry
	assert.Equal(t, "bonus_scholar", entry.Reason)
	assert.Equal(t, int64(15), entry.XP)
	assert.Equal(t, models.SkillPoints{Writing: 5}, entry.SkillPoints())
	assert.True(t, entry.StatsApplied)
	require.NotNil(t, entry.SourceID)
	assert.Equal(t, trigger, *entry.SourceID)

	assert.Equal(t, models.BonusScholar, award.Event.Type)
	assert.Equal(t, int64(15), award.Stats.XPTotal)
	assert.Equal(t, int64(5), award.Stats.SPWriting)

	stored := env.stats(t, user)
	assert.Equal(t, int64(15), stored.XPTotal)
	assert.Equal(t, models.SkillPoints{Writing: 5}, stored.SkillPoints())
}

func TestAwardXPWithoutSkillPoints(t *testing.T) {
	env := newTestEnv(t)
	user := env.newUser(t, "alice")

	award, err := env.bonuses.AwardXP(context.Background(), user, Bonus{Type: models.BonusStreak, XP: 30}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.SkillPoints{}, award.Entry.SkillPoints())
	assert.Nil(t, award.Entry.SourceID)
	assert.Equal(t, int64(30), award.Stats.XPTotal)
}

func TestAwardXPTwiceDoublesStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")
	trigger := uuid.New()
	bonus := Bonus{Type: models.BonusBridgeBuilder, XP: 10, SP: models.SkillPoints{Thinking: 3}}

	_, err := env.bonuses.AwardXP(ctx, user, bonus, &trigger)
	require.NoError(t, err)
	_, err = env.bonuses.AwardXP(ctx, user, bonus, &trigger)
	require.NoError(t, err)

	assert.Len(t, env.ledgerFor(t, user), 2)
	assert.Equal(t, int64(2), countRows(t, env.db, &models.BonusEvent{}, "user_id = ?", user))

	stats := env.stats(t, user)
	assert.Equal(t, int64(20), stats.XPTotal)
	assert.Equal(t, int64(6), stats.SPThinking)
}

func TestAwardXPRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)
	user := env.newUser(t, "alice")

	_, err := env.bonuses.AwardXP(context.Background(), user, Bonus{Type: "jackpot", XP: 10}, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = env.bonuses.AwardXP(context.Background(), user, Bonus{Type: models.BonusCombo, XP: -10}, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	assert.Empty(t, env.ledgerFor(t, user))
	assert.Zero(t, countRows(t, env.db, &models.BonusEvent{}, "user_id = ?", user))
}

func TestAwardXPRecreatesLostStatsRow(t *testing.T) {
	env := newTestEnv(t)
	user := env.newUser(t, "alice")
	require.NoError(t, env.db.Where("user_id = ?", user).Delete(&models.CharacterStats{}).Error)

	award, err := env.bonuses.AwardXP(context.Background(), user, Bonus{Type: models.BonusTrailblazer, XP: 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), award.Stats.XPTotal)
	assert.Equal(t, int64(1), countRows(t, env.db, &models.CharacterStats{}, "user_id = ?", user))
}

func TestAwardXPRollsBackWhenStatsUpdateFails(t *testing.T) {
	env := newTestEnv(t)
	user := env.newUser(t, "alice")
	restore := failUpdates(t, env.db, "character_stats")

	trigger := uuid.New()
	_, err := env.bonuses.AwardXP(context.Background(), user, Bonus{Type: models.BonusCombo, XP: 12}, &trigger)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRewardApply))

	assert.Empty(t, env.ledgerFor(t, user))
	assert.Zero(t, countRows(t, env.db, &models.BonusEvent{}, "user_id = ?", user))
	assert.Zero(t, env.stats(t, user).XPTotal)

	restore()
	_, err = env.bonuses.AwardXP(context.Background(), user, Bonus{Type: models.BonusCombo, XP: 12}, &trigger)
	require.NoError(t, err)
	assert.Len(t, env.ledgerFor(t, user), 1)
	assert.Equal(t, int64(12), env.stats(t, user).XPTotal)
}

func TestBonusHistoryLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")
	for i := 0; i < 3; i++ {
		_, err := env.bonuses.AwardXP(ctx, user, Bonus{Type: models.BonusCombo, XP: 1}, nil)
		require.NoError(t, err)
	}

	events, err := env.bonuses.History(ctx, user, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	// oversized limits are capped rather than reset to the default
	events, err = env.bonuses.History(ctx, user, maxHistoryLimit+1)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

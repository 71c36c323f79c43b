package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"
)

// captureUpdates records the SQL of every UPDATE against table.
func captureUpdates(t *testing.T, db *gorm.DB, table string) *[]string {
	t.Helper()
	var statements []string
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:capture_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			statements = append(statements, tx.Statement.SQL.String())
		}
	}))
	return &statements
}

func TestIncrementIsSingleRelativeUpdate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()
	user := uuid.New()
	require.NoError(t, repo.Ensure(ctx, user))

	statements := captureUpdates(t, db, "character_stats")

	ok, err := repo.Increment(ctx, user, 7, models.SkillPoints{Reading: 1, Engagement: 2})
	require.NoError(t, err)
	assert.True(t, ok)

	// One statement that adds to the stored value: a read-modify-write would
	// either issue a SELECT first or assign absolute values.
	require.Len(t, *statements, 1)
	sql := (*statements)[0]
	for _, col := range []string{"xp_total", "sp_reading", "sp_thinking", "sp_writing", "sp_engagement"} {
		assert.Contains(t, sql, col+" + ?", "column %s must be incremented in SQL", col)
	}
	assert.True(t, strings.HasPrefix(sql, "UPDATE"))
}

func TestIncrementMissingRow(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewStatsRepository(db)

	ok, err := repo.Increment(context.Background(), uuid.New(), 5, models.SkillPoints{})
	require.NoError(t, err)
	assert.False(t, ok)
}

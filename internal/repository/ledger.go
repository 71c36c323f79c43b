package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"

	"gorm.io/gorm"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) WithTx(tx *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: tx}
}

func (r *LedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *LedgerRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&entries).Error
	return entries, err
}

// LedgerTotals is the per-column sum of a set of ledger entries.
type LedgerTotals struct {
	XP           int64
	SPReading    int64
	SPThinking   int64
	SPWriting    int64
	SPEngagement int64
}

const sumColumns = "CAST(COALESCE(SUM(xp), 0) AS BIGINT) AS xp, " +
	"CAST(COALESCE(SUM(sp_reading), 0) AS BIGINT) AS sp_reading, " +
	"CAST(COALESCE(SUM(sp_thinking), 0) AS BIGINT) AS sp_thinking, " +
	"CAST(COALESCE(SUM(sp_writing), 0) AS BIGINT) AS sp_writing, " +
	"CAST(COALESCE(SUM(sp_engagement), 0) AS BIGINT) AS sp_engagement"

// SumByUser sums the user's entries whose stats_applied flag equals applied.
func (r *LedgerRepository) SumByUser(ctx context.Context, userID uuid.UUID, applied bool) (*LedgerTotals, error) {
	var totals LedgerTotals
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select(sumColumns).
		Where("user_id = ? AND stats_applied = ?", userID, applied).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *LedgerRepository) SumXP(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select("CAST(COALESCE(SUM(xp), 0) AS BIGINT)").
		Scan(&total).Error
	return total, err
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) WithTx(tx *gorm.DB) *StatsRepository {
	return &StatsRepository{db: tx}
}

// GetByUser returns the user's running totals, or nil if no stats row exists.
func (r *StatsRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*models.CharacterStats, error) {
	var stats models.CharacterStats
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&stats).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Ensure creates an all-zero stats row for the user if none exists.
func (r *StatsRepository) Ensure(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&models.CharacterStats{UserID: userID}).Error
}

// Increment adds the delta to every total in a single UPDATE, so concurrent
// increments for the same user never overwrite each other.
func (r *StatsRepository) Increment(ctx context.Context, userID uuid.UUID, xp int64, sp models.SkillPoints) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CharacterStats{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"xp_total":      gorm.Expr("xp_total + ?", xp),
			"sp_reading":    gorm.Expr("sp_reading + ?", sp.Reading),
			"sp_thinking":   gorm.Expr("sp_thinking + ?", sp.Thinking),
			"sp_writing":    gorm.Expr("sp_writing + ?", sp.Writing),
			"sp_engagement": gorm.Expr("sp_engagement + ?", sp.Engagement),
		})
	return result.RowsAffected > 0, result.Error
}

// Overwrite sets the totals to exact values. Used only by reconciliation.
func (r *StatsRepository) Overwrite(ctx context.Context, stats *models.CharacterStats) error {
	return r.db.WithContext(ctx).
		Model(&models.CharacterStats{}).
		Where("user_id = ?", stats.UserID).
		Updates(map[string]interface{}{
			"xp_total":      stats.XPTotal,
			"sp_reading":    stats.SPReading,
			"sp_thinking":   stats.SPThinking,
			"sp_writing":    stats.SPWriting,
			"sp_engagement": stats.SPEngagement,
		}).Error
}

func (r *StatsRepository) GetPaginated(ctx context.Context, offset, limit int) ([]models.CharacterStats, error) {
	var stats []models.CharacterStats
	err := r.db.WithContext(ctx).
		Order("user_id").
		Offset(offset).
		Limit(limit).
		Find(&stats).Error
	return stats, err
}

// Top returns the highest xp_total rows, ties broken by user id.
func (r *StatsRepository) Top(ctx context.Context, limit int) ([]models.CharacterStats, error) {
	var stats []models.CharacterStats
	err := r.db.WithContext(ctx).
		Order("xp_total DESC, user_id").
		Limit(limit).
		Find(&stats).Error
	return stats, err
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

func (r *AchievementRepository) WithTx(tx *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: tx}
}

// Seed inserts catalog entries whose key is not present yet. Existing entries are left untouched.
func (r *AchievementRepository) Seed(ctx context.Context, catalog []models.Achievement) error {
	if len(catalog) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).
		Create(&catalog).Error
}

func (r *AchievementRepository) ListAll(ctx context.Context) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.WithContext(ctx).
		Order("threshold ASC, key ASC").
		Find(&achievements).Error
	return achievements, err
}

// UnlockedIDs returns the set of achievement ids the user already holds.
func (r *AchievementRepository) UnlockedIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	var rows []models.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		ids[row.AchievementID] = struct{}{}
	}
	return ids, nil
}

// Unlock inserts the join row. It reports false when the user already held the
// achievement; the unique (user_id, achievement_id) index decides.
func (r *AchievementRepository) Unlock(ctx context.Context, userID, achievementID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserAchievement{UserID: userID, AchievementID: achievementID})
	return result.RowsAffected == 1, result.Error
}

// ListUnlocked returns the user's achievements, most recent unlock first.
func (r *AchievementRepository) ListUnlocked(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.WithContext(ctx).
		Joins("JOIN user_achievements ua ON ua.achievement_id = achievements.id").
		Where("ua.user_id = ?", userID).
		Order("ua.unlocked_at DESC").
		Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepository) CountUnlocked(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserAchievement{}).
		Count(&count).Error
	return count, err
}

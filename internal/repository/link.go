package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) WithTx(tx *gorm.DB) *LinkRepository {
	return &LinkRepository{db: tx}
}

// Create inserts the link unless the pair is already linked in either direction.
// It reports whether a row was inserted.
func (r *LinkRepository) Create(ctx context.Context, link *models.Link) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "pair_key"}}, DoNothing: true}).
		Create(link)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountForNote counts links with the note at either end.
func (r *LinkRepository) CountForNote(ctx context.Context, noteID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("source_id = ? OR target_id = ?", noteID, noteID).
		Count(&count).Error
	return count, err
}

func (r *LinkRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *LinkRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Link{}).
		Count(&count).Error
	return count, err
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"

	"gorm.io/gorm"
)

type BonusRepository struct {
	db *gorm.DB
}

func NewBonusRepository(db *gorm.DB) *BonusRepository {
	return &BonusRepository{db: db}
}

func (r *BonusRepository) WithTx(tx *gorm.DB) *BonusRepository {
	return &BonusRepository{db: tx}
}

func (r *BonusRepository) Create(ctx context.Context, event *models.BonusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *BonusRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.BonusEvent, error) {
	var events []models.BonusEvent
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&events).Error
	return events, err
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SignalRepository struct {
	db *gorm.DB
}

func NewSignalRepository(db *gorm.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

func (r *SignalRepository) WithTx(tx *gorm.DB) *SignalRepository {
	return &SignalRepository{db: tx}
}

func (r *SignalRepository) Create(ctx context.Context, s *models.Signal) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SignalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Signal, error) {
	var s models.Signal
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&s).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Discover records that the user found the signal. Re-discovering is a no-op.
func (r *SignalRepository) Discover(ctx context.Context, userID, signalID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserSignal{UserID: userID, SignalID: signalID, Status: models.SignalDiscovered})
	return result.RowsAffected == 1, result.Error
}

func (r *SignalRepository) GetUserSignal(ctx context.Context, userID, signalID uuid.UUID) (*models.UserSignal, error) {
	var us models.UserSignal
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND signal_id = ?", userID, signalID).
		First(&us).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &us, nil
}

// Complete moves a discovered signal to completed; false if it was not in the discovered state.
func (r *SignalRepository) Complete(ctx context.Context, userID, signalID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserSignal{}).
		Where("user_id = ? AND signal_id = ? AND status = ?", userID, signalID, models.SignalDiscovered).
		Updates(map[string]interface{}{
			"status":       models.SignalCompleted,
			"completed_at": at,
		})
	return result.RowsAffected == 1, result.Error
}

func (r *SignalRepository) CountCompletedByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserSignal{}).
		Where("user_id = ? AND status = ?", userID, models.SignalCompleted).
		Count(&count).Error
	return count, err
}

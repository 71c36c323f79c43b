package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) WithTx(tx *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: tx}
}

func (r *QuestionRepository) Create(ctx context.Context, q *models.Question) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	var q models.Question
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&q).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Resolve moves an open question to resolved. It reports false if the question was not open.
func (r *QuestionRepository) Resolve(ctx context.Context, id, solverID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ? AND status = ?", id, models.QuestionOpen).
		Updates(map[string]interface{}{
			"status":      models.QuestionResolved,
			"solver_id":   solverID,
			"resolved_at": at,
		})
	return result.RowsAffected == 1, result.Error
}

func (r *QuestionRepository) CountResolvedBySolver(ctx context.Context, solverID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("solver_id = ? AND status = ?", solverID, models.QuestionResolved).
		Count(&count).Error
	return count, err
}

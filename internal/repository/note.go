package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) WithTx(tx *gorm.DB) *NoteRepository {
	return &NoteRepository{db: tx}
}

func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	var note models.Note
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&note).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// GetForUpdate reads the note with a row lock on databases that support one.
func (r *NoteRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	var note models.Note
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&note).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *NoteRepository) CountByUserAndType(ctx context.Context, userID uuid.UUID, noteType models.NoteType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("user_id = ? AND type = ?", userID, noteType).
		Count(&count).Error
	return count, err
}

func (r *NoteRepository) CountHubsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("user_id = ? AND hub_bonus_granted = ?", userID, true).
		Count(&count).Error
	return count, err
}

// MarkHubBonusGranted flips hub_bonus_granted from false to true. Exactly one caller
// ever observes true.
func (r *NoteRepository) MarkHubBonusGranted(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("id = ? AND hub_bonus_granted = ?", id, false).
		Update("hub_bonus_granted", true)
	return result.RowsAffected == 1, result.Error
}

func (r *NoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.NoteStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListHubCandidates returns notes at or above the threshold that never received the hub bonus.
func (r *NoteRepository) ListHubCandidates(ctx context.Context, threshold int64, limit int) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Where("hub_bonus_granted = ?", false).
		Where("(SELECT COUNT(*) FROM links WHERE links.source_id = notes.id OR links.target_id = notes.id) >= ?", threshold).
		Order("created_at").
		Limit(limit).
		Find(&notes).Error
	return notes, err
}

// FindSimilar orders published notes by L2 distance to the embedding. Postgres with pgvector only.
func (r *NoteRepository) FindSimilar(ctx context.Context, note *models.Note, limit int) ([]models.Note, error) {
	var notes []models.Note
	if note.Embedding == nil {
		return notes, nil
	}
	err := r.db.WithContext(ctx).
		Where("id <> ? AND embedding IS NOT NULL AND status = ?", note.ID, models.NotePublished).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{*note.Embedding}},
		}).
		Limit(limit).
		Find(&notes).Error
	return notes, err
}

func (r *NoteRepository) CountByType(ctx context.Context) (map[models.NoteType]int64, error) {
	type typeCount struct {
		Type  models.NoteType
		Count int64
	}

	var results []typeCount
	err := r.db.WithContext(ctx).
		Model(&models.Note{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.NoteType]int64)
	for _, r := range results {
		counts[r.Type] = r.Count
	}
	return counts, nil
}

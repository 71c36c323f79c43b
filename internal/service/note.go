package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
	"github.com/steviethebear/codex-machina-sub002/internal/ai"
	"github.com/steviethebear/codex-machina-sub002/internal/config"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"
)

const (
	maxTitleLen         = 255
	defaultSimilarLimit = 5
	maxSimilarLimit     = 20
)

type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

type QualityScorer interface {
	ScoreQuality(ctx context.Context, title, body string) ai.QualityScore
}

type NoteInput struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Type  models.NoteType `json:"type"`
}

// NoteResult is the created note plus what the creation earned.
type NoteResult struct {
	Note         *models.Note     `json:"note"`
	Quality      *ai.QualityScore `json:"quality,omitempty"`
	ScholarBonus bool             `json:"scholar_bonus"`
	Achievements []string         `json:"achievements"`
}

type NoteService struct {
	noteRepo     *repository.NoteRepository
	ledger       *LedgerService
	bonuses      *BonusService
	achievements *AchievementEvaluator
	embedder     Embedder
	scorer       QualityScorer
	cfg          *config.RewardsConfig
}

func NewNoteService(
	noteRepo *repository.NoteRepository,
	ledger *LedgerService,
	bonuses *BonusService,
	achievements *AchievementEvaluator,
	embedder Embedder,
	scorer QualityScorer,
	cfg *config.RewardsConfig,
) *NoteService {
	return &NoteService{
		noteRepo:     noteRepo,
		ledger:       ledger,
		bonuses:      bonuses,
		achievements: achievements,
		embedder:     embedder,
		scorer:       scorer,
		cfg:          cfg,
	}
}

func (in NoteInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.New(errors.ErrInvalidInput, "title is required", nil)
	}
	if len(in.Title) > maxTitleLen {
		return errors.New(errors.ErrInvalidInput, "title is too long", nil)
	}
	if !in.Type.Valid() {
		return errors.New(errors.ErrInvalidInput, "unknown note type: "+string(in.Type), nil)
	}
	return nil
}

// Create stores the note and pays out its rewards. Reward failures are logged and
// never fail the request once the note itself is written.
func (s *NoteService) Create(ctx context.Context, userID uuid.UUID, in NoteInput) (*NoteResult, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := in.validate(); err != nil {
		return nil, err
	}

	note := &models.Note{
		UserID: userID,
		Title:  in.Title,
		Body:   in.Body,
		Type:   in.Type,
	}

	if vec := s.embedder.Embed(ctx, in.Title+"\n\n"+in.Body); len(vec) == models.EmbeddingDimensions {
		v := pgvector.NewVector(vec)
		note.Embedding = &v
	}

	result := &NoteResult{Note: note}
	if in.Type == models.NotePermanent {
		q := s.scorer.ScoreQuality(ctx, in.Title, in.Body)
		score := q.Score
		note.QualityScore = &score
		note.QualityDegraded = q.Degraded
		result.Quality = &q
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to create note", err)
	}

	fields := logrus.Fields{"user_id": userID, "note_id": note.ID}

	if _, err := s.ledger.AwardPoints(ctx, userID, s.cfg.NotePoints, "note_created", &note.ID); err != nil {
		logger.WithFields(fields).WithField("error", err).Error("Failed to award note points")
	}

	if q := result.Quality; q != nil && q.IsHighQuality && !q.Degraded && q.Score >= s.cfg.QualityThreshold {
		bonus := BonusFromConfig(models.BonusScholar, s.cfg.ScholarBonus)
		bonus.Metadata = map[string]interface{}{"quality_score": q.Score}
		if _, err := s.bonuses.AwardXP(ctx, userID, bonus, &note.ID); err != nil {
			logger.WithFields(fields).WithField("error", err).Error("Failed to award scholar bonus")
		} else {
			result.ScholarBonus = true
		}
	}

	result.Achievements = evaluateAchievements(ctx, s.achievements, userID)
	return result, nil
}

func evaluateAchievements(ctx context.Context, evaluator *AchievementEvaluator, userID uuid.UUID) []string {
	unlocked, err := evaluator.CheckAndUnlock(ctx, userID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err,
		}).Error("Achievement evaluation failed")
		return []string{}
	}
	if unlocked == nil {
		return []string{}
	}
	return unlocked
}

func (s *NoteService) Get(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load note", err)
	}
	if note == nil {
		return nil, errors.New(errors.ErrNotFound, "note not found", nil)
	}
	return note, nil
}

// Similar returns the nearest published notes by embedding distance. Notes without an
// embedding have no neighbours.
func (s *NoteService) Similar(ctx context.Context, id uuid.UUID, limit int) ([]models.Note, error) {
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	if limit > maxSimilarLimit {
		limit = maxSimilarLimit
	}

	note, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	similar, err := s.noteRepo.FindSimilar(ctx, note, limit)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to search similar notes", err)
	}
	return similar, nil
}

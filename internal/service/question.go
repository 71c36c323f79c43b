package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/steviethebear/codex-machina-sub002/internal/config"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"
)

type QuestionInput struct {
	Title  string     `json:"title"`
	Body   string     `json:"body"`
	NoteID *uuid.UUID `json:"note_id,omitempty"`
}

type ResolveResult struct {
	Question     *models.Question `json:"question"`
	Bonus        *BonusAward      `json:"bonus,omitempty"`
	Achievements []string         `json:"achievements"`
}

type QuestionService struct {
	questionRepo *repository.QuestionRepository
	noteRepo     *repository.NoteRepository
	userRepo     *repository.UserRepository
	bonuses      *BonusService
	notifier     *NotificationService
	achievements *AchievementEvaluator
	cfg          *config.RewardsConfig
}

func NewQuestionService(
	questionRepo *repository.QuestionRepository,
	noteRepo *repository.NoteRepository,
	userRepo *repository.UserRepository,
	bonuses *BonusService,
	notifier *NotificationService,
	achievements *AchievementEvaluator,
	cfg *config.RewardsConfig,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		noteRepo:     noteRepo,
		userRepo:     userRepo,
		bonuses:      bonuses,
		notifier:     notifier,
		achievements: achievements,
		cfg:          cfg,
	}
}

func (s *QuestionService) Create(ctx context.Context, askerID uuid.UUID, in QuestionInput) (*models.Question, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.New(errors.ErrInvalidInput, "title is required", nil)
	}
	if len(title) > maxTitleLen {
		return nil, errors.New(errors.ErrInvalidInput, "title is too long", nil)
	}

	if in.NoteID != nil {
		note, err := s.noteRepo.GetByID(ctx, *in.NoteID)
		if err != nil {
			return nil, errors.New(errors.ErrDatabase, "failed to load note", err)
		}
		if note == nil {
			return nil, errors.New(errors.ErrNotFound, "note not found", nil)
		}
	}

	q := &models.Question{
		AskerID: askerID,
		NoteID:  in.NoteID,
		Title:   title,
		Body:    in.Body,
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to create question", err)
	}
	return q, nil
}

// Resolve marks the question answered by solverID. Only the asker may resolve, only
// once, and not in their own favour.
func (s *QuestionService) Resolve(ctx context.Context, actorID, questionID, solverID uuid.UUID) (*ResolveResult, error) {
	q, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load question", err)
	}
	if q == nil {
		return nil, errors.New(errors.ErrNotFound, "question not found", nil)
	}
	if q.AskerID != actorID {
		return nil, errors.New(errors.ErrForbidden, "only the asker can resolve a question", nil)
	}
	if solverID == actorID {
		return nil, errors.New(errors.ErrInvalidInput, "the asker cannot be the solver", nil)
	}

	solver, err := s.userRepo.GetByID(ctx, solverID)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load solver", err)
	}
	if solver == nil {
		return nil, errors.New(errors.ErrNotFound, "solver not found", nil)
	}

	now := time.Now().UTC()
	ok, err := s.questionRepo.Resolve(ctx, questionID, solverID, now)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to resolve question", err)
	}
	if !ok {
		return nil, errors.New(errors.ErrConflict, "question is already resolved", nil)
	}

	q.Status = models.QuestionResolved
	q.SolverID = &solverID
	q.ResolvedAt = &now
	result := &ResolveResult{Question: q}

	fields := logrus.Fields{"question_id": questionID, "solver_id": solverID}

	award, err := s.bonuses.AwardXP(ctx, solverID, BonusFromConfig(models.BonusSolution, s.cfg.SolutionBonus), &questionID)
	if err != nil {
		logger.WithFields(fields).WithField("error", err).Error("Failed to award solution bonus")
	} else {
		result.Bonus = award
	}

	if err := s.notifier.Notify(ctx, nil, &models.Notification{
		UserID: solverID,
		Type:   models.NotificationQuestion,
		Title:  "Your answer was accepted",
		Body:   q.Title,
		Link:   "/questions/" + questionID.String(),
	}); err != nil {
		logger.WithFields(fields).WithField("error", err).Error("Failed to notify solver")
	}

	result.Achievements = evaluateAchievements(ctx, s.achievements, solverID)
	return result, nil
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"
)

type SignalInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	XPReward     int64  `json:"xp_reward"`
	SPEngagement int64  `json:"sp_engagement"`
}

type CompleteResult struct {
	Signal       *models.Signal `json:"signal"`
	Bonus        *BonusAward    `json:"bonus,omitempty"`
	Achievements []string       `json:"achievements"`
}

type SignalService struct {
	signalRepo   *repository.SignalRepository
	userRepo     *repository.UserRepository
	bonuses      *BonusService
	achievements *AchievementEvaluator
}

func NewSignalService(
	signalRepo *repository.SignalRepository,
	userRepo *repository.UserRepository,
	bonuses *BonusService,
	achievements *AchievementEvaluator,
) *SignalService {
	return &SignalService{
		signalRepo:   signalRepo,
		userRepo:     userRepo,
		bonuses:      bonuses,
		achievements: achievements,
	}
}

func (s *SignalService) Create(ctx context.Context, actorID uuid.UUID, in SignalInput) (*models.Signal, error) {
	if err := requireAdmin(ctx, s.userRepo, actorID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.New(errors.ErrInvalidInput, "title is required", nil)
	}
	if in.XPReward < 0 || in.SPEngagement < 0 {
		return nil, errors.New(errors.ErrInvalidInput, "rewards must not be negative", nil)
	}

	signal := &models.Signal{
		Title:        title,
		Description:  in.Description,
		XPReward:     in.XPReward,
		SPEngagement: in.SPEngagement,
		Active:       true,
	}
	if err := s.signalRepo.Create(ctx, signal); err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to create signal", err)
	}

	logger.WithFields(logrus.Fields{
		"signal_id": signal.ID,
		"xp_reward": signal.XPReward,
	}).Info("Signal created")
	return signal, nil
}

func (s *SignalService) activeSignal(ctx context.Context, signalID uuid.UUID) (*models.Signal, error) {
	signal, err := s.signalRepo.GetByID(ctx, signalID)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load signal", err)
	}
	if signal == nil || !signal.Active {
		return nil, errors.New(errors.ErrNotFound, "signal not found", nil)
	}
	return signal, nil
}

// Discover records the user's discovery. Discovering twice returns the existing row.
func (s *SignalService) Discover(ctx context.Context, userID, signalID uuid.UUID) (*models.UserSignal, error) {
	if _, err := s.activeSignal(ctx, signalID); err != nil {
		return nil, err
	}

	if _, err := s.signalRepo.Discover(ctx, userID, signalID); err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to record discovery", err)
	}

	us, err := s.signalRepo.GetUserSignal(ctx, userID, signalID)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load discovery", err)
	}
	return us, nil
}

// Complete finishes a discovered signal and pays its reward as a discovery bonus.
func (s *SignalService) Complete(ctx context.Context, userID, signalID uuid.UUID) (*CompleteResult, error) {
	signal, err := s.activeSignal(ctx, signalID)
	if err != nil {
		return nil, err
	}

	ok, err := s.signalRepo.Complete(ctx, userID, signalID, time.Now().UTC())
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to complete signal", err)
	}
	if !ok {
		us, err := s.signalRepo.GetUserSignal(ctx, userID, signalID)
		if err != nil {
			return nil, errors.New(errors.ErrDatabase, "failed to load discovery", err)
		}
		if us == nil {
			return nil, errors.New(errors.ErrConflict, "signal has not been discovered", nil)
		}
		return nil, errors.New(errors.ErrConflict, "signal is already completed", nil)
	}

	result := &CompleteResult{Signal: signal}

	bonus := Bonus{
		Type: models.BonusDiscovery,
		XP:   signal.XPReward,
		SP:   models.SkillPoints{Engagement: signal.SPEngagement},
	}
	award, err := s.bonuses.AwardXP(ctx, userID, bonus, &signalID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"user_id":   userID,
			"signal_id": signalID,
			"error":     err,
		}).Error("Failed to award discovery bonus")
	} else {
		result.Bonus = award
	}

	result.Achievements = evaluateAchievements(ctx, s.achievements, userID)
	return result, nil
}

package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/steviethebear/codex-machina-sub002/internal/config"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"

	"gorm.io/gorm"
)

// Grant is one stats-affecting reward: an XP amount, its SP split and the reason it was earned.
type Grant struct {
	UserID   uuid.UUID
	XP       int64
	SP       models.SkillPoints
	Reason   string
	SourceID *uuid.UUID
}

func (g Grant) validate() error {
	if g.UserID == uuid.Nil {
		return errors.New(errors.ErrInvalidInput, "user id is required", nil)
	}
	if strings.TrimSpace(g.Reason) == "" {
		return errors.New(errors.ErrInvalidInput, "reason is required", nil)
	}
	if g.XP < 0 || g.SP.Negative() {
		return errors.New(errors.ErrInvalidInput, "reward amounts must not be negative", nil)
	}
	return nil
}

func skillPointsOf(amount config.RewardAmount) models.SkillPoints {
	return models.SkillPoints{
		Reading:    amount.SPReading,
		Thinking:   amount.SPThinking,
		Writing:    amount.SPWriting,
		Engagement: amount.SPEngagement,
	}
}

// RewardService is the single path by which XP and SP reach character_stats.
type RewardService struct {
	ledgerRepo *repository.LedgerRepository
	statsRepo  *repository.StatsRepository
}

func NewRewardService(ledgerRepo *repository.LedgerRepository, statsRepo *repository.StatsRepository) *RewardService {
	return &RewardService{
		ledgerRepo: ledgerRepo,
		statsRepo:  statsRepo,
	}
}

// Apply writes a stats-applied ledger entry and increments the user's totals inside tx.
// Both writes commit or neither does; tx must be an open transaction.
func (s *RewardService) Apply(ctx context.Context, tx *gorm.DB, grant Grant) (*models.LedgerEntry, *models.CharacterStats, error) {
	if err := grant.validate(); err != nil {
		return nil, nil, err
	}

	entry := &models.LedgerEntry{
		UserID:       grant.UserID,
		XP:           grant.XP,
		SPReading:    grant.SP.Reading,
		SPThinking:   grant.SP.Thinking,
		SPWriting:    grant.SP.Writing,
		SPEngagement: grant.SP.Engagement,
		Reason:       grant.Reason,
		SourceID:     grant.SourceID,
		StatsApplied: true,
	}
	if err := s.ledgerRepo.WithTx(tx).Create(ctx, entry); err != nil {
		return nil, nil, errors.New(errors.ErrLedgerWrite, "failed to write ledger entry", err)
	}

	stats := s.statsRepo.WithTx(tx)
	if err := stats.Ensure(ctx, grant.UserID); err != nil {
		return nil, nil, errors.New(errors.ErrRewardApply, "failed to ensure stats row", err)
	}
	if _, err := stats.Increment(ctx, grant.UserID, grant.XP, grant.SP); err != nil {
		return nil, nil, errors.New(errors.ErrRewardApply, "failed to increment stats", err)
	}

	updated, err := stats.GetByUser(ctx, grant.UserID)
	if err != nil {
		return nil, nil, errors.New(errors.ErrRewardApply, "failed to read stats", err)
	}

	logger.WithFields(logrus.Fields{
		"user_id":  grant.UserID,
		"reason":   grant.Reason,
		"xp":       grant.XP,
		"xp_total": updated.XPTotal,
	}).Debug("Reward applied")

	return entry, updated, nil
}

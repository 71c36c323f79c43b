package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/steviethebear/codex-machina-sub002/internal/config"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Bonus describes an XP bonus before it is awarded.
type Bonus struct {
	Type     models.BonusType
	XP       int64
	SP       models.SkillPoints
	Metadata map[string]interface{}
}

func BonusFromConfig(bonusType models.BonusType, amount config.RewardAmount) Bonus {
	return Bonus{
		Type: bonusType,
		XP:   amount.XP,
		SP:   skillPointsOf(amount),
	}
}

// BonusAward is everything one bonus wrote.
type BonusAward struct {
	Event *models.BonusEvent     `json:"event"`
	Entry *models.LedgerEntry    `json:"ledger_entry"`
	Stats *models.CharacterStats `json:"stats"`
}

type BonusService struct {
	db        *gorm.DB
	bonusRepo *repository.BonusRepository
	rewards   *RewardService
}

func NewBonusService(db *gorm.DB, bonusRepo *repository.BonusRepository, rewards *RewardService) *BonusService {
	return &BonusService{
		db:        db,
		bonusRepo: bonusRepo,
		rewards:   rewards,
	}
}

// AwardXP records the bonus event, its bonus_<type> ledger entry and the stats
// increment in one transaction. Repeated calls award repeatedly; callers that
// need once-only semantics guard with their own flag.
func (s *BonusService) AwardXP(ctx context.Context, userID uuid.UUID, bonus Bonus, triggerID *uuid.UUID) (*BonusAward, error) {
	var award *BonusAward
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		award, err = s.AwardInTx(ctx, tx, userID, bonus, triggerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"type":     bonus.Type,
		"xp":       bonus.XP,
		"xp_total": award.Stats.XPTotal,
	}).Info("Bonus awarded")

	return award, nil
}

// AwardInTx is AwardXP for callers that already hold a transaction.
func (s *BonusService) AwardInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, bonus Bonus, triggerID *uuid.UUID) (*BonusAward, error) {
	if !bonus.Type.Valid() {
		return nil, errors.New(errors.ErrInvalidInput, "unknown bonus type: "+string(bonus.Type), nil)
	}
	if bonus.XP < 0 || bonus.SP.Negative() {
		return nil, errors.New(errors.ErrInvalidInput, "bonus amounts must not be negative", nil)
	}

	event := &models.BonusEvent{
		UserID:       userID,
		Type:         bonus.Type,
		TriggerID:    triggerID,
		XP:           bonus.XP,
		SPReading:    bonus.SP.Reading,
		SPThinking:   bonus.SP.Thinking,
		SPWriting:    bonus.SP.Writing,
		SPEngagement: bonus.SP.Engagement,
	}
	if len(bonus.Metadata) > 0 {
		event.Metadata = datatypes.JSONMap(bonus.Metadata)
	}
	if err := s.bonusRepo.WithTx(tx).Create(ctx, event); err != nil {
		return nil, errors.New(errors.ErrRewardApply, "failed to record bonus event", err)
	}

	entry, stats, err := s.rewards.Apply(ctx, tx, Grant{
		UserID:   userID,
		XP:       bonus.XP,
		SP:       bonus.SP,
		Reason:   bonus.Type.LedgerReason(),
		SourceID: triggerID,
	})
	if err != nil {
		return nil, err
	}

	return &BonusAward{Event: event, Entry: entry, Stats: stats}, nil
}

func (s *BonusService) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.BonusEvent, error) {
	events, err := s.bonusRepo.GetByUser(ctx, userID, clampLimit(limit, defaultHistoryLimit, maxHistoryLimit))
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load bonus history", err)
	}
	return events, nil
}

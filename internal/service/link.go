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
)

type LinkResult struct {
	Link          *models.Link `json:"link"`
	BridgeBuilder bool         `json:"bridge_builder"`
	SourceHub     *HubStatus   `json:"source_hub,omitempty"`
	TargetHub     *HubStatus   `json:"target_hub,omitempty"`
	Achievements  []string     `json:"achievements"`
}

type LinkService struct {
	noteRepo     *repository.NoteRepository
	linkRepo     *repository.LinkRepository
	ledger       *LedgerService
	bonuses      *BonusService
	hubs         *HubDetector
	achievements *AchievementEvaluator
	cfg          *config.RewardsConfig
}

func NewLinkService(
	noteRepo *repository.NoteRepository,
	linkRepo *repository.LinkRepository,
	ledger *LedgerService,
	bonuses *BonusService,
	hubs *HubDetector,
	achievements *AchievementEvaluator,
	cfg *config.RewardsConfig,
) *LinkService {
	return &LinkService{
		noteRepo:     noteRepo,
		linkRepo:     linkRepo,
		ledger:       ledger,
		bonuses:      bonuses,
		hubs:         hubs,
		achievements: achievements,
		cfg:          cfg,
	}
}

// Create links two existing notes. Linking into another user's note earns the
// bridge builder bonus; linking two of one's own notes earns plain points.
func (s *LinkService) Create(ctx context.Context, userID, sourceID, targetID uuid.UUID) (*LinkResult, error) {
	if sourceID == targetID {
		return nil, errors.New(errors.ErrInvalidInput, "a note cannot link to itself", nil)
	}

	source, err := s.noteRepo.GetByID(ctx, sourceID)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load source note", err)
	}
	target, err := s.noteRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load target note", err)
	}
	if source == nil || target == nil {
		return nil, errors.New(errors.ErrNotFound, "note not found", nil)
	}

	link := &models.Link{UserID: userID, SourceID: sourceID, TargetID: targetID}
	inserted, err := s.linkRepo.Create(ctx, link)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to create link", err)
	}
	if !inserted {
		return nil, errors.New(errors.ErrConflict, "notes are already linked", nil)
	}

	fields := logrus.Fields{"user_id": userID, "link_id": link.ID}
	result := &LinkResult{Link: link}

	if source.UserID != target.UserID {
		bonus := BonusFromConfig(models.BonusBridgeBuilder, s.cfg.BridgeBuilderBonus)
		bonus.Metadata = map[string]interface{}{
			"source_id": sourceID.String(),
			"target_id": targetID.String(),
		}
		if _, err := s.bonuses.AwardXP(ctx, userID, bonus, &link.ID); err != nil {
			logger.WithFields(fields).WithField("error", err).Error("Failed to award bridge builder bonus")
		} else {
			result.BridgeBuilder = true
		}
	} else if _, err := s.ledger.AwardPoints(ctx, userID, s.cfg.LinkPoints, "link_created", &link.ID); err != nil {
		logger.WithFields(fields).WithField("error", err).Error("Failed to award link points")
	}

	result.SourceHub = s.checkHub(ctx, sourceID)
	result.TargetHub = s.checkHub(ctx, targetID)

	result.Achievements = evaluateAchievements(ctx, s.achievements, userID)
	for _, owner := range hubOwners(result, source, target) {
		if owner != userID {
			evaluateAchievements(ctx, s.achievements, owner)
		}
	}
	return result, nil
}

func (s *LinkService) checkHub(ctx context.Context, noteID uuid.UUID) *HubStatus {
	status, err := s.hubs.CheckHubStatus(ctx, noteID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"note_id": noteID,
			"error":   err,
		}).Error("Hub check failed")
		return nil
	}
	return status
}

// hubOwners lists owners whose note just earned the hub bonus.
func hubOwners(result *LinkResult, source, target *models.Note) []uuid.UUID {
	var owners []uuid.UUID
	if result.SourceHub != nil && result.SourceHub.BonusGranted {
		owners = append(owners, source.UserID)
	}
	if result.TargetHub != nil && result.TargetHub.BonusGranted {
		if len(owners) == 0 || owners[0] != target.UserID {
			owners = append(owners, target.UserID)
		}
	}
	return owners
}

package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"

	"golang.org/x/sync/errgroup"
)

const leaderboardSize = 10

type Overview struct {
	Users                int64                     `json:"users"`
	NotesByType          map[models.NoteType]int64 `json:"notes_by_type"`
	Links                int64                     `json:"links"`
	LedgerXP             int64                     `json:"ledger_xp"`
	AchievementsUnlocked int64                     `json:"achievements_unlocked"`
	TopUsers             []models.CharacterStats   `json:"top_users"`
}

type AnalyticsService struct {
	userRepo        *repository.UserRepository
	statsRepo       *repository.StatsRepository
	ledgerRepo      *repository.LedgerRepository
	noteRepo        *repository.NoteRepository
	linkRepo        *repository.LinkRepository
	achievementRepo *repository.AchievementRepository
}

func NewAnalyticsService(
	userRepo *repository.UserRepository,
	statsRepo *repository.StatsRepository,
	ledgerRepo *repository.LedgerRepository,
	noteRepo *repository.NoteRepository,
	linkRepo *repository.LinkRepository,
	achievementRepo *repository.AchievementRepository,
) *AnalyticsService {
	return &AnalyticsService{
		userRepo:        userRepo,
		statsRepo:       statsRepo,
		ledgerRepo:      ledgerRepo,
		noteRepo:        noteRepo,
		linkRepo:        linkRepo,
		achievementRepo: achievementRepo,
	}
}

func (s *AnalyticsService) Overview(ctx context.Context, actorID uuid.UUID) (*Overview, error) {
	if err := requireAdmin(ctx, s.userRepo, actorID); err != nil {
		return nil, err
	}

	var o Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		o.Users, err = s.userRepo.CountAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		o.NotesByType, err = s.noteRepo.CountByType(gctx)
		return err
	})
	g.Go(func() (err error) {
		o.Links, err = s.linkRepo.CountAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		o.LedgerXP, err = s.ledgerRepo.SumXP(gctx)
		return err
	})
	g.Go(func() (err error) {
		o.AchievementsUnlocked, err = s.achievementRepo.CountUnlocked(gctx)
		return err
	})
	g.Go(func() (err error) {
		o.TopUsers, err = s.statsRepo.Top(gctx, leaderboardSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to compute analytics", err)
	}
	return &o, nil
}

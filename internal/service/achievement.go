package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// MetricFunc computes one aggregate counter for a user.
type MetricFunc func(ctx context.Context, userID uuid.UUID) (int64, error)

// MetricRegistry maps achievement metrics to the counter that feeds them.
type MetricRegistry map[models.Metric]MetricFunc

func NewMetricRegistry(
	noteRepo *repository.NoteRepository,
	linkRepo *repository.LinkRepository,
	questionRepo *repository.QuestionRepository,
	signalRepo *repository.SignalRepository,
) MetricRegistry {
	return MetricRegistry{
		models.MetricPermanentNotes: func(ctx context.Context, userID uuid.UUID) (int64, error) {
			return noteRepo.CountByUserAndType(ctx, userID, models.NotePermanent)
		},
		models.MetricConnections:       linkRepo.CountByUser,
		models.MetricQuestionsResolved: questionRepo.CountResolvedBySolver,
		models.MetricSignalsCompleted:  signalRepo.CountCompletedByUser,
		models.MetricHubs:              noteRepo.CountHubsByUser,
	}
}

// DefaultCatalog is the achievement set seeded by the migrate command.
func DefaultCatalog() []models.Achievement {
	return []models.Achievement{
		{Key: "first_note", Name: "First Thought", Description: "Write your first permanent note", Metric: models.MetricPermanentNotes, Threshold: 1, XPReward: 25},
		{Key: "prolific", Name: "Prolific", Description: "Write ten permanent notes", Metric: models.MetricPermanentNotes, Threshold: 10, XPReward: 100},
		{Key: "connector", Name: "Connector", Description: "Link two notes together", Metric: models.MetricConnections, Threshold: 1, XPReward: 25},
		{Key: "web_weaver", Name: "Web Weaver", Description: "Create ten links", Metric: models.MetricConnections, Threshold: 10, XPReward: 100},
		{Key: "problem_solver", Name: "Problem Solver", Description: "Have an answer accepted", Metric: models.MetricQuestionsResolved, Threshold: 1, XPReward: 50},
		{Key: "pathfinder", Name: "Pathfinder", Description: "Complete a signal", Metric: models.MetricSignalsCompleted, Threshold: 1, XPReward: 50},
		{Key: "hub_architect", Name: "Hub Architect", Description: "Grow a note into a hub", Metric: models.MetricHubs, Threshold: 1, XPReward: 75},
	}
}

var errAlreadyUnlocked = stderrors.New("achievement already unlocked")

type AchievementEvaluator struct {
	db              *gorm.DB
	achievementRepo *repository.AchievementRepository
	rewards         *RewardService
	notifier        *NotificationService
	metrics         MetricRegistry
}

func NewAchievementEvaluator(
	db *gorm.DB,
	achievementRepo *repository.AchievementRepository,
	rewards *RewardService,
	notifier *NotificationService,
	metrics MetricRegistry,
) *AchievementEvaluator {
	return &AchievementEvaluator{
		db:              db,
		achievementRepo: achievementRepo,
		rewards:         rewards,
		notifier:        notifier,
		metrics:         metrics,
	}
}

func (e *AchievementEvaluator) Seed(ctx context.Context, catalog []models.Achievement) error {
	if err := e.achievementRepo.Seed(ctx, catalog); err != nil {
		return errors.New(errors.ErrDatabase, "failed to seed achievements", err)
	}
	return nil
}

func (e *AchievementEvaluator) Catalog(ctx context.Context) ([]models.Achievement, error) {
	all, err := e.achievementRepo.ListAll(ctx)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load achievements", err)
	}
	return all, nil
}

func (e *AchievementEvaluator) Unlocked(ctx context.Context, userID uuid.UUID) ([]models.Achievement, error) {
	unlocked, err := e.achievementRepo.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load unlocked achievements", err)
	}
	return unlocked, nil
}

// CheckAndUnlock evaluates every achievement the user does not hold yet and unlocks
// those whose metric meets the threshold. It returns the names unlocked by this call.
// A failure on one achievement is logged and does not stop the others; the error
// return covers only loading the catalog and metrics.
func (e *AchievementEvaluator) CheckAndUnlock(ctx context.Context, userID uuid.UUID) ([]string, error) {
	all, err := e.achievementRepo.ListAll(ctx)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load achievements", err)
	}
	held, err := e.achievementRepo.UnlockedIDs(ctx, userID)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load unlocked achievements", err)
	}

	var pending []models.Achievement
	needed := make(map[models.Metric]struct{})
	for _, a := range all {
		if _, ok := held[a.ID]; ok {
			continue
		}
		if _, ok := e.metrics[a.Metric]; !ok {
			logger.WithFields(logrus.Fields{
				"achievement": a.Key,
				"metric":      a.Metric,
			}).Warn("Achievement references unknown metric")
			continue
		}
		pending = append(pending, a)
		needed[a.Metric] = struct{}{}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	values, err := e.computeMetrics(ctx, userID, needed)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to compute achievement metrics", err)
	}

	var unlocked []string
	for _, a := range pending {
		if values[a.Metric] < a.Threshold {
			continue
		}
		err := e.unlock(ctx, userID, a)
		if stderrors.Is(err, errAlreadyUnlocked) {
			continue
		}
		if err != nil {
			logger.WithFields(logrus.Fields{
				"user_id":     userID,
				"achievement": a.Key,
				"error":       err,
			}).Error("Failed to unlock achievement")
			continue
		}
		unlocked = append(unlocked, a.Name)
	}

	if len(unlocked) > 0 {
		logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"unlocked": unlocked,
		}).Info("Achievements unlocked")
	}
	return unlocked, nil
}

func (e *AchievementEvaluator) computeMetrics(ctx context.Context, userID uuid.UUID, needed map[models.Metric]struct{}) (map[models.Metric]int64, error) {
	metrics := make([]models.Metric, 0, len(needed))
	for m := range needed {
		metrics = append(metrics, m)
	}
	results := make([]int64, len(metrics))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range metrics {
		fn := e.metrics[m]
		g.Go(func() error {
			v, err := fn(gctx, userID)
			if err != nil {
				return fmt.Errorf("metric %s: %w", m, err)
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	values := make(map[models.Metric]int64, len(metrics))
	for i, m := range metrics {
		values[m] = results[i]
	}
	return values, nil
}

// unlock inserts the join row, grants the XP reward and notifies, all in one transaction.
func (e *AchievementEvaluator) unlock(ctx context.Context, userID uuid.UUID, a models.Achievement) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := e.achievementRepo.WithTx(tx).Unlock(ctx, userID, a.ID)
		if err != nil {
			return err
		}
		if !inserted {
			return errAlreadyUnlocked
		}

		if a.XPReward > 0 {
			source := a.ID
			if _, _, err := e.rewards.Apply(ctx, tx, Grant{
				UserID:   userID,
				XP:       a.XPReward,
				Reason:   "achievement_" + a.Key,
				SourceID: &source,
			}); err != nil {
				return err
			}
		}

		return e.notifier.Notify(ctx, tx, &models.Notification{
			UserID: userID,
			Type:   models.NotificationAchievement,
			Title:  "Achievement unlocked: " + a.Name,
			Body:   fmt.Sprintf("%s. +%d XP", a.Description, a.XPReward),
			Link:   "/achievements",
		})
	})
}

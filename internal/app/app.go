package app

import (
	"time"

	"github.com/steviethebear/codex-machina-sub002/internal/ai"
	"github.com/steviethebear/codex-machina-sub002/internal/config"
	"github.com/steviethebear/codex-machina-sub002/internal/database"
	"github.com/steviethebear/codex-machina-sub002/internal/handler"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/internal/scheduler"
	"github.com/steviethebear/codex-machina-sub002/internal/service"

	"gorm.io/gorm"
)

// App is the wired service graph shared by every command.
type App struct {
	Services  *handler.Services
	Scheduler *scheduler.RewardScheduler
}

func New(db *gorm.DB, cfg *config.Config, client ai.Client) *App {
	userRepo := repository.NewUserRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	bonusRepo := repository.NewBonusRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	signalRepo := repository.NewSignalRepository(db)
	moderationRepo := repository.NewModerationRepository(db)

	rewards := service.NewRewardService(ledgerRepo, statsRepo)
	ledger := service.NewLedgerService(ledgerRepo)
	bonuses := service.NewBonusService(db, bonusRepo, rewards)
	notifier := service.NewNotificationService(notificationRepo)
	hubs := service.NewHubDetector(db, noteRepo, linkRepo, bonuses, notifier, &cfg.Rewards)
	metrics := service.NewMetricRegistry(noteRepo, linkRepo, questionRepo, signalRepo)
	achievements := service.NewAchievementEvaluator(db, achievementRepo, rewards, notifier, metrics)

	timeout := time.Duration(cfg.AI.Timeout) * time.Second
	embedder := ai.NewEmbedder(client, timeout)
	scorer := ai.NewQualityScorer(client, cfg.Rewards.QualityThreshold, timeout)

	reconcile := service.NewReconcileService(statsRepo, ledgerRepo, database.NewAdvisoryLock(db, database.ReconcileLockKey))
	sched := scheduler.NewRewardScheduler(reconcile, hubs, cfg.Scheduler)

	return &App{
		Services: &handler.Services{
			Users:         service.NewUserService(db, userRepo, statsRepo),
			Ledger:        ledger,
			Bonuses:       bonuses,
			Hubs:          hubs,
			Achievements:  achievements,
			Notifications: notifier,
			Notes:         service.NewNoteService(noteRepo, ledger, bonuses, achievements, embedder, scorer, &cfg.Rewards),
			Links:         service.NewLinkService(noteRepo, linkRepo, ledger, bonuses, hubs, achievements, &cfg.Rewards),
			Questions:     service.NewQuestionService(questionRepo, noteRepo, userRepo, bonuses, notifier, achievements, &cfg.Rewards),
			Signals:       service.NewSignalService(signalRepo, userRepo, bonuses, achievements),
			Moderation:    service.NewModerationService(db, userRepo, noteRepo, moderationRepo, notifier),
			Analytics:     service.NewAnalyticsService(userRepo, statsRepo, ledgerRepo, noteRepo, linkRepo, achievementRepo),
			Reconcile:     sched,
		},
		Scheduler: sched,
	}
}

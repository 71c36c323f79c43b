package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/ai"
	"github.com/steviethebear/codex-machina-sub002/internal/config"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/internal/testutil"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"
)

type fakeEmbedder struct {
	vec []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) []float32 {
	return f.vec
}

type fakeScorer struct {
	score  ai.QualityScore
	called int
}

func (f *fakeScorer) ScoreQuality(ctx context.Context, title, body string) ai.QualityScore {
	f.called++
	return f.score
}

type testEnv struct {
	db  *gorm.DB
	cfg *config.Config

	users         *UserService
	ledger        *LedgerService
	rewards       *RewardService
	bonuses       *BonusService
	notifications *NotificationService
	hubs          *HubDetector
	achievements  *AchievementEvaluator
	notes         *NoteService
	links         *LinkService
	questions     *QuestionService
	signals       *SignalService
	moderation    *ModerationService
	analytics     *AnalyticsService
	reconcile     *ReconcileService

	embedder *fakeEmbedder
	scorer   *fakeScorer

	statsRepo  *repository.StatsRepository
	ledgerRepo *repository.LedgerRepository
	noteRepo   *repository.NoteRepository
	linkRepo   *repository.LinkRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.OpenTestDB(t)
	cfg := config.Default()

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

	env := &testEnv{
		db:         db,
		cfg:        cfg,
		embedder:   &fakeEmbedder{},
		scorer:     &fakeScorer{score: ai.QualityScore{Score: 5}},
		statsRepo:  statsRepo,
		ledgerRepo: ledgerRepo,
		noteRepo:   noteRepo,
		linkRepo:   linkRepo,
	}

	env.users = NewUserService(db, userRepo, statsRepo)
	env.rewards = NewRewardService(ledgerRepo, statsRepo)
	env.ledger = NewLedgerService(ledgerRepo)
	env.bonuses = NewBonusService(db, bonusRepo, env.rewards)
	env.notifications = NewNotificationService(notificationRepo)
	env.hubs = NewHubDetector(db, noteRepo, linkRepo, env.bonuses, env.notifications, &cfg.Rewards)
	env.achievements = NewAchievementEvaluator(db, achievementRepo, env.rewards, env.notifications,
		NewMetricRegistry(noteRepo, linkRepo, questionRepo, signalRepo))
	env.notes = NewNoteService(noteRepo, env.ledger, env.bonuses, env.achievements, env.embedder, env.scorer, &cfg.Rewards)
	env.links = NewLinkService(noteRepo, linkRepo, env.ledger, env.bonuses, env.hubs, env.achievements, &cfg.Rewards)
	env.questions = NewQuestionService(questionRepo, noteRepo, userRepo, env.bonuses, env.notifications, env.achievements, &cfg.Rewards)
	env.signals = NewSignalService(signalRepo, userRepo, env.bonuses, env.achievements)
	env.moderation = NewModerationService(db, userRepo, noteRepo, moderationRepo, env.notifications)
	env.analytics = NewAnalyticsService(userRepo, statsRepo, ledgerRepo, noteRepo, linkRepo, achievementRepo)
	env.reconcile = NewReconcileService(statsRepo, ledgerRepo, nil)

	return env
}

func (e *testEnv) seedCatalog(t *testing.T) {
	t.Helper()
	require.NoError(t, e.achievements.Seed(context.Background(), DefaultCatalog()))
}

func (e *testEnv) newUser(t *testing.T, handle string) uuid.UUID {
	t.Helper()
	user, err := e.users.Register(context.Background(), uuid.New(), handle)
	require.NoError(t, err)
	return user.ID
}

func (e *testEnv) newAdmin(t *testing.T, handle string) uuid.UUID {
	t.Helper()
	id := e.newUser(t, handle)
	require.NoError(t, e.users.Promote(context.Background(), id))
	return id
}

// newNote inserts a note directly, bypassing rewards.
func (e *testEnv) newNote(t *testing.T, owner uuid.UUID, noteType models.NoteType) *models.Note {
	t.Helper()
	note := &models.Note{UserID: owner, Title: "note " + uuid.NewString()[:8], Type: noteType}
	require.NoError(t, e.noteRepo.Create(context.Background(), note))
	return note
}

// link inserts a link directly, bypassing rewards and hub checks.
func (e *testEnv) link(t *testing.T, owner, source, target uuid.UUID) {
	t.Helper()
	inserted, err := e.linkRepo.Create(context.Background(), &models.Link{UserID: owner, SourceID: source, TargetID: target})
	require.NoError(t, err)
	require.True(t, inserted)
}

func (e *testEnv) stats(t *testing.T, userID uuid.UUID) *models.CharacterStats {
	t.Helper()
	stats, err := e.users.Stats(context.Background(), userID)
	require.NoError(t, err)
	return stats
}

func (e *testEnv) ledgerFor(t *testing.T, userID uuid.UUID) []models.LedgerEntry {
	t.Helper()
	entries, err := e.ledgerRepo.GetByUser(context.Background(), userID, 100)
	require.NoError(t, err)
	return entries
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

// failUpdates makes every UPDATE on table fail until the returned func is called.
func failUpdates(t *testing.T, db *gorm.DB, table string) (restore func()) {
	t.Helper()
	name := "test:fail_" + table
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(stderrors.New("injected failure"))
		}
	}))
	return func() {
		require.NoError(t, db.Callback().Update().Remove(name))
	}
}

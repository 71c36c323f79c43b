package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/steviethebear/codex-machina-sub002/internal/service"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Users         *service.UserService
	Ledger        *service.LedgerService
	Bonuses       *service.BonusService
	Hubs          *service.HubDetector
	Achievements  *service.AchievementEvaluator
	Notifications *service.NotificationService
	Notes         *service.NoteService
	Links         *service.LinkService
	Questions     *service.QuestionService
	Signals       *service.SignalService
	Moderation    *service.ModerationService
	Analytics     *service.AnalyticsService
	Reconcile     ReconcileTrigger
}

func NewRouter(svc *Services, jwtSecret string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", HandleHealth)

	auth := NewAuthMiddleware(jwtSecret)
	users := NewUserHandler(svc.Users, svc.Ledger, svc.Bonuses, svc.Achievements)
	notes := NewNoteHandler(svc.Notes, svc.Links, svc.Hubs)
	quests := NewQuestHandler(svc.Questions, svc.Signals)
	notifications := NewNotificationHandler(svc.Notifications)
	admin := NewAdminHandler(svc.Users, svc.Moderation, svc.Analytics, svc.Signals, svc.Ledger, svc.Bonuses, svc.Reconcile)

	api := router.Group("/api", auth.RequireAuth())
	{
		api.POST("/users/me", users.Register)
		api.GET("/users/me", users.Profile)
		api.GET("/users/me/stats", users.Stats)
		api.GET("/users/me/ledger", users.Ledger)
		api.GET("/users/me/bonuses", users.Bonuses)
		api.POST("/users/me/achievements/check", users.CheckAchievements)
		api.GET("/users/me/achievements", users.Achievements)
		api.GET("/achievements", users.Catalog)

		api.POST("/notes", notes.CreateNote)
		api.GET("/notes/:id/hub", notes.HubStatus)
		api.GET("/notes/:id/similar", notes.Similar)
		api.POST("/links", notes.CreateLink)

		api.POST("/questions", quests.CreateQuestion)
		api.POST("/questions/:id/resolve", quests.ResolveQuestion)
		api.POST("/signals/:id/discover", quests.DiscoverSignal)
		api.POST("/signals/:id/complete", quests.CompleteSignal)

		api.GET("/notifications", notifications.List)
		api.POST("/notifications/read-all", notifications.MarkAllRead)
		api.PATCH("/notifications/:id", notifications.SetRead)
		api.DELETE("/notifications/:id", notifications.Delete)
	}

	adminAPI := api.Group("/admin", admin.RequireAdmin())
	{
		adminAPI.POST("/notes/:id/moderate", admin.Moderate)
		adminAPI.GET("/notes/:id/moderation", admin.ModerationHistory)
		adminAPI.GET("/analytics", admin.Analytics)
		adminAPI.POST("/signals", admin.CreateSignal)
		adminAPI.POST("/rewards/points", admin.AwardPoints)
		adminAPI.POST("/rewards/bonus", admin.AwardBonus)
		adminAPI.POST("/reconcile", admin.Reconcile)
	}

	return router
}

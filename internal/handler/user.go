package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/steviethebear/codex-machina-sub002/internal/service"
)

type UserHandler struct {
	users        *service.UserService
	ledger       *service.LedgerService
	bonuses      *service.BonusService
	achievements *service.AchievementEvaluator
}

func NewUserHandler(users *service.UserService, ledger *service.LedgerService, bonuses *service.BonusService, achievements *service.AchievementEvaluator) *UserHandler {
	return &UserHandler{users: users, ledger: ledger, bonuses: bonuses, achievements: achievements}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Handle string `json:"handle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.users.Register(c.Request.Context(), currentUser(c), req.Handle)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUser(c)

	stats, err := h.users.Stats(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	pending, err := h.ledger.PendingTotal(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, gin.H{
		"stats":          stats,
		"pending_points": pending.XP,
	})
}

func (h *UserHandler) Ledger(c *gin.Context) {
	entries, err := h.ledger.History(c.Request.Context(), currentUser(c), queryLimit(c, 50))
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"items": entries})
}

func (h *UserHandler) Bonuses(c *gin.Context) {
	events, err := h.bonuses.History(c.Request.Context(), currentUser(c), queryLimit(c, 50))
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"items": events})
}

func (h *UserHandler) CheckAchievements(c *gin.Context) {
	unlocked, err := h.achievements.CheckAndUnlock(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if unlocked == nil {
		unlocked = []string{}
	}
	writeJSON(c, http.StatusOK, gin.H{"unlocked": unlocked})
}

func (h *UserHandler) Achievements(c *gin.Context) {
	unlocked, err := h.achievements.Unlocked(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"items": unlocked})
}

func (h *UserHandler) Catalog(c *gin.Context) {
	all, err := h.achievements.Catalog(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"items": all})
}

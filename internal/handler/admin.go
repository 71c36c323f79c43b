package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/service"
)

type ReconcileTrigger interface {
	TriggerReconcile(ctx context.Context) (*service.ReconcileReport, error)
}

type AdminHandler struct {
	users      *service.UserService
	moderation *service.ModerationService
	analytics  *service.AnalyticsService
	signals    *service.SignalService
	ledger     *service.LedgerService
	bonuses    *service.BonusService
	reconcile  ReconcileTrigger
}

func NewAdminHandler(
	users *service.UserService,
	moderation *service.ModerationService,
	analytics *service.AnalyticsService,
	signals *service.SignalService,
	ledger *service.LedgerService,
	bonuses *service.BonusService,
	reconcile ReconcileTrigger,
) *AdminHandler {
	return &AdminHandler{
		users:      users,
		moderation: moderation,
		analytics:  analytics,
		signals:    signals,
		ledger:     ledger,
		bonuses:    bonuses,
		reconcile:  reconcile,
	}
}

// RequireAdmin rejects non-admin callers before any admin handler runs.
func (h *AdminHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.users.RequireAdmin(c.Request.Context(), currentUser(c)); err != nil {
			writeError(c, err)
			return
		}
		c.Next()
	}
}

func (h *AdminHandler) Moderate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.NoteStatus `json:"status"`
		Reason string            `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	note, err := h.moderation.ModerateAtom(c.Request.Context(), currentUser(c), id, req.Status, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"note": note})
}

func (h *AdminHandler) ModerationHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	actions, err := h.moderation.History(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"items": actions})
}

func (h *AdminHandler) Analytics(c *gin.Context) {
	overview, err := h.analytics.Overview(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, overview)
}

func (h *AdminHandler) CreateSignal(c *gin.Context) {
	var req service.SignalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	signal, err := h.signals.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"signal": signal})
}

func (h *AdminHandler) AwardPoints(c *gin.Context) {
	var req struct {
		UserID   uuid.UUID  `json:"user_id"`
		Amount   int64      `json:"amount"`
		Reason   string     `json:"reason"`
		SourceID *uuid.UUID `json:"source_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		badRequest(c, "user_id is required")
		return
	}
	if !h.userExists(c, req.UserID) {
		return
	}

	entry, err := h.ledger.AwardPoints(c.Request.Context(), req.UserID, req.Amount, req.Reason, req.SourceID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"ledger_entry": entry})
}

func (h *AdminHandler) AwardBonus(c *gin.Context) {
	var req struct {
		UserID    uuid.UUID              `json:"user_id"`
		Type      models.BonusType       `json:"type"`
		XP        int64                  `json:"xp"`
		SP        models.SkillPoints     `json:"sp"`
		TriggerID *uuid.UUID             `json:"trigger_id"`
		Metadata  map[string]interface{} `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		badRequest(c, "user_id is required")
		return
	}
	if !h.userExists(c, req.UserID) {
		return
	}

	award, err := h.bonuses.AwardXP(c.Request.Context(), req.UserID, service.Bonus{
		Type:     req.Type,
		XP:       req.XP,
		SP:       req.SP,
		Metadata: req.Metadata,
	}, req.TriggerID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, award)
}

// userExists writes NOT_FOUND when id names no registered user. Rewards are never
// granted to an unknown id.
func (h *AdminHandler) userExists(c *gin.Context, id uuid.UUID) bool {
	if _, err := h.users.Get(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return false
	}
	return true
}

func (h *AdminHandler) Reconcile(c *gin.Context) {
	report, err := h.reconcile.TriggerReconcile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, report)
}

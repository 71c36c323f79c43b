package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/service"
)

type QuestHandler struct {
	questions *service.QuestionService
	signals   *service.SignalService
}

func NewQuestHandler(questions *service.QuestionService, signals *service.SignalService) *QuestHandler {
	return &QuestHandler{questions: questions, signals: signals}
}

func (h *QuestHandler) CreateQuestion(c *gin.Context) {
	var req service.QuestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	q, err := h.questions.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"question": q})
}

func (h *QuestHandler) ResolveQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		SolverID uuid.UUID `json:"solver_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SolverID == uuid.Nil {
		badRequest(c, "solver_id is required")
		return
	}

	result, err := h.questions.Resolve(c.Request.Context(), currentUser(c), id, req.SolverID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, result)
}

func (h *QuestHandler) DiscoverSignal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	us, err := h.signals.Discover(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"user_signal": us})
}

func (h *QuestHandler) CompleteSignal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.signals.Complete(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, result)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/service"
)

type NoteHandler struct {
	notes *service.NoteService
	links *service.LinkService
	hubs  *service.HubDetector
}

func NewNoteHandler(notes *service.NoteService, links *service.LinkService, hubs *service.HubDetector) *NoteHandler {
	return &NoteHandler{notes: notes, links: links, hubs: hubs}
}

func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req service.NoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.notes.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, result)
}

func (h *NoteHandler) HubStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	status, err := h.hubs.CheckHubStatus(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, status)
}

func (h *NoteHandler) Similar(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	notes, err := h.notes.Similar(c.Request.Context(), id, queryLimit(c, 5))
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"items": notes})
}

func (h *NoteHandler) CreateLink(c *gin.Context) {
	var req struct {
		SourceID uuid.UUID `json:"source_id"`
		TargetID uuid.UUID `json:"target_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SourceID == uuid.Nil || req.TargetID == uuid.Nil {
		badRequest(c, "source_id and target_id are required")
		return
	}

	result, err := h.links.Create(c.Request.Context(), currentUser(c), req.SourceID, req.TargetID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, result)
}

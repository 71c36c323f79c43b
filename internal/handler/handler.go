package handler

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"
)

func writeJSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// writeError maps the error's code to an HTTP status and writes {"error", "code"}.
func writeError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	status := statusFor(code)
	if code == "" {
		code = "INTERNAL_ERROR"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithFields(map[string]interface{}{
			"path":  c.FullPath(),
			"error": err,
		}).Error("Request failed")
		message = "internal server error"
	} else {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			message = appErr.Message
		}
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

func statusFor(code string) int {
	switch code {
	case errors.ErrInvalidInput:
		return http.StatusBadRequest
	case errors.ErrUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, message string) {
	writeError(c, errors.New(errors.ErrInvalidInput, message, nil))
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func queryLimit(c *gin.Context, fallback int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		return fallback
	}
	return limit
}

func HandleHealth(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

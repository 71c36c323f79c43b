package ai

import (
	"context"
	"strings"
	"time"

	"github.com/steviethebear/codex-machina-sub002/pkg/logger"
)

// Embedder fails closed: any failure yields a nil vector and the caller stores nothing.
type Embedder struct {
	client  Client
	timeout time.Duration
}

func NewEmbedder(client Client, timeout time.Duration) *Embedder {
	return &Embedder{client: client, timeout: timeout}
}

func (e *Embedder) Embed(ctx context.Context, text string) []float32 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	vec, err := e.client.Embed(ctx, text)
	if err != nil {
		logger.Component("ai").WithField("error", err).Warn("Embedding unavailable, skipping")
		return nil
	}
	return vec
}

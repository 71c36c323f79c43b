package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"

	"github.com/sirupsen/logrus"
)

const maxScore = 10

// QualityScore is a model's verdict on a note. Degraded marks the fallback verdict
// issued when the model could not be consulted.
type QualityScore struct {
	Score         int    `json:"score"`
	IsHighQuality bool   `json:"is_high_quality"`
	Feedback      string `json:"feedback,omitempty"`
	Degraded      bool   `json:"degraded"`
}

func fallbackScore() QualityScore {
	return QualityScore{Score: maxScore, IsHighQuality: true, Degraded: true}
}

// QualityScorer fails open: the user is never blocked on a model outage.
type QualityScorer struct {
	client    Client
	threshold int
	timeout   time.Duration
}

func NewQualityScorer(client Client, threshold int, timeout time.Duration) *QualityScorer {
	return &QualityScorer{client: client, threshold: threshold, timeout: timeout}
}

const qualityPrompt = `You review atomic notes in a student's personal knowledge base.
Score the note from 0 to 10 for atomicity, clarity and use of the student's own words.
Reply with JSON only: {"score": <int>, "isHighQuality": <bool>, "feedback": "<one sentence>"}.

Title: %s

Body:
%s`

type qualityReply struct {
	Score         *int   `json:"score"`
	IsHighQuality *bool  `json:"isHighQuality"`
	Feedback      string `json:"feedback"`
}

func (s *QualityScorer) ScoreQuality(ctx context.Context, title, body string) QualityScore {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.client.GenerateJSON(ctx, fmt.Sprintf(qualityPrompt, title, body))
	if err != nil {
		logger.Component("ai").WithField("error", err).Warn("Quality scoring degraded: model call failed")
		return fallbackScore()
	}

	score, err := s.parse(raw)
	if err != nil {
		logger.Component("ai").WithFields(logrus.Fields{
			"error": err,
			"reply": truncate(raw, 200),
		}).Warn("Quality scoring degraded: unparseable reply")
		return fallbackScore()
	}
	return score
}

func (s *QualityScorer) parse(raw string) (QualityScore, error) {
	var reply qualityReply
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &reply); err != nil {
		return QualityScore{}, errors.New(errors.ErrAI, "quality reply is not json", err)
	}
	if reply.Score == nil {
		return QualityScore{}, errors.New(errors.ErrAI, "quality reply has no score", nil)
	}

	score := *reply.Score
	if score < 0 {
		score = 0
	}
	if score > maxScore {
		score = maxScore
	}

	high := score >= s.threshold
	if reply.IsHighQuality != nil {
		high = *reply.IsHighQuality
	}

	return QualityScore{
		Score:         score,
		IsHighQuality: high,
		Feedback:      strings.TrimSpace(reply.Feedback),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

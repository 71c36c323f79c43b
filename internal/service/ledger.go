package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// LedgerService records point awards that do not move character stats.
type LedgerService struct {
	ledgerRepo *repository.LedgerRepository
}

func NewLedgerService(ledgerRepo *repository.LedgerRepository) *LedgerService {
	return &LedgerService{ledgerRepo: ledgerRepo}
}

// AwardPoints appends a ledger entry with stats_applied=false. character_stats is not touched.
func (s *LedgerService) AwardPoints(ctx context.Context, userID uuid.UUID, amount int64, reason string, sourceID *uuid.UUID) (*models.LedgerEntry, error) {
	if userID == uuid.Nil {
		return nil, errors.New(errors.ErrInvalidInput, "user id is required", nil)
	}
	if amount < 0 {
		return nil, errors.New(errors.ErrInvalidInput, "amount must not be negative", nil)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errors.New(errors.ErrInvalidInput, "reason is required", nil)
	}

	entry := &models.LedgerEntry{
		UserID:   userID,
		XP:       amount,
		Reason:   reason,
		SourceID: sourceID,
	}
	fields := logrus.Fields{
		"user_id": userID,
		"amount":  amount,
		"reason":  reason,
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		logger.WithFields(fields).WithField("error", err).Error("Failed to write ledger entry")
		return nil, errors.New(errors.ErrLedgerWrite, "failed to write ledger entry", err)
	}

	logger.WithFields(fields).Info("Points awarded")

	return entry, nil
}

// clampLimit applies the default to a missing limit and caps the rest at ceiling.
func clampLimit(limit, fallback, ceiling int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}

func (s *LedgerService) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	entries, err := s.ledgerRepo.GetByUser(ctx, userID, clampLimit(limit, defaultHistoryLimit, maxHistoryLimit))
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load ledger", err)
	}
	return entries, nil
}

// PendingTotal sums the user's ledger-only awards.
func (s *LedgerService) PendingTotal(ctx context.Context, userID uuid.UUID) (*repository.LedgerTotals, error) {
	totals, err := s.ledgerRepo.SumByUser(ctx, userID, false)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to sum ledger", err)
	}
	return totals, nil
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/steviethebear/codex-machina-sub002/internal/config"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"

	"gorm.io/gorm"
)

// HubStatus reports a note's connectivity after a link change.
//
// JustBecameHub is true only when the count equals the threshold exactly. It is kept
// as a signal for clients; the bonus itself is driven by the persisted
// hub_bonus_granted flag so a jump past the threshold still pays out once.
type HubStatus struct {
	NoteID          uuid.UUID `json:"note_id"`
	IsHub           bool      `json:"is_hub"`
	JustBecameHub   bool      `json:"just_became_hub"`
	ConnectionCount int64     `json:"connection_count"`
	Threshold       int64     `json:"threshold"`
	BonusGranted    bool      `json:"bonus_granted"`
}

type HubDetector struct {
	db        *gorm.DB
	noteRepo  *repository.NoteRepository
	linkRepo  *repository.LinkRepository
	bonuses   *BonusService
	notifier  *NotificationService
	threshold int64
	bonus     config.RewardAmount
}

func NewHubDetector(
	db *gorm.DB,
	noteRepo *repository.NoteRepository,
	linkRepo *repository.LinkRepository,
	bonuses *BonusService,
	notifier *NotificationService,
	cfg *config.RewardsConfig,
) *HubDetector {
	return &HubDetector{
		db:        db,
		noteRepo:  noteRepo,
		linkRepo:  linkRepo,
		bonuses:   bonuses,
		notifier:  notifier,
		threshold: cfg.HubThreshold,
		bonus:     cfg.HubBonus,
	}
}

// CheckHubStatus counts the note's links in both directions and, the first time the
// count reaches the threshold, awards the hub formation bonus to the note's owner.
func (d *HubDetector) CheckHubStatus(ctx context.Context, noteID uuid.UUID) (*HubStatus, error) {
	var status *HubStatus
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		status, err = d.checkInTx(ctx, tx, noteID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if status.BonusGranted && !status.JustBecameHub {
		logger.WithFields(logrus.Fields{
			"note_id":     noteID,
			"connections": status.ConnectionCount,
			"threshold":   d.threshold,
		}).Info("Hub threshold crossed without landing on it")
	}
	return status, nil
}

func (d *HubDetector) checkInTx(ctx context.Context, tx *gorm.DB, noteID uuid.UUID) (*HubStatus, error) {
	notes := d.noteRepo.WithTx(tx)

	note, err := notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load note", err)
	}
	if note == nil {
		return nil, errors.New(errors.ErrNotFound, "note not found", nil)
	}

	count, err := d.linkRepo.WithTx(tx).CountForNote(ctx, noteID)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to count connections", err)
	}

	status := &HubStatus{
		NoteID:          noteID,
		IsHub:           count >= d.threshold,
		JustBecameHub:   count == d.threshold,
		ConnectionCount: count,
		Threshold:       d.threshold,
	}
	if !status.IsHub || note.HubBonusGranted {
		return status, nil
	}

	won, err := notes.MarkHubBonusGranted(ctx, noteID)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to mark hub bonus", err)
	}
	if !won {
		return status, nil
	}

	bonus := BonusFromConfig(models.BonusHubFormation, d.bonus)
	bonus.Metadata = map[string]interface{}{"connections": count}
	if _, err := d.bonuses.AwardInTx(ctx, tx, note.UserID, bonus, &noteID); err != nil {
		return nil, err
	}

	if err := d.notifier.Notify(ctx, tx, &models.Notification{
		UserID: note.UserID,
		Type:   models.NotificationBonus,
		Title:  "Hub formed",
		Body:   fmt.Sprintf("%q now has %d connections. +%d XP", note.Title, count, d.bonus.XP),
		Link:   "/notes/" + noteID.String(),
	}); err != nil {
		return nil, err
	}

	status.BonusGranted = true
	return status, nil
}

// SweepMissedHubs grants the hub bonus to notes that reached the threshold but never
// received it, for example when the request that crossed it failed after linking.
func (d *HubDetector) SweepMissedHubs(ctx context.Context, limit int) (int, error) {
	candidates, err := d.noteRepo.ListHubCandidates(ctx, d.threshold, limit)
	if err != nil {
		return 0, errors.New(errors.ErrDatabase, "failed to list hub candidates", err)
	}

	granted := 0
	for _, note := range candidates {
		status, err := d.CheckHubStatus(ctx, note.ID)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"note_id": note.ID,
				"error":   err,
			}).Error("Hub sweep failed for note")
			continue
		}
		if status.BonusGranted {
			granted++
		}
	}

	if granted > 0 {
		logger.WithFields(logrus.Fields{
			"granted":    granted,
			"candidates": len(candidates),
		}).Info("Hub sweep granted missed bonuses")
	}
	return granted, nil
}

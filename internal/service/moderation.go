package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"
	"github.com/steviethebear/codex-machina-sub002/pkg/logger"

	"gorm.io/gorm"
)

type ModerationService struct {
	db             *gorm.DB
	userRepo       *repository.UserRepository
	noteRepo       *repository.NoteRepository
	moderationRepo *repository.ModerationRepository
	notifier       *NotificationService
}

func NewModerationService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	noteRepo *repository.NoteRepository,
	moderationRepo *repository.ModerationRepository,
	notifier *NotificationService,
) *ModerationService {
	return &ModerationService{
		db:             db,
		userRepo:       userRepo,
		noteRepo:       noteRepo,
		moderationRepo: moderationRepo,
		notifier:       notifier,
	}
}

// ModerateAtom changes a note's status. The admin check, the status change, the audit
// row and the owner notification commit together.
func (s *ModerationService) ModerateAtom(ctx context.Context, actorID, noteID uuid.UUID, status models.NoteStatus, reason string) (*models.Note, error) {
	if !status.Valid() {
		return nil, errors.New(errors.ErrInvalidInput, "unknown note status: "+string(status), nil)
	}
	reason = strings.TrimSpace(reason)

	var note *models.Note
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAdmin(ctx, s.userRepo.WithTx(tx), actorID); err != nil {
			return err
		}

		notes := s.noteRepo.WithTx(tx)
		var err error
		note, err = notes.GetForUpdate(ctx, noteID)
		if err != nil {
			return errors.New(errors.ErrDatabase, "failed to load note", err)
		}
		if note == nil {
			return errors.New(errors.ErrNotFound, "note not found", nil)
		}

		from := note.Status
		if from == status {
			return nil
		}

		if err := notes.UpdateStatus(ctx, noteID, status); err != nil {
			return errors.New(errors.ErrDatabase, "failed to update note status", err)
		}
		if err := s.moderationRepo.WithTx(tx).Create(ctx, &models.ModerationAction{
			NoteID:     noteID,
			ActorID:    actorID,
			FromStatus: from,
			ToStatus:   status,
			Reason:     reason,
		}); err != nil {
			return errors.New(errors.ErrDatabase, "failed to record moderation action", err)
		}
		note.Status = status

		body := fmt.Sprintf("%q is now %s.", note.Title, status)
		if reason != "" {
			body += " Reason: " + reason
		}
		return s.notifier.Notify(ctx, tx, &models.Notification{
			UserID: note.UserID,
			Type:   models.NotificationModeration,
			Title:  "Your note was moderated",
			Body:   body,
			Link:   "/notes/" + noteID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"actor_id": actorID,
		"note_id":  noteID,
		"status":   status,
	}).Info("Note moderated")
	return note, nil
}

func (s *ModerationService) History(ctx context.Context, actorID, noteID uuid.UUID) ([]models.ModerationAction, error) {
	if err := requireAdmin(ctx, s.userRepo, actorID); err != nil {
		return nil, err
	}
	actions, err := s.moderationRepo.GetByNote(ctx, noteID)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load moderation history", err)
	}
	return actions, nil
}

package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/steviethebear/codex-machina-sub002/internal/models"
	"github.com/steviethebear/codex-machina-sub002/internal/repository"
	"github.com/steviethebear/codex-machina-sub002/pkg/errors"

	"gorm.io/gorm"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type NotificationService struct {
	notificationRepo *repository.NotificationRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// Notify stores a notification. With a non-nil tx it joins that transaction.
func (s *NotificationService) Notify(ctx context.Context, tx *gorm.DB, n *models.Notification) error {
	repo := s.notificationRepo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	if err := repo.Create(ctx, n); err != nil {
		return errors.New(errors.ErrDatabase, "failed to create notification", err)
	}
	return nil
}

// List returns the newest notifications first. A limit of zero means the default.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	limit = clampLimit(limit, defaultNotificationLimit, maxNotificationLimit)
	items, err := s.notificationRepo.GetByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to list notifications", err)
	}
	return items, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.New(errors.ErrDatabase, "failed to count notifications", err)
	}
	return count, nil
}

// SetRead only touches the caller's own notifications.
func (s *NotificationService) SetRead(ctx context.Context, userID, id uuid.UUID, read bool) error {
	ok, err := s.notificationRepo.SetRead(ctx, userID, id, read)
	if err != nil {
		return errors.New(errors.ErrDatabase, "failed to update notification", err)
	}
	if !ok {
		return errors.New(errors.ErrNotFound, "notification not found", nil)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, errors.New(errors.ErrDatabase, "failed to update notifications", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.notificationRepo.Delete(ctx, userID, id)
	if err != nil {
		return errors.New(errors.ErrDatabase, "failed to delete notification", err)
	}
	if !ok {
		return errors.New(errors.ErrNotFound, "notification not found", nil)
	}
	return nil
}

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

	"gorm.io/gorm"
)

const (
	minHandleLen = 3
	maxHandleLen = 64
)

type UserService struct {
	db        *gorm.DB
	userRepo  *repository.UserRepository
	statsRepo *repository.StatsRepository
}

func NewUserService(db *gorm.DB, userRepo *repository.UserRepository, statsRepo *repository.StatsRepository) *UserService {
	return &UserService{
		db:        db,
		userRepo:  userRepo,
		statsRepo: statsRepo,
	}
}

// Register creates the profile and its zeroed stats row for an authenticated user.
// Registering an existing id returns the stored profile unchanged.
func (s *UserService) Register(ctx context.Context, id uuid.UUID, handle string) (*models.User, error) {
	if id == uuid.Nil {
		return nil, errors.New(errors.ErrInvalidInput, "user id is required", nil)
	}
	handle = strings.TrimSpace(handle)
	if len(handle) < minHandleLen || len(handle) > maxHandleLen {
		return nil, errors.New(errors.ErrInvalidInput, "handle must be between 3 and 64 characters", nil)
	}

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		existing, err := users.GetByID(ctx, id)
		if err != nil {
			return errors.New(errors.ErrDatabase, "failed to load user", err)
		}
		if existing != nil {
			user = existing
			return nil
		}

		taken, err := users.GetByHandle(ctx, handle)
		if err != nil {
			return errors.New(errors.ErrDatabase, "failed to check handle", err)
		}
		if taken != nil {
			return errors.New(errors.ErrConflict, "handle already taken", nil)
		}

		user = &models.User{ID: id, Handle: handle, Role: models.RoleStudent}
		if err := users.Create(ctx, user); err != nil {
			return errors.New(errors.ErrDatabase, "failed to create user", err)
		}
		if err := s.statsRepo.WithTx(tx).Ensure(ctx, id); err != nil {
			return errors.New(errors.ErrDatabase, "failed to create stats", err)
		}

		logger.WithFields(logrus.Fields{
			"user_id": id,
			"handle":  handle,
		}).Info("User registered")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load user", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrNotFound, "user not found", nil)
	}
	return user, nil
}

// Stats returns the user's totals; a user without a stats row reads as all zeros.
func (s *UserService) Stats(ctx context.Context, id uuid.UUID) (*models.CharacterStats, error) {
	stats, err := s.statsRepo.GetByUser(ctx, id)
	if err != nil {
		return nil, errors.New(errors.ErrDatabase, "failed to load stats", err)
	}
	if stats == nil {
		return &models.CharacterStats{UserID: id}, nil
	}
	return stats, nil
}

// RequireAdmin returns FORBIDDEN unless the user exists and holds the admin role.
func (s *UserService) RequireAdmin(ctx context.Context, id uuid.UUID) error {
	return requireAdmin(ctx, s.userRepo, id)
}

func requireAdmin(ctx context.Context, users *repository.UserRepository, id uuid.UUID) error {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return errors.New(errors.ErrDatabase, "failed to load user", err)
	}
	if !user.IsAdmin() {
		return errors.New(errors.ErrForbidden, "admin role required", nil)
	}
	return nil
}

// SetRole is an operator action; it is not reachable over HTTP.
func (s *UserService) SetRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	if role != models.RoleStudent && role != models.RoleAdmin {
		return errors.New(errors.ErrInvalidInput, "unknown role: "+string(role), nil)
	}
	ok, err := s.userRepo.SetRole(ctx, id, role)
	if err != nil {
		return errors.New(errors.ErrDatabase, "failed to update role", err)
	}
	if !ok {
		return errors.New(errors.ErrNotFound, "user not found", nil)
	}

	logger.WithFields(logrus.Fields{
		"user_id": id,
		"role":    role,
	}).Info("User role changed")
	return nil
}

func (s *UserService) Promote(ctx context.Context, id uuid.UUID) error {
	return s.SetRole(ctx, id, models.RoleAdmin)
}

package service

import (
	"context"
	"strings"

	"cleanhive/internal/auth"
	"cleanhive/internal/domain"
	"cleanhive/internal/events"
	"cleanhive/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewUserService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Register creates a customer account. The role is never taken from the
// request; elevated accounts are created by admins through ChangeStatus flows.
func (s *UserService) Register(ctx context.Context, email, password, fullName, phone string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Phone:        phone,
		Role:         models.RoleCustomer,
		Status:       models.UserActive,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventUserRegistered, map[string]interface{}{
			"user_id": user.ID,
			"role":    user.Role,
		})
	}

	return user, nil
}

// Authenticate verifies credentials. Suspended accounts cannot log in;
// failures are recorded as security events.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		s.recordSecurityEvent(ctx, "login_failed", user.ID, "wrong password")
		return nil, auth.ErrInvalidCredentials
	}

	if user.Status == models.UserSuspended {
		s.recordSecurityEvent(ctx, "login_suspended", user.ID, "suspended account login attempt")
		return nil, auth.ErrInvalidCredentials
	}

	if err := s.repo.UpdateUserActivity(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to update user activity")
	}

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, role, status string) ([]*models.User, error) {
	return s.repo.ListUsers(ctx, role, status)
}

// ChangeStatus moves a user through the account state machine.
func (s *UserService) ChangeStatus(ctx context.Context, id, version int64, status string, actorID int64) error {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if err := models.CheckUserTransition(user.Status, status); err != nil {
		return err
	}

	if err := s.repo.UpdateUserStatusWithVersion(ctx, id, version, status); err != nil {
		return err
	}

	entry := &models.AuditEntry{
		ActorID:  actorID,
		Action:   "user_status_" + status,
		Entity:   "user",
		EntityID: id,
	}
	if err := s.repo.InsertAuditEntry(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", id).Msg("failed to write audit entry")
	}

	return nil
}

func (s *UserService) recordSecurityEvent(ctx context.Context, kind string, actorID int64, details string) {
	event := &models.SecurityEvent{
		Kind:    kind,
		ActorID: actorID,
		Details: details,
	}
	if err := s.repo.InsertSecurityEvent(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("kind", kind).Msg("failed to record security event")
	}
}

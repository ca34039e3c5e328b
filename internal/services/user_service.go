package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/yukikurage/cse-council-api/internal/constants"
	"github.com/yukikurage/cse-council-api/internal/logging"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/permissions"
	"github.com/yukikurage/cse-council-api/internal/repository"
	"gorm.io/gorm"
)

// UserService manages CSE member accounts.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsersInput represents filters for listing users
type ListUsersInput struct {
	Role     *models.UserRole
	IsActive *bool
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Role     models.UserRole
	CSERole  *string
}

// UpdateUserInput represents input for updating a user. Nil fields are left unchanged.
type UpdateUserInput struct {
	Email    *string
	Password *string
	Name     *string
	Role     *models.UserRole
	CSERole  *string
	IsActive *bool
}

// ListUsers returns members, active ones first
func (s *UserService) ListUsers(actor Actor, input ListUsersInput) ([]models.User, error) {
	if err := authorize(actor, permissions.ViewMembers); err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(repository.UserFilter{Role: input.Role, IsActive: input.IsActive})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns a single member
func (s *UserService) GetUser(actor Actor, id uint64) (*models.User, error) {
	if actor.ID != id {
		if err := authorize(actor, permissions.ViewMembers); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, ErrUserNotFound, "user")
	}
	return user, nil
}

// CreateUser adds a member account
func (s *UserService) CreateUser(ctx context.Context, actor Actor, input CreateUserInput) (*models.User, error) {
	if err := authorize(actor, permissions.AddMember); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = models.UserRoleMember
	}
	if !role.Valid() {
		return nil, invalid("role", "must be one of ADMIN, PRESIDENT, MEMBER")
	}

	if err := s.ensureEmailAvailable(email, 0); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		CSERole:      trimmedPtr(input.CSERole),
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logging.FromContext(ctx).Info("user created",
		slog.Uint64("user_id", user.ID),
		slog.String("role", string(user.Role)),
		slog.Uint64("actor_id", actor.ID),
	)
	return user, nil
}

// UpdateUser edits a member account
func (s *UserService) UpdateUser(ctx context.Context, actor Actor, id uint64, input UpdateUserInput) (*models.User, error) {
	if err := authorize(actor, permissions.EditMember); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, lookupError(err, ErrUserNotFound, "user")
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			if err := s.ensureEmailAvailable(email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		user.Name = name
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, invalid("role", "must be one of ADMIN, PRESIDENT, MEMBER")
		}
		user.Role = *input.Role
	}
	if input.CSERole != nil {
		user.CSERole = trimmedPtr(input.CSERole)
	}
	if input.IsActive != nil {
		if !*input.IsActive && user.ID == actor.ID {
			return nil, ErrCannotDeactivateSelf
		}
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logging.FromContext(ctx).Info("user updated", slog.Uint64("user_id", user.ID), slog.Uint64("actor_id", actor.ID))
	return user, nil
}

// DeactivateUser soft-deletes a member. Accounts are never removed since
// meetings, feedback and signatures reference them.
func (s *UserService) DeactivateUser(ctx context.Context, actor Actor, id uint64) error {
	if err := authorize(actor, permissions.RemoveMember); err != nil {
		return err
	}
	if id == actor.ID {
		return ErrCannotDeactivateSelf
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return lookupError(err, ErrUserNotFound, "user")
	}

	user.IsActive = false
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	logging.FromContext(ctx).Info("user deactivated", slog.Uint64("user_id", id), slog.Uint64("actor_id", actor.ID))
	return nil
}

func (s *UserService) ensureEmailAvailable(email string, selfID uint64) error {
	existing, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing.ID != selfID {
		return ErrEmailTaken
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email", "is not a valid address")
	}
	return nil
}

func validatePassword(password string) error {
	if runeLen(password) < constants.MinPasswordLength {
		return invalid("password", "must be at least %d characters", constants.MinPasswordLength)
	}
	return nil
}

func validateName(name string) error {
	if runeLen(name) < constants.MinUserNameLength {
		return invalid("name", "must be at least %d characters", constants.MinUserNameLength)
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/cse-council-api/internal/config"
	"github.com/yukikurage/cse-council-api/internal/logging"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/repository"
	"github.com/yukikurage/cse-council-api/internal/utils"
)

// SeedResult describes what SeedPresident did. Password is only set when
// it was generated.
type SeedResult struct {
	User     *models.User
	Created  bool
	Password string
}

// SeedPresident creates the initial president account when no active
// manager exists. A missing password is generated and returned once.
func SeedPresident(ctx context.Context, userRepo repository.UserRepository, cfg config.SeedConfig) (*SeedResult, error) {
	logger := logging.FromContext(ctx)

	managers, err := userRepo.CountActiveManagers()
	if err != nil {
		return nil, fmt.Errorf("failed to count managers: %w", err)
	}
	if managers > 0 {
		logger.Info("seed skipped, an active manager already exists", slog.Int64("managers", managers))
		return &SeedResult{}, nil
	}

	email := normalizeEmail(cfg.PresidentEmail)
	if err := validateEmail(email); err != nil {
		return nil, fmt.Errorf("seed.president_email: %w", err)
	}
	name := strings.TrimSpace(cfg.PresidentName)
	if err := validateName(name); err != nil {
		return nil, fmt.Errorf("seed.president_name: %w", err)
	}

	result := &SeedResult{Created: true}
	password := cfg.PresidentPassword
	if password == "" {
		password, err = utils.GenerateTemporaryPassword()
		if err != nil {
			return nil, err
		}
		result.Password = password
	} else if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("seed.president_password: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         models.UserRolePresident,
		CSERole:      trimmedPtr(&cfg.PresidentCSERole),
		IsActive:     true,
	}
	if err := userRepo.Create(user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, fmt.Errorf("seed: %w", ErrEmailTaken)
		}
		return nil, fmt.Errorf("failed to create president: %w", err)
	}

	logger.Info("president account created", slog.Uint64("user_id", user.ID), slog.String("email", user.Email))
	result.User = user
	return result, nil
}

package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/accounts-service/internal/auth"
	"github.com/spec-kit/accounts-service/internal/config"
	"github.com/spec-kit/accounts-service/internal/domain"
	"github.com/spec-kit/accounts-service/internal/repository"
)

// EnsureSuperAdmin creates the bootstrap SUPER_ADMIN account when it does
// not exist yet. Idempotent across restarts. Skipped when no seed password
// is configured.
func EnsureSuperAdmin(ctx context.Context, cfg config.SeedConfig, users repository.UserRepository, bcryptCost int, logger *zap.Logger) error {
	if cfg.SuperAdminEmail == "" || cfg.SuperAdminPassword == "" {
		logger.Warn("super admin seed skipped; SEED_SUPER_ADMIN_PASSWORD not set")
		return nil
	}

	email := NormalizeEmail(cfg.SuperAdminEmail)
	if _, err := users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.SuperAdminPassword, bcryptCost)
	if err != nil {
		return err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    cfg.SuperAdminFirstName,
		LastName:     cfg.SuperAdminLastName,
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		return err
	}

	logger.Info("seeded super admin account", zap.String("email", email))
	return nil
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sharebite/internal/config"
	"sharebite/internal/domain"
	"sharebite/internal/logger"
	"sharebite/internal/repository"
)

// EnsureAdmin creates the configured administrator account if it is missing.
// It does nothing when no admin email is configured.
func EnsureAdmin(ctx context.Context, cfg config.AdminConfig, orgs repository.OrganizationRepository) (*domain.Organization, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" {
		return nil, nil
	}
	if strings.TrimSpace(cfg.Password) == "" {
		return nil, fmt.Errorf("admin bootstrap missing password")
	}

	existing, err := orgs.GetByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			return nil, fmt.Errorf("bootstrap: %s is registered as a %s, not an admin", email, existing.Role)
		}
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("bootstrap lookup admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("bootstrap hash password: %w", err)
	}

	now := time.Now()
	admin := &domain.Organization{
		Name:               cfg.Name,
		Role:               domain.RoleAdmin,
		Email:              email,
		PasswordHash:       string(hashed),
		VerificationStatus: domain.VerificationStatusApproved,
		VerifiedAt:         &now,
	}
	if err := orgs.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("bootstrap create admin: %w", err)
	}

	logger.Info("Admin account created", "email", email, "org_id", admin.ID)
	return admin, nil
}

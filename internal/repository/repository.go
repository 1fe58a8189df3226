package repository

import (
	"context"
	"errors"
	"time"

	"sharebite/internal/domain"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleState is returned by conditional writes whose expected status
	// no longer matches the stored one.
	ErrStaleState = errors.New("record changed state")
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id int32) (*domain.Organization, error)
	GetByEmail(ctx context.Context, email string) (*domain.Organization, error)
	Update(ctx context.Context, org *domain.Organization) error
	ListByStatus(ctx context.Context, status domain.VerificationStatus) ([]domain.Organization, error)
}

type FoodPostRepository interface {
	Create(ctx context.Context, post *domain.FoodPost) error
	GetByID(ctx context.Context, id int32) (*domain.FoodPost, error)
	// List returns posts newest first, optionally restricted to one status.
	List(ctx context.Context, status domain.FoodStatus) ([]domain.FoodPost, error)
	ListByOwner(ctx context.Context, ownerID int32) ([]domain.FoodPost, error)
	ListByClaimant(ctx context.Context, claimantID int32) ([]domain.FoodPost, error)
	// UpdateLifecycle persists status, claimant and timestamps only if the
	// stored status still equals from. Otherwise it returns ErrStaleState.
	UpdateLifecycle(ctx context.Context, post *domain.FoodPost, from domain.FoodStatus) error
	// Delete removes the post only if its stored status equals from.
	Delete(ctx context.Context, id int32, from domain.FoodStatus) error
	// ListExpirable returns available posts whose expiry date is before cutoff.
	ListExpirable(ctx context.Context, cutoff time.Time) ([]domain.FoodPost, error)
	CountActivity(ctx context.Context, orgID int32) (domain.ActivityCounts, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	List(ctx context.Context) ([]domain.Report, error)
	Update(ctx context.Context, report *domain.Report) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Organizations OrganizationRepository
	FoodPosts     FoodPostRepository
	Reports       ReportRepository
}

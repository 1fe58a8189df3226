package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sharebite/internal/domain"
	"sharebite/internal/logger"
	"sharebite/internal/metrics"
	"sharebite/internal/repository"
)

type adminService struct {
	orgRepo  repository.OrganizationRepository
	postRepo repository.FoodPostRepository
	emailSvc EmailService
	now      func() time.Time
}

func NewAdminService(
	orgRepo repository.OrganizationRepository,
	postRepo repository.FoodPostRepository,
	emailSvc EmailService,
) AdminService {
	return &adminService{
		orgRepo:  orgRepo,
		postRepo: postRepo,
		emailSvc: emailSvc,
		now:      time.Now,
	}
}

func (s *adminService) summaries(ctx context.Context, orgs []domain.Organization) ([]domain.OrganizationSummary, error) {
	out := make([]domain.OrganizationSummary, 0, len(orgs))
	for _, o := range orgs {
		counts, err := s.postRepo.CountActivity(ctx, o.ID)
		if err != nil {
			return nil, domain.NewInternalError(err)
		}
		out = append(out, domain.OrganizationSummary{Organization: o, ActivityCounts: counts})
	}
	return out, nil
}

func (s *adminService) ListPendingOrganizations(ctx context.Context) ([]domain.OrganizationSummary, error) {
	var orgs []domain.Organization
	for _, status := range []domain.VerificationStatus{domain.VerificationStatusPending, domain.VerificationStatusUnderReview} {
		batch, err := s.orgRepo.ListByStatus(ctx, status)
		if err != nil {
			return nil, domain.NewInternalError(err)
		}
		orgs = append(orgs, batch...)
	}
	return s.summaries(ctx, orgs)
}

func (s *adminService) ListVerifiedOrganizations(ctx context.Context) ([]domain.OrganizationSummary, error) {
	orgs, err := s.orgRepo.ListByStatus(ctx, domain.VerificationStatusApproved)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	return s.summaries(ctx, orgs)
}

func (s *adminService) getOrg(ctx context.Context, orgID int32) (*domain.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("organization", orgID)
		}
		return nil, domain.NewInternalError(err)
	}
	if org.IsAdmin() {
		return nil, domain.NewStateError("Administrator accounts cannot be reviewed")
	}
	return org, nil
}

func (s *adminService) VerifyOrganization(ctx context.Context, adminID, orgID int32, decision domain.VerificationDecision, notes string) (*domain.Organization, error) {
	org, err := s.getOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := org.Verify(decision, notes, s.now()); err != nil {
		return nil, err
	}
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, domain.NewInternalError(err)
	}

	metrics.VerificationDecisions.WithLabelValues(string(org.VerificationStatus)).Inc()
	logger.Info("Organization verification decided", "org_id", org.ID, "admin_id", adminID, "status", org.VerificationStatus)

	// Notify organization
	_ = s.emailSvc.SendVerificationDecision(ctx, org.Email, org.Name, org.VerificationStatus, org.VerificationNotes)
	return org, nil
}

func (s *adminService) SuspendOrganization(ctx context.Context, adminID, orgID int32, action domain.SuspensionAction, reason string) (*domain.Organization, error) {
	org, err := s.getOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := org.ApplySuspension(action, reason); err != nil {
		return nil, err
	}
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, domain.NewInternalError(err)
	}

	logger.Info("Organization suspension changed", "org_id", org.ID, "admin_id", adminID, "action", action)

	// Notify organization
	_ = s.emailSvc.SendSuspensionNotice(ctx, org.Email, org.Name, action, strings.TrimSpace(reason))
	return org, nil
}

func (s *adminService) GetOrganizationDetails(ctx context.Context, orgID int32) (*domain.OrganizationDetails, error) {
	org, err := s.getOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	counts, err := s.postRepo.CountActivity(ctx, org.ID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	summary := domain.OrganizationSummary{Organization: *org, ActivityCounts: counts}
	return &domain.OrganizationDetails{
		OrganizationSummary: summary,
		ActivityLog:         domain.BuildActivityLog(summary),
	}, nil
}

func (s *adminService) SendPendingDigest(ctx context.Context, adminEmail string) (int, error) {
	pending, err := s.ListPendingOrganizations(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 || adminEmail == "" {
		return len(pending), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d organization(s) are waiting for verification:\n\n", len(pending))
	for _, o := range pending {
		fmt.Fprintf(&b, "- %s (%s), registered %s\n", o.Name, o.OrganizationType, o.CreatedAt.Format("2006-01-02"))
	}
	subject := fmt.Sprintf("%d organizations pending verification", len(pending))
	if err := s.emailSvc.SendAdminNotification(ctx, adminEmail, subject, b.String()); err != nil {
		return len(pending), err
	}
	return len(pending), nil
}

// Package verification is the admin-side model for approving, rejecting
// and suspending organizations.
package verification

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sharebite/internal/domain"
	"sharebite/internal/logger"
)

var errAdminOnly = domain.NewAuthorizationError("Access denied. Admin privileges required.")

// API is the part of the API client the model uses.
type API interface {
	ListPendingOrganizations(ctx context.Context) ([]domain.OrganizationSummary, error)
	ListVerifiedOrganizations(ctx context.Context) ([]domain.OrganizationSummary, error)
	VerifyOrganization(ctx context.Context, orgID int32, decision domain.VerificationDecision, notes string) (*domain.Organization, error)
	SuspendOrganization(ctx context.Context, orgID int32, action domain.SuspensionAction, reason string) (*domain.Organization, error)
	GetOrganizationDetails(ctx context.Context, orgID int32) (*domain.OrganizationDetails, error)
}

type Identity interface {
	Actor() (domain.Actor, bool)
}

type Model struct {
	api      API
	identity Identity
	log      *slog.Logger
	now      func() time.Time

	mu    sync.RWMutex
	known map[int32]domain.OrganizationSummary
}

func NewModel(api API, identity Identity) *Model {
	return &Model{
		api:      api,
		identity: identity,
		log:      logger.WithComponent("verification"),
		now:      time.Now,
		known:    make(map[int32]domain.OrganizationSummary),
	}
}

func (m *Model) requireAdmin() error {
	actor, ok := m.identity.Actor()
	if !ok || actor.Role != domain.RoleAdmin {
		return errAdminOnly
	}
	return nil
}

func (m *Model) remember(orgs ...domain.OrganizationSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range orgs {
		m.known[o.ID] = o
	}
}

func (m *Model) lookup(id int32) (domain.OrganizationSummary, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.known[id]
	return o, ok
}

// update replaces the organization part of a known summary, keeping its
// counters.
func (m *Model) update(org *domain.Organization) domain.OrganizationSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.known[org.ID]
	s.Organization = *org
	m.known[org.ID] = s
	return s
}

func (m *Model) ListPending(ctx context.Context) ([]domain.OrganizationSummary, error) {
	if err := m.requireAdmin(); err != nil {
		return nil, err
	}
	orgs, err := m.api.ListPendingOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	m.remember(orgs...)
	return orgs, nil
}

func (m *Model) ListVerified(ctx context.Context) ([]domain.OrganizationSummary, error) {
	if err := m.requireAdmin(); err != nil {
		return nil, err
	}
	orgs, err := m.api.ListVerifiedOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	m.remember(orgs...)
	return orgs, nil
}

func (m *Model) Approve(ctx context.Context, orgID int32, notes string) (*domain.OrganizationSummary, error) {
	return m.decide(ctx, orgID, domain.DecisionVerified, notes)
}

func (m *Model) Reject(ctx context.Context, orgID int32, notes string) (*domain.OrganizationSummary, error) {
	return m.decide(ctx, orgID, domain.DecisionRejected, notes)
}

func (m *Model) decide(ctx context.Context, orgID int32, decision domain.VerificationDecision, notes string) (*domain.OrganizationSummary, error) {
	if err := m.requireAdmin(); err != nil {
		return nil, err
	}
	if known, ok := m.lookup(orgID); ok {
		if err := known.Verify(decision, notes, m.now()); err != nil {
			return nil, err
		}
	}

	org, err := m.api.VerifyOrganization(ctx, orgID, decision, strings.TrimSpace(notes))
	if err != nil {
		return nil, err
	}
	s := m.update(org)
	return &s, nil
}

func (m *Model) Suspend(ctx context.Context, orgID int32, reason string) (*domain.OrganizationSummary, error) {
	return m.toggle(ctx, orgID, domain.ActionSuspend, reason)
}

func (m *Model) Unsuspend(ctx context.Context, orgID int32, reason string) (*domain.OrganizationSummary, error) {
	return m.toggle(ctx, orgID, domain.ActionUnsuspend, reason)
}

func (m *Model) toggle(ctx context.Context, orgID int32, action domain.SuspensionAction, reason string) (*domain.OrganizationSummary, error) {
	if err := m.requireAdmin(); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("Please provide a reason for this action")
	}
	if known, ok := m.lookup(orgID); ok {
		if err := known.ApplySuspension(action, reason); err != nil {
			return nil, err
		}
	}

	org, err := m.api.SuspendOrganization(ctx, orgID, action, reason)
	if err != nil {
		return nil, err
	}
	s := m.update(org)
	return &s, nil
}

// FetchDetails loads an organization's details. When the server cannot
// provide them for an organization already listed, details are assembled
// from the list entry and marked degraded.
func (m *Model) FetchDetails(ctx context.Context, orgID int32) (*domain.OrganizationDetails, error) {
	if err := m.requireAdmin(); err != nil {
		return nil, err
	}

	details, err := m.api.GetOrganizationDetails(ctx, orgID)
	if err == nil {
		return details, nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAuthorization) || errors.Is(err, domain.ErrAuthentication) {
		return nil, err
	}

	known, ok := m.lookup(orgID)
	if !ok {
		return nil, err
	}
	m.log.Warn("Organization details unavailable, using list data", "org_id", orgID, "error", err)
	return &domain.OrganizationDetails{
		OrganizationSummary: known,
		ActivityLog:         domain.BuildActivityLog(known),
		Degraded:            true,
	}, nil
}

// Stats computes the dashboard counters from the organization lists and the
// given reports.
func (m *Model) Stats(ctx context.Context, reports []domain.Report) (domain.DashboardStats, error) {
	var pending, verified []domain.OrganizationSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pending, err = m.ListPending(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		verified, err = m.ListVerified(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.DashboardStats{}, err
	}

	stats := domain.DashboardStats{
		TotalOrganizations:   len(pending) + len(verified),
		PendingVerifications: len(pending),
	}
	for _, o := range verified {
		stats.ActiveDonations += o.ActiveDonations
		stats.CompletedDonations += o.CompletedDonations
	}
	for _, list := range [][]domain.OrganizationSummary{pending, verified} {
		for _, o := range list {
			switch o.OrganizationType {
			case domain.OrganizationTypeRestaurant:
				stats.Restaurants++
			case domain.OrganizationTypeWelfare:
				stats.WelfareOrgs++
			}
		}
	}
	for _, r := range reports {
		if r.Status == domain.ReportStatusPending {
			stats.ReportedIssues++
		}
	}
	return stats, nil
}

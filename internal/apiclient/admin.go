package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"sharebite/internal/domain"
)

type verifyRequest struct {
	Action domain.VerificationDecision `json:"action"`
	Notes  string                      `json:"notes"`
}

type suspendRequest struct {
	Action domain.SuspensionAction `json:"action"`
	Reason string                  `json:"reason"`
}

func (c *Client) ListPendingOrganizations(ctx context.Context) ([]domain.OrganizationSummary, error) {
	var orgs []domain.OrganizationSummary
	if err := c.do(ctx, http.MethodGet, "/admin/pending-organizations", nil, &orgs, defaultMapping); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (c *Client) ListVerifiedOrganizations(ctx context.Context) ([]domain.OrganizationSummary, error) {
	var orgs []domain.OrganizationSummary
	if err := c.do(ctx, http.MethodGet, "/admin/verified-organizations", nil, &orgs, defaultMapping); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (c *Client) VerifyOrganization(ctx context.Context, orgID int32, decision domain.VerificationDecision, notes string) (*domain.Organization, error) {
	var org domain.Organization
	body := verifyRequest{Action: decision, Notes: notes}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/verify-organization/%d", orgID), body, &org, lifecycleMapping); err != nil {
		return nil, err
	}
	return &org, nil
}

func (c *Client) SuspendOrganization(ctx context.Context, orgID int32, action domain.SuspensionAction, reason string) (*domain.Organization, error) {
	var org domain.Organization
	body := suspendRequest{Action: action, Reason: reason}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/suspend-organization/%d", orgID), body, &org, defaultMapping); err != nil {
		return nil, err
	}
	return &org, nil
}

func (c *Client) GetOrganizationDetails(ctx context.Context, orgID int32) (*domain.OrganizationDetails, error) {
	var details domain.OrganizationDetails
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/admin/organization-details/%d", orgID), nil, &details, defaultMapping); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) SubmitReport(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	var created domain.Report
	if err := c.do(ctx, http.MethodPost, "/admin/reports", report, &created, defaultMapping); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListReports(ctx context.Context) ([]domain.Report, error) {
	var reports []domain.Report
	if err := c.do(ctx, http.MethodGet, "/admin/reports", nil, &reports, defaultMapping); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *Client) ResolveReport(ctx context.Context, reportID string) (*domain.Report, error) {
	var report domain.Report
	if err := c.do(ctx, http.MethodPost, "/admin/reports/"+url.PathEscape(reportID)+"/resolve", nil, &report, lifecycleMapping); err != nil {
		return nil, err
	}
	return &report, nil
}

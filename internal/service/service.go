package service

import (
	"context"
	"time"

	"sharebite/internal/domain"
)

// RegisterRequest is the registration form of a new organization.
type RegisterRequest struct {
	OrganizationType   domain.OrganizationType `json:"organizationType"`
	OrganizationName   string                  `json:"organizationName"`
	RegistrationNumber string                  `json:"registrationNumber"`
	PhoneNumber        string                  `json:"phoneNumber"`
	ContactPerson      string                  `json:"contactPerson"`
	Email              string                  `json:"email"`
	Address            string                  `json:"address"`
	Password           string                  `json:"password"`
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Organization, error)
	Login(ctx context.Context, email, password string) (*domain.Organization, string, error)
	Logout(ctx context.Context, orgID int32) error
}

type FoodService interface {
	CreatePost(ctx context.Context, orgID int32, post *domain.FoodPost) (*domain.FoodPost, error)
	// ListPosts returns posts of every status, newest first.
	ListPosts(ctx context.Context) ([]domain.FoodPost, error)
	ListMyPosts(ctx context.Context, orgID int32) ([]domain.FoodPost, error)
	ListMyClaims(ctx context.Context, orgID int32) ([]domain.FoodPost, error)
	ClaimPost(ctx context.Context, orgID, postID int32) (*domain.FoodPost, error)
	UpdatePostStatus(ctx context.Context, orgID, postID int32, status domain.FoodStatus) (*domain.FoodPost, error)
	DeletePost(ctx context.Context, orgID, postID int32) error
	// ExpirePosts marks every available post whose expiry date has passed.
	ExpirePosts(ctx context.Context, now time.Time) (int, error)
}

type AdminService interface {
	ListPendingOrganizations(ctx context.Context) ([]domain.OrganizationSummary, error)
	ListVerifiedOrganizations(ctx context.Context) ([]domain.OrganizationSummary, error)
	VerifyOrganization(ctx context.Context, adminID, orgID int32, decision domain.VerificationDecision, notes string) (*domain.Organization, error)
	SuspendOrganization(ctx context.Context, adminID, orgID int32, action domain.SuspensionAction, reason string) (*domain.Organization, error)
	GetOrganizationDetails(ctx context.Context, orgID int32) (*domain.OrganizationDetails, error)
	// SendPendingDigest emails the admin a summary of the verification queue.
	SendPendingDigest(ctx context.Context, adminEmail string) (int, error)
}

type ReportService interface {
	SubmitReport(ctx context.Context, reporterID int32, report *domain.Report) (*domain.Report, error)
	ListReports(ctx context.Context) ([]domain.Report, error)
	ResolveReport(ctx context.Context, adminID int32, reportID string) (*domain.Report, error)
}

type EmailService interface {
	SendRegistrationReceived(ctx context.Context, email, name string) error
	SendVerificationDecision(ctx context.Context, email, name string, status domain.VerificationStatus, notes string) error
	SendSuspensionNotice(ctx context.Context, email, name string, action domain.SuspensionAction, reason string) error
	SendClaimNotification(ctx context.Context, restaurantEmail, restaurantName, postTitle, claimantName string) error
	SendAdminNotification(ctx context.Context, adminEmail, subject, message string) error
}

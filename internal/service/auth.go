package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"sharebite/internal/domain"
	"sharebite/internal/logger"
	"sharebite/internal/repository"
	"sharebite/internal/security"
)

const minPasswordLength = 6

var ErrInvalidCredentials = domain.NewAuthenticationError("Invalid email or password")

type authService struct {
	orgRepo  repository.OrganizationRepository
	tokens   security.TokenManager
	emailSvc EmailService
}

func NewAuthService(orgRepo repository.OrganizationRepository, tokens security.TokenManager, emailSvc EmailService) AuthService {
	return &authService{
		orgRepo:  orgRepo,
		tokens:   tokens,
		emailSvc: emailSvc,
	}
}

func (r RegisterRequest) validate() error {
	fields := []string{
		string(r.OrganizationType), r.OrganizationName, r.RegistrationNumber, r.PhoneNumber,
		r.ContactPerson, r.Email, r.Address, r.Password,
	}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return domain.NewValidationError("Please fill in all required fields")
		}
	}
	if !r.OrganizationType.IsValid() {
		return domain.NewValidationError("Organization type must be 'restaurant' or 'welfare_organization'")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return domain.NewValidationError("Please enter a valid email address")
	}
	if len(r.Password) < minPasswordLength {
		return domain.NewValidationError("Password must be at least 6 characters long")
	}
	return nil
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*domain.Organization, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	org := &domain.Organization{
		Name:               strings.TrimSpace(req.OrganizationName),
		OrganizationType:   req.OrganizationType,
		Role:               req.OrganizationType.Role(),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:       string(hash),
		RegistrationNumber: strings.TrimSpace(req.RegistrationNumber),
		ContactPerson:      strings.TrimSpace(req.ContactPerson),
		PhoneNumber:        strings.TrimSpace(req.PhoneNumber),
		Address:            strings.TrimSpace(req.Address),
		VerificationStatus: domain.VerificationStatusPending,
	}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.NewConflictError("An organization with this email already exists")
		}
		return nil, domain.NewInternalError(err)
	}

	logger.Info("Organization registered", "org_id", org.ID, "type", org.OrganizationType)
	_ = s.emailSvc.SendRegistrationReceived(ctx, org.Email, org.Name)
	return org, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.Organization, string, error) {
	org, err := s.orgRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", domain.NewInternalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(org.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := org.CanAuthenticate(); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateAccessToken(org)
	if err != nil {
		return nil, "", domain.NewInternalError(err)
	}
	return org, token, nil
}

// Logout only records the event; access tokens are stateless and simply
// dropped by the client.
func (s *authService) Logout(ctx context.Context, orgID int32) error {
	logger.Info("Organization logged out", "org_id", orgID)
	return nil
}

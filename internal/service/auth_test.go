package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sharebite/internal/domain"
	"sharebite/internal/repository"
	"sharebite/internal/security"
	"sharebite/internal/service"
)

func registerRequest() service.RegisterRequest {
	return service.RegisterRequest{
		OrganizationType:   domain.OrganizationTypeWelfare,
		OrganizationName:   " Hope Shelter ",
		RegistrationNumber: "REG-1",
		PhoneNumber:        "555-0100",
		ContactPerson:      "Sam",
		Email:              "Shelter@Test.com",
		Address:            "1 Main Street",
		Password:           "secret123",
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	tokens := security.NewTokenManager("test-secret", time.Hour)

	t.Run("Success", func(t *testing.T) {
		mockOrgRepo := new(MockOrganizationRepo)
		mockEmailSvc := new(MockEmailService)
		svc := service.NewAuthService(mockOrgRepo, tokens, mockEmailSvc)

		mockOrgRepo.On("Create", ctx, mock.MatchedBy(func(o *domain.Organization) bool {
			return o.Email == "shelter@test.com" &&
				o.Name == "Hope Shelter" &&
				o.Role == domain.RoleWelfare &&
				o.VerificationStatus == domain.VerificationStatusPending &&
				bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte("secret123")) == nil
		})).Return(nil).Once()
		mockEmailSvc.On("SendRegistrationReceived", ctx, "shelter@test.com", "Hope Shelter").Return(nil).Once()

		org, err := svc.Register(ctx, registerRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.VerificationStatusPending, org.VerificationStatus)
		mockOrgRepo.AssertExpectations(t)
		mockEmailSvc.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mockOrgRepo := new(MockOrganizationRepo)
		svc := service.NewAuthService(mockOrgRepo, tokens, new(MockEmailService))
		mockOrgRepo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate).Once()

		_, err := svc.Register(ctx, registerRequest())
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	invalid := []struct {
		name   string
		modify func(r *service.RegisterRequest)
	}{
		{"MissingAddress", func(r *service.RegisterRequest) { r.Address = "" }},
		{"BadType", func(r *service.RegisterRequest) { r.OrganizationType = "admin" }},
		{"BadEmail", func(r *service.RegisterRequest) { r.Email = "not-an-email" }},
		{"ShortPassword", func(r *service.RegisterRequest) { r.Password = "12345" }},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			svc := service.NewAuthService(new(MockOrganizationRepo), tokens, nil)
			req := registerRequest()
			tc.modify(&req)
			_, err := svc.Register(ctx, req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	tokens := security.NewTokenManager("test-secret", time.Hour)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	org := func(status domain.VerificationStatus) *domain.Organization {
		return &domain.Organization{ID: 7, Name: "Hope Shelter", Role: domain.RoleWelfare, Email: "shelter@test.com", PasswordHash: string(hash), VerificationStatus: status}
	}

	t.Run("Success", func(t *testing.T) {
		mockOrgRepo := new(MockOrganizationRepo)
		svc := service.NewAuthService(mockOrgRepo, tokens, nil)
		mockOrgRepo.On("GetByEmail", ctx, "shelter@test.com").Return(org(domain.VerificationStatusApproved), nil).Once()

		got, token, err := svc.Login(ctx, "shelter@test.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, int32(7), got.ID)

		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int32(7), claims.OrgID)
		assert.Equal(t, domain.RoleWelfare, claims.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockOrgRepo := new(MockOrganizationRepo)
		svc := service.NewAuthService(mockOrgRepo, tokens, nil)
		mockOrgRepo.On("GetByEmail", ctx, "shelter@test.com").Return(org(domain.VerificationStatusApproved), nil).Once()

		_, _, err := svc.Login(ctx, "shelter@test.com", "nope")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockOrgRepo := new(MockOrganizationRepo)
		svc := service.NewAuthService(mockOrgRepo, tokens, nil)
		mockOrgRepo.On("GetByEmail", ctx, "ghost@test.com").Return(nil, repository.ErrNotFound).Once()

		_, _, err := svc.Login(ctx, "ghost@test.com", "secret123")
		assert.ErrorIs(t, err, domain.ErrAuthentication)
	})

	t.Run("PendingVerification", func(t *testing.T) {
		mockOrgRepo := new(MockOrganizationRepo)
		svc := service.NewAuthService(mockOrgRepo, tokens, nil)
		mockOrgRepo.On("GetByEmail", ctx, "shelter@test.com").Return(org(domain.VerificationStatusPending), nil).Once()

		_, token, err := svc.Login(ctx, "shelter@test.com", "secret123")
		assert.ErrorIs(t, err, domain.ErrAuthorization)
		assert.Empty(t, token)
		assert.Contains(t, domain.UserMessage(err), "pending verification")
	})
}

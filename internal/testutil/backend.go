// Package testutil runs the REST backend in process for client-side tests.
package testutil

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"sharebite/internal/apiclient"
	httpapi "sharebite/internal/api/http"
	"sharebite/internal/domain"
	"sharebite/internal/repository"
	"sharebite/internal/repository/memory"
	"sharebite/internal/security"
	"sharebite/internal/service"
	"sharebite/internal/session"
	"sharebite/internal/storage"
)

const jwtSecret = "test-secret-test-secret-test-secret-123"

// Backend is an httptest server backed by the memory repositories.
type Backend struct {
	Server *httptest.Server
	Store  *repository.Store
	Food   service.FoodService
	URL    string
}

func NewBackend(t testing.TB) *Backend {
	t.Helper()

	store := memory.NewStore()
	tokens := security.NewTokenManager(jwtSecret, time.Hour)
	emailSvc := service.NewEmailService("", "noreply@sharebite.test", "Share a Bite")
	foodSvc := service.NewFoodService(store.FoodPosts, store.Organizations, emailSvc)

	router := httpapi.NewRouter(httpapi.Services{
		Auth:   service.NewAuthService(store.Organizations, tokens, emailSvc),
		Food:   foodSvc,
		Admin:  service.NewAdminService(store.Organizations, store.FoodPosts, emailSvc),
		Report: service.NewReportService(store.Reports, store.Organizations),
	}, tokens, httpapi.RouterOptions{PathPrefix: "/api"})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &Backend{Server: srv, Store: store, Food: foodSvc, URL: srv.URL + "/api"}
}

// Seed stores an approved organization that can log in with password.
func (b *Backend) Seed(t testing.TB, name string, role domain.Role, password string) *domain.Organization {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	org := &domain.Organization{
		Name:               name,
		Role:               role,
		Email:              strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@sharebite.test",
		PasswordHash:       string(hashed),
		RegistrationNumber: "REG-" + name,
		ContactPerson:      "Contact " + name,
		PhoneNumber:        "555-0100",
		Address:            "1 Test Street",
		VerificationStatus: domain.VerificationStatusApproved,
		VerifiedAt:         &now,
	}
	if role != domain.RoleAdmin {
		org.OrganizationType = domain.OrganizationType(role)
	}
	require.NoError(t, b.Store.Organizations.Create(context.Background(), org))
	return org
}

// Client returns an API client wired to a fresh, signed-out session.
func (b *Backend) Client(t testing.TB) (*apiclient.Client, *session.Store) {
	t.Helper()

	client := apiclient.New(b.URL, 5*time.Second)
	sess := session.New(client, storage.NewMemoryStore())
	client.SetTokenSource(sess)
	client.SetUnauthorizedHandler(sess.Invalidate)
	require.NoError(t, sess.Restore(context.Background()))
	return client, sess
}

// LoginAs returns a client signed in as org.
func (b *Backend) LoginAs(t testing.TB, org *domain.Organization, password string) (*apiclient.Client, *session.Store) {
	t.Helper()

	client, sess := b.Client(t)
	_, err := sess.Login(context.Background(), org.Email, password)
	require.NoError(t, err)
	return client, sess
}

// Post is a valid donation to publish in tests.
func Post(title string) domain.FoodPost {
	now := time.Now()
	return domain.FoodPost{
		Title:           title,
		Description:     "Fresh " + strings.ToLower(title) + " from today's service",
		Category:        domain.CategoryPreparedMeals,
		Quantity:        "20 portions",
		PickupLocation:  "12 Market Road",
		PickupTimeStart: now.Add(time.Hour),
		PickupTimeEnd:   now.Add(3 * time.Hour),
		ExpiryDate:      now.Add(24 * time.Hour),
	}
}

// Registration is a complete sign-up form. The email follows the same
// pattern as Seed.
func Registration(name string, typ domain.OrganizationType, password string) session.RegistrationForm {
	return session.RegistrationForm{
		OrganizationType:   typ,
		OrganizationName:   name,
		RegistrationNumber: "REG-" + name,
		PhoneNumber:        "555-0101",
		ContactPerson:      "Contact " + name,
		Email:              strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@sharebite.test",
		Address:            "2 Test Street",
		Password:           password,
		ConfirmPassword:    password,
	}
}

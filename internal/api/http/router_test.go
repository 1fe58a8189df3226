package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpapi "sharebite/internal/api/http"
	"sharebite/internal/domain"
	"sharebite/internal/repository"
	"sharebite/internal/repository/memory"
	"sharebite/internal/security"
	"sharebite/internal/service"
)

type apiFixture struct {
	router http.Handler
	store  *repository.Store
	tokens security.TokenManager
}

func newFixture(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	tokens := security.NewTokenManager("router-test-secret", time.Hour)
	emailSvc := service.NewEmailService("", "noreply@sharebite.test", "Share a Bite")
	router := httpapi.NewRouter(httpapi.Services{
		Auth:   service.NewAuthService(store.Organizations, tokens, emailSvc),
		Food:   service.NewFoodService(store.FoodPosts, store.Organizations, emailSvc),
		Admin:  service.NewAdminService(store.Organizations, store.FoodPosts, emailSvc),
		Report: service.NewReportService(store.Reports, store.Organizations),
	}, tokens, httpapi.RouterOptions{PathPrefix: "/api", MetricsEnabled: true})
	return &apiFixture{router: router, store: store, tokens: tokens}
}

func (f *apiFixture) seed(t *testing.T, name string, role domain.Role) (*domain.Organization, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	org := &domain.Organization{
		Name:               name,
		Role:               role,
		Email:              fmt.Sprintf("%s@test.com", role),
		PasswordHash:       string(hash),
		VerificationStatus: domain.VerificationStatusApproved,
	}
	if role != domain.RoleAdmin {
		org.OrganizationType = domain.OrganizationType(role)
	}
	require.NoError(t, f.store.Organizations.Create(context.Background(), org))
	token, err := f.tokens.GenerateAccessToken(org)
	require.NoError(t, err)
	return org, token
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httpapi.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func newPostBody() domain.FoodPost {
	now := time.Now()
	return domain.FoodPost{
		Title:           "Fresh Bread",
		Description:     "Twenty loaves",
		Category:        domain.CategoryBakedGoods,
		Quantity:        "20 loaves",
		PickupLocation:  "5 Baker Street",
		PickupTimeStart: now.Add(time.Hour),
		PickupTimeEnd:   now.Add(2 * time.Hour),
		ExpiryDate:      now.Add(24 * time.Hour),
	}
}

func TestRouter_PublicEndpoints(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/metrics", "", nil).Code)

	registration := service.RegisterRequest{
		OrganizationType:   domain.OrganizationTypeWelfare,
		OrganizationName:   "Soup Bowl",
		RegistrationNumber: "REG-1",
		PhoneNumber:        "555-0100",
		ContactPerson:      "Sam",
		Email:              "soup@test.com",
		Address:            "1 Main Street",
		Password:           "password123",
	}
	rec := f.do(t, http.MethodPost, "/api/auth/register", "", registration)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/auth/register", "", registration)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// pending organizations cannot sign in yet
	rec = f.do(t, http.MethodPost, "/api/auth/login", "", httpapi.LoginRequest{Email: "soup@test.com", Password: "password123"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, errorBody(t, rec), "pending verification")

	rec = f.do(t, http.MethodPost, "/api/auth/login", "", httpapi.LoginRequest{Email: "soup@test.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Authentication(t *testing.T) {
	f := newFixture(t)
	_, welfareToken := f.seed(t, "Hope Shelter", domain.RoleWelfare)

	rec := f.do(t, http.MethodGet, "/api/food/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access denied. No token provided.", errorBody(t, rec))

	rec = f.do(t, http.MethodGet, "/api/food/posts", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/food/posts", welfareToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/admin/pending-organizations", welfareToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Admin privileges required.", errorBody(t, rec))
}

func TestRouter_DonationLifecycle(t *testing.T) {
	f := newFixture(t)
	_, restaurantToken := f.seed(t, "Corner Bakery", domain.RoleRestaurant)
	_, welfareToken := f.seed(t, "Hope Shelter", domain.RoleWelfare)

	rec := f.do(t, http.MethodPost, "/api/food/posts", restaurantToken, newPostBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post domain.FoodPost
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, domain.FoodStatusAvailable, post.Status)
	postPath := fmt.Sprintf("/api/food/posts/%d", post.ID)

	rec = f.do(t, http.MethodPost, "/api/food/posts", welfareToken, newPostBody())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, postPath+"/claim", welfareToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	require.NotNil(t, post.Claimant)
	assert.Equal(t, "Hope Shelter", post.Claimant.Name)

	rec = f.do(t, http.MethodPost, postPath+"/claim", welfareToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already been claimed")

	rec = f.do(t, http.MethodDelete, postPath, restaurantToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, postPath, restaurantToken, httpapi.StatusUpdateRequest{Status: domain.FoodStatusExpired})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, postPath, restaurantToken, httpapi.StatusUpdateRequest{Status: domain.FoodStatusCompleted})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/food/my-claims", welfareToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var claims []domain.FoodPost
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &claims))
	require.Len(t, claims, 1)
	assert.Equal(t, domain.FoodStatusCompleted, claims[0].Status)

	rec = f.do(t, http.MethodDelete, "/api/food/posts/999", restaurantToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/food/posts/abc", restaurantToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AdminVerification(t *testing.T) {
	f := newFixture(t)
	_, adminToken := f.seed(t, "Site Admin", domain.RoleAdmin)

	pending := &domain.Organization{Name: "Soup Bowl", Role: domain.RoleWelfare, OrganizationType: domain.OrganizationTypeWelfare, Email: "soup@test.com", VerificationStatus: domain.VerificationStatusPending}
	require.NoError(t, f.store.Organizations.Create(context.Background(), pending))

	rec := f.do(t, http.MethodGet, "/api/admin/pending-organizations", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orgs []domain.OrganizationSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orgs))
	require.Len(t, orgs, 1)

	verifyPath := fmt.Sprintf("/api/admin/verify-organization/%d", pending.ID)
	rec = f.do(t, http.MethodPost, verifyPath, adminToken, httpapi.VerifyRequest{Action: domain.DecisionVerified, Notes: "ok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, verifyPath, adminToken, httpapi.VerifyRequest{Action: domain.DecisionRejected})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	suspendPath := fmt.Sprintf("/api/admin/suspend-organization/%d", pending.ID)
	rec = f.do(t, http.MethodPost, suspendPath, adminToken, httpapi.SuspendRequest{Action: domain.ActionSuspend})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide a reason for this action", errorBody(t, rec))

	rec = f.do(t, http.MethodPost, suspendPath, adminToken, httpapi.SuspendRequest{Action: domain.ActionSuspend, Reason: "spam"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/admin/organization-details/%d", pending.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details domain.OrganizationDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.True(t, details.Suspended)
	assert.Contains(t, details.ActivityLog, "Suspended: spam")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, httpapi.StatusFor(domain.KindState))
	assert.Equal(t, http.StatusConflict, httpapi.StatusFor(domain.KindConflict))
	assert.Equal(t, http.StatusNotImplemented, httpapi.StatusFor(domain.KindUnsupported))
	assert.Equal(t, http.StatusInternalServerError, httpapi.StatusFor(domain.KindInternal))
}

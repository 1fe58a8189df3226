package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"sharebite/internal/domain"
)

// MockOrganizationRepo
type MockOrganizationRepo struct {
	mock.Mock
}

func (m *MockOrganizationRepo) Create(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}
func (m *MockOrganizationRepo) GetByID(ctx context.Context, id int32) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}
func (m *MockOrganizationRepo) GetByEmail(ctx context.Context, email string) (*domain.Organization, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}
func (m *MockOrganizationRepo) Update(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}
func (m *MockOrganizationRepo) ListByStatus(ctx context.Context, status domain.VerificationStatus) ([]domain.Organization, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Organization), args.Error(1)
}

// MockFoodPostRepo
type MockFoodPostRepo struct {
	mock.Mock
}

func (m *MockFoodPostRepo) Create(ctx context.Context, post *domain.FoodPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}
func (m *MockFoodPostRepo) GetByID(ctx context.Context, id int32) (*domain.FoodPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FoodPost), args.Error(1)
}
func (m *MockFoodPostRepo) List(ctx context.Context, status domain.FoodStatus) ([]domain.FoodPost, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.FoodPost), args.Error(1)
}
func (m *MockFoodPostRepo) ListByOwner(ctx context.Context, ownerID int32) ([]domain.FoodPost, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.FoodPost), args.Error(1)
}
func (m *MockFoodPostRepo) ListByClaimant(ctx context.Context, claimantID int32) ([]domain.FoodPost, error) {
	args := m.Called(ctx, claimantID)
	return args.Get(0).([]domain.FoodPost), args.Error(1)
}
func (m *MockFoodPostRepo) UpdateLifecycle(ctx context.Context, post *domain.FoodPost, from domain.FoodStatus) error {
	args := m.Called(ctx, post, from)
	return args.Error(0)
}
func (m *MockFoodPostRepo) Delete(ctx context.Context, id int32, from domain.FoodStatus) error {
	args := m.Called(ctx, id, from)
	return args.Error(0)
}
func (m *MockFoodPostRepo) ListExpirable(ctx context.Context, cutoff time.Time) ([]domain.FoodPost, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.FoodPost), args.Error(1)
}
func (m *MockFoodPostRepo) CountActivity(ctx context.Context, orgID int32) (domain.ActivityCounts, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(domain.ActivityCounts), args.Error(1)
}

// MockReportRepo
type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) Create(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
func (m *MockReportRepo) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}
func (m *MockReportRepo) List(ctx context.Context) ([]domain.Report, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Report), args.Error(1)
}
func (m *MockReportRepo) Update(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRegistrationReceived(ctx context.Context, email, name string) error {
	args := m.Called(ctx, email, name)
	return args.Error(0)
}
func (m *MockEmailService) SendVerificationDecision(ctx context.Context, email, name string, status domain.VerificationStatus, notes string) error {
	args := m.Called(ctx, email, name, status, notes)
	return args.Error(0)
}
func (m *MockEmailService) SendSuspensionNotice(ctx context.Context, email, name string, action domain.SuspensionAction, reason string) error {
	args := m.Called(ctx, email, name, action, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendClaimNotification(ctx context.Context, restaurantEmail, restaurantName, postTitle, claimantName string) error {
	args := m.Called(ctx, restaurantEmail, restaurantName, postTitle, claimantName)
	return args.Error(0)
}
func (m *MockEmailService) SendAdminNotification(ctx context.Context, adminEmail, subject, message string) error {
	args := m.Called(ctx, adminEmail, subject, message)
	return args.Error(0)
}

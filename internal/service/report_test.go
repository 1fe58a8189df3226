package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sharebite/internal/domain"
	"sharebite/internal/repository"
	"sharebite/internal/service"
)

func noShowReport(id string) *domain.Report {
	return &domain.Report{
		ID:             id,
		Type:           domain.ReportTypeNoShow,
		ReportedEntity: domain.ReportedEntity{Type: domain.OrganizationTypeWelfare, ID: 2, Name: "Hope Shelter"},
		Description:    "Nobody came to pick up the bread",
	}
}

func TestReportService_SubmitReport(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockReportRepo := new(MockReportRepo)
		mockOrgRepo := new(MockOrganizationRepo)
		svc := service.NewReportService(mockReportRepo, mockOrgRepo)

		mockOrgRepo.On("GetByID", ctx, int32(1)).Return(bakery, nil).Once()
		mockReportRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.Report) bool {
			return r.ID != "" && r.Status == domain.ReportStatusPending && r.Priority == domain.PriorityMedium && r.ReportedBy.ID == 1
		})).Return(nil).Once()

		r, err := svc.SubmitReport(ctx, 1, noShowReport(""))
		require.NoError(t, err)
		_, err = uuid.Parse(r.ID)
		assert.NoError(t, err)
	})

	t.Run("ReplayIsIdempotent", func(t *testing.T) {
		mockReportRepo := new(MockReportRepo)
		mockOrgRepo := new(MockOrganizationRepo)
		svc := service.NewReportService(mockReportRepo, mockOrgRepo)

		id := uuid.NewString()
		stored := noShowReport(id)
		stored.Status = domain.ReportStatusPending
		mockOrgRepo.On("GetByID", ctx, int32(1)).Return(bakery, nil).Once()
		mockReportRepo.On("GetByID", ctx, id).Return(stored, nil).Once()

		r, err := svc.SubmitReport(ctx, 1, noShowReport(id))
		require.NoError(t, err)
		assert.Same(t, stored, r)
		mockReportRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("SelfReport", func(t *testing.T) {
		mockOrgRepo := new(MockOrganizationRepo)
		svc := service.NewReportService(new(MockReportRepo), mockOrgRepo)
		mockOrgRepo.On("GetByID", ctx, int32(2)).Return(shelter, nil).Once()

		_, err := svc.SubmitReport(ctx, 2, noShowReport(""))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("ShortDescription", func(t *testing.T) {
		mockOrgRepo := new(MockOrganizationRepo)
		svc := service.NewReportService(new(MockReportRepo), mockOrgRepo)
		mockOrgRepo.On("GetByID", ctx, int32(1)).Return(bakery, nil).Once()

		r := noShowReport("")
		r.Description = "too short"
		_, err := svc.SubmitReport(ctx, 1, r)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("MalformedID", func(t *testing.T) {
		mockOrgRepo := new(MockOrganizationRepo)
		svc := service.NewReportService(new(MockReportRepo), mockOrgRepo)
		mockOrgRepo.On("GetByID", ctx, int32(1)).Return(bakery, nil).Once()

		_, err := svc.SubmitReport(ctx, 1, noShowReport("report-1"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestReportService_ResolveReport(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockReportRepo := new(MockReportRepo)
		svc := service.NewReportService(mockReportRepo, nil)

		r := noShowReport("r1")
		r.Status = domain.ReportStatusPending
		mockReportRepo.On("GetByID", ctx, "r1").Return(r, nil).Once()
		mockReportRepo.On("Update", ctx, mock.MatchedBy(func(r *domain.Report) bool {
			return r.Status == domain.ReportStatusResolved && r.ResolvedAt != nil
		})).Return(nil).Once()

		got, err := svc.ResolveReport(ctx, 9, "r1")
		require.NoError(t, err)
		assert.Equal(t, domain.ReportStatusResolved, got.Status)
	})

	t.Run("AlreadyResolved", func(t *testing.T) {
		mockReportRepo := new(MockReportRepo)
		svc := service.NewReportService(mockReportRepo, nil)

		r := noShowReport("r1")
		r.Status = domain.ReportStatusResolved
		mockReportRepo.On("GetByID", ctx, "r1").Return(r, nil).Once()

		_, err := svc.ResolveReport(ctx, 9, "r1")
		assert.ErrorIs(t, err, domain.ErrState)
	})

	t.Run("Missing", func(t *testing.T) {
		mockReportRepo := new(MockReportRepo)
		svc := service.NewReportService(mockReportRepo, nil)
		mockReportRepo.On("GetByID", ctx, "nope").Return(nil, repository.ErrNotFound).Once()

		_, err := svc.ResolveReport(ctx, 9, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"sharebite/internal/domain"
	"sharebite/internal/logger"
	"sharebite/internal/metrics"
	"sharebite/internal/repository"
)

type reportService struct {
	reportRepo repository.ReportRepository
	orgRepo    repository.OrganizationRepository
	now        func() time.Time
}

func NewReportService(reportRepo repository.ReportRepository, orgRepo repository.OrganizationRepository) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		orgRepo:    orgRepo,
		now:        time.Now,
	}
}

// SubmitReport stores a report filed by reporterID. A client-generated id is
// kept so that replaying a locally queued report does not create a second
// copy.
func (s *reportService) SubmitReport(ctx context.Context, reporterID int32, r *domain.Report) (*domain.Report, error) {
	reporter, err := loadCaller(ctx, s.orgRepo, reporterID)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.ReportedEntity.ID == reporter.ID {
		return nil, domain.NewValidationError("You cannot report your own organization")
	}

	if r.ID != "" {
		if _, err := uuid.Parse(r.ID); err != nil {
			return nil, domain.NewValidationError("Report id must be a UUID")
		}
		if existing, err := s.reportRepo.GetByID(ctx, r.ID); err == nil {
			return existing, nil
		}
	} else {
		r.ID = uuid.NewString()
	}

	r.Normalize()
	r.Status = domain.ReportStatusPending
	r.ResolvedAt = nil
	r.ReportedBy = reporter.Ref()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	if err := s.reportRepo.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return r, nil
		}
		return nil, domain.NewInternalError(err)
	}
	metrics.ReportsSubmitted.WithLabelValues(string(r.Type)).Inc()
	logger.Info("Report submitted", "report_id", r.ID, "type", r.Type, "reported_id", r.ReportedEntity.ID)
	return r, nil
}

func (s *reportService) ListReports(ctx context.Context) ([]domain.Report, error) {
	reports, err := s.reportRepo.List(ctx)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	return reports, nil
}

func (s *reportService) ResolveReport(ctx context.Context, adminID int32, reportID string) (*domain.Report, error) {
	r, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("report", reportID)
		}
		return nil, domain.NewInternalError(err)
	}
	if err := r.Resolve(s.now()); err != nil {
		return nil, err
	}
	if err := s.reportRepo.Update(ctx, r); err != nil {
		return nil, domain.NewInternalError(err)
	}
	logger.Info("Report resolved", "report_id", r.ID, "admin_id", adminID)
	return r, nil
}

// Package reports lets organizations report problems with each other and
// lets admins review them.
package reports

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sharebite/internal/domain"
	"sharebite/internal/logger"
)

// AdminAPI is the part of the API client used for reviewing reports.
type AdminAPI interface {
	ListReports(ctx context.Context) ([]domain.Report, error)
	ResolveReport(ctx context.Context, reportID string) (*domain.Report, error)
}

type Identity interface {
	Actor() (domain.Actor, bool)
}

// Input is what the reporter fills in.
type Input struct {
	Type        domain.ReportType
	Description string
	Priority    domain.ReportPriority
}

type Model struct {
	sink     *Tiered
	api      AdminAPI
	identity Identity
	log      *slog.Logger
	now      func() time.Time
}

func NewModel(sink *Tiered, api AdminAPI, identity Identity) *Model {
	return &Model{
		sink:     sink,
		api:      api,
		identity: identity,
		log:      logger.WithComponent("reports"),
		now:      time.Now,
	}
}

// Submit validates and stores a report about entity. It succeeds when the
// report reached the server or the local queue.
func (m *Model) Submit(ctx context.Context, entity domain.ReportedEntity, in Input) (Receipt, error) {
	actor, ok := m.identity.Actor()
	if !ok {
		return Receipt{}, domain.NewAuthenticationError("Authentication required")
	}

	r := domain.Report{
		ID:             uuid.NewString(),
		Type:           in.Type,
		ReportedEntity: entity,
		ReportedBy:     domain.OrgRef{ID: actor.ID, Name: actor.Name},
		Description:    in.Description,
		Priority:       in.Priority,
		CreatedAt:      m.now().UTC(),
	}
	if err := r.Validate(); err != nil {
		return Receipt{}, err
	}
	r.Normalize()

	return m.sink.Deliver(ctx, r)
}

func (m *Model) requireAdmin() error {
	actor, ok := m.identity.Actor()
	if !ok || actor.Role != domain.RoleAdmin {
		return domain.NewAuthorizationError("Access denied. Admin privileges required.")
	}
	return nil
}

// List returns the reports for admin review. When the server cannot be
// asked, the locally queued reports are shown instead.
func (m *Model) List(ctx context.Context) ([]domain.Report, error) {
	if err := m.requireAdmin(); err != nil {
		return nil, err
	}
	reports, err := m.api.ListReports(ctx)
	if err == nil {
		return reports, nil
	}
	if errors.Is(err, domain.ErrAuthentication) || errors.Is(err, domain.ErrAuthorization) {
		return nil, err
	}

	m.log.Warn("Reports unavailable from server, showing local queue", "error", err)
	local, qerr := m.sink.Queue().List(ctx)
	if qerr != nil {
		return nil, err
	}
	return local, nil
}

func (m *Model) Resolve(ctx context.Context, reportID string) (*domain.Report, error) {
	if err := m.requireAdmin(); err != nil {
		return nil, err
	}
	return m.api.ResolveReport(ctx, reportID)
}

// Flush sends queued reports to the server.
func (m *Model) Flush(ctx context.Context) (int, error) {
	return m.sink.Flush(ctx)
}

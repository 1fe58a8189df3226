package reports

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sharebite/internal/domain"
	"sharebite/internal/storage"
	"sharebite/internal/testutil"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) SubmitReport(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockAPI) ListReports(ctx context.Context) ([]domain.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Report), args.Error(1)
}

func (m *MockAPI) ResolveReport(ctx context.Context, reportID string) (*domain.Report, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

type staticIdentity struct {
	actor domain.Actor
	ok    bool
}

func (s staticIdentity) Actor() (domain.Actor, bool) { return s.actor, s.ok }

var (
	reporter = staticIdentity{actor: domain.Actor{ID: 9, Name: "Shelter", Role: domain.RoleWelfare}, ok: true}
	admin    = staticIdentity{actor: domain.Actor{ID: 1, Name: "Admin", Role: domain.RoleAdmin}, ok: true}
	entity   = domain.ReportedEntity{Type: domain.OrganizationTypeRestaurant, ID: 2, Name: "Bakery"}
)

func newModel(api *MockAPI, id Identity) (*Model, *storage.MemoryStore) {
	durable := storage.NewMemoryStore()
	sink := NewTiered(NewRemoteSink(api), NewQueue(durable))
	return NewModel(sink, api, id), durable
}

func TestModel_DescriptionBoundary(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	m, _ := newModel(api, reporter)

	short := "  " + strings.Repeat("x", 19) + "  "
	_, err := m.Submit(ctx, entity, Input{Type: domain.ReportTypeNoShow, Description: short})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Description must be at least 20 characters long", domain.UserMessage(err))
	api.AssertNotCalled(t, "SubmitReport", mock.Anything, mock.Anything)

	api.On("SubmitReport", ctx, mock.AnythingOfType("*domain.Report")).
		Return(&domain.Report{ID: "r1", Status: domain.ReportStatusPending}, nil)

	receipt, err := m.Submit(ctx, entity, Input{Type: domain.ReportTypeNoShow, Description: strings.Repeat("x", 20)})
	require.NoError(t, err)
	assert.False(t, receipt.Queued)
	api.AssertNumberOfCalls(t, "SubmitReport", 1)
}

func TestModel_SubmitValidation(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	m, _ := newModel(api, reporter)
	desc := "The pickup never happened and nobody called back."

	_, err := m.Submit(ctx, entity, Input{Description: desc})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = m.Submit(ctx, entity, Input{Type: "rude", Description: desc})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = m.Submit(ctx, entity, Input{Type: domain.ReportTypeSpam, Description: desc, Priority: "urgent"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	signedOut, _ := newModel(api, staticIdentity{})
	_, err = signedOut.Submit(ctx, entity, Input{Type: domain.ReportTypeSpam, Description: desc})
	assert.ErrorIs(t, err, domain.ErrAuthentication)

	api.AssertNotCalled(t, "SubmitReport", mock.Anything, mock.Anything)
}

func TestModel_FallbackAndFlush(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	m, durable := newModel(api, reporter)

	down := domain.NewTransportError(assert.AnError)
	api.On("SubmitReport", ctx, mock.Anything).Return(nil, down).Twice()

	in := Input{Type: domain.ReportTypeFoodQuality, Description: "Food arrived spoiled and smelled bad."}
	first, err := m.Submit(ctx, entity, in)
	require.NoError(t, err)
	assert.True(t, first.Queued)
	assert.Equal(t, domain.PriorityMedium, first.Report.Priority)
	assert.Equal(t, domain.ReportStatusPending, first.Report.Status)

	second, err := m.Submit(ctx, entity, in)
	require.NoError(t, err)
	assert.True(t, second.Queued)

	raw, err := durable.Get(ctx, storage.KeyPlatformReports)
	require.NoError(t, err)
	assert.Contains(t, raw, first.Report.ID)
	assert.Contains(t, raw, second.Report.ID)

	// one delivery fails again, the other goes through
	api.On("SubmitReport", ctx, mock.MatchedBy(func(r *domain.Report) bool { return r.ID == first.Report.ID })).
		Return(&first.Report, nil).Once()
	api.On("SubmitReport", ctx, mock.MatchedBy(func(r *domain.Report) bool { return r.ID == second.Report.ID })).
		Return(nil, down).Once()

	delivered, err := m.Flush(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, delivered)

	left, err := m.sink.Queue().List(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, second.Report.ID, left[0].ID)
}

func TestModel_ListFallsBackToQueue(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	m, _ := newModel(api, admin)

	queued := domain.Report{ID: "local-1", Type: domain.ReportTypeSpam, Status: domain.ReportStatusPending}
	_, err := m.sink.Queue().Deliver(ctx, queued)
	require.NoError(t, err)

	api.On("ListReports", ctx).Return(nil, domain.NewTransportError(assert.AnError)).Once()
	got, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "local-1", got[0].ID)

	api.On("ListReports", ctx).Return(nil, domain.NewAuthorizationError("Access denied. Admin privileges required.")).Once()
	_, err = m.List(ctx)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
}

func TestModel_AdminOnly(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	m, _ := newModel(api, reporter)

	_, err := m.List(ctx)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	_, err = m.Resolve(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	api.AssertNotCalled(t, "ListReports", mock.Anything)
}

func TestModel_AgainstBackend(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewBackend(t)
	adminOrg := backend.Seed(t, "Platform Admin", domain.RoleAdmin, "admin-pass")
	shelter := backend.Seed(t, "City Shelter", domain.RoleWelfare, "shelter-pass")
	bakery := backend.Seed(t, "Fresh Bakery", domain.RoleRestaurant, "bakery-pass")

	shelterClient, shelterSess := backend.LoginAs(t, shelter, "shelter-pass")
	queue := NewQueue(storage.NewMemoryStore())
	submitter := NewModel(NewTiered(NewRemoteSink(shelterClient), queue), shelterClient, shelterSess)

	receipt, err := submitter.Submit(ctx, domain.ReportedEntity{Type: domain.OrganizationTypeRestaurant, ID: bakery.ID, Name: bakery.Name},
		Input{Type: domain.ReportTypeNoShow, Description: "Restaurant was closed at the agreed pickup time.", Priority: domain.PriorityHigh})
	require.NoError(t, err)
	assert.False(t, receipt.Queued)

	// replaying the same report does not create a duplicate
	_, err = NewRemoteSink(shelterClient).Deliver(ctx, receipt.Report)
	require.NoError(t, err)

	adminClient, adminSess := backend.LoginAs(t, adminOrg, "admin-pass")
	reviewer := NewModel(NewTiered(NewRemoteSink(adminClient), NewQueue(storage.NewMemoryStore())), adminClient, adminSess)

	list, err := reviewer.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, shelter.ID, list[0].ReportedBy.ID)

	resolved, err := reviewer.Resolve(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusResolved, resolved.Status)

	_, err = reviewer.Resolve(ctx, list[0].ID)
	assert.ErrorIs(t, err, domain.ErrState)
}

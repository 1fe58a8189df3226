package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sharebite/internal/apiclient"
	"sharebite/internal/domain"
	"sharebite/internal/storage"
)

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.LoginResponse, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.LoginResponse), args.Error(1)
}

func (m *MockAuthAPI) Register(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.RegisterResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.RegisterResponse), args.Error(1)
}

func (m *MockAuthAPI) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// recordingStore notes the order of writes so tests can check that durable
// state changes before subscribers run.
type recordingStore struct {
	*storage.MemoryStore
	events *[]string
	failOn string
}

func (r recordingStore) Set(ctx context.Context, key, value string) error {
	if key == r.failOn {
		return errors.New("disk full")
	}
	*r.events = append(*r.events, "set:"+key)
	return r.MemoryStore.Set(ctx, key, value)
}

func (r recordingStore) Delete(ctx context.Context, key string) error {
	*r.events = append(*r.events, "delete:"+key)
	return r.MemoryStore.Delete(ctx, key)
}

var restaurant = &domain.Organization{ID: 2, Name: "Green Fork", Role: domain.RoleRestaurant, VerificationStatus: domain.VerificationStatusApproved}

func TestStore_LoginPersistsBeforeNotify(t *testing.T) {
	ctx := context.Background()
	api := new(MockAuthAPI)
	var events []string
	durable := recordingStore{MemoryStore: storage.NewMemoryStore(), events: &events}
	s := New(api, durable)

	s.Subscribe(func(sess Session) { events = append(events, "notify") })

	api.On("Login", ctx, apiclient.Credentials{Email: "gf@x.org", Password: "secret1"}).
		Return(&apiclient.LoginResponse{Token: "tok", User: restaurant}, nil)

	sess, err := s.Login(ctx, "gf@x.org", "secret1")
	require.NoError(t, err)
	assert.True(t, sess.IsAuthenticated)
	assert.Equal(t, "tok", s.Token())
	assert.Equal(t, []string{"set:user", "set:token", "notify"}, events)

	actor, ok := s.Actor()
	assert.True(t, ok)
	assert.Equal(t, domain.RoleRestaurant, actor.Role)

	stored, err := durable.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", stored)
}

func TestStore_LoginFailureLeavesSession(t *testing.T) {
	ctx := context.Background()
	api := new(MockAuthAPI)
	s := New(api, storage.NewMemoryStore())
	require.NoError(t, s.Restore(ctx))

	pending := domain.NewAuthorizationError("Your organization is pending verification")
	api.On("Login", ctx, mock.Anything).Return(nil, pending)

	_, err := s.Login(ctx, "new@x.org", "secret1")
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	assert.Equal(t, "Your organization is pending verification", domain.UserMessage(err))
	assert.False(t, s.Current().IsAuthenticated)
}

func TestStore_LoginDurableFailure(t *testing.T) {
	ctx := context.Background()
	api := new(MockAuthAPI)
	var events []string
	durable := recordingStore{MemoryStore: storage.NewMemoryStore(), events: &events, failOn: storage.KeyToken}
	s := New(api, durable)

	api.On("Login", ctx, mock.Anything).Return(&apiclient.LoginResponse{Token: "tok", User: restaurant}, nil)

	_, err := s.Login(ctx, "gf@x.org", "secret1")
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.False(t, s.Current().IsAuthenticated)
	_, getErr := durable.Get(ctx, storage.KeyUser)
	assert.ErrorIs(t, getErr, storage.ErrNotFound)
}

func TestStore_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("stored session", func(t *testing.T) {
		durable := storage.NewMemoryStore()
		require.NoError(t, durable.Set(ctx, storage.KeyToken, "tok"))
		require.NoError(t, durable.Set(ctx, storage.KeyUser, `{"id":2,"name":"Green Fork","role":"restaurant"}`))

		s := New(new(MockAuthAPI), durable)
		assert.True(t, s.Current().Loading)
		require.NoError(t, s.Restore(ctx))

		sess := s.Current()
		assert.False(t, sess.Loading)
		assert.True(t, sess.IsAuthenticated)
		assert.Equal(t, "Green Fork", sess.User.Name)
	})

	t.Run("token without user", func(t *testing.T) {
		durable := storage.NewMemoryStore()
		require.NoError(t, durable.Set(ctx, storage.KeyToken, "tok"))

		s := New(new(MockAuthAPI), durable)
		require.NoError(t, s.Restore(ctx))
		assert.False(t, s.Current().IsAuthenticated)
		assert.False(t, s.Current().Loading)
	})
}

func TestStore_LogoutClearsFirst(t *testing.T) {
	ctx := context.Background()
	api := new(MockAuthAPI)
	durable := storage.NewMemoryStore()
	s := New(api, durable)

	api.On("Login", ctx, mock.Anything).Return(&apiclient.LoginResponse{Token: "tok", User: restaurant}, nil)
	api.On("Logout", mock.Anything, "tok").Return(errors.New("server down"))

	_, err := s.Login(ctx, "gf@x.org", "secret1")
	require.NoError(t, err)

	s.Logout(ctx)
	assert.False(t, s.Current().IsAuthenticated)
	assert.Empty(t, s.Token())
	_, err = durable.Get(ctx, storage.KeyToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	s.Wait()
	api.AssertCalled(t, "Logout", mock.Anything, "tok")
}

func TestStore_Invalidate(t *testing.T) {
	ctx := context.Background()
	api := new(MockAuthAPI)
	s := New(api, storage.NewMemoryStore())
	api.On("Login", ctx, mock.Anything).Return(&apiclient.LoginResponse{Token: "tok", User: restaurant}, nil)
	_, err := s.Login(ctx, "gf@x.org", "secret1")
	require.NoError(t, err)

	var seen []Session
	unsubscribe := s.Subscribe(func(sess Session) { seen = append(seen, sess) })
	s.Invalidate("")
	unsubscribe()
	s.Invalidate("")

	require.Len(t, seen, 1)
	assert.False(t, seen[0].IsAuthenticated)
	assert.Equal(t, ExpiredNotice, seen[0].Notice)
	api.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
}

func TestStore_Register(t *testing.T) {
	ctx := context.Background()
	valid := RegistrationForm{
		OrganizationType:   domain.OrganizationTypeWelfare,
		OrganizationName:   "City Shelter",
		RegistrationNumber: "REG-1",
		PhoneNumber:        "555-0100",
		ContactPerson:      "Sam",
		Email:              "shelter@x.org",
		Address:            "1 Main St",
		Password:           "secret1",
		ConfirmPassword:    "secret1",
	}

	t.Run("client validation", func(t *testing.T) {
		api := new(MockAuthAPI)
		s := New(api, storage.NewMemoryStore())

		form := valid
		form.PhoneNumber = " "
		_, err := s.Register(ctx, form)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "Phone Number is required", domain.UserMessage(err))

		form = valid
		form.ConfirmPassword = "secret2"
		_, err = s.Register(ctx, form)
		assert.Equal(t, "Passwords do not match", domain.UserMessage(err))

		form = valid
		form.OrganizationType = "admin"
		_, err = s.Register(ctx, form)
		assert.ErrorIs(t, err, domain.ErrValidation)

		api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("success does not sign in", func(t *testing.T) {
		api := new(MockAuthAPI)
		s := New(api, storage.NewMemoryStore())
		api.On("Register", ctx, mock.MatchedBy(func(r apiclient.RegisterRequest) bool {
			return r.Email == "shelter@x.org" && r.Password == "secret1"
		})).Return(&apiclient.RegisterResponse{Message: "pending verification"}, nil)

		msg, err := s.Register(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, "pending verification", msg)
		assert.False(t, s.Current().IsAuthenticated)
	})

	t.Run("duplicate email", func(t *testing.T) {
		api := new(MockAuthAPI)
		s := New(api, storage.NewMemoryStore())
		api.On("Register", ctx, mock.Anything).Return(nil, domain.NewConflictError("An organization with this email already exists"))

		_, err := s.Register(ctx, valid)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

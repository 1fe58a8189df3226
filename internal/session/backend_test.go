package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharebite/internal/domain"
	"sharebite/internal/testutil"
)

func TestStore_FailedReloginKeepsSession(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewBackend(t)
	bakery := backend.Seed(t, "Corner Bakery", domain.RoleRestaurant, "bakery-pass")

	_, sess := backend.LoginAs(t, bakery, "bakery-pass")
	before := sess.Current()
	require.True(t, before.IsAuthenticated)

	_, err := sess.Login(ctx, bakery.Email, "wrong-password")
	assert.ErrorIs(t, err, domain.ErrAuthentication)

	after := sess.Current()
	assert.True(t, after.IsAuthenticated)
	assert.Equal(t, before.Token, after.Token)
	assert.Equal(t, bakery.ID, after.User.ID)

	// the stored session still survives a restart
	require.NoError(t, sess.Restore(ctx))
	assert.True(t, sess.Current().IsAuthenticated)
}

func TestStore_RegisterWhileSignedInKeepsSession(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewBackend(t)
	bakery := backend.Seed(t, "Corner Bakery", domain.RoleRestaurant, "bakery-pass")

	_, sess := backend.LoginAs(t, bakery, "bakery-pass")

	// same email as the seeded org, so the server rejects it
	_, err := sess.Register(ctx, testutil.Registration("Corner Bakery", domain.OrganizationTypeRestaurant, "bakery-pass"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, sess.Current().IsAuthenticated)
}

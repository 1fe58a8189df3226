package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharebite/internal/domain"
	"sharebite/internal/repository"
	"sharebite/internal/repository/memory"
)

func seedPost(t *testing.T, store *repository.Store) *domain.FoodPost {
	t.Helper()
	ctx := context.Background()
	owner := &domain.Organization{Name: "Corner Bakery", Email: "bakery@test.com", Role: domain.RoleRestaurant}
	require.NoError(t, store.Organizations.Create(ctx, owner))

	post := &domain.FoodPost{Title: "Fresh Bread", Status: domain.FoodStatusAvailable, PostedBy: owner.Ref(), ExpiryDate: time.Now().Add(time.Hour)}
	require.NoError(t, store.FoodPosts.Create(ctx, post))
	return post
}

func TestOrganizationRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Organizations.Create(ctx, &domain.Organization{Email: "a@test.com"}))
	err := store.Organizations.Create(ctx, &domain.Organization{Email: "A@Test.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := store.Organizations.GetByEmail(ctx, "A@TEST.COM")
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.ID)
}

func TestFoodPostRepository_ConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	post := seedPost(t, store)

	const claimers = 16
	var wg sync.WaitGroup
	results := make([]error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := store.FoodPosts.GetByID(ctx, post.ID)
			if err != nil {
				results[i] = err
				return
			}
			actor := domain.Actor{ID: int32(100 + i), Name: "Shelter", Role: domain.RoleWelfare}
			if err := p.Transition(domain.FoodEventClaim, actor, time.Now()); err != nil {
				results[i] = err
				return
			}
			results[i] = store.FoodPosts.UpdateLifecycle(ctx, p, domain.FoodStatusAvailable)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrStaleState)
	}
	assert.Equal(t, 1, winners)

	stored, err := store.FoodPosts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FoodStatusClaimed, stored.Status)
	assert.NoError(t, stored.CheckInvariant())
}

func TestFoodPostRepository_DeleteAndCounts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	post := seedPost(t, store)

	counts, err := store.FoodPosts.CountActivity(ctx, post.PostedBy.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.ActiveDonations)

	assert.ErrorIs(t, store.FoodPosts.Delete(ctx, post.ID, domain.FoodStatusClaimed), repository.ErrStaleState)
	require.NoError(t, store.FoodPosts.Delete(ctx, post.ID, domain.FoodStatusAvailable))
	assert.ErrorIs(t, store.FoodPosts.Delete(ctx, post.ID, domain.FoodStatusAvailable), repository.ErrNotFound)

	_, err = store.FoodPosts.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFoodPostRepository_ListExpirable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	post := seedPost(t, store)

	none, err := store.FoodPosts.ListExpirable(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, none)

	due, err := store.FoodPosts.ListExpirable(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, post.ID, due[0].ID)
	assert.Equal(t, "Corner Bakery", due[0].PostedBy.Name)
}

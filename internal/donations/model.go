// Package donations is the client-side food lifecycle model. The backend
// decides every transition; the model only checks what it can know locally
// and keeps a cache of posts reconciled by lifecycle rank.
package donations

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sharebite/internal/domain"
	"sharebite/internal/logger"
)

// ErrCancelClaimUnsupported is returned by CancelClaim. The backend offers no
// way to release a claim.
var ErrCancelClaimUnsupported = domain.NewUnsupportedError("Cancelling a claim is not supported yet. Please contact the restaurant directly.")

var errSignedOut = domain.NewAuthenticationError("Please log in to continue.")

// API is the part of the API client the model uses.
type API interface {
	ListPosts(ctx context.Context) ([]domain.FoodPost, error)
	ListMyPosts(ctx context.Context) ([]domain.FoodPost, error)
	ListMyClaims(ctx context.Context) ([]domain.FoodPost, error)
	CreatePost(ctx context.Context, post *domain.FoodPost) (*domain.FoodPost, error)
	ClaimPost(ctx context.Context, postID int32) (*domain.FoodPost, error)
	UpdatePostStatus(ctx context.Context, postID int32, status domain.FoodStatus) (*domain.FoodPost, error)
	DeletePost(ctx context.Context, postID int32) error
}

// Identity reports who is signed in. The session store implements it.
type Identity interface {
	Actor() (domain.Actor, bool)
}

// Filter narrows ListAvailable. Zero values match everything.
type Filter struct {
	SearchText string
	Category   domain.FoodCategory
}

type Model struct {
	api      API
	identity Identity
	log      *slog.Logger

	claims singleflight.Group

	mu      sync.RWMutex
	posts   map[int32]domain.FoodPost
	deleted map[int32]struct{}
	closed  bool
}

func NewModel(api API, identity Identity) *Model {
	return &Model{
		api:      api,
		identity: identity,
		log:      logger.WithComponent("donations"),
		posts:    make(map[int32]domain.FoodPost),
		deleted:  make(map[int32]struct{}),
	}
}

// Close stops the model from applying further responses.
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *Model) actor() (domain.Actor, error) {
	actor, ok := m.identity.Actor()
	if !ok {
		return domain.Actor{}, errSignedOut
	}
	return actor, nil
}

// merge folds server copies into the cache and returns what the cache holds
// for each of them. A copy lower in lifecycle rank than the cached one is
// stale and ignored; deleted posts stay deleted.
func (m *Model) merge(incoming ...domain.FoodPost) []domain.FoodPost {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.FoodPost, 0, len(incoming))
	for _, p := range incoming {
		if _, gone := m.deleted[p.ID]; gone {
			continue
		}
		if m.closed {
			out = append(out, p)
			continue
		}
		cached, ok := m.posts[p.ID]
		if ok && p.Status.Rank() < cached.Status.Rank() {
			out = append(out, cached)
			continue
		}
		m.posts[p.ID] = p
		out = append(out, p)
	}
	return out
}

func (m *Model) cached(id int32) (domain.FoodPost, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[id]
	return p, ok
}

func (m *Model) forget(id int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	delete(m.posts, id)
	m.deleted[id] = struct{}{}
}

func newestFirst(posts []domain.FoodPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}

// CreatePost publishes a new donation for the signed-in restaurant.
func (m *Model) CreatePost(ctx context.Context, post domain.FoodPost) (*domain.FoodPost, error) {
	actor, err := m.actor()
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleRestaurant {
		return nil, domain.NewAuthorizationError("Only restaurants can post food donations.")
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}

	created, err := m.api.CreatePost(ctx, &post)
	if err != nil {
		return nil, err
	}
	merged := m.merge(*created)
	if len(merged) == 0 {
		return created, nil
	}
	return &merged[0], nil
}

// ListAvailable returns the posts that can still be claimed.
func (m *Model) ListAvailable(ctx context.Context, filter Filter) ([]domain.FoodPost, error) {
	all, err := m.api.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.FoodPost, 0, len(all))
	for _, p := range m.merge(all...) {
		if p.Status == domain.FoodStatusAvailable && p.Matches(filter.SearchText, filter.Category) {
			out = append(out, p)
		}
	}
	newestFirst(out)
	return out, nil
}

// Claim asks the backend to assign the post to the signed-in welfare
// organization. Concurrent claims of one post share a single request.
func (m *Model) Claim(ctx context.Context, postID int32) (*domain.FoodPost, error) {
	actor, err := m.actor()
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleWelfare {
		return nil, domain.NewAuthorizationError("Only welfare organizations can claim food donations.")
	}
	if p, ok := m.cached(postID); ok && p.IsClaimedBy(actor.ID) {
		return &p, nil
	}

	v, err, _ := m.claims.Do(strconv.FormatInt(int64(postID), 10), func() (any, error) {
		return m.api.ClaimPost(ctx, postID)
	})
	if err != nil {
		// another path already saw our claim succeed
		if p, ok := m.cached(postID); ok && p.IsClaimedBy(actor.ID) {
			m.log.Debug("Ignoring late claim failure", "post_id", postID, "error", err)
			return &p, nil
		}
		return nil, err
	}

	claimed := *v.(*domain.FoodPost)
	merged := m.merge(claimed)
	if len(merged) == 0 {
		return &claimed, nil
	}
	return &merged[0], nil
}

// checkLocal applies ev to the cached copy of the post, if there is one, so
// that transitions the model already knows are invalid never reach the
// network.
func (m *Model) checkLocal(postID int32, ev domain.FoodEvent, actor domain.Actor) error {
	p, ok := m.cached(postID)
	if !ok {
		return nil
	}
	return p.Transition(ev, actor, time.Now())
}

// MarkComplete records that the claimant picked the food up.
func (m *Model) MarkComplete(ctx context.Context, postID int32) (*domain.FoodPost, error) {
	actor, err := m.actor()
	if err != nil {
		return nil, err
	}
	if err := m.checkLocal(postID, domain.FoodEventComplete, actor); err != nil {
		return nil, err
	}

	updated, err := m.api.UpdatePostStatus(ctx, postID, domain.FoodStatusCompleted)
	if err != nil {
		return nil, err
	}
	merged := m.merge(*updated)
	if len(merged) == 0 {
		return updated, nil
	}
	return &merged[0], nil
}

// DeletePost removes a post that nobody has claimed yet.
func (m *Model) DeletePost(ctx context.Context, postID int32) error {
	actor, err := m.actor()
	if err != nil {
		return err
	}
	if err := m.checkLocal(postID, domain.FoodEventDelete, actor); err != nil {
		return err
	}
	if err := m.api.DeletePost(ctx, postID); err != nil {
		return err
	}
	m.forget(postID)
	return nil
}

// ListOwnPosts returns every post of the signed-in restaurant, newest first.
func (m *Model) ListOwnPosts(ctx context.Context) ([]domain.FoodPost, error) {
	if _, err := m.actor(); err != nil {
		return nil, err
	}
	posts, err := m.api.ListMyPosts(ctx)
	if err != nil {
		return nil, err
	}
	out := m.merge(posts...)
	newestFirst(out)
	return out, nil
}

// ListOwnClaims returns every post the signed-in organization has claimed.
func (m *Model) ListOwnClaims(ctx context.Context) ([]domain.FoodPost, error) {
	if _, err := m.actor(); err != nil {
		return nil, err
	}
	posts, err := m.api.ListMyClaims(ctx)
	if err != nil {
		return nil, err
	}
	out := m.merge(posts...)
	newestFirst(out)
	return out, nil
}

// CancelClaim is not offered by the backend.
func (m *Model) CancelClaim(ctx context.Context, postID int32) error {
	return ErrCancelClaimUnsupported
}

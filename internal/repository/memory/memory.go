// Package memory keeps all backend state in process. It backs the server when
// no database is configured and the end-to-end tests of the client models.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"sharebite/internal/domain"
	"sharebite/internal/repository"
)

type db struct {
	mu       sync.RWMutex
	orgs     map[int32]domain.Organization
	posts    map[int32]domain.FoodPost
	reports  map[string]domain.Report
	nextOrg  int32
	nextPost int32
	now      func() time.Time
}

// NewStore returns repositories sharing one in-memory database.
func NewStore() *repository.Store {
	d := &db{
		orgs:    make(map[int32]domain.Organization),
		posts:   make(map[int32]domain.FoodPost),
		reports: make(map[string]domain.Report),
		now:     time.Now,
	}
	return &repository.Store{
		Organizations: &organizationRepository{d},
		FoodPosts:     &foodPostRepository{d},
		Reports:       &reportRepository{d},
	}
}

type organizationRepository struct{ *db }

func (r *organizationRepository) Create(ctx context.Context, o *domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orgs {
		if strings.EqualFold(existing.Email, o.Email) {
			return repository.ErrDuplicate
		}
	}
	r.nextOrg++
	o.ID = r.nextOrg
	o.CreatedAt = r.now()
	r.orgs[o.ID] = *o
	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id int32) (*domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orgs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r *organizationRepository) GetByEmail(ctx context.Context, email string) (*domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orgs {
		if strings.EqualFold(o.Email, email) {
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *organizationRepository) Update(ctx context.Context, o *domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[o.ID]; !ok {
		return repository.ErrNotFound
	}
	r.orgs[o.ID] = *o
	return nil
}

func (r *organizationRepository) ListByStatus(ctx context.Context, status domain.VerificationStatus) ([]domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Organization
	for _, o := range r.orgs {
		if o.VerificationStatus == status && o.Role != domain.RoleAdmin {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type foodPostRepository struct{ *db }

// withNames refreshes the organization names carried by a post.
func (r *foodPostRepository) withNames(p domain.FoodPost) domain.FoodPost {
	if o, ok := r.orgs[p.PostedBy.ID]; ok {
		p.PostedBy.Name = o.Name
	}
	if p.Claimant != nil {
		c := *p.Claimant
		if o, ok := r.orgs[c.ID]; ok {
			c.Name = o.Name
		}
		p.Claimant = &c
	}
	return p
}

func (r *foodPostRepository) filter(keep func(p *domain.FoodPost) bool) []domain.FoodPost {
	var out []domain.FoodPost
	for _, p := range r.posts {
		if keep(&p) {
			out = append(out, r.withNames(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *foodPostRepository) Create(ctx context.Context, p *domain.FoodPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextPost++
	p.ID = r.nextPost
	p.CreatedAt = r.now()
	r.posts[p.ID] = *p
	return nil
}

func (r *foodPostRepository) GetByID(ctx context.Context, id int32) (*domain.FoodPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = r.withNames(p)
	return &p, nil
}

func (r *foodPostRepository) List(ctx context.Context, status domain.FoodStatus) ([]domain.FoodPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(p *domain.FoodPost) bool { return status == "" || p.Status == status }), nil
}

func (r *foodPostRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.FoodPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(p *domain.FoodPost) bool { return p.PostedBy.ID == ownerID }), nil
}

func (r *foodPostRepository) ListByClaimant(ctx context.Context, claimantID int32) ([]domain.FoodPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(p *domain.FoodPost) bool { return p.IsClaimedBy(claimantID) }), nil
}

// UpdateLifecycle is a compare-and-set under the store lock.
func (r *foodPostRepository) UpdateLifecycle(ctx context.Context, p *domain.FoodPost, from domain.FoodStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrStaleState
	}
	stored.Status = p.Status
	stored.Claimant = nil
	if p.Claimant != nil {
		c := *p.Claimant
		stored.Claimant = &c
	}
	stored.ClaimedAt = p.ClaimedAt
	stored.CompletedAt = p.CompletedAt
	r.posts[p.ID] = stored
	return nil
}

func (r *foodPostRepository) Delete(ctx context.Context, id int32, from domain.FoodStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrStaleState
	}
	delete(r.posts, id)
	return nil
}

func (r *foodPostRepository) ListExpirable(ctx context.Context, cutoff time.Time) ([]domain.FoodPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter(func(p *domain.FoodPost) bool {
		return p.Status == domain.FoodStatusAvailable && p.ExpiryDate.Before(cutoff)
	}), nil
}

func (r *foodPostRepository) CountActivity(ctx context.Context, orgID int32) (domain.ActivityCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var c domain.ActivityCounts
	for _, p := range r.posts {
		if p.PostedBy.ID == orgID {
			c.TotalPosts++
			switch p.Status {
			case domain.FoodStatusAvailable, domain.FoodStatusClaimed:
				c.ActiveDonations++
			case domain.FoodStatusCompleted:
				c.CompletedDonations++
			}
		}
		if p.IsClaimedBy(orgID) {
			c.TotalClaims++
			switch p.Status {
			case domain.FoodStatusClaimed:
				c.ActiveClaims++
			case domain.FoodStatusCompleted:
				c.CompletedClaims++
			}
		}
	}
	return c, nil
}

type reportRepository struct{ *db }

func (r *reportRepository) Create(ctx context.Context, rp *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[rp.ID]; ok {
		return repository.ErrDuplicate
	}
	r.reports[rp.ID] = *rp
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rp, ok := r.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rp, nil
}

func (r *reportRepository) List(ctx context.Context) ([]domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Report, 0, len(r.reports))
	for _, rp := range r.reports {
		out = append(out, rp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *reportRepository) Update(ctx context.Context, rp *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[rp.ID]; !ok {
		return repository.ErrNotFound
	}
	r.reports[rp.ID] = *rp
	return nil
}

package service

import (
	"context"
	"errors"
	"time"

	"sharebite/internal/domain"
	"sharebite/internal/logger"
	"sharebite/internal/metrics"
	"sharebite/internal/repository"
)

var (
	errPostGone       = &domain.Error{Kind: domain.KindNotFound, Message: "This donation is no longer available."}
	errAlreadyClaimed = domain.NewConflictError("This food has already been claimed by another organization")
	errPostChanged    = domain.NewStateError("This donation was changed by someone else. Please refresh and try again.")
)

type foodService struct {
	postRepo repository.FoodPostRepository
	orgRepo  repository.OrganizationRepository
	emailSvc EmailService
	now      func() time.Time
}

func NewFoodService(postRepo repository.FoodPostRepository, orgRepo repository.OrganizationRepository, emailSvc EmailService) FoodService {
	return &foodService{
		postRepo: postRepo,
		orgRepo:  orgRepo,
		emailSvc: emailSvc,
		now:      time.Now,
	}
}

// writer loads the calling organization and checks it may change data.
func (s *foodService) writer(ctx context.Context, orgID int32) (*domain.Organization, error) {
	org, err := loadCaller(ctx, s.orgRepo, orgID)
	if err != nil {
		return nil, err
	}
	if err := org.CanWrite(); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *foodService) getPost(ctx context.Context, postID int32) (*domain.FoodPost, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errPostGone
		}
		return nil, domain.NewInternalError(err)
	}
	return post, nil
}

func (s *foodService) CreatePost(ctx context.Context, orgID int32, post *domain.FoodPost) (*domain.FoodPost, error) {
	org, err := s.writer(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.Role != domain.RoleRestaurant {
		return nil, domain.NewAuthorizationError("Only restaurants can post food donations")
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}

	post.Status = domain.FoodStatusAvailable
	post.PostedBy = org.Ref()
	post.Claimant = nil
	post.ClaimedAt = nil
	post.CompletedAt = nil
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, domain.NewInternalError(err)
	}
	logger.Info("Food post created", "post_id", post.ID, "org_id", org.ID)
	return post, nil
}

func (s *foodService) ListPosts(ctx context.Context) ([]domain.FoodPost, error) {
	posts, err := s.postRepo.List(ctx, "")
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	return posts, nil
}

func (s *foodService) ListMyPosts(ctx context.Context, orgID int32) ([]domain.FoodPost, error) {
	posts, err := s.postRepo.ListByOwner(ctx, orgID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	return posts, nil
}

func (s *foodService) ListMyClaims(ctx context.Context, orgID int32) ([]domain.FoodPost, error) {
	posts, err := s.postRepo.ListByClaimant(ctx, orgID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	return posts, nil
}

func (s *foodService) ClaimPost(ctx context.Context, orgID, postID int32) (*domain.FoodPost, error) {
	post, err := s.claim(ctx, orgID, postID)
	metrics.ClaimAttempts.WithLabelValues(claimOutcome(err)).Inc()
	return post, err
}

func (s *foodService) claim(ctx context.Context, orgID, postID int32) (*domain.FoodPost, error) {
	org, err := s.writer(ctx, orgID)
	if err != nil {
		return nil, err
	}
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	from := post.Status
	if err := post.Transition(domain.FoodEventClaim, org.Actor(), s.now()); err != nil {
		return nil, err
	}
	if err := s.postRepo.UpdateLifecycle(ctx, post, from); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleState):
			return nil, errAlreadyClaimed
		case errors.Is(err, repository.ErrNotFound):
			return nil, errPostGone
		}
		return nil, domain.NewInternalError(err)
	}

	metrics.FoodPostTransitions.WithLabelValues(string(domain.FoodEventClaim)).Inc()
	logger.Info("Food post claimed", "post_id", post.ID, "claimant_id", org.ID)

	if owner, err := s.orgRepo.GetByID(ctx, post.PostedBy.ID); err == nil {
		_ = s.emailSvc.SendClaimNotification(ctx, owner.Email, owner.Name, post.Title, org.Name)
	}
	return post, nil
}

func claimOutcome(err error) string {
	if err == nil {
		return "claimed"
	}
	switch domain.KindOf(err) {
	case domain.KindConflict:
		return "conflict"
	case domain.KindAuthorization, domain.KindAuthentication:
		return "forbidden"
	case domain.KindNotFound:
		return "not_found"
	}
	return "error"
}

func (s *foodService) UpdatePostStatus(ctx context.Context, orgID, postID int32, status domain.FoodStatus) (*domain.FoodPost, error) {
	ev, err := domain.NextStatusEvent(status)
	if err != nil {
		return nil, err
	}
	org, err := s.writer(ctx, orgID)
	if err != nil {
		return nil, err
	}
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	from := post.Status
	if err := post.Transition(ev, org.Actor(), s.now()); err != nil {
		return nil, err
	}
	if err := s.postRepo.UpdateLifecycle(ctx, post, from); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleState):
			return nil, errPostChanged
		case errors.Is(err, repository.ErrNotFound):
			return nil, errPostGone
		}
		return nil, domain.NewInternalError(err)
	}
	metrics.FoodPostTransitions.WithLabelValues(string(ev)).Inc()
	return post, nil
}

func (s *foodService) DeletePost(ctx context.Context, orgID, postID int32) error {
	org, err := s.writer(ctx, orgID)
	if err != nil {
		return err
	}
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}
	if err := post.Transition(domain.FoodEventDelete, org.Actor(), s.now()); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID, domain.FoodStatusAvailable); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleState):
			return domain.NewStateError("Cannot delete a post that has been claimed or completed")
		case errors.Is(err, repository.ErrNotFound):
			return errPostGone
		}
		return domain.NewInternalError(err)
	}
	metrics.FoodPostTransitions.WithLabelValues(string(domain.FoodEventDelete)).Inc()
	logger.Info("Food post deleted", "post_id", postID, "org_id", org.ID)
	return nil
}

func (s *foodService) ExpirePosts(ctx context.Context, now time.Time) (int, error) {
	posts, err := s.postRepo.ListExpirable(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range posts {
		p := &posts[i]
		from := p.Status
		if err := p.Transition(domain.FoodEventExpire, domain.SystemActor, now); err != nil {
			continue
		}
		if err := s.postRepo.UpdateLifecycle(ctx, p, from); err != nil {
			if errors.Is(err, repository.ErrStaleState) || errors.Is(err, repository.ErrNotFound) {
				// claimed or deleted since the listing
				continue
			}
			return expired, err
		}
		expired++
		metrics.FoodPostTransitions.WithLabelValues(string(domain.FoodEventExpire)).Inc()
	}
	return expired, nil
}

// loadCaller fetches the organization behind an access token and re-checks
// that it may still use the platform.
func loadCaller(ctx context.Context, orgRepo repository.OrganizationRepository, orgID int32) (*domain.Organization, error) {
	org, err := orgRepo.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewAuthenticationError("Organization not found. Please log in again.")
		}
		return nil, domain.NewInternalError(err)
	}
	if err := org.CanAuthenticate(); err != nil {
		return nil, err
	}
	return org, nil
}

package donations

import (
	"context"
	"fmt"
	"sort"
	"time"

	"sharebite/internal/domain"
)

const (
	activityPerSource = 3
	activityFeedSize  = 5
)

type ActivityType string

const (
	ActivityRegistration ActivityType = "registration"
	ActivityDonation     ActivityType = "donation"
	ActivityClaim        ActivityType = "claim"
)

// Activity is one line of the admin dashboard feed.
type Activity struct {
	ID      string
	Type    ActivityType
	Message string
	At      time.Time
}

var errAdminOnly = domain.NewAuthorizationError("Access denied. Admin privileges required.")

// RecentActivity builds the admin dashboard feed from the given
// registrations and the platform-wide post listing. Claims are the posts in
// that listing that have a claimant, latest claim first.
func (m *Model) RecentActivity(ctx context.Context, registrations []domain.OrganizationSummary) ([]Activity, error) {
	actor, err := m.actor()
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin {
		return nil, errAdminOnly
	}

	all, err := m.api.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	posts := m.merge(all...)
	newestFirst(posts)

	var claims []domain.FoodPost
	for _, p := range posts {
		if p.Claimant != nil {
			claims = append(claims, p)
		}
	}
	sort.SliceStable(claims, func(i, j int) bool { return claimedAt(claims[i]).After(claimedAt(claims[j])) })

	var feed []Activity
	for i, org := range registrations {
		if i == activityPerSource {
			break
		}
		kind := "welfare organization"
		if org.OrganizationType == domain.OrganizationTypeRestaurant {
			kind = "restaurant"
		}
		feed = append(feed, Activity{
			ID:      fmt.Sprintf("reg_%d", org.ID),
			Type:    ActivityRegistration,
			Message: fmt.Sprintf("New %s %q registered", kind, org.Name),
			At:      org.CreatedAt,
		})
	}
	for i, p := range posts {
		if i == activityPerSource {
			break
		}
		feed = append(feed, Activity{
			ID:      fmt.Sprintf("post_%d", p.ID),
			Type:    ActivityDonation,
			Message: fmt.Sprintf("Food donation %q posted by %s", p.Title, orName(p.PostedBy.Name, "Restaurant")),
			At:      p.CreatedAt,
		})
	}
	for i, p := range claims {
		if i == activityPerSource {
			break
		}
		feed = append(feed, Activity{
			ID:      fmt.Sprintf("claim_%d", p.ID),
			Type:    ActivityClaim,
			Message: fmt.Sprintf("Food donation %q claimed by %s", p.Title, orName(p.Claimant.Name, "Organization")),
			At:      claimedAt(p),
		})
	}

	sort.SliceStable(feed, func(i, j int) bool { return feed[i].At.After(feed[j].At) })
	if len(feed) > activityFeedSize {
		feed = feed[:activityFeedSize]
	}
	return feed, nil
}

func claimedAt(p domain.FoodPost) time.Time {
	if p.ClaimedAt != nil {
		return *p.ClaimedAt
	}
	return p.CreatedAt
}

func orName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

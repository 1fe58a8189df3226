package domain

import (
	"errors"
	"strings"
	"time"
)

type FoodStatus string

const (
	FoodStatusAvailable FoodStatus = "available"
	FoodStatusClaimed   FoodStatus = "claimed"
	FoodStatusCompleted FoodStatus = "completed"
	FoodStatusExpired   FoodStatus = "expired"
)

// Rank orders statuses along the lifecycle. A post never moves to a lower
// rank, which lets readers discard stale copies.
func (s FoodStatus) Rank() int {
	switch s {
	case FoodStatusAvailable:
		return 0
	case FoodStatusClaimed:
		return 1
	case FoodStatusCompleted, FoodStatusExpired:
		return 2
	}
	return -1
}

func (s FoodStatus) IsTerminal() bool {
	return s == FoodStatusCompleted || s == FoodStatusExpired
}

type FoodCategory string

const (
	CategoryPreparedMeals FoodCategory = "prepared_meals"
	CategorySandwiches    FoodCategory = "sandwiches"
	CategorySalads        FoodCategory = "salads"
	CategorySoups         FoodCategory = "soups"
	CategoryDesserts      FoodCategory = "desserts"
	CategoryBeverages     FoodCategory = "beverages"
	CategoryBakedGoods    FoodCategory = "baked_goods"
	CategoryOther         FoodCategory = "other"
)

var FoodCategories = []FoodCategory{
	CategoryPreparedMeals, CategorySandwiches, CategorySalads, CategorySoups,
	CategoryDesserts, CategoryBeverages, CategoryBakedGoods, CategoryOther,
}

func (c FoodCategory) IsValid() bool {
	for _, v := range FoodCategories {
		if c == v {
			return true
		}
	}
	return false
}

type FoodPost struct {
	ID                  int32        `json:"id"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	Category            FoodCategory `json:"category"`
	Quantity            string       `json:"quantity"`
	PickupLocation      string       `json:"location"`
	PickupTimeStart     time.Time    `json:"pickupTimeStart"`
	PickupTimeEnd       time.Time    `json:"pickupTimeEnd"`
	ExpiryDate          time.Time    `json:"expiryDate"`
	SpecialInstructions string       `json:"specialInstructions,omitempty"`
	Status              FoodStatus   `json:"status"`
	PostedBy            OrgRef       `json:"restaurant"`
	Claimant            *OrgRef      `json:"claimant,omitempty"`
	CreatedAt           time.Time    `json:"createdAt"`
	ClaimedAt           *time.Time   `json:"claimedAt,omitempty"`
	CompletedAt         *time.Time   `json:"completedAt,omitempty"`
}

// Validate checks the fields a restaurant must supply when posting.
func (p *FoodPost) Validate() error {
	required := []struct {
		name, value string
	}{
		{"title", p.Title},
		{"description", p.Description},
		{"category", string(p.Category)},
		{"quantity", p.Quantity},
		{"pickup location", p.PickupLocation},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return NewValidationError("Please fill in all required fields: " + f.name + " is missing")
		}
	}
	if p.PickupTimeStart.IsZero() || p.PickupTimeEnd.IsZero() || p.ExpiryDate.IsZero() {
		return NewValidationError("Please fill in all required fields: pickup window and expiry date are required")
	}
	if !p.Category.IsValid() {
		return NewValidationError("Unknown food category: " + string(p.Category))
	}
	if p.PickupTimeEnd.Before(p.PickupTimeStart) {
		return NewValidationError("Pickup end time must be after the start time")
	}
	return nil
}

var errInvariant = errors.New("claimant must be set exactly when a post is claimed or completed")

// CheckInvariant verifies that a claimant is recorded exactly when the post
// has been claimed.
func (p *FoodPost) CheckInvariant() error {
	claimed := p.Status == FoodStatusClaimed || p.Status == FoodStatusCompleted
	if claimed != (p.Claimant != nil) {
		return NewInternalError(errInvariant)
	}
	return nil
}

func (p *FoodPost) IsOwnedBy(orgID int32) bool {
	return p.PostedBy.ID == orgID
}

func (p *FoodPost) IsClaimedBy(orgID int32) bool {
	return p.Claimant != nil && p.Claimant.ID == orgID
}

type FoodEvent string

const (
	FoodEventClaim    FoodEvent = "claim"
	FoodEventComplete FoodEvent = "complete"
	FoodEventDelete   FoodEvent = "delete"
	FoodEventExpire   FoodEvent = "expire"
)

// Transition checks that actor may apply ev to the post and, for events that
// keep the post, moves it to the next state. Delete only validates; removing
// the record is up to the caller.
func (p *FoodPost) Transition(ev FoodEvent, actor Actor, at time.Time) error {
	switch ev {
	case FoodEventClaim:
		if actor.Role != RoleWelfare {
			return NewAuthorizationError("Only welfare organizations can claim food donations")
		}
		switch p.Status {
		case FoodStatusAvailable:
		case FoodStatusClaimed, FoodStatusCompleted:
			return NewConflictError("This food has already been claimed by another organization")
		default:
			return NewConflictError("This food donation is no longer available")
		}
		p.Status = FoodStatusClaimed
		p.Claimant = &OrgRef{ID: actor.ID, Name: actor.Name}
		p.ClaimedAt = &at

	case FoodEventComplete:
		if !p.IsOwnedBy(actor.ID) || actor.Role != RoleRestaurant {
			return NewAuthorizationError("Only the restaurant that posted this donation can mark it as completed")
		}
		if p.Status != FoodStatusClaimed {
			return NewStateError("Only claimed donations can be marked as completed")
		}
		p.Status = FoodStatusCompleted
		p.CompletedAt = &at

	case FoodEventDelete:
		if !p.IsOwnedBy(actor.ID) || actor.Role != RoleRestaurant {
			return NewAuthorizationError("You can only delete your own posts")
		}
		if p.Status != FoodStatusAvailable {
			return NewStateError("Cannot delete a post that has been claimed or completed")
		}

	case FoodEventExpire:
		if actor.Role != RoleSystem {
			return NewAuthorizationError("Only the system can expire donations")
		}
		if p.Status != FoodStatusAvailable {
			return NewStateError("Only available donations can expire")
		}
		p.Status = FoodStatusExpired

	default:
		return NewValidationError("Unknown food event: " + string(ev))
	}
	return nil
}

// NextStatusEvent maps a requested target status to the lifecycle event that
// reaches it. Only completion can be requested through a status update.
func NextStatusEvent(target FoodStatus) (FoodEvent, error) {
	if target == FoodStatusCompleted {
		return FoodEventComplete, nil
	}
	return "", NewValidationError("Status can only be updated to 'completed'")
}

// Matches reports whether the post passes a browse filter. An empty search
// and an empty category match everything.
func (p *FoodPost) Matches(search string, category FoodCategory) bool {
	if category != "" && p.Category != category {
		return false
	}
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), search) ||
		strings.Contains(strings.ToLower(p.Description), search)
}

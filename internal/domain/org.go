package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleRestaurant Role = "restaurant"
	RoleWelfare    Role = "welfare_organization"
	RoleAdmin      Role = "admin"
	// RoleSystem is used by scheduled jobs and never stored.
	RoleSystem Role = "system"
)

type OrganizationType string

const (
	OrganizationTypeRestaurant OrganizationType = "restaurant"
	OrganizationTypeWelfare    OrganizationType = "welfare_organization"
)

func (t OrganizationType) IsValid() bool {
	return t == OrganizationTypeRestaurant || t == OrganizationTypeWelfare
}

// Role maps an organization type to the role it logs in with.
func (t OrganizationType) Role() Role {
	return Role(t)
}

type VerificationStatus string

const (
	VerificationStatusPending     VerificationStatus = "pending"
	VerificationStatusUnderReview VerificationStatus = "under_review"
	VerificationStatusApproved    VerificationStatus = "approved"
	VerificationStatusRejected    VerificationStatus = "rejected"
)

// VerificationDecision is the action an admin sends when reviewing an
// application.
type VerificationDecision string

const (
	DecisionVerified VerificationDecision = "verified"
	DecisionRejected VerificationDecision = "rejected"
)

type SuspensionAction string

const (
	ActionSuspend   SuspensionAction = "suspend"
	ActionUnsuspend SuspensionAction = "unsuspend"
)

type Organization struct {
	ID                 int32              `json:"id"`
	Name               string             `json:"name"`
	OrganizationType   OrganizationType   `json:"organizationType,omitempty"`
	Role               Role               `json:"role"`
	Email              string             `json:"email"`
	PasswordHash       string             `json:"-"`
	RegistrationNumber string             `json:"registrationNumber,omitempty"`
	ContactPerson      string             `json:"contactPerson,omitempty"`
	PhoneNumber        string             `json:"phoneNumber,omitempty"`
	Address            string             `json:"address,omitempty"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	VerificationNotes  string             `json:"verificationNotes,omitempty"`
	Suspended          bool               `json:"suspended"`
	SuspensionReason   string             `json:"suspensionReason,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	VerifiedAt         *time.Time         `json:"verifiedAt,omitempty"`
}

// OrgRef is the short reference embedded in posts and reports.
type OrgRef struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// Actor identifies who is performing a lifecycle action.
type Actor struct {
	ID   int32
	Name string
	Role Role
}

// SystemActor performs scheduled transitions such as expiry.
var SystemActor = Actor{Role: RoleSystem, Name: "system"}

func (o *Organization) Ref() OrgRef {
	return OrgRef{ID: o.ID, Name: o.Name}
}

func (o *Organization) Actor() Actor {
	return Actor{ID: o.ID, Name: o.Name, Role: o.Role}
}

func (o *Organization) IsAdmin() bool {
	return o.Role == RoleAdmin
}

// CanAuthenticate fails for organizations that have not been approved yet.
func (o *Organization) CanAuthenticate() error {
	switch o.VerificationStatus {
	case VerificationStatusApproved:
		return nil
	case VerificationStatusRejected:
		return NewAuthorizationError("Your organization registration was rejected. Please contact support.")
	default:
		return NewAuthorizationError("Your organization is pending verification. Please wait for admin approval.")
	}
}

// CanWrite fails for suspended organizations.
func (o *Organization) CanWrite() error {
	if o.Suspended {
		msg := "Your organization is suspended."
		if o.SuspensionReason != "" {
			msg += " Reason: " + o.SuspensionReason
		}
		return NewAuthorizationError(msg)
	}
	return nil
}

// Verify applies an admin decision. Only pending or under-review
// applications can be decided, and a decision is final.
func (o *Organization) Verify(decision VerificationDecision, notes string, at time.Time) error {
	if o.VerificationStatus != VerificationStatusPending && o.VerificationStatus != VerificationStatusUnderReview {
		return NewStateError("Organization has already been " + string(o.VerificationStatus))
	}
	switch decision {
	case DecisionVerified:
		o.VerificationStatus = VerificationStatusApproved
	case DecisionRejected:
		o.VerificationStatus = VerificationStatusRejected
	default:
		return NewValidationError("Verification action must be 'verified' or 'rejected'")
	}
	o.VerificationNotes = strings.TrimSpace(notes)
	o.VerifiedAt = &at
	return nil
}

// ApplySuspension toggles the suspended flag of an approved organization.
func (o *Organization) ApplySuspension(action SuspensionAction, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewValidationError("Please provide a reason for this action")
	}
	if o.VerificationStatus != VerificationStatusApproved {
		return NewStateError("Only approved organizations can be suspended or unsuspended")
	}
	switch action {
	case ActionSuspend:
		if o.Suspended {
			return NewStateError("Organization is already suspended")
		}
		o.Suspended = true
		o.SuspensionReason = reason
	case ActionUnsuspend:
		if !o.Suspended {
			return NewStateError("Organization is not suspended")
		}
		o.Suspended = false
		o.SuspensionReason = ""
	default:
		return NewValidationError("Suspension action must be 'suspend' or 'unsuspend'")
	}
	return nil
}

// ActivityCounts summarizes an organization's donation history.
type ActivityCounts struct {
	TotalPosts         int `json:"totalPosts"`
	ActiveDonations    int `json:"activeDonations"`
	CompletedDonations int `json:"completedDonations"`
	TotalClaims        int `json:"totalClaims"`
	ActiveClaims       int `json:"activeClaims"`
	CompletedClaims    int `json:"completedClaims"`
}

// OrganizationSummary is the row shape of the admin organization lists.
type OrganizationSummary struct {
	Organization
	ActivityCounts
}

type OrganizationDetails struct {
	OrganizationSummary
	ActivityLog []string `json:"activityLog"`
	// Degraded is set when the details were assembled locally because the
	// server could not provide them.
	Degraded bool `json:"degraded,omitempty"`
}

// BuildActivityLog renders the human readable history shown next to an
// organization's counters.
func BuildActivityLog(s OrganizationSummary) []string {
	verified := "N/A"
	if s.VerifiedAt != nil {
		verified = s.VerifiedAt.Format("2006-01-02")
	}
	log := []string{
		"Organization verified on " + verified,
		"Account created and documents submitted",
	}
	if s.OrganizationType == OrganizationTypeRestaurant {
		log = append(log, fmt.Sprintf("Total food posts: %d", s.TotalPosts))
		if s.ActiveDonations > 0 {
			log = append(log, fmt.Sprintf("Currently has %d active donations", s.ActiveDonations))
		}
		if s.CompletedDonations > 0 {
			log = append(log, fmt.Sprintf("Completed %d successful donations", s.CompletedDonations))
		}
	} else {
		log = append(log, fmt.Sprintf("Total claims made: %d", s.TotalClaims))
		if s.ActiveClaims > 0 {
			log = append(log, fmt.Sprintf("Currently has %d pending claims", s.ActiveClaims))
		}
		if s.CompletedClaims > 0 {
			log = append(log, fmt.Sprintf("Completed %d food pickups", s.CompletedClaims))
		}
	}
	if s.Suspended {
		log = append(log, "Suspended: "+s.SuspensionReason)
	}
	return log
}

// DashboardStats backs the admin overview.
type DashboardStats struct {
	TotalOrganizations   int `json:"totalOrganizations"`
	PendingVerifications int `json:"pendingVerifications"`
	Restaurants          int `json:"restaurants"`
	WelfareOrgs          int `json:"welfareOrgs"`
	ReportedIssues       int `json:"reportedIssues"`
	ActiveDonations      int `json:"activeDonations"`
	CompletedDonations   int `json:"completedDonations"`
}

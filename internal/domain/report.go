package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MinReportDescription is the minimum trimmed length of a report description.
const MinReportDescription = 20

type ReportType string

const (
	ReportTypeInappropriateContent ReportType = "inappropriate_content"
	ReportTypeUserBehavior         ReportType = "user_behavior"
	ReportTypeNoShow               ReportType = "no_show"
	ReportTypeFoodQuality          ReportType = "food_quality"
	ReportTypeCommunication        ReportType = "communication"
	ReportTypeSpam                 ReportType = "spam"
	ReportTypeOther                ReportType = "other"
)

var ReportTypes = []ReportType{
	ReportTypeInappropriateContent, ReportTypeUserBehavior, ReportTypeNoShow,
	ReportTypeFoodQuality, ReportTypeCommunication, ReportTypeSpam, ReportTypeOther,
}

func (t ReportType) IsValid() bool {
	for _, v := range ReportTypes {
		if t == v {
			return true
		}
	}
	return false
}

type ReportPriority string

const (
	PriorityLow    ReportPriority = "low"
	PriorityMedium ReportPriority = "medium"
	PriorityHigh   ReportPriority = "high"
)

func (p ReportPriority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type ReportStatus string

const (
	ReportStatusPending     ReportStatus = "pending"
	ReportStatusUnderReview ReportStatus = "under_review"
	ReportStatusResolved    ReportStatus = "resolved"
)

type ReportedEntity struct {
	Type OrganizationType `json:"type"`
	ID   int32            `json:"id"`
	Name string           `json:"name"`
}

type Report struct {
	ID             string         `json:"id"`
	Type           ReportType     `json:"type"`
	ReportedEntity ReportedEntity `json:"reportedEntity"`
	ReportedBy     OrgRef         `json:"reportedBy"`
	Description    string         `json:"description"`
	Priority       ReportPriority `json:"priority"`
	Status         ReportStatus   `json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
	ResolvedAt     *time.Time     `json:"resolvedAt,omitempty"`
}

// Normalize trims the description and fills in the default priority and
// status of a new report.
func (r *Report) Normalize() {
	r.Description = strings.TrimSpace(r.Description)
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if r.Status == "" {
		r.Status = ReportStatusPending
	}
}

// Validate checks a report before it is sent anywhere.
func (r *Report) Validate() error {
	if r.Type == "" {
		return NewValidationError("Please select a report type")
	}
	if !r.Type.IsValid() {
		return NewValidationError("Unknown report type: " + string(r.Type))
	}
	desc := strings.TrimSpace(r.Description)
	if desc == "" {
		return NewValidationError("Please provide a description")
	}
	if utf8.RuneCountInString(desc) < MinReportDescription {
		return NewValidationError(fmt.Sprintf("Description must be at least %d characters long", MinReportDescription))
	}
	if r.Priority != "" && !r.Priority.IsValid() {
		return NewValidationError("Unknown priority: " + string(r.Priority))
	}
	if r.ReportedEntity.ID == 0 {
		return NewValidationError("A report must name the reported organization")
	}
	return nil
}

// Resolve closes an open report.
func (r *Report) Resolve(at time.Time) error {
	if r.Status == ReportStatusResolved {
		return NewStateError("Report has already been resolved")
	}
	r.Status = ReportStatusResolved
	r.ResolvedAt = &at
	return nil
}

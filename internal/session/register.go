package session

import (
	"context"
	"fmt"
	"strings"

	"sharebite/internal/apiclient"
	"sharebite/internal/domain"
)

// RegistrationForm is what a new organization fills in.
type RegistrationForm struct {
	OrganizationType   domain.OrganizationType
	OrganizationName   string
	RegistrationNumber string
	PhoneNumber        string
	ContactPerson      string
	Email              string
	Address            string
	Password           string
	ConfirmPassword    string
}

func (f RegistrationForm) validate() error {
	required := []struct {
		value, label string
	}{
		{string(f.OrganizationType), "Organization Type"},
		{f.OrganizationName, "Organization Name"},
		{f.RegistrationNumber, "Registration Number"},
		{f.PhoneNumber, "Phone Number"},
		{f.ContactPerson, "Contact Person Name"},
		{f.Email, "Email Address"},
		{f.Address, "Address"},
		{f.Password, "Password"},
		{f.ConfirmPassword, "Confirm Password"},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return domain.NewValidationError(fmt.Sprintf("%s is required", field.label))
		}
	}
	if !f.OrganizationType.IsValid() {
		return domain.NewValidationError("Organization Type must be restaurant or welfare_organization")
	}
	if f.Password != f.ConfirmPassword {
		return domain.NewValidationError("Passwords do not match")
	}
	return nil
}

// Register submits a registration. It never signs the organization in; an
// administrator has to approve it first.
func (s *Store) Register(ctx context.Context, form RegistrationForm) (string, error) {
	if err := form.validate(); err != nil {
		return "", err
	}

	resp, err := s.api.Register(ctx, apiclient.RegisterRequest{
		OrganizationType:   form.OrganizationType,
		OrganizationName:   strings.TrimSpace(form.OrganizationName),
		RegistrationNumber: strings.TrimSpace(form.RegistrationNumber),
		PhoneNumber:        strings.TrimSpace(form.PhoneNumber),
		ContactPerson:      strings.TrimSpace(form.ContactPerson),
		Email:              strings.TrimSpace(form.Email),
		Address:            strings.TrimSpace(form.Address),
		Password:           form.Password,
	})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

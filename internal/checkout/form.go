package checkout

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ersha-ecosystem/storefront/pkg/backend"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
	"github.com/ersha-ecosystem/storefront/pkg/types"
)

// FormData is the customer and delivery data collected for one checkout.
type FormData struct {
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Address             string `json:"address"`
	City                string `json:"city"`
	Region              string `json:"region"`
	PostalCode          string `json:"postal_code"`
	Instructions        string `json:"delivery_instructions"`
	LogisticsProviderID string `json:"logistics_provider_id"`
}

// PrefillFromProfile starts a fresh form from the authenticated user's profile.
func PrefillFromProfile(profile *backend.Profile) FormData {
	if profile == nil {
		return FormData{}
	}
	return FormData{
		FirstName:  strings.TrimSpace(profile.FirstName),
		LastName:   strings.TrimSpace(profile.LastName),
		Email:      strings.TrimSpace(profile.Email),
		Phone:      strings.TrimSpace(profile.Phone),
		Address:    strings.TrimSpace(profile.Address),
		City:       strings.TrimSpace(profile.City),
		Region:     strings.TrimSpace(profile.Region),
		PostalCode: strings.TrimSpace(profile.PostalCode),
	}
}

// DeliveryAddress returns the delivery fields as a normalized address.
func (f FormData) DeliveryAddress() types.Address {
	return types.Address{
		Street:       f.Address,
		City:         f.City,
		Region:       f.Region,
		PostalCode:   f.PostalCode,
		Instructions: f.Instructions,
	}.Normalized()
}

// FullName joins first and last name.
func (f FormData) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
}

var (
	formValidator = validator.New()
	phonePattern  = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{6,19}$`)
)

// ValidateForm checks the form in a single pass and reports only the first
// failing rule as a VALIDATION_ERROR whose details name the field.
func ValidateForm(form FormData) error {
	required := []struct {
		field, label, value string
	}{
		{"first_name", "First name", form.FirstName},
		{"last_name", "Last name", form.LastName},
		{"email", "Email", form.Email},
		{"phone", "Phone number", form.Phone},
		{"address", "Address", form.Address},
		{"city", "City", form.City},
		{"region", "Region", form.Region},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fieldError(r.field, r.label+" is required")
		}
	}
	if err := formValidator.Var(strings.TrimSpace(form.Email), "email"); err != nil {
		return fieldError("email", "Please enter a valid email address")
	}
	if !phonePattern.MatchString(strings.TrimSpace(form.Phone)) {
		return fieldError("phone", "Please enter a valid phone number")
	}
	if strings.TrimSpace(form.LogisticsProviderID) == "" {
		return fieldError("logistics_provider_id", "Please select a logistics provider")
	}
	return nil
}

func fieldError(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}

// Normalized trims surrounding whitespace from every field.
func (f FormData) Normalized() FormData {
	return FormData{
		FirstName:           strings.TrimSpace(f.FirstName),
		LastName:            strings.TrimSpace(f.LastName),
		Email:               strings.TrimSpace(f.Email),
		Phone:               strings.TrimSpace(f.Phone),
		Address:             strings.TrimSpace(f.Address),
		City:                strings.TrimSpace(f.City),
		Region:              strings.TrimSpace(f.Region),
		PostalCode:          strings.TrimSpace(f.PostalCode),
		Instructions:        strings.TrimSpace(f.Instructions),
		LogisticsProviderID: strings.TrimSpace(f.LogisticsProviderID),
	}
}

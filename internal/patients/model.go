package patients

import (
	"strings"
	"time"
)

// OnboardingStatus is the explicit per-patient onboarding step. It is stored
// on the patient row so the current step has a single source of truth instead
// of being re-derived from flags on every page load.
type OnboardingStatus string

const (
	StatusInvited        OnboardingStatus = "invited"
	StatusTokenValidated OnboardingStatus = "token_validated"
	StatusConsentGiven   OnboardingStatus = "consent_given"
	StatusPasswordSet    OnboardingStatus = "password_set"
	StatusLinked         OnboardingStatus = "linked"
	StatusComplete       OnboardingStatus = "complete"
)

// Patient represents a patient record owned by a therapist.
type Patient struct {
	ID                 string           `json:"id"`
	TherapistID        string           `json:"therapist_id"`
	DisplayName        string           `json:"display_name"`
	Email              string           `json:"email"`
	UserID             *string          `json:"user_id,omitempty"`
	MustChangePassword bool             `json:"must_change_password"`
	ConsentRequired    bool             `json:"consent_required"`
	ConsentAcceptedAt  *time.Time       `json:"consent_accepted_at,omitempty"`
	OnboardingStatus   OnboardingStatus `json:"onboarding_status"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// CreatePatientRequest represents the request body for creating a patient.
type CreatePatientRequest struct {
	TherapistID string `json:"-"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// Validate validates the create patient request.
func (r *CreatePatientRequest) Validate() error {
	if strings.TrimSpace(r.TherapistID) == "" {
		return ErrMissingTherapist
	}
	if strings.TrimSpace(r.DisplayName) == "" {
		return ErrInvalidName
	}
	if !strings.Contains(r.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// LinkResult is the outcome of binding an identity to a patient record.
type LinkResult struct {
	Patient       *Patient
	AlreadyLinked bool
}

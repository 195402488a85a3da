package consent

import "time"

// Type enumerates the consent categories a patient can decide on.
type Type string

const (
	TypePrivacy   Type = "privacy"
	TypeTOS       Type = "tos"
	TypeAnalytics Type = "analytics"
)

// Known reports whether t is one of the enumerated consent categories.
func (t Type) Known() bool {
	switch t {
	case TypePrivacy, TypeTOS, TypeAnalytics:
		return true
	}
	return false
}

// Decision is one accept/reject choice in a consent submission.
type Decision struct {
	ConsentType Type `json:"consentType"`
	Accepted    bool `json:"accepted"`
}

// Meta captures the context of a consent submission for the audit trail.
type Meta struct {
	Version   string
	Language  string
	UserAgent string
}

// Record is an append-only row capturing one decision at one point in time.
// Rows are never updated or deleted; resubmission creates new rows, so
// gating checks must look for "at least one accepted row", never uniqueness.
type Record struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	ConsentType Type      `json:"consent_type"`
	Accepted    bool      `json:"accepted"`
	Version     string    `json:"version"`
	Language    string    `json:"language"`
	UserAgent   string    `json:"user_agent"`
	CreatedAt   time.Time `json:"created_at"`
}

package onboarding

import "time"

// Outcome classifies a presented invite token.
type Outcome string

const (
	OutcomeValid   Outcome = "valid"
	OutcomeInvalid Outcome = "invalid_token"
	OutcomeExpired Outcome = "expired"
	OutcomeUsed    Outcome = "already_used"
)

// ValidationResult is the outcome of checking a presented token.
type ValidationResult struct {
	Outcome   Outcome
	PatientID string
}

// InviteToken is a single-use, time-limited credential granting a named
// patient permission to complete account setup. Rows are never deleted;
// consumption sets used_at exactly once and the token is inert afterwards.
type InviteToken struct {
	ID        string     `json:"id"`
	PatientID string     `json:"patient_id"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Expired reports whether the token's lifetime has passed at the given time.
func (t *InviteToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Used reports whether the token has been consumed.
func (t *InviteToken) Used() bool {
	return t.UsedAt != nil
}

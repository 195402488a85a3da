package onboarding

import (
	"context"
	"errors"
	"time"
)

// DefaultTokenMinLength is the shortest token value worth looking up. Tokens
// are generated as 32-char random hex upstream; the floor just rejects junk
// before it reaches the store.
const DefaultTokenMinLength = 12

// TokenFinder is the read side of the token store.
type TokenFinder interface {
	FindByToken(ctx context.Context, token string) (*InviteToken, error)
}

// Validator classifies presented invite tokens. Read-only; consuming a token
// is the orchestrator's job.
type Validator struct {
	store     TokenFinder
	minLength int
	now       func() time.Time
}

func NewValidator(store TokenFinder, minLength int) *Validator {
	if minLength <= 0 {
		minLength = DefaultTokenMinLength
	}
	return &Validator{
		store:     store,
		minLength: minLength,
		now:       time.Now,
	}
}

// Validate returns the token's classification. Expiry takes precedence over
// consumption: an expired token reports expired regardless of used_at.
// Store failures surface as an error, never as an outcome.
func (v *Validator) Validate(ctx context.Context, token string) (ValidationResult, error) {
	if len(token) < v.minLength {
		return ValidationResult{Outcome: OutcomeInvalid}, nil
	}

	row, err := v.store.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return ValidationResult{Outcome: OutcomeInvalid}, nil
		}
		return ValidationResult{}, err
	}

	if row.Expired(v.now()) {
		return ValidationResult{Outcome: OutcomeExpired, PatientID: row.PatientID}, nil
	}
	if row.Used() {
		return ValidationResult{Outcome: OutcomeUsed, PatientID: row.PatientID}, nil
	}
	return ValidationResult{Outcome: OutcomeValid, PatientID: row.PatientID}, nil
}

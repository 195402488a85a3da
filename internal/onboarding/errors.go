package onboarding

import "errors"

var (
	// ErrTokenNotFound is returned when no row matches a presented token
	ErrTokenNotFound = errors.New("invite token not found")

	// ErrTokenExpired is returned when a token's lifetime has passed
	ErrTokenExpired = errors.New("invite token expired")

	// ErrTokenUsed is returned when a token has already been consumed
	ErrTokenUsed = errors.New("invite token already used")

	// ErrWeakPassword is returned when the chosen password is too short
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)

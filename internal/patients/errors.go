package patients

import "errors"

var (
	// ErrMissingTherapist is returned when the therapist scope is absent
	ErrMissingTherapist = errors.New("therapist id is required")

	// ErrInvalidName is returned when the display name is invalid
	ErrInvalidName = errors.New("display name is required")

	// ErrInvalidEmail is returned when the email is missing or malformed
	ErrInvalidEmail = errors.New("a valid email is required")

	// ErrPatientNotFound is returned when no patient matches
	ErrPatientNotFound = errors.New("patient_not_found")

	// ErrLinkConflict is returned when a patient is already linked to a
	// different identity
	ErrLinkConflict = errors.New("patient already linked to another identity")
)

package consent

import "errors"

var (
	// ErrNoDecisions is returned when a submission carries no decisions
	ErrNoDecisions = errors.New("at least one consent decision is required")

	// ErrUnknownType is returned when a decision names an unknown category
	ErrUnknownType = errors.New("unknown consent type")

	// ErrPrivacyRequired is returned when the mandatory privacy consent is
	// missing or not accepted
	ErrPrivacyRequired = errors.New("privacy consent must be accepted")
)

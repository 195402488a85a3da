package assessments

import "time"

// Severity is a GAD-7 band label.
type Severity string

const (
	SeverityMinimal  Severity = "minimal"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Result is a scored GAD-7 questionnaire.
type Result struct {
	Total    int      `json:"total"`
	Severity Severity `json:"severity"`
}

// GAD7Record is a persisted GAD-7 submission. Records are immutable.
type GAD7Record struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient_id"`
	TherapistUserID *string   `json:"therapist_user_id,omitempty"`
	Answers         []int     `json:"answers"`
	Total           int       `json:"total"`
	Severity        Severity  `json:"severity"`
	CreatedAt       time.Time `json:"created_at"`
}

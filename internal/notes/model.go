package notes

import (
	"strings"
	"time"
)

// Note is a clinical session note. The body is the therapist's record; the
// summary is derived and regenerable.
type Note struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patient_id"`
	TherapistID   string    `json:"therapist_id"`
	Body          string    `json:"body"`
	Summary       *string   `json:"summary,omitempty"`
	SummarySource *string   `json:"summary_source,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateNoteRequest is the payload for writing a note.
type CreateNoteRequest struct {
	PatientID   string `json:"patientId"`
	TherapistID string `json:"-"`
	Body        string `json:"body"`
}

func (r *CreateNoteRequest) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrPatientIDRequired
	}
	if strings.TrimSpace(r.Body) == "" {
		return ErrBodyRequired
	}
	return nil
}

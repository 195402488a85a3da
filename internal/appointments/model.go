package appointments

import (
	"strings"
	"time"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Appointment is a booked session between a therapist and a patient.
type Appointment struct {
	ID             string     `json:"id"`
	PatientID      string     `json:"patient_id"`
	TherapistID    string     `json:"therapist_id"`
	StartsAt       time.Time  `json:"starts_at"`
	EndsAt         time.Time  `json:"ends_at"`
	Location       string     `json:"location,omitempty"`
	Status         Status     `json:"status"`
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateAppointmentRequest is the payload for booking an appointment.
type CreateAppointmentRequest struct {
	PatientID   string    `json:"patientId"`
	TherapistID string    `json:"-"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	Location    string    `json:"location"`
}

func (r *CreateAppointmentRequest) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrPatientIDRequired
	}
	if r.StartsAt.IsZero() || r.EndsAt.IsZero() {
		return ErrTimesRequired
	}
	if !r.EndsAt.After(r.StartsAt) {
		return ErrEndBeforeStart
	}
	return nil
}

// ReminderCandidate joins an upcoming appointment with the contact details
// the reminder email needs.
type ReminderCandidate struct {
	AppointmentID string
	PatientID     string
	PatientName   string
	PatientEmail  string
	StartsAt      time.Time
	Location      string
}

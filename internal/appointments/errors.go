package appointments

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")
	ErrPatientIDRequired   = errors.New("appointments: patientId is required")
	ErrTimesRequired       = errors.New("appointments: startsAt and endsAt are required")
	ErrEndBeforeStart      = errors.New("appointments: endsAt must be after startsAt")
)

package notes

import "errors"

var (
	ErrNoteNotFound      = errors.New("notes: note not found")
	ErrPatientIDRequired = errors.New("notes: patientId is required")
	ErrBodyRequired      = errors.New("notes: body is required")
)

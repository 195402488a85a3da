package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores appointments in Postgres.
type Repository struct {
	pool Querier
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{pool: pool}
}

// NewRepositoryWithQuerier wires an explicit querier. Used by tests.
func NewRepositoryWithQuerier(q Querier) *Repository {
	if q == nil {
		panic("appointments: querier required")
	}
	return &Repository{pool: q}
}

const appointmentCols = `id, patient_id, therapist_id, starts_at, ends_at,
	location, status, reminder_sent_at, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.TherapistID, &a.StartsAt, &a.EndsAt,
		&a.Location, &a.Status, &a.ReminderSentAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create books an appointment.
func (r *Repository) Create(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO appointments (id, patient_id, therapist_id, starts_at, ends_at, location, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	a := &Appointment{
		ID:          id.String(),
		PatientID:   req.PatientID,
		TherapistID: req.TherapistID,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Location:    req.Location,
		Status:      StatusScheduled,
	}
	err := r.pool.QueryRow(ctx, query,
		id, req.PatientID, req.TherapistID, req.StartsAt, req.EndsAt, req.Location, StatusScheduled,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("appointments: create failed: %w", err)
	}
	return a, nil
}

// GetByID fetches an appointment scoped to the owning therapist.
func (r *Repository) GetByID(ctx context.Context, therapistID, id string) (*Appointment, error) {
	query := `SELECT ` + appointmentCols + ` FROM appointments WHERE id = $1 AND therapist_id = $2`
	a, err := scanAppointment(r.pool.QueryRow(ctx, query, id, therapistID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: get failed: %w", err)
	}
	return a, nil
}

// ListByPatient returns a patient's appointments, soonest first.
func (r *Repository) ListByPatient(ctx context.Context, therapistID, patientID string) ([]*Appointment, error) {
	query := `
		SELECT ` + appointmentCols + `
		FROM appointments
		WHERE patient_id = $1 AND therapist_id = $2
		ORDER BY starts_at ASC
	`
	rows, err := r.pool.Query(ctx, query, patientID, therapistID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	return out, nil
}

// Cancel marks a scheduled appointment cancelled. Cancelling an already
// cancelled or completed appointment is a no-op not-found.
func (r *Repository) Cancel(ctx context.Context, therapistID, id string) error {
	query := `
		UPDATE appointments SET status = $3, updated_at = NOW()
		WHERE id = $1 AND therapist_id = $2 AND status = $4
	`
	tag, err := r.pool.Exec(ctx, query, id, therapistID, StatusCancelled, StatusScheduled)
	if err != nil {
		return fmt.Errorf("appointments: cancel failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// DueForReminder returns scheduled appointments starting within the window
// whose reminder has not been sent, joined with patient contact details.
func (r *Repository) DueForReminder(ctx context.Context, window time.Duration, now time.Time) ([]*ReminderCandidate, error) {
	query := `
		SELECT a.id, a.patient_id, p.display_name, p.email, a.starts_at, a.location
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.status = $1
		  AND a.reminder_sent_at IS NULL
		  AND a.starts_at > $2
		  AND a.starts_at <= $3
		ORDER BY a.starts_at ASC
	`
	rows, err := r.pool.Query(ctx, query, StatusScheduled, now, now.Add(window))
	if err != nil {
		return nil, fmt.Errorf("appointments: due query failed: %w", err)
	}
	defer rows.Close()

	var out []*ReminderCandidate
	for rows.Next() {
		var c ReminderCandidate
		if err := rows.Scan(&c.AppointmentID, &c.PatientID, &c.PatientName, &c.PatientEmail, &c.StartsAt, &c.Location); err != nil {
			return nil, fmt.Errorf("appointments: scan candidate failed: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: due query failed: %w", err)
	}
	return out, nil
}

// MarkReminderSent stamps reminder_sent_at once. Concurrent runs race on the
// IS NULL guard so only one of them sends.
func (r *Repository) MarkReminderSent(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `UPDATE appointments SET reminder_sent_at = $2, updated_at = NOW() WHERE id = $1 AND reminder_sent_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return false, fmt.Errorf("appointments: mark reminder failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

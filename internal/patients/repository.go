package patients

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

// Repository stores patient records in Postgres.
type Repository struct {
	pool Querier
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &Repository{pool: pool}
}

// NewRepositoryWithQuerier wires an explicit querier. Used by tests.
func NewRepositoryWithQuerier(q Querier) *Repository {
	if q == nil {
		panic("patients: querier required")
	}
	return &Repository{pool: q}
}

const patientCols = `id, therapist_id, display_name, email, user_id,
	must_change_password, consent_required, consent_accepted_at,
	onboarding_status, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.TherapistID, &p.DisplayName, &p.Email, &p.UserID,
		&p.MustChangePassword, &p.ConsentRequired, &p.ConsentAcceptedAt,
		&p.OnboardingStatus, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new patient row. New patients require consent and a
// password change on first login.
func (r *Repository) Create(ctx context.Context, req *CreatePatientRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO patients (id, therapist_id, display_name, email,
			must_change_password, consent_required, onboarding_status)
		VALUES ($1, $2, $3, $4, TRUE, TRUE, $5)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.TherapistID,
		req.DisplayName,
		req.Email,
		StatusInvited,
	).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("patients: insert failed: %w", err)
	}

	return &Patient{
		ID:                 id.String(),
		TherapistID:        req.TherapistID,
		DisplayName:        req.DisplayName,
		Email:              req.Email,
		MustChangePassword: true,
		ConsentRequired:    true,
		OnboardingStatus:   StatusInvited,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}, nil
}

// GetByID fetches a patient scoped to the owning therapist.
func (r *Repository) GetByID(ctx context.Context, therapistID, id string) (*Patient, error) {
	query := `SELECT ` + patientCols + ` FROM patients WHERE id = $1 AND therapist_id = $2`
	p, err := scanPatient(r.pool.QueryRow(ctx, query, id, therapistID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: select failed: %w", err)
	}
	return p, nil
}

// Get fetches a patient without therapist scoping. Used by the onboarding
// flow, where the caller holds a token instead of a session.
func (r *Repository) Get(ctx context.Context, id string) (*Patient, error) {
	query := `SELECT ` + patientCols + ` FROM patients WHERE id = $1`
	p, err := scanPatient(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: select failed: %w", err)
	}
	return p, nil
}

// GetByUserID fetches the patient linked to an identity.
func (r *Repository) GetByUserID(ctx context.Context, userID string) (*Patient, error) {
	query := `SELECT ` + patientCols + ` FROM patients WHERE user_id = $1`
	p, err := scanPatient(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: select failed: %w", err)
	}
	return p, nil
}

// ListByTherapist returns all patients owned by a therapist, newest first.
func (r *Repository) ListByTherapist(ctx context.Context, therapistID string) ([]*Patient, error) {
	query := `SELECT ` + patientCols + ` FROM patients WHERE therapist_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, therapistID)
	if err != nil {
		return nil, fmt.Errorf("patients: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("patients: scan failed: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patients: list failed: %w", err)
	}
	return out, nil
}

// Link binds an identity to the patient record matching the email. The
// update is conditional on user_id being unset so two near-simultaneous
// attempts can never both claim the row; the loser falls through to the
// idempotence/conflict checks below.
func (r *Repository) Link(ctx context.Context, email, userID string) (*LinkResult, error) {
	query := `
		UPDATE patients
		SET user_id = $2, onboarding_status = $3, updated_at = NOW()
		WHERE LOWER(email) = LOWER($1) AND user_id IS NULL
		RETURNING ` + patientCols
	p, err := scanPatient(r.pool.QueryRow(ctx, query, email, userID, StatusLinked))
	if err == nil {
		return &LinkResult{Patient: p}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("patients: link update failed: %w", err)
	}

	// No unlinked match. Re-linking the same identity is a no-op success;
	// a different identity on the row is a conflict.
	existing, err := scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: link lookup failed: %w", err)
	}
	if existing.UserID != nil && *existing.UserID == userID {
		return &LinkResult{Patient: existing, AlreadyLinked: true}, nil
	}
	return nil, ErrLinkConflict
}

// SetOnboardingStatus advances the stored onboarding step.
func (r *Repository) SetOnboardingStatus(ctx context.Context, patientID string, status OnboardingStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE patients SET onboarding_status = $2, updated_at = NOW() WHERE id = $1`,
		patientID, status)
	if err != nil {
		return fmt.Errorf("patients: set onboarding status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

// MarkConsentAccepted clears the consent gate after the mandatory consent
// has been recorded.
func (r *Repository) MarkConsentAccepted(ctx context.Context, patientID string, at time.Time) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE patients
		SET consent_required = FALSE, consent_accepted_at = $2,
			onboarding_status = $3, updated_at = NOW()
		WHERE id = $1`,
		patientID, at, StatusConsentGiven)
	if err != nil {
		return fmt.Errorf("patients: mark consent accepted: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

// ClearMustChangePassword records that the patient has set their own password.
func (r *Repository) ClearMustChangePassword(ctx context.Context, patientID string) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE patients
		SET must_change_password = FALSE, onboarding_status = $2, updated_at = NOW()
		WHERE id = $1`,
		patientID, StatusPasswordSet)
	if err != nil {
		return fmt.Errorf("patients: clear must change password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

package notes

import (
	"context"
	"errors"
	"fmt"

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

// Repository stores clinical notes in Postgres.
type Repository struct {
	pool Querier
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("notes: pgx pool required")
	}
	return &Repository{pool: pool}
}

// NewRepositoryWithQuerier wires an explicit querier. Used by tests.
func NewRepositoryWithQuerier(q Querier) *Repository {
	if q == nil {
		panic("notes: querier required")
	}
	return &Repository{pool: q}
}

const noteCols = `id, patient_id, therapist_id, body, summary, summary_source, created_at, updated_at`

func scanNote(row pgx.Row) (*Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.PatientID, &n.TherapistID, &n.Body,
		&n.Summary, &n.SummarySource, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Create writes a new note.
func (r *Repository) Create(ctx context.Context, req *CreateNoteRequest) (*Note, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO clinical_notes (id, patient_id, therapist_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	n := &Note{
		ID:          id.String(),
		PatientID:   req.PatientID,
		TherapistID: req.TherapistID,
		Body:        req.Body,
	}
	if err := r.pool.QueryRow(ctx, query, id, req.PatientID, req.TherapistID, req.Body).
		Scan(&n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, fmt.Errorf("notes: create failed: %w", err)
	}
	return n, nil
}

// GetByID fetches a note scoped to the owning therapist.
func (r *Repository) GetByID(ctx context.Context, therapistID, id string) (*Note, error) {
	query := `SELECT ` + noteCols + ` FROM clinical_notes WHERE id = $1 AND therapist_id = $2`
	n, err := scanNote(r.pool.QueryRow(ctx, query, id, therapistID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("notes: get failed: %w", err)
	}
	return n, nil
}

// ListByPatient returns a patient's notes, newest first.
func (r *Repository) ListByPatient(ctx context.Context, therapistID, patientID string) ([]*Note, error) {
	query := `
		SELECT ` + noteCols + `
		FROM clinical_notes
		WHERE patient_id = $1 AND therapist_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, patientID, therapistID)
	if err != nil {
		return nil, fmt.Errorf("notes: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("notes: scan failed: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notes: list failed: %w", err)
	}
	return out, nil
}

// SaveSummary stores a generated summary and its provenance.
func (r *Repository) SaveSummary(ctx context.Context, id, summary, source string) error {
	query := `UPDATE clinical_notes SET summary = $2, summary_source = $3, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, summary, source)
	if err != nil {
		return fmt.Errorf("notes: save summary failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}

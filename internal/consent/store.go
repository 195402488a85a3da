package consent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists consent records in Postgres. Inserts only.
type Store struct {
	pool rowQuerier
}

func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("consent: pgx pool required")
	}
	return &Store{pool: pool}
}

func newStoreWithExec(exec rowQuerier) *Store {
	if exec == nil {
		panic("consent: exec required")
	}
	return &Store{pool: exec}
}

// Insert appends one consent record.
func (s *Store) Insert(ctx context.Context, patientID string, d Decision, meta Meta) (string, error) {
	id := uuid.New()
	query := `
		INSERT INTO consent_records (id, patient_id, consent_type, accepted, version, language, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.pool.Exec(ctx, query,
		id, patientID, string(d.ConsentType), d.Accepted,
		meta.Version, meta.Language, meta.UserAgent,
	); err != nil {
		return "", fmt.Errorf("consent: insert failed: %w", err)
	}
	return id.String(), nil
}

// HasAccepted reports whether at least one accepted row of the given type
// exists for the patient. Duplicate rows are expected (audit semantics).
func (s *Store) HasAccepted(ctx context.Context, patientID string, t Type) (bool, error) {
	query := `SELECT 1 FROM consent_records WHERE patient_id = $1 AND consent_type = $2 AND accepted LIMIT 1`
	var exists int
	if err := s.pool.QueryRow(ctx, query, patientID, string(t)).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("consent: check accepted: %w", err)
	}
	return true, nil
}

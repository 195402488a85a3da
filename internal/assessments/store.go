package assessments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ErrResultNotFound is returned when no GAD-7 record matches.
var ErrResultNotFound = errors.New("assessments: result not found")

// Store persists GAD-7 results in Postgres. Results are append-only.
type Store struct {
	pool querier
}

func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("assessments: pgx pool required")
	}
	return &Store{pool: pool}
}

func newStoreWithExec(exec querier) *Store {
	if exec == nil {
		panic("assessments: exec required")
	}
	return &Store{pool: exec}
}

// Insert appends one scored submission and returns the stored record.
func (s *Store) Insert(ctx context.Context, patientID string, therapistUserID *string, answers []int, result Result) (*GAD7Record, error) {
	id := uuid.New()
	query := `
		INSERT INTO gad7_results (id, patient_id, therapist_user_id, answers, total, severity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	record := &GAD7Record{
		ID:              id.String(),
		PatientID:       patientID,
		TherapistUserID: therapistUserID,
		Answers:         answers,
		Total:           result.Total,
		Severity:        result.Severity,
	}
	err := s.pool.QueryRow(ctx, query,
		id, patientID, therapistUserID, toInt16(answers), result.Total, string(result.Severity),
	).Scan(&record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("assessments: insert result: %w", err)
	}
	return record, nil
}

// ListByPatient returns a patient's results, newest first.
func (s *Store) ListByPatient(ctx context.Context, patientID string) ([]*GAD7Record, error) {
	query := `
		SELECT id, patient_id, therapist_user_id, answers, total, severity, created_at
		FROM gad7_results
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("assessments: list results: %w", err)
	}
	defer rows.Close()

	var records []*GAD7Record
	for rows.Next() {
		var (
			r       GAD7Record
			answers []int16
		)
		if err := rows.Scan(&r.ID, &r.PatientID, &r.TherapistUserID, &answers, &r.Total, &r.Severity, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("assessments: scan result: %w", err)
		}
		r.Answers = fromInt16(answers)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("assessments: list results: %w", err)
	}
	return records, nil
}

// Latest returns the most recent result for a patient.
func (s *Store) Latest(ctx context.Context, patientID string) (*GAD7Record, error) {
	query := `
		SELECT id, patient_id, therapist_user_id, answers, total, severity, created_at
		FROM gad7_results
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var (
		r       GAD7Record
		answers []int16
	)
	err := s.pool.QueryRow(ctx, query, patientID).
		Scan(&r.ID, &r.PatientID, &r.TherapistUserID, &answers, &r.Total, &r.Severity, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("assessments: latest result: %w", err)
	}
	r.Answers = fromInt16(answers)
	return &r, nil
}

// Answers live in a smallint[] column.
func toInt16(in []int) []int16 {
	out := make([]int16, len(in))
	for i, v := range in {
		out[i] = int16(v)
	}
	return out
}

func fromInt16(in []int16) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

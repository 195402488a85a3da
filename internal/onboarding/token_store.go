package onboarding

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

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TokenStore persists invite tokens in Postgres.
type TokenStore struct {
	pool rowQuerier
}

func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	if pool == nil {
		panic("onboarding: pgx pool required")
	}
	return &TokenStore{pool: pool}
}

func newTokenStoreWithExec(exec rowQuerier) *TokenStore {
	if exec == nil {
		panic("onboarding: exec required")
	}
	return &TokenStore{pool: exec}
}

// Create inserts a fresh token for the patient. The expiry is fixed here and
// never extended afterwards.
func (s *TokenStore) Create(ctx context.Context, patientID, token string, expiresAt time.Time) (*InviteToken, error) {
	id := uuid.New()
	query := `
		INSERT INTO invite_tokens (id, patient_id, token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := s.pool.QueryRow(ctx, query, id, patientID, token, expiresAt).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("onboarding: insert token: %w", err)
	}
	return &InviteToken{
		ID:        id.String(),
		PatientID: patientID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}, nil
}

// FindByToken loads a token row by its opaque value.
func (s *TokenStore) FindByToken(ctx context.Context, token string) (*InviteToken, error) {
	query := `
		SELECT id, patient_id, token, expires_at, used_at, created_at
		FROM invite_tokens
		WHERE token = $1
	`
	var t InviteToken
	if err := s.pool.QueryRow(ctx, query, token).Scan(
		&t.ID, &t.PatientID, &t.Token, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("onboarding: select token: %w", err)
	}
	return &t, nil
}

// MarkUsed consumes the token. The update is conditional on used_at being
// unset so a token can only ever be consumed once; a second attempt returns
// ErrTokenUsed.
func (s *TokenStore) MarkUsed(ctx context.Context, token string, at time.Time) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE invite_tokens SET used_at = $2 WHERE token = $1 AND used_at IS NULL`,
		token, at)
	if err != nil {
		return fmt.Errorf("onboarding: mark token used: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrTokenUsed
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"task-tracker/server/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a refresh-session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = "id, user_id, session_token, secret_digest, revoked, revoked_at, expires_at, created_at"

// Create persists the session and assigns the generated ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.RefreshSession) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO refresh_sessions (user_id, session_token, secret_digest, revoked, revoked_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		s.UserID, s.SessionToken, s.SecretDigest, s.Revoked, timeToNullTime(s.RevokedAt), s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetByDigest returns the session whose secret digest matches, or nil if absent.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByDigest(ctx context.Context, digest string) (*domain.RefreshSession, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM refresh_sessions WHERE secret_digest = $1", digest)
	return scanSession(row)
}

// Rotate revokes the active session matching digest and user and inserts the
// replacement row inside one transaction. The guarded UPDATE decides concurrent
// rotations of the same secret: only the request whose UPDATE touches the row
// proceeds, every other caller sees (false, nil).
func (r *PostgresRepository) Rotate(ctx context.Context, digest string, userID int64, at time.Time, replacement *domain.RefreshSession) (rotated bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE refresh_sessions
		 SET revoked = TRUE, revoked_at = $1
		 WHERE secret_digest = $2 AND user_id = $3 AND revoked = FALSE AND expires_at > $1`,
		at, digest, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		_ = tx.Rollback()
		return false, nil
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO refresh_sessions (user_id, session_token, secret_digest, revoked, revoked_at, expires_at)
		 VALUES ($1, $2, $3, FALSE, NULL, $4)
		 RETURNING id, created_at`,
		replacement.UserID, replacement.SessionToken, replacement.SecretDigest, replacement.ExpiresAt,
	).Scan(&replacement.ID, &replacement.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert replacement session: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// RevokeAllByUser marks every non-revoked session of the user revoked.
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_sessions
		 SET revoked = TRUE, revoked_at = $1
		 WHERE user_id = $2 AND revoked = FALSE`,
		at, userID)
	return err
}

func scanSession(row *sql.Row) (*domain.RefreshSession, error) {
	var (
		s         domain.RefreshSession
		revokedAt sql.NullTime
	)
	err := row.Scan(&s.ID, &s.UserID, &s.SessionToken, &s.SecretDigest, &s.Revoked, &revokedAt, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.RevokedAt = nullTimeToPtr(revokedAt)
	return &s, nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}

package repository

import (
	"context"
	"time"

	"task-tracker/server/internal/session/domain"
)

// Repository defines persistence for refresh sessions. Sessions are soft-revoked
// only; no method deletes rows.
type Repository interface {
	// Create persists the session and assigns the generated ID and CreatedAt.
	Create(ctx context.Context, s *domain.RefreshSession) error
	// GetByDigest returns the session whose secret digest matches, or nil if absent.
	GetByDigest(ctx context.Context, digest string) (*domain.RefreshSession, error)
	// Rotate atomically revokes the active session matching digest and user and
	// inserts the replacement row in the same transaction. Returns (false, nil)
	// when no row is active for that digest and user; the replacement is not
	// inserted in that case.
	Rotate(ctx context.Context, digest string, userID int64, at time.Time, replacement *domain.RefreshSession) (bool, error)
	// RevokeAllByUser marks every non-revoked session of the user revoked.
	RevokeAllByUser(ctx context.Context, userID int64, at time.Time) error
}

// Package ledger is the source of truth for which refresh secrets are valid.
// Every issued secret has exactly one row, tracked by digest; rotation consumes
// the old row and mints a replacement in one transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"task-tracker/server/internal/security"
	"task-tracker/server/internal/session/domain"
	sessionrepo "task-tracker/server/internal/session/repository"
)

var (
	// ErrInvalidOrExpired is returned when a presented secret matches no usable
	// session: unknown digest, revoked row, expired row, or owner mismatch.
	ErrInvalidOrExpired = errors.New("refresh session invalid or expired")
	// ErrSecretReused is returned when a presented secret matches a revoked but
	// unexpired row: the secret was already consumed once, which indicates
	// replay of a stolen or leaked value.
	ErrSecretReused = errors.New("refresh secret already used")
)

// Ledger issues, validates, rotates, and revokes refresh sessions.
type Ledger struct {
	repo sessionrepo.Repository
	ttl  time.Duration
	now  func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithNow sets the clock function (primarily for testing).
func WithNow(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New returns a Ledger persisting to repo, with sessions expiring ttl after issuance.
func New(repo sessionrepo.Repository, ttl time.Duration, options ...Option) *Ledger {
	l := &Ledger{repo: repo, ttl: ttl, now: time.Now}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Issue creates a new session for the user and returns the raw secret. The raw
// value is returned exactly once; only its digest is persisted.
func (l *Ledger) Issue(ctx context.Context, userID int64) (string, error) {
	secret, err := security.NewRefreshSecret()
	if err != nil {
		return "", fmt.Errorf("generate refresh secret: %w", err)
	}
	s := &domain.RefreshSession{
		UserID:       userID,
		SessionToken: uuid.New().String(),
		SecretDigest: security.DigestSecret(secret),
		ExpiresAt:    l.now().UTC().Add(l.ttl),
	}
	if err := l.repo.Create(ctx, s); err != nil {
		return "", fmt.Errorf("create refresh session: %w", err)
	}
	return secret, nil
}

// Validate returns the session the raw secret belongs to, if it is usable.
// Returns ErrInvalidOrExpired for unknown or expired secrets. A revoked but
// unexpired secret means the value was already consumed once and has come
// back: every session of its owner is revoked and ErrSecretReused is returned.
func (l *Ledger) Validate(ctx context.Context, rawSecret string) (*domain.RefreshSession, error) {
	s, err := l.repo.GetByDigest(ctx, security.DigestSecret(rawSecret))
	if err != nil {
		return nil, err
	}
	now := l.now().UTC()
	if s == nil {
		return nil, ErrInvalidOrExpired
	}
	if !s.Usable(now) {
		if s.Revoked && now.Before(s.ExpiresAt) {
			// Consumed once already and presented again: treat as replay.
			if err := l.repo.RevokeAllByUser(ctx, s.UserID, now); err != nil {
				return nil, err
			}
			return nil, ErrSecretReused
		}
		return nil, ErrInvalidOrExpired
	}
	if !security.SecretDigestEqual(rawSecret, s.SecretDigest) {
		return nil, ErrInvalidOrExpired
	}
	return s, nil
}

// Rotate consumes the presented secret and returns its replacement. The revoke
// of the old row and the insert of the new one commit together; under
// concurrent rotation of one secret exactly one caller wins and the rest get
// ErrInvalidOrExpired or ErrSecretReused.
func (l *Ledger) Rotate(ctx context.Context, rawSecret string, userID int64) (string, error) {
	secret, err := security.NewRefreshSecret()
	if err != nil {
		return "", fmt.Errorf("generate refresh secret: %w", err)
	}
	now := l.now().UTC()
	replacement := &domain.RefreshSession{
		UserID:       userID,
		SessionToken: uuid.New().String(),
		SecretDigest: security.DigestSecret(secret),
		ExpiresAt:    now.Add(l.ttl),
	}
	rotated, err := l.repo.Rotate(ctx, security.DigestSecret(rawSecret), userID, now, replacement)
	if err != nil {
		return "", err
	}
	if !rotated {
		return "", l.classifyRotateFailure(ctx, rawSecret, userID, now)
	}
	return secret, nil
}

// RevokeAll revokes every active session of the user. Used on logout and as the
// response to detected secret reuse. Idempotent.
func (l *Ledger) RevokeAll(ctx context.Context, userID int64) error {
	return l.repo.RevokeAllByUser(ctx, userID, l.now().UTC())
}

// classifyRotateFailure distinguishes replay of a consumed secret from the
// ordinary unknown/expired case so the caller can react to theft.
func (l *Ledger) classifyRotateFailure(ctx context.Context, rawSecret string, userID int64, now time.Time) error {
	s, err := l.repo.GetByDigest(ctx, security.DigestSecret(rawSecret))
	if err != nil {
		return err
	}
	if s != nil && s.UserID == userID && s.Revoked && now.Before(s.ExpiresAt) {
		if err := l.repo.RevokeAllByUser(ctx, userID, now); err != nil {
			return err
		}
		return ErrSecretReused
	}
	return ErrInvalidOrExpired
}

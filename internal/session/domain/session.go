package domain

import "time"

// RefreshSession is one issued refresh secret, tracked by digest. The raw
// secret handed to the client is never stored; SecretDigest is its SHA-256.
type RefreshSession struct {
	ID           int64
	UserID       int64
	SessionToken string     // random correlation identifier, unique, not security-bearing alone
	SecretDigest string     // SHA-256 hex of the raw secret, unique
	Revoked      bool       // never reverts to false once set
	RevokedAt    *time.Time // non-nil iff Revoked
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Usable reports whether the session may validate or rotate at the given time.
func (s *RefreshSession) Usable(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}

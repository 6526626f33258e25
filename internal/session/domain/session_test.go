package domain

import (
	"testing"
	"time"
)

func TestUsable(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	revokedAt := now.Add(-time.Minute)

	tests := []struct {
		name    string
		session RefreshSession
		want    bool
	}{
		{"active unexpired", RefreshSession{ExpiresAt: now.Add(time.Hour)}, true},
		{"revoked", RefreshSession{Revoked: true, RevokedAt: &revokedAt, ExpiresAt: now.Add(time.Hour)}, false},
		{"expired", RefreshSession{ExpiresAt: now.Add(-time.Second)}, false},
		{"expires exactly now", RefreshSession{ExpiresAt: now}, false},
		{"revoked and expired", RefreshSession{Revoked: true, RevokedAt: &revokedAt, ExpiresAt: now.Add(-time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Usable(now); got != tt.want {
				t.Errorf("Usable = %v, want %v", got, tt.want)
			}
		})
	}
}

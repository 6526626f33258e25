package domain

import "time"

// AuditLog represents one recorded auth event. UserID is 0 when the event has
// no authenticated user (e.g. a failed login).
type AuditLog struct {
	ID        string
	UserID    int64
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}

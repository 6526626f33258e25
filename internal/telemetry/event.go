// Package telemetry defines the server's telemetry event shape and the
// best-effort emit paths. Events are exported as OTel log records.
package telemetry

import (
	"context"
	"time"
)

// Event is one telemetry event. UserID is 0 when the request had no
// authenticated user.
type Event struct {
	UserID    int64
	EventType string
	Source    string
	Metadata  []byte // JSON
	CreatedAt time.Time
}

// EventEmitter emits telemetry events (e.g. to OTel Logs). Best-effort;
// callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

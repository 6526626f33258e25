package repository

import (
	"context"

	"task-tracker/server/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	ListByUser(ctx context.Context, userID int64, limit, offset int32) ([]*domain.AuditLog, error)
}

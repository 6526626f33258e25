package repository

import (
	"context"
	"database/sql"

	"task-tracker/server/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit log. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	userID := sql.NullInt64{Int64: a.UserID, Valid: a.UserID != 0}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, user_id, action, resource, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, userID, a.Action, a.Resource, a.IP, a.Metadata, a.CreatedAt)
	return err
}

// ListByUser returns audit logs for the user, newest first, paginated by limit and offset.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, action, resource, ip, metadata, created_at
		 FROM audit_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.AuditLog, 0)
	for rows.Next() {
		var a domain.AuditLog
		var uid sql.NullInt64
		if err := rows.Scan(&a.ID, &uid, &a.Action, &a.Resource, &a.IP, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.UserID = uid.Int64
		out = append(out, &a)
	}
	return out, rows.Err()
}

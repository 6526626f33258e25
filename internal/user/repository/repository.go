package repository

import (
	"context"

	"task-tracker/server/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create persists the user and assigns the generated ID.
	Create(ctx context.Context, u *domain.User) error
}

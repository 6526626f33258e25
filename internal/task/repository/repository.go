package repository

import (
	"context"

	"task-tracker/server/internal/task/domain"
)

// Repository defines persistence for tasks, tags, and their associations.
type Repository interface {
	// Create persists the task and assigns the generated ID.
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Task, error)
	UpdateName(ctx context.Context, id int64, name string) error
	UpdateDone(ctx context.Context, id int64, done bool) error
	Delete(ctx context.Context, id int64) error
	// DeleteDoneByUser removes every done task of the user and returns the count.
	DeleteDoneByUser(ctx context.Context, userID int64) (int64, error)

	// CreateTag persists the tag and assigns the generated ID.
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTagByID(ctx context.Context, id int64) (*domain.Tag, error)
	GetTagByUserAndName(ctx context.Context, userID int64, name string) (*domain.Tag, error)
	ListTagsByUser(ctx context.Context, userID int64) ([]*domain.Tag, error)
	DeleteTag(ctx context.Context, id int64) error

	// AttachTag links the tag to the task. Idempotent.
	AttachTag(ctx context.Context, taskID, tagID int64) error
	DetachTag(ctx context.Context, taskID, tagID int64) error
	ListTagsByTask(ctx context.Context, taskID int64) ([]*domain.Tag, error)
}

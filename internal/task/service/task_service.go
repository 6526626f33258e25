package service

import (
	"context"
	"errors"

	"task-tracker/server/internal/task/domain"
	"task-tracker/server/internal/task/repository"
)

// Sentinel errors for the task service; the handler maps them to HTTP status codes.
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTagNotFound  = errors.New("tag not found")
	ErrForbidden    = errors.New("resource belongs to another user")
	ErrTagNameTaken = errors.New("tag name already in use")
)

// ValidationError reports malformed input, such as an over-long name. It is a
// client fault, never a server fault.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// TaskService implements task and tag operations scoped to their owning user.
// Every lookup verifies ownership before acting.
type TaskService struct {
	repo repository.Repository
}

// NewTaskService returns a TaskService backed by repo.
func NewTaskService(repo repository.Repository) *TaskService {
	return &TaskService{repo: repo}
}

// CreateTask creates a task owned by userID.
func (s *TaskService) CreateTask(ctx context.Context, userID int64, name string, isDone bool) (*domain.Task, error) {
	t := &domain.Task{UserID: userID, Name: name, IsDone: isDone}
	if err := t.Validate(); err != nil {
		return nil, &ValidationError{msg: err.Error()}
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTask returns the task if it exists and belongs to userID.
func (s *TaskService) GetTask(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	return s.ownedTask(ctx, userID, taskID)
}

// ListTasks returns all tasks owned by userID, ordered by id.
func (s *TaskService) ListTasks(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.repo.ListByUser(ctx, userID)
}

// RenameTask changes the task name after an ownership check.
func (s *TaskService) RenameTask(ctx context.Context, userID, taskID int64, name string) (*domain.Task, error) {
	t, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	t.Name = name
	if err := t.Validate(); err != nil {
		return nil, &ValidationError{msg: err.Error()}
	}
	if err := s.repo.UpdateName(ctx, taskID, name); err != nil {
		return nil, err
	}
	return t, nil
}

// SetDone flips the done flag after an ownership check.
func (s *TaskService) SetDone(ctx context.Context, userID, taskID int64, done bool) (*domain.Task, error) {
	t, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDone(ctx, taskID, done); err != nil {
		return nil, err
	}
	t.IsDone = done
	return t, nil
}

// DeleteTask removes the task after an ownership check.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID int64) error {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, taskID)
}

// DeleteDone removes every done task of the user and returns the count.
func (s *TaskService) DeleteDone(ctx context.Context, userID int64) (int64, error) {
	return s.repo.DeleteDoneByUser(ctx, userID)
}

// CreateTag creates a tag owned by userID. Tag names are unique per user.
func (s *TaskService) CreateTag(ctx context.Context, userID int64, name string) (*domain.Tag, error) {
	t := &domain.Tag{UserID: userID, Name: name}
	if err := t.Validate(); err != nil {
		return nil, &ValidationError{msg: err.Error()}
	}
	existing, err := s.repo.GetTagByUserAndName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTagNameTaken
	}
	if err := s.repo.CreateTag(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns all tags owned by userID, ordered by name.
func (s *TaskService) ListTags(ctx context.Context, userID int64) ([]*domain.Tag, error) {
	return s.repo.ListTagsByUser(ctx, userID)
}

// DeleteTag removes the tag and its task associations after an ownership check.
func (s *TaskService) DeleteTag(ctx context.Context, userID, tagID int64) error {
	if _, err := s.ownedTag(ctx, userID, tagID); err != nil {
		return err
	}
	return s.repo.DeleteTag(ctx, tagID)
}

// AttachTag links a tag to a task. Both must belong to userID. Idempotent.
func (s *TaskService) AttachTag(ctx context.Context, userID, taskID, tagID int64) error {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return err
	}
	if _, err := s.ownedTag(ctx, userID, tagID); err != nil {
		return err
	}
	return s.repo.AttachTag(ctx, taskID, tagID)
}

// DetachTag removes the link between a tag and a task. Both must belong to userID.
func (s *TaskService) DetachTag(ctx context.Context, userID, taskID, tagID int64) error {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return err
	}
	if _, err := s.ownedTag(ctx, userID, tagID); err != nil {
		return err
	}
	return s.repo.DetachTag(ctx, taskID, tagID)
}

// ListTaskTags returns the tags attached to the task after an ownership check.
func (s *TaskService) ListTaskTags(ctx context.Context, userID, taskID int64) ([]*domain.Tag, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListTagsByTask(ctx, taskID)
}

func (s *TaskService) ownedTask(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	if t.UserID != userID {
		return nil, ErrForbidden
	}
	return t, nil
}

func (s *TaskService) ownedTag(ctx context.Context, userID, tagID int64) (*domain.Tag, error) {
	t, err := s.repo.GetTagByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTagNotFound
	}
	if t.UserID != userID {
		return nil, ErrForbidden
	}
	return t, nil
}

package domain

import "errors"

const (
	maxTaskNameLen = 60
	maxTagNameLen  = 30
)

// Task is a to-do item owned by one user.
type Task struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	IsDone bool   `json:"is_done"`
}

// Validate validates the task for persistence.
func (t *Task) Validate() error {
	if t.Name == "" {
		return errors.New("task name is required")
	}
	if len(t.Name) > maxTaskNameLen {
		return errors.New("task name must be at most 60 characters")
	}
	return nil
}

// Tag is a user-scoped label. Names are unique per user.
type Tag struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// Validate validates the tag for persistence.
func (t *Tag) Validate() error {
	if t.Name == "" {
		return errors.New("tag name is required")
	}
	if len(t.Name) > maxTagNameLen {
		return errors.New("tag name must be at most 30 characters")
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"task-tracker/server/internal/task/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a task repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = "id, user_id, name, is_done"

func (r *PostgresRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (user_id, name, is_done)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		t.UserID, t.Name, t.IsDone,
	).Scan(&t.ID)
}

// GetByID returns the task for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	return scanTask(row)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.IsDone); err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func (r *PostgresRepository) UpdateName(ctx context.Context, id int64, name string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET name = $1 WHERE id = $2", name, id)
	return err
}

func (r *PostgresRepository) UpdateDone(ctx context.Context, id int64, done bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET is_done = $1 WHERE id = $2", done, id)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	return err
}

func (r *PostgresRepository) DeleteDoneByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM tasks WHERE user_id = $1 AND is_done = TRUE", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const tagColumns = "id, user_id, name"

func (r *PostgresRepository) CreateTag(ctx context.Context, t *domain.Tag) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO tags (user_id, name)
		 VALUES ($1, $2)
		 RETURNING id`,
		t.UserID, t.Name,
	).Scan(&t.ID)
}

func (r *PostgresRepository) GetTagByID(ctx context.Context, id int64) (*domain.Tag, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+tagColumns+" FROM tags WHERE id = $1", id)
	return scanTag(row)
}

func (r *PostgresRepository) GetTagByUserAndName(ctx context.Context, userID int64, name string) (*domain.Tag, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+tagColumns+" FROM tags WHERE user_id = $1 AND name = $2", userID, name)
	return scanTag(row)
}

func (r *PostgresRepository) ListTagsByUser(ctx context.Context, userID int64) ([]*domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+tagColumns+" FROM tags WHERE user_id = $1 ORDER BY name", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTags(rows)
}

func (r *PostgresRepository) DeleteTag(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM task_tags WHERE tag_id = $1", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE id = $1", id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PostgresRepository) AttachTag(ctx context.Context, taskID, tagID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO task_tags (task_id, tag_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		taskID, tagID)
	return err
}

func (r *PostgresRepository) DetachTag(ctx context.Context, taskID, tagID int64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM task_tags WHERE task_id = $1 AND tag_id = $2", taskID, tagID)
	return err
}

func (r *PostgresRepository) ListTagsByTask(ctx context.Context, taskID int64) ([]*domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.user_id, t.name
		 FROM tags t
		 JOIN task_tags tt ON tt.tag_id = t.id
		 WHERE tt.task_id = $1
		 ORDER BY t.name`,
		taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTags(rows)
}

func scanTask(row *sql.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.IsDone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func scanTag(row *sql.Row) (*domain.Tag, error) {
	var t domain.Tag
	err := row.Scan(&t.ID, &t.UserID, &t.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func collectTags(rows *sql.Rows) ([]*domain.Tag, error) {
	tags := make([]*domain.Tag, 0)
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

const taskColumns = `id, user_id, title, description, completed, created_at, updated_at`

func (s *Store) CreateTask(ctx context.Context, task *domain.Task) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (user_id, title, description, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(task.UserID), task.Title, task.Description, boolToInt(task.Completed),
		formatTime(task.CreatedAt), formatTime(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite CreateTask: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite CreateTask: last insert id: %w", err)
	}
	task.ID = domain.TaskID(id)
	return nil
}

func (s *Store) GetTask(ctx context.Context, userID domain.UserID, id domain.TaskID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		int64(id), string(userID),
	)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite GetTask: %w", err)
	}
	return task, nil
}

// ListTasks returns the user's tasks in creation order.
func (s *Store) ListTasks(ctx context.Context, userID domain.UserID, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{string(userID)}

	switch filter {
	case domain.TaskFilterPending:
		query += ` AND completed = 0`
	case domain.TaskFilterCompleted:
		query += ` AND completed = 1`
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite ListTasks: %w", err)
	}
	defer rows.Close()

	out := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite ListTasks: %w", err)
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, completed = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		task.Title, task.Description, boolToInt(task.Completed), formatTime(task.UpdatedAt),
		int64(task.ID), string(task.UserID),
	)
	if err != nil {
		return fmt.Errorf("sqlite UpdateTask: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(task.ID)
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, userID domain.UserID, id domain.TaskID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`,
		int64(id), string(userID),
	)
	if err != nil {
		return fmt.Errorf("sqlite DeleteTask: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(id)
	}
	return nil
}

func scanTask(sc scanner) (*domain.Task, error) {
	var (
		t                domain.Task
		id               int64
		userID           string
		completed        int
		created, updated string
	)
	if err := sc.Scan(&id, &userID, &t.Title, &t.Description, &completed, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	t.ID = domain.TaskID(id)
	t.UserID = domain.UserID(userID)
	t.Completed = completed != 0
	return &t, nil
}

func notFound(id domain.TaskID) error {
	return fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
}

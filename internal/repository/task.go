package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thiagojorgelins/to-do-list/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

const taskColumns = `id, title, description, status, created_at, updated_at, user_id`

// TaskRepository handles task persistence. Every lookup by id is scoped to the
// owning user in the WHERE clause, so another user's task reads as missing.
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task and sets its generated ID.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	query := `INSERT INTO tasks (title, description, status, created_at, updated_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`

	id, err := r.db.insertReturningID(ctx, query,
		task.Title,
		nullString(task.Description),
		task.Status.String(),
		task.CreatedAt,
		task.UpdatedAt,
		task.UserID,
	)
	if err != nil {
		return err
	}

	task.ID = id
	return nil
}

// GetByID retrieves a task owned by userID.
func (r *TaskRepository) GetByID(ctx context.Context, userID, id int64) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`

	task, err := scanTask(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

// Count returns the number of userID's tasks matching filter.
func (r *TaskRepository) Count(ctx context.Context, userID int64, filter model.TaskFilter) (int, error) {
	where, args := filterClause(userID, filter)
	query := `SELECT COUNT(*) FROM tasks WHERE ` + where

	var n int
	if err := r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// List returns one page of userID's tasks matching filter, newest first.
// Ties on created_at are broken by id so the order is stable across pages.
func (r *TaskRepository) List(ctx context.Context, userID int64, filter model.TaskFilter, limit, offset int) ([]model.Task, error) {
	where, args := filterClause(userID, filter)
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// Update writes title, description, status and updated_at of a task owned by task.UserID.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	query := `UPDATE tasks SET title = ?, description = ?, status = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	_, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query),
		task.Title,
		nullString(task.Description),
		task.Status.String(),
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	return err
}

// Delete removes a task owned by userID.
func (r *TaskRepository) Delete(ctx context.Context, userID, id int64) error {
	query := `DELETE FROM tasks WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query), id, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		task        model.Task
		description sql.NullString
		status      string
	)
	if err := row.Scan(
		&task.ID, &task.Title, &description, &status,
		&task.CreatedAt, &task.UpdatedAt, &task.UserID,
	); err != nil {
		return nil, err
	}

	parsed, err := model.ParseTaskStatus(status)
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", task.ID, err)
	}
	task.Status = parsed

	if description.Valid {
		d := description.String
		task.Description = &d
	}

	return &task, nil
}

func filterClause(userID int64, filter model.TaskFilter) (string, []any) {
	where := `user_id = ?`
	args := []any{userID}
	if filter.Status != nil {
		where += ` AND status = ?`
		args = append(args, filter.Status.String())
	}
	return where, args
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

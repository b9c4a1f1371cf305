package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/thiagojorgelins/to-do-list/internal/model"
)

var taskCols = []string{"id", "title", "description", "status", "created_at", "updated_at", "user_id"}

var sqlNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T, dialect Dialect) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New() unexpected error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return &DB{DB: db, Dialect: dialect}, mock
}

func TestTaskRepository_GetByIDScopedToOwner(t *testing.T) {
	cases := []struct {
		dialect Dialect
		query   string
	}{
		{DialectMySQL, `SELECT id, title, description, status, created_at, updated_at, user_id FROM tasks WHERE id = ? AND user_id = ?`},
		{DialectPostgres, `SELECT id, title, description, status, created_at, updated_at, user_id FROM tasks WHERE id = $1 AND user_id = $2`},
	}
	for _, tc := range cases {
		t.Run(string(tc.dialect), func(t *testing.T) {
			db, mock := newMockDB(t, tc.dialect)
			repo := NewTaskRepository(db)

			mock.ExpectQuery(tc.query).WithArgs(5, 1).
				WillReturnRows(sqlmock.NewRows(taskCols).AddRow(5, "mine", "x", "Em andamento", sqlNow, sqlNow, 1))
			mock.ExpectQuery(tc.query).WithArgs(5, 2).
				WillReturnRows(sqlmock.NewRows(taskCols))

			task, err := repo.GetByID(context.Background(), 1, 5)
			if err != nil {
				t.Fatalf("GetByID() unexpected error: %v", err)
			}
			if task.UserID != 1 || task.Status != model.StatusInProgress || task.Description == nil || *task.Description != "x" {
				t.Errorf("GetByID() = %+v", task)
			}

			if _, err := repo.GetByID(context.Background(), 2, 5); !errors.Is(err, ErrTaskNotFound) {
				t.Errorf("GetByID() by other user expected ErrTaskNotFound, got %v", err)
			}
		})
	}
}

func TestTaskRepository_ListOrderedAndPaged(t *testing.T) {
	cases := []struct {
		dialect Dialect
		query   string
	}{
		{DialectMySQL, `SELECT id, title, description, status, created_at, updated_at, user_id FROM tasks WHERE user_id = ? AND status = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`},
		{DialectPostgres, `SELECT id, title, description, status, created_at, updated_at, user_id FROM tasks WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`},
	}
	for _, tc := range cases {
		t.Run(string(tc.dialect), func(t *testing.T) {
			db, mock := newMockDB(t, tc.dialect)
			repo := NewTaskRepository(db)
			done := model.StatusCompleted

			mock.ExpectQuery(tc.query).WithArgs(3, "Concluída", 10, 20).
				WillReturnRows(sqlmock.NewRows(taskCols).
					AddRow(9, "b", nil, "Concluída", sqlNow, sqlNow, 3).
					AddRow(8, "a", nil, "Concluída", sqlNow, sqlNow, 3))

			tasks, err := repo.List(context.Background(), 3, model.TaskFilter{Status: &done}, 10, 20)
			if err != nil {
				t.Fatalf("List() unexpected error: %v", err)
			}
			if len(tasks) != 2 || tasks[0].ID != 9 || tasks[1].Description != nil {
				t.Errorf("List() = %+v", tasks)
			}
		})
	}
}

func TestTaskRepository_ListEmptyIsNonNil(t *testing.T) {
	db, mock := newMockDB(t, DialectMySQL)
	mock.ExpectQuery(`SELECT id, title, description, status, created_at, updated_at, user_id FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`).
		WithArgs(1, 10, 0).
		WillReturnRows(sqlmock.NewRows(taskCols))

	tasks, err := NewTaskRepository(db).List(context.Background(), 1, model.TaskFilter{}, 10, 0)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("List() = %#v, want empty slice", tasks)
	}
}

func TestTaskRepository_Count(t *testing.T) {
	db, mock := newMockDB(t, DialectPostgres)
	mock.ExpectQuery(`SELECT COUNT(*) FROM tasks WHERE user_id = $1`).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))

	n, err := NewTaskRepository(db).Count(context.Background(), 4, model.TaskFilter{})
	if err != nil {
		t.Fatalf("Count() unexpected error: %v", err)
	}
	if n != 23 {
		t.Errorf("Count() = %d, want 23", n)
	}
}

func TestTaskRepository_UpdateScopedToOwner(t *testing.T) {
	cases := []struct {
		dialect Dialect
		query   string
	}{
		{DialectMySQL, `UPDATE tasks SET title = ?, description = ?, status = ?, updated_at = ? WHERE id = ? AND user_id = ?`},
		{DialectPostgres, `UPDATE tasks SET title = $1, description = $2, status = $3, updated_at = $4 WHERE id = $5 AND user_id = $6`},
	}
	for _, tc := range cases {
		t.Run(string(tc.dialect), func(t *testing.T) {
			db, mock := newMockDB(t, tc.dialect)

			mock.ExpectExec(tc.query).
				WithArgs("y", nil, "Pendente", sqlNow, 5, 2).
				WillReturnResult(sqlmock.NewResult(0, 0))

			err := NewTaskRepository(db).Update(context.Background(), &model.Task{
				ID: 5, UserID: 2, Title: "y", Status: model.StatusPending, UpdatedAt: sqlNow,
			})
			if err != nil {
				t.Errorf("Update() unexpected error: %v", err)
			}
		})
	}
}

func TestTaskRepository_DeleteScopedToOwner(t *testing.T) {
	cases := []struct {
		dialect Dialect
		query   string
	}{
		{DialectMySQL, `DELETE FROM tasks WHERE id = ? AND user_id = ?`},
		{DialectPostgres, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`},
	}
	for _, tc := range cases {
		t.Run(string(tc.dialect), func(t *testing.T) {
			db, mock := newMockDB(t, tc.dialect)
			repo := NewTaskRepository(db)

			mock.ExpectExec(tc.query).WithArgs(5, 1).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(tc.query).WithArgs(5, 2).WillReturnResult(sqlmock.NewResult(0, 0))

			if err := repo.Delete(context.Background(), 1, 5); err != nil {
				t.Errorf("Delete() by owner unexpected error: %v", err)
			}
			if err := repo.Delete(context.Background(), 2, 5); !errors.Is(err, ErrTaskNotFound) {
				t.Errorf("Delete() by other user expected ErrTaskNotFound, got %v", err)
			}
		})
	}
}

func TestTaskRepository_Create(t *testing.T) {
	desc := "x"
	newTask := func() *model.Task {
		return &model.Task{Title: "t", Description: &desc, Status: model.StatusPending, CreatedAt: sqlNow, UpdatedAt: sqlNow, UserID: 1}
	}
	args := []driver.Value{"t", "x", "Pendente", sqlNow, sqlNow, 1}

	t.Run("mysql", func(t *testing.T) {
		db, mock := newMockDB(t, DialectMySQL)
		mock.ExpectExec(`INSERT INTO tasks (title, description, status, created_at, updated_at, user_id) VALUES (?, ?, ?, ?, ?, ?)`).
			WithArgs(args...).
			WillReturnResult(sqlmock.NewResult(7, 1))

		task := newTask()
		if err := NewTaskRepository(db).Create(context.Background(), task); err != nil {
			t.Fatalf("Create() unexpected error: %v", err)
		}
		if task.ID != 7 {
			t.Errorf("ID = %d, want 7", task.ID)
		}
	})

	t.Run("postgres", func(t *testing.T) {
		db, mock := newMockDB(t, DialectPostgres)
		mock.ExpectQuery(`INSERT INTO tasks (title, description, status, created_at, updated_at, user_id) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`).
			WithArgs(args...).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

		task := newTask()
		if err := NewTaskRepository(db).Create(context.Background(), task); err != nil {
			t.Fatalf("Create() unexpected error: %v", err)
		}
		if task.ID != 9 {
			t.Errorf("ID = %d, want 9", task.ID)
		}
	})
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t, DialectMySQL)
	mock.ExpectExec(`INSERT INTO users (username, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`).
		WithArgs("ana", "ana@example.com", "hash", sqlNow, sqlNow).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewUserRepository(db).Create(context.Background(), &model.User{
		Username: "ana", Email: "ana@example.com", PasswordHash: "hash", CreatedAt: sqlNow, UpdatedAt: sqlNow,
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Create() expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t, DialectPostgres)
	query := `SELECT id, username, email, password_hash, created_at, updated_at FROM users WHERE email = $1`
	mock.ExpectQuery(query).WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}).
			AddRow(3, "ana", "ana@example.com", "hash", sqlNow, sqlNow))
	mock.ExpectQuery(query).WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewUserRepository(db)
	user, err := repo.GetByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() unexpected error: %v", err)
	}
	if user.ID != 3 || user.PasswordHash != "hash" {
		t.Errorf("GetByEmail() = %+v", user)
	}

	if _, err := repo.GetByEmail(context.Background(), "bob@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByEmail() expected ErrUserNotFound, got %v", err)
	}
}

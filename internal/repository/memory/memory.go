// Package memory provides process-local user and task stores with the same
// semantics as the SQL repositories. It backs DB_DRIVER=memory and the tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/thiagojorgelins/to-do-list/internal/model"
	"github.com/thiagojorgelins/to-do-list/internal/repository"
)

// UserStore keeps users in memory.
type UserStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{byID: make(map[int64]model.User)}
}

func (s *UserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	s.nextID++
	user.ID = s.nextID
	s.byID[user.ID] = *user
	return nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

// TaskStore keeps tasks in memory. Lookups are scoped by owner like the SQL store.
type TaskStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]model.Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{byID: make(map[int64]model.Task)}
}

func (s *TaskStore) Create(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	task.ID = s.nextID
	s.byID[task.ID] = cloneTask(*task)
	return nil
}

func (s *TaskStore) GetByID(_ context.Context, userID, id int64) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byID[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	t = cloneTask(t)
	return &t, nil
}

func (s *TaskStore) Count(_ context.Context, userID int64, filter model.TaskFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.matching(userID, filter)), nil
}

func (s *TaskStore) List(_ context.Context, userID int64, filter model.TaskFilter, limit, offset int) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := s.matching(userID, filter)
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})

	if offset < 0 || offset >= len(tasks) || limit <= 0 {
		return []model.Task{}, nil
	}
	end := offset + min(limit, len(tasks)-offset)
	return tasks[offset:end], nil
}

func (s *TaskStore) Update(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[task.ID]
	if !ok || current.UserID != task.UserID {
		return nil
	}
	current.Title = task.Title
	current.Description = task.Description
	current.Status = task.Status
	current.UpdatedAt = task.UpdatedAt
	s.byID[task.ID] = cloneTask(current)
	return nil
}

func (s *TaskStore) Delete(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok || t.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *TaskStore) matching(userID int64, filter model.TaskFilter) []model.Task {
	out := []model.Task{}
	for _, t := range s.byID {
		if t.UserID != userID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, cloneTask(t))
	}
	return out
}

func cloneTask(t model.Task) model.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	return t
}

package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thiagojorgelins/to-do-list/internal/model"
	"github.com/thiagojorgelins/to-do-list/internal/pagination"
	"github.com/thiagojorgelins/to-do-list/internal/repository"
)

const MaxTitleLength = 255

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title must be at most 255 characters")
	ErrStatusRequired  = errors.New("status cannot be null")
	ErrInvalidPage     = errors.New("page must be a positive integer")
	ErrInvalidPageSize = errors.New("size must be a positive integer")
)

// TaskStore is the task persistence the task service needs. Implementations
// must scope every by-id operation to the given owner.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, userID, id int64) (*model.Task, error)
	Count(ctx context.Context, userID int64, filter model.TaskFilter) (int, error)
	List(ctx context.Context, userID int64, filter model.TaskFilter, limit, offset int) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, userID, id int64) error
}

// ListParams selects one page of a user's tasks.
type ListParams struct {
	Page    int
	Size    int
	Status  *model.TaskStatus
	BaseURL string
}

// TaskService handles task business logic for an authenticated user.
type TaskService struct {
	repo TaskStore
	now  func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo TaskStore) *TaskService {
	return &TaskService{repo: repo, now: time.Now}
}

// Create stores a new task owned by userID.
func (s *TaskService) Create(ctx context.Context, userID int64, req model.TaskCreate) (model.Task, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return model.Task{}, err
	}

	status := model.StatusPending
	if req.Status != nil {
		if !req.Status.Valid() {
			return model.Task{}, model.ErrInvalidStatus
		}
		status = *req.Status
	}

	now := s.now().UTC()
	task := model.Task{
		Title:       title,
		Description: req.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return model.Task{}, err
	}

	return s.Get(ctx, userID, task.ID)
}

// List returns one page of userID's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID int64, p ListParams) (model.PageWindow, error) {
	if p.Page < 1 {
		return model.PageWindow{}, ErrInvalidPage
	}
	if p.Size < 1 {
		return model.PageWindow{}, ErrInvalidPageSize
	}

	filter := model.TaskFilter{Status: p.Status}

	total, err := s.repo.Count(ctx, userID, filter)
	if err != nil {
		return model.PageWindow{}, err
	}

	var extra url.Values
	if p.Status != nil {
		extra = url.Values{"status": {p.Status.String()}}
	}
	w := pagination.NewWindow(total, p.Page, p.Size, p.BaseURL, extra)

	tasks := []model.Task{}
	if p.Page <= w.TotalPages {
		tasks, err = s.repo.List(ctx, userID, filter, w.Size, w.Offset)
		if err != nil {
			return model.PageWindow{}, err
		}
	}

	return model.PageWindow{
		Data:        tasks,
		CurrentPage: w.Page,
		TotalPages:  w.TotalPages,
		Next:        w.Next,
		Previous:    w.Previous,
	}, nil
}

// Get returns task id if userID owns it.
func (s *TaskService) Get(ctx context.Context, userID, id int64) (model.Task, error) {
	task, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.Task{}, ErrTaskNotFound
		}
		return model.Task{}, err
	}
	return *task, nil
}

// Update applies the fields present in req to task id.
func (s *TaskService) Update(ctx context.Context, userID, id int64, req model.TaskUpdate) (model.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return model.Task{}, err
	}

	if req.Title.Present {
		if req.Title.Null {
			return model.Task{}, ErrTitleRequired
		}
		if task.Title, err = validateTitle(req.Title.Value); err != nil {
			return model.Task{}, err
		}
	}

	if req.Description.Present {
		if req.Description.Null {
			task.Description = nil
		} else {
			d := req.Description.Value
			task.Description = &d
		}
	}

	if req.Status.Present {
		if req.Status.Null {
			return model.Task{}, ErrStatusRequired
		}
		if !req.Status.Value.Valid() {
			return model.Task{}, model.ErrInvalidStatus
		}
		task.Status = req.Status.Value
	}

	task.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, &task); err != nil {
		return model.Task{}, err
	}

	return s.Get(ctx, userID, id)
}

// Delete removes task id if userID owns it.
func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	err := s.repo.Delete(ctx, userID, id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

package model

import "time"

// Task represents a task row owned by a single user.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	UserID      int64      `json:"user_id"`
}

// TaskCreate is the body of POST /tasks/. A nil Status means Pending.
type TaskCreate struct {
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Status      *TaskStatus `json:"status"`
}

// TaskUpdate is the body of PUT /tasks/{id}. Only present fields are applied.
type TaskUpdate struct {
	Title       Optional[string]     `json:"title"`
	Description Optional[string]     `json:"description"`
	Status      Optional[TaskStatus] `json:"status"`
}

// TaskFilter narrows a listing. A nil Status matches every status.
type TaskFilter struct {
	Status *TaskStatus
}

// PageWindow is the JSON shape of a paginated task listing.
type PageWindow struct {
	Data        []Task  `json:"data"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/thiagojorgelins/to-do-list/internal/middleware"
	"github.com/thiagojorgelins/to-do-list/internal/model"
	"github.com/thiagojorgelins/to-do-list/internal/pagination"
	"github.com/thiagojorgelins/to-do-list/internal/service"
)

const taskNotFoundDetail = "Task not found"

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service *service.TaskService
	log     logrus.FieldLogger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{service: svc, log: log}
}

// HandleCreate handles POST /tasks/ requests.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.TaskCreate
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeBodyError(w, err)
		return
	}

	task, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// HandleList handles GET /tasks/ requests.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	q := r.URL.Query()
	params := service.ListParams{BaseURL: pagination.BaseURL(r)}

	var err error
	if params.Page, err = intParam(q.Get("page"), pagination.DefaultPage); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(service.ErrInvalidPage.Error()))
		return
	}
	if params.Size, err = intParam(q.Get("size"), pagination.DefaultSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(service.ErrInvalidPageSize.Error()))
		return
	}
	if label := q.Get("status"); label != "" {
		status, err := model.ParseTaskStatus(label)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		params.Status = &status
	}

	window, err := h.service.List(r.Context(), user.ID, params)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, window)
}

// HandleGet handles GET /tasks/{task_id} requests.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, ok := taskID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid task id"))
		return
	}

	task, err := h.service.Get(r.Context(), user.ID, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleUpdate handles PUT /tasks/{task_id} requests. Only the fields present
// in the body are changed; an explicit null description clears it.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, ok := taskID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid task id"))
		return
	}

	var req model.TaskUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeBodyError(w, err)
		return
	}

	task, err := h.service.Update(r.Context(), user.ID, id, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleDelete handles DELETE /tasks/{task_id} requests.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id, ok := taskID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid task id"))
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, errorResponse("Task deleted"))
}

func (h *TaskHandler) writeBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrInvalidStatus) {
		writeJSON(w, http.StatusBadRequest, errorResponse(model.ErrInvalidStatus.Error()))
		return
	}
	writeDecodeError(w, err)
}

func (h *TaskHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(taskNotFoundDetail))
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrTitleTooLong),
		errors.Is(err, service.ErrStatusRequired),
		errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, service.ErrInvalidPageSize),
		errors.Is(err, model.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	default:
		internalError(w, r, h.log, err)
	}
}

func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "task_id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// intParam parses an optional query integer. Range checks are left to the service.
func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

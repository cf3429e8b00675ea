package tasks

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasktrackhq/tasktrack/internal/apperror"
	"github.com/tasktrackhq/tasktrack/internal/plugins/auth"
)

// Handler handles HTTP requests for task CRUD. All routes sit behind the
// auth middleware; the owner id comes from the request context, never from
// the request body.
type Handler struct {
	service TaskService
}

// NewHandler creates a new task handler with the given service.
func NewHandler(service TaskService) *Handler {
	return &Handler{service: service}
}

// List returns the account's tasks (GET /tasks).
func (h *Handler) List(c echo.Context) error {
	tasks, err := h.service.List(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return err
	}

	// An account with no tasks gets an empty list, not null.
	if tasks == nil {
		tasks = []Task{}
	}

	return c.JSON(http.StatusOK, map[string]any{"tasks": tasks})
}

// Create stores a new task (POST /tasks).
func (h *Handler) Create(c echo.Context) error {
	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	task, err := h.service.Create(c.Request().Context(), auth.UserID(c), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{"task": task})
}

// Get returns a single owned task (GET /tasks/:id).
func (h *Handler) Get(c echo.Context) error {
	task, err := h.service.Get(c.Request().Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"task": task})
}

// Update patches an owned task (PATCH /tasks/:id).
func (h *Handler) Update(c echo.Context) error {
	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	task, err := h.service.Update(c.Request().Context(), c.Param("id"), auth.UserID(c), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"task": task})
}

// Delete removes an owned task (DELETE /tasks/:id).
func (h *Handler) Delete(c echo.Context) error {
	task, err := h.service.Delete(c.Request().Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"task": task})
}

// Package tasks provides owner-scoped task CRUD. Every task belongs to
// exactly one account and every query filters on that ownership -- a task
// id from another account behaves exactly like a missing task.
package tasks

import "time"

// Task represents a single task record.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"-"` // Owner account id, never serialized.
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateTaskRequest holds the data submitted to POST /tasks.
type CreateTaskRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

// UpdateTaskRequest holds the data submitted to PATCH /tasks/:id.
// Nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
}

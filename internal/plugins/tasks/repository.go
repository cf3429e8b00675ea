package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tasktrackhq/tasktrack/internal/apperror"
)

// TaskRepository defines the data access contract for task operations.
// Every method takes the owner id and bakes it into the WHERE clause, so
// cross-tenant access is impossible at the SQL level.
type TaskRepository interface {
	List(ctx context.Context, ownerID string) ([]Task, error)
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id, ownerID string) (*Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id, ownerID string) (*Task, error)
}

// taskRepository implements TaskRepository with hand-written MySQL queries.
type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new task repository backed by the given DB pool.
func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

// List returns all tasks owned by the given account, newest first.
func (r *taskRepository) List(ctx context.Context, ownerID string) ([]Task, error) {
	query := `SELECT id, title, description, created_by, created_at
	          FROM tasks WHERE created_by = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// Create inserts a new task row.
func (r *taskRepository) Create(ctx context.Context, task *Task) error {
	query := `INSERT INTO tasks (id, title, description, created_by, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.CreatedBy,
		task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	return nil
}

// FindByID retrieves a task by id, scoped to its owner.
// Returns apperror.NotFound if no owned task exists with this id.
func (r *taskRepository) FindByID(ctx context.Context, id, ownerID string) (*Task, error) {
	query := `SELECT id, title, description, created_by, created_at
	          FROM tasks WHERE id = ? AND created_by = ?`

	task := &Task{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&task.ID, &task.Title, &task.Description, &task.CreatedBy, &task.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound(fmt.Sprintf("no task with id %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying task by id: %w", err)
	}

	return task, nil
}

// Update writes the task's title and description, scoped to its owner.
func (r *taskRepository) Update(ctx context.Context, task *Task) error {
	query := `UPDATE tasks SET title = ?, description = ? WHERE id = ? AND created_by = ?`

	result, err := r.db.ExecContext(ctx, query, task.Title, task.Description, task.ID, task.CreatedBy)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		// Distinguish "gone" from "no change": re-check existence.
		if _, findErr := r.FindByID(ctx, task.ID, task.CreatedBy); findErr != nil {
			return findErr
		}
	}
	return nil
}

// Delete removes an owned task and returns it, mirroring the find-and-delete
// semantics of the HTTP contract (the deleted record is echoed back).
func (r *taskRepository) Delete(ctx context.Context, id, ownerID string) (*Task, error) {
	task, err := r.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND created_by = ?`, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("deleting task: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return nil, apperror.NewNotFound(fmt.Sprintf("no task with id %s", id))
	}

	return task, nil
}

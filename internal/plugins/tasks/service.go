package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tasktrackhq/tasktrack/internal/apperror"
)

// TaskService handles business logic for task operations. The ownerID on
// every method is the authenticated account resolved by the auth
// middleware -- the service trusts it and scopes all access to it.
type TaskService interface {
	List(ctx context.Context, ownerID string) ([]Task, error)
	Create(ctx context.Context, ownerID string, req CreateTaskRequest) (*Task, error)
	Get(ctx context.Context, id, ownerID string) (*Task, error)
	Update(ctx context.Context, id, ownerID string, req UpdateTaskRequest) (*Task, error)
	Delete(ctx context.Context, id, ownerID string) (*Task, error)
}

// taskService implements TaskService.
type taskService struct {
	repo TaskRepository
}

// NewTaskService creates a new task service.
func NewTaskService(repo TaskRepository) TaskService {
	return &taskService{repo: repo}
}

// List returns all tasks owned by the account.
func (s *taskService) List(ctx context.Context, ownerID string) ([]Task, error) {
	tasks, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing tasks: %w", err))
	}
	return tasks, nil
}

// Create validates and stores a new task for the account.
func (s *taskService) Create(ctx context.Context, ownerID string, req CreateTaskRequest) (*Task, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)

	if title == "" {
		return nil, apperror.NewValidation("title is required")
	}
	if description == "" {
		return nil, apperror.NewValidation("description is required")
	}

	task := &Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		CreatedBy:   ownerID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating task: %w", err))
	}

	slog.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("user_id", ownerID),
	)

	return task, nil
}

// Get retrieves a single owned task.
func (s *taskService) Get(ctx context.Context, id, ownerID string) (*Task, error) {
	return s.repo.FindByID(ctx, id, ownerID)
}

// Update patches the provided fields of an owned task. Fields left nil in
// the request keep their stored values; provided fields are re-validated.
func (s *taskService) Update(ctx context.Context, id, ownerID string, req UpdateTaskRequest) (*Task, error) {
	task, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperror.NewValidation("title is required")
		}
		task.Title = title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, apperror.NewValidation("description is required")
		}
		task.Description = description
	}

	if err := s.repo.Update(ctx, task); err != nil {
		if apperror.HasCode(err, 404) {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("updating task: %w", err))
	}

	return task, nil
}

// Delete removes an owned task and returns the deleted record.
func (s *taskService) Delete(ctx context.Context, id, ownerID string) (*Task, error) {
	task, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		if apperror.HasCode(err, 404) {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("deleting task: %w", err))
	}

	slog.Info("task deleted",
		slog.String("task_id", id),
		slog.String("user_id", ownerID),
	)

	return task, nil
}

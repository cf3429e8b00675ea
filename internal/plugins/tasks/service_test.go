package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tasktrackhq/tasktrack/internal/apperror"
)

// --- Mock Repository ---

// mockTaskRepo implements TaskRepository for testing.
type mockTaskRepo struct {
	listFn     func(ctx context.Context, ownerID string) ([]Task, error)
	createFn   func(ctx context.Context, task *Task) error
	findByIDFn func(ctx context.Context, id, ownerID string) (*Task, error)
	updateFn   func(ctx context.Context, task *Task) error
	deleteFn   func(ctx context.Context, id, ownerID string) (*Task, error)
}

func (m *mockTaskRepo) List(ctx context.Context, ownerID string) ([]Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockTaskRepo) Create(ctx context.Context, task *Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id, ownerID string) (*Task, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id, ownerID)
	}
	return nil, apperror.NewNotFound("no task with id " + id)
}

func (m *mockTaskRepo) Update(ctx context.Context, task *Task) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id, ownerID string) (*Task, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, ownerID)
	}
	return nil, apperror.NewNotFound("no task with id " + id)
}

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

func strPtr(s string) *string { return &s }

// --- Create Tests ---

func TestCreateTask_Success(t *testing.T) {
	var created *Task
	repo := &mockTaskRepo{
		createFn: func(ctx context.Context, task *Task) error {
			created = task
			return nil
		},
	}

	svc := NewTaskService(repo)
	task, err := svc.Create(context.Background(), "owner-1", CreateTaskRequest{
		Title:       "  Write report  ",
		Description: "Quarterly figures",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID == "" {
		t.Error("expected task ID to be generated")
	}
	if task.Title != "Write report" {
		t.Errorf("expected trimmed title, got %q", task.Title)
	}
	if task.CreatedBy != "owner-1" {
		t.Errorf("expected owner-1, got %s", task.CreatedBy)
	}
	if created == nil {
		t.Fatal("expected repository Create to be called")
	}
}

func TestCreateTask_Validation(t *testing.T) {
	svc := NewTaskService(&mockTaskRepo{
		createFn: func(ctx context.Context, task *Task) error {
			t.Error("Create must not reach the repository on invalid input")
			return nil
		},
	})

	_, err := svc.Create(context.Background(), "owner-1", CreateTaskRequest{Description: "d"})
	assertAppError(t, err, 400)

	_, err = svc.Create(context.Background(), "owner-1", CreateTaskRequest{Title: "t"})
	assertAppError(t, err, 400)
}

// --- Get Tests ---

func TestGetTask_ScopedToOwner(t *testing.T) {
	repo := &mockTaskRepo{
		findByIDFn: func(ctx context.Context, id, ownerID string) (*Task, error) {
			if ownerID != "owner-1" {
				t.Errorf("expected lookup scoped to owner-1, got %s", ownerID)
			}
			return &Task{ID: id, Title: "t", CreatedBy: ownerID}, nil
		},
	}

	svc := NewTaskService(repo)
	task, err := svc.Get(context.Background(), "task-1", "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "task-1" {
		t.Errorf("expected task-1, got %s", task.ID)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	svc := NewTaskService(&mockTaskRepo{})
	_, err := svc.Get(context.Background(), "missing", "owner-1")
	assertAppError(t, err, 404)
}

// --- Update Tests ---

func TestUpdateTask_PartialPatch(t *testing.T) {
	stored := &Task{
		ID:          "task-1",
		Title:       "Old title",
		Description: "Old description",
		CreatedBy:   "owner-1",
		CreatedAt:   time.Now().UTC(),
	}
	var updated *Task
	repo := &mockTaskRepo{
		findByIDFn: func(ctx context.Context, id, ownerID string) (*Task, error) {
			cp := *stored
			return &cp, nil
		},
		updateFn: func(ctx context.Context, task *Task) error {
			updated = task
			return nil
		},
	}

	svc := NewTaskService(repo)
	task, err := svc.Update(context.Background(), "task-1", "owner-1", UpdateTaskRequest{
		Title: strPtr("New title"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Title != "New title" {
		t.Errorf("expected updated title, got %q", task.Title)
	}
	if task.Description != "Old description" {
		t.Errorf("omitted field must keep its value, got %q", task.Description)
	}
	if updated == nil {
		t.Fatal("expected repository Update to be called")
	}
}

func TestUpdateTask_BlankField(t *testing.T) {
	repo := &mockTaskRepo{
		findByIDFn: func(ctx context.Context, id, ownerID string) (*Task, error) {
			return &Task{ID: id, Title: "t", Description: "d", CreatedBy: ownerID}, nil
		},
		updateFn: func(ctx context.Context, task *Task) error {
			t.Error("Update must not reach the repository on invalid input")
			return nil
		},
	}

	svc := NewTaskService(repo)
	_, err := svc.Update(context.Background(), "task-1", "owner-1", UpdateTaskRequest{
		Title: strPtr("   "),
	})
	assertAppError(t, err, 400)
}

func TestUpdateTask_NotFound(t *testing.T) {
	svc := NewTaskService(&mockTaskRepo{})
	_, err := svc.Update(context.Background(), "missing", "owner-1", UpdateTaskRequest{
		Title: strPtr("x"),
	})
	assertAppError(t, err, 404)
}

// --- Delete Tests ---

func TestDeleteTask_ReturnsDeleted(t *testing.T) {
	repo := &mockTaskRepo{
		deleteFn: func(ctx context.Context, id, ownerID string) (*Task, error) {
			return &Task{ID: id, Title: "t", CreatedBy: ownerID}, nil
		},
	}

	svc := NewTaskService(repo)
	task, err := svc.Delete(context.Background(), "task-1", "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "task-1" {
		t.Errorf("expected deleted task back, got %s", task.ID)
	}
}

func TestDeleteTask_NotFound(t *testing.T) {
	svc := NewTaskService(&mockTaskRepo{})
	_, err := svc.Delete(context.Background(), "missing", "owner-1")
	assertAppError(t, err, 404)
}

// --- List Tests ---

func TestListTasks_Empty(t *testing.T) {
	repo := &mockTaskRepo{
		listFn: func(ctx context.Context, ownerID string) ([]Task, error) {
			return nil, nil
		},
	}

	svc := NewTaskService(repo)
	tasks, err := svc.List(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no tasks, got %d", len(tasks))
	}
}

func TestListTasks_RepoError(t *testing.T) {
	repo := &mockTaskRepo{
		listFn: func(ctx context.Context, ownerID string) ([]Task, error) {
			return nil, errors.New("db connection lost")
		},
	}

	svc := NewTaskService(repo)
	_, err := svc.List(context.Background(), "owner-1")
	assertAppError(t, err, 500)
}

package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/todo-agent/internal/domain"
	"github.com/PabloGalante/todo-agent/internal/observability"
)

// Service holds the task operations shared by the REST endpoints and the
// assistant tools. Every call is scoped to the user passed in by the caller.
type Service struct {
	store domain.TaskStore
	now   func() time.Time
}

// NewService creates a task service from a TaskStore
func NewService(store domain.TaskStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) ListTasks(ctx context.Context, userID domain.UserID, filter domain.TaskFilter) ([]*domain.Task, error) {
	return s.store.ListTasks(ctx, userID, filter)
}

func (s *Service) GetTask(ctx context.Context, userID domain.UserID, id domain.TaskID) (*domain.Task, error) {
	return s.store.GetTask(ctx, userID, id)
}

// CreateTask stores a new pending task. A blank title is rejected.
func (s *Service) CreateTask(ctx context.Context, userID domain.UserID, title, description string) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}

	now := s.now()
	task := &domain.Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info("task created",
		"user_id", userID,
		"task_id", task.ID)

	return task, nil
}

// TaskUpdate carries the fields of a partial update; nil means unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
}

func (s *Service) UpdateTask(ctx context.Context, userID domain.UserID, id domain.TaskID, upd TaskUpdate) (*domain.Task, error) {
	task, err := s.store.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
		}
		task.Title = title
	}
	if upd.Description != nil {
		task.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}
	task.UpdatedAt = s.now()

	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask marks the task as done. Completing a completed task is a no-op
// that still returns the task.
func (s *Service) CompleteTask(ctx context.Context, userID domain.UserID, id domain.TaskID) (*domain.Task, error) {
	done := true
	return s.UpdateTask(ctx, userID, id, TaskUpdate{Completed: &done})
}

func (s *Service) DeleteTask(ctx context.Context, userID domain.UserID, id domain.TaskID) error {
	if err := s.store.DeleteTask(ctx, userID, id); err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info("task deleted",
		"user_id", userID,
		"task_id", id)
	return nil
}

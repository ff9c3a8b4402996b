package tasks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/PabloGalante/todo-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/todo-agent/internal/app/tasks"
	"github.com/PabloGalante/todo-agent/internal/domain"
)

func newService() *tasks.Service {
	return tasks.NewService(memory.NewTaskStore())
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	svc := newService()

	_, err := svc.CreateTask(context.Background(), "u1", "   ", "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateAndFilter(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	milk, err := svc.CreateTask(ctx, "u1", "buy milk", "")
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if milk.ID == 0 || milk.Completed {
		t.Fatalf("unexpected task: %+v", milk)
	}

	bread, err := svc.CreateTask(ctx, "u1", "buy bread", "whole grain")
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := svc.CreateTask(ctx, "u2", "someone else's", ""); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if _, err := svc.CompleteTask(ctx, "u1", bread.ID); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}

	cases := map[domain.TaskFilter]int{
		domain.TaskFilterAll:       2,
		domain.TaskFilterPending:   1,
		domain.TaskFilterCompleted: 1,
	}
	for filter, want := range cases {
		got, err := svc.ListTasks(ctx, "u1", filter)
		if err != nil {
			t.Fatalf("ListTasks(%s) failed: %v", filter, err)
		}
		if len(got) != want {
			t.Errorf("ListTasks(%s) = %d tasks, want %d", filter, len(got), want)
		}
	}
}

func TestCompleteAndDeleteAreUserScoped(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	task, err := svc.CreateTask(ctx, "u1", "walk the dog", "")
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if _, err := svc.CompleteTask(ctx, "u2", task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound completing another user's task, got %v", err)
	}
	if err := svc.DeleteTask(ctx, "u2", task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting another user's task, got %v", err)
	}
	if _, err := svc.CompleteTask(ctx, "u1", 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing task, got %v", err)
	}

	if err := svc.DeleteTask(ctx, "u1", task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := svc.GetTask(ctx, "u1", task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected deleted task to be gone, got %v", err)
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	task, err := svc.CreateTask(ctx, "u1", "draft", "old")
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	title := "final"
	got, err := svc.UpdateTask(ctx, "u1", task.ID, tasks.TaskUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if got.Title != "final" || got.Description != "old" || got.Completed {
		t.Fatalf("unexpected task after update: %+v", got)
	}

	empty := ""
	if _, err := svc.UpdateTask(ctx, "u1", task.ID, tasks.TaskUpdate{Title: &empty}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty title, got %v", err)
	}
}

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

// TaskService is the part of tasks.Service the tools need.
type TaskService interface {
	ListTasks(ctx context.Context, userID domain.UserID, filter domain.TaskFilter) ([]*domain.Task, error)
	CreateTask(ctx context.Context, userID domain.UserID, title, description string) (*domain.Task, error)
	CompleteTask(ctx context.Context, userID domain.UserID, id domain.TaskID) (*domain.Task, error)
	DeleteTask(ctx context.Context, userID domain.UserID, id domain.TaskID) error
}

// Tool names as advertised to the model.
const (
	ListTasksTool    = "get_tasks_tool"
	CreateTaskTool   = "create_task_tool"
	CompleteTaskTool = "mark_task_complete_tool"
	DeleteTaskTool   = "delete_task_tool"
)

// NewTaskRegistry builds the registry with one descriptor per Kind.
// It fails if a kind is missing, so adding a Kind without a tool is caught
// at startup.
func NewTaskRegistry(svc TaskService) (*Registry, error) {
	descs := TaskDescriptors(svc)

	seen := make(map[Kind]bool, len(descs))
	for _, d := range descs {
		seen[d.Kind] = true
	}
	for _, k := range AllKinds() {
		if !seen[k] {
			return nil, fmt.Errorf("no tool registered for %s", k)
		}
	}

	return NewRegistry(descs...)
}

// TaskDescriptors returns the task tool descriptors bound to svc.
func TaskDescriptors(svc TaskService) []*Descriptor {
	return []*Descriptor{
		{
			Kind:        KindListTasks,
			Name:        ListTasksTool,
			Description: "Retrieves a list of tasks for the specified user. Can filter by status: 'all', 'pending', or 'completed'.",
			Parameters: objectSchema(
				map[string]*domain.Schema{
					"status": {
						Type:        "string",
						Enum:        []string{string(domain.TaskFilterAll), string(domain.TaskFilterPending), string(domain.TaskFilterCompleted)},
						Description: "Filter tasks by status: 'all', 'pending', or 'completed'. Defaults to 'all'.",
					},
					UserIDArg: userIDSchema("The ID of the user whose tasks to retrieve."),
				},
				UserIDArg,
			),
			Defaults: map[string]any{"status": string(domain.TaskFilterAll)},
			Execute: func(ctx context.Context, tctx ToolContext, input map[string]any) (map[string]any, error) {
				filter := domain.ParseTaskFilter(getString(input, "status"))

				tasks, err := svc.ListTasks(ctx, tctx.UserID, filter)
				if err != nil {
					return nil, err
				}

				out := make([]map[string]any, 0, len(tasks))
				for _, t := range tasks {
					out = append(out, map[string]any{
						"id":          int64(t.ID),
						"title":       t.Title,
						"description": t.Description,
						"completed":   t.Completed,
					})
				}
				return map[string]any{
					"status": string(filter),
					"count":  len(out),
					"tasks":  out,
				}, nil
			},
		},
		{
			Kind:        KindCreateTask,
			Name:        CreateTaskTool,
			Description: "Creates a new task for the user.",
			Parameters: objectSchema(
				map[string]*domain.Schema{
					"title":       {Type: "string", Description: "The title of the task."},
					"description": {Type: "string", Description: "An optional description for the task."},
					UserIDArg:     userIDSchema("The ID of the user for whom to create the task."),
				},
				"title", UserIDArg,
			),
			Execute: func(ctx context.Context, tctx ToolContext, input map[string]any) (map[string]any, error) {
				var args struct {
					Title       string `json:"title"`
					Description string `json:"description"`
				}
				if err := decodeArgs(input, &args); err != nil {
					return nil, err
				}

				task, err := svc.CreateTask(ctx, tctx.UserID, args.Title, args.Description)
				if err != nil {
					if errors.Is(err, domain.ErrValidation) {
						return nil, invalidf("Task title must not be empty.")
					}
					return nil, err
				}

				return map[string]any{
					"id":          int64(task.ID),
					"title":       task.Title,
					"description": task.Description,
					"completed":   task.Completed,
				}, nil
			},
		},
		{
			Kind:        KindCompleteTask,
			Name:        CompleteTaskTool,
			Description: "Marks an existing task as completed.",
			Parameters: objectSchema(
				map[string]*domain.Schema{
					"task_id": {Type: "integer", Description: "The ID of the task to mark as complete."},
					UserIDArg: userIDSchema("The ID of the user whose task to mark complete."),
				},
				"task_id", UserIDArg,
			),
			Execute: func(ctx context.Context, tctx ToolContext, input map[string]any) (map[string]any, error) {
				var args struct {
					TaskID domain.TaskID `json:"task_id"`
				}
				if err := decodeArgs(input, &args); err != nil {
					return nil, err
				}

				task, err := svc.CompleteTask(ctx, tctx.UserID, args.TaskID)
				if err != nil {
					return nil, taskError(err, args.TaskID)
				}

				return map[string]any{
					"id":        int64(task.ID),
					"title":     task.Title,
					"completed": task.Completed,
				}, nil
			},
		},
		{
			Kind:        KindDeleteTask,
			Name:        DeleteTaskTool,
			Description: "Deletes an existing task.",
			Parameters: objectSchema(
				map[string]*domain.Schema{
					"task_id": {Type: "integer", Description: "The ID of the task to delete."},
					UserIDArg: userIDSchema("The ID of the user whose task to delete."),
				},
				"task_id", UserIDArg,
			),
			Execute: func(ctx context.Context, tctx ToolContext, input map[string]any) (map[string]any, error) {
				var args struct {
					TaskID domain.TaskID `json:"task_id"`
				}
				if err := decodeArgs(input, &args); err != nil {
					return nil, err
				}

				if err := svc.DeleteTask(ctx, tctx.UserID, args.TaskID); err != nil {
					return nil, taskError(err, args.TaskID)
				}

				return map[string]any{
					"status": fmt.Sprintf("Task with ID %d deleted successfully.", args.TaskID),
				}, nil
			},
		},
	}
}

// --- internal helpers --- //

func objectSchema(props map[string]*domain.Schema, required ...string) *domain.Schema {
	return &domain.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func userIDSchema(desc string) *domain.Schema {
	return &domain.Schema{Type: "string", Description: desc}
}

func taskError(err error, id domain.TaskID) error {
	if errors.Is(err, domain.ErrNotFound) {
		return notFoundf("Task with ID %d not found.", id)
	}
	return err
}

func decodeArgs(input map[string]any, dst any) error {
	data, err := json.Marshal(input)
	if err != nil {
		return invalidf("Invalid arguments: %v", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return invalidf("Invalid arguments: %v", err)
	}
	return nil
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

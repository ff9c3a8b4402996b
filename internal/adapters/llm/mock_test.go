package llm_test

import (
	"context"
	"strings"
	"testing"

	"github.com/PabloGalante/todo-agent/internal/adapters/llm"
	"github.com/PabloGalante/todo-agent/internal/domain"
)

var mockTools = []domain.ToolSpec{
	{Name: "get_tasks_tool"},
	{Name: "create_task_tool"},
	{Name: "mark_task_complete_tool"},
	{Name: "delete_task_tool"},
}

func TestMockModelPicksTools(t *testing.T) {
	cases := []struct {
		text     string
		wantTool string
		wantArgs string
	}{
		{"Add a task to buy milk", "create_task_tool", `{"title":"buy milk"}`},
		{"create task: call mom", "create_task_tool", `{"title":"call mom"}`},
		{"Please mark task 3 as done", "mark_task_complete_tool", `{"task_id":3}`},
		{"delete task #12", "delete_task_tool", `{"task_id":12}`},
		{"show my pending tasks", "get_tasks_tool", `{"status":"pending"}`},
		{"list everything", "get_tasks_tool", `{"status":"all"}`},
	}

	model := llm.NewMockModel()
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			resp, err := model.Complete(context.Background(), domain.ModelRequest{
				Messages: []*domain.Message{{Role: domain.RoleUser, Content: tc.text}},
				Tools:    mockTools,
			})
			if err != nil {
				t.Fatalf("Complete failed: %v", err)
			}
			if len(resp.ToolCalls) != 1 {
				t.Fatalf("expected one tool call, got %+v", resp)
			}
			call := resp.ToolCalls[0]
			if call.Name != tc.wantTool || call.Arguments != tc.wantArgs || call.ID == "" {
				t.Fatalf("unexpected call %+v", call)
			}
		})
	}
}

func TestMockModelSmallTalk(t *testing.T) {
	resp, err := llm.NewMockModel().Complete(context.Background(), domain.ModelRequest{
		Messages: []*domain.Message{{Role: domain.RoleUser, Content: "hello there"}},
		Tools:    mockTools,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if len(resp.ToolCalls) != 0 || resp.Text == "" {
		t.Fatalf("expected plain text reply, got %+v", resp)
	}
}

func TestMockModelSummarisesToolResults(t *testing.T) {
	resp, err := llm.NewMockModel().Complete(context.Background(), domain.ModelRequest{
		Messages: []*domain.Message{
			{Role: domain.RoleUser, Content: "Add a task to buy milk"},
			{Role: domain.RoleAssistant, ToolCall: &domain.ToolCall{ID: "c1", Name: "create_task_tool"}},
			{Role: domain.RoleTool, ToolCallID: "c1", ToolName: "create_task_tool", Content: `{"id":7,"title":"buy milk","completed":false}`},
		},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "I've added 'buy milk' to your list." {
		t.Fatalf("unexpected summary %q", resp.Text)
	}

	resp, err = llm.NewMockModel().Complete(context.Background(), domain.ModelRequest{
		Messages: []*domain.Message{
			{Role: domain.RoleUser, Content: "complete task 999"},
			{Role: domain.RoleAssistant, ToolCall: &domain.ToolCall{ID: "c1", Name: "mark_task_complete_tool"}},
			{Role: domain.RoleTool, ToolCallID: "c1", ToolName: "mark_task_complete_tool", Content: `{"error":"Task with ID 999 not found."}`},
		},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if !strings.Contains(resp.Text, "Task with ID 999 not found.") {
		t.Fatalf("summary should mention the missing task, got %q", resp.Text)
	}
}

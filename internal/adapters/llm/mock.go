package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

// Tool names the mock knows how to call. They match the task registry.
const (
	mockListTool     = "get_tasks_tool"
	mockCreateTool   = "create_task_tool"
	mockCompleteTool = "mark_task_complete_tool"
	mockDeleteTool   = "delete_task_tool"
)

var (
	createRe   = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:add|create|new)(?:\s+a)?(?:\s+new)?(?:\s+task)?(?:\s*:|\s+to)?\s+(.+?)\s*[.!]?\s*$`)
	completeRe = regexp.MustCompile(`(?i)\b(?:complete|finish|done|mark)\b\D*(\d+)`)
	deleteRe   = regexp.MustCompile(`(?i)\b(?:delete|remove)\b\D*(\d+)`)
	listRe     = regexp.MustCompile(`(?i)\b(?:list|show|what|which|tasks)\b`)
)

// MockModel is a keyword driven stand-in for a real model, for local
// development without credentials. It calls at most one tool per message
// and summarises tool results in plain English.
type MockModel struct {
	calls atomic.Int64
}

func NewMockModel() *MockModel {
	return &MockModel{}
}

func (m *MockModel) Complete(_ context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("mock model: empty conversation")
	}

	last := req.Messages[len(req.Messages)-1]
	switch last.Role {
	case domain.RoleTool:
		return &domain.ModelResponse{Text: summarise(lastTurnToolResults(req.Messages))}, nil
	case domain.RoleUser:
		if call, ok := m.pickTool(last.Content, req.Tools); ok {
			return &domain.ModelResponse{ToolCalls: []domain.ToolCall{call}}, nil
		}
	}

	return &domain.ModelResponse{
		Text: "I can help you add, list, complete or delete tasks. What would you like to do?",
	}, nil
}

func (m *MockModel) pickTool(text string, offered []domain.ToolSpec) (domain.ToolCall, bool) {
	available := make(map[string]bool, len(offered))
	for _, t := range offered {
		available[t.Name] = true
	}

	var (
		name string
		args map[string]any
	)

	switch {
	case deleteRe.MatchString(text):
		name = mockDeleteTool
		args = map[string]any{"task_id": atoi(deleteRe.FindStringSubmatch(text)[1])}
	case completeRe.MatchString(text):
		name = mockCompleteTool
		args = map[string]any{"task_id": atoi(completeRe.FindStringSubmatch(text)[1])}
	case createRe.MatchString(text):
		name = mockCreateTool
		args = map[string]any{"title": createRe.FindStringSubmatch(text)[1]}
	case listRe.MatchString(text):
		name = mockListTool
		args = map[string]any{"status": statusFromText(text)}
	default:
		return domain.ToolCall{}, false
	}

	if !available[name] {
		return domain.ToolCall{}, false
	}

	return domain.ToolCall{
		ID:        fmt.Sprintf("mock_call_%d", m.calls.Add(1)),
		Name:      name,
		Arguments: encodeArguments(args),
	}, true
}

func statusFromText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "pending") || strings.Contains(lower, "open") || strings.Contains(lower, "todo"):
		return "pending"
	case strings.Contains(lower, "completed") || strings.Contains(lower, "finished"):
		return "completed"
	default:
		return "all"
	}
}

func summarise(results []*domain.Message) string {
	var lines []string
	for _, r := range results {
		lines = append(lines, summariseOne(r))
	}
	if len(lines) == 0 {
		return "Done."
	}
	return strings.Join(lines, "\n")
}

func summariseOne(msg *domain.Message) string {
	var res map[string]any
	if err := json.Unmarshal([]byte(msg.Content), &res); err != nil {
		return "I ran " + msg.ToolName + "."
	}
	if e, ok := res["error"].(string); ok {
		return "Sorry, I couldn't do that: " + e
	}

	switch msg.ToolName {
	case mockCreateTool:
		return fmt.Sprintf("I've added '%v' to your list.", res["title"])
	case mockCompleteTool:
		return fmt.Sprintf("Marked '%v' as completed.", res["title"])
	case mockDeleteTool:
		return fmt.Sprint(res["status"])
	case mockListTool:
		tasks, _ := res["tasks"].([]any)
		if len(tasks) == 0 {
			return "You have no tasks here."
		}
		var b strings.Builder
		fmt.Fprintf(&b, "You have %d task(s):", len(tasks))
		for _, raw := range tasks {
			t, _ := raw.(map[string]any)
			mark := " "
			if done, _ := t["completed"].(bool); done {
				mark = "x"
			}
			fmt.Fprintf(&b, "\n[%s] #%v %v", mark, t["id"], t["title"])
		}
		return b.String()
	}
	return "Done."
}

// atoi is only fed \d+ captures.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

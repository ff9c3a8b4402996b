package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PabloGalante/todo-agent/internal/adapters/llm"
	"github.com/PabloGalante/todo-agent/internal/domain"
)

func TestOpenAIClientRequestAndToolCalls(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"finish_reason":"tool_calls","message":{"role":"assistant","content":null,
			"tool_calls":[{"id":"call_1","type":"function","function":{"name":"create_task_tool","arguments":"{\"title\":\"buy milk\"}"}}]}}]}`))
	}))
	defer srv.Close()

	client := llm.NewOpenAIClient(srv.URL+"/v1/", "sk-test", "gpt-test")

	resp, err := client.Complete(context.Background(), domain.ModelRequest{
		System: "be helpful",
		Messages: []*domain.Message{
			{Role: domain.RoleUser, Content: "earlier"},
			{Role: domain.RoleAssistant, ToolCall: &domain.ToolCall{ID: "call_0", Name: "get_tasks_tool", Arguments: `{}`}},
			{Role: domain.RoleTool, Content: `{"count":0}`, ToolCallID: "call_0", ToolName: "get_tasks_tool"},
			{Role: domain.RoleUser, Content: "Add a task to buy milk"},
		},
		Tools: []domain.ToolSpec{{
			Name:        "create_task_tool",
			Description: "Creates a new task for the user.",
			Parameters:  &domain.Schema{Type: "object", Required: []string{"title"}},
		}},
		ToolChoice: domain.ToolChoiceAuto,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].ID != "call_1" || resp.ToolCalls[0].Name != "create_task_tool" {
		t.Fatalf("unexpected tool calls: %+v", resp.ToolCalls)
	}
	if resp.ToolCalls[0].Arguments != `{"title":"buy milk"}` {
		t.Fatalf("unexpected arguments: %s", resp.ToolCalls[0].Arguments)
	}
	if resp.Text != "" {
		t.Fatalf("expected no text, got %q", resp.Text)
	}

	if got["model"] != "gpt-test" || got["tool_choice"] != "auto" {
		t.Fatalf("unexpected request header fields: %v", got)
	}
	msgs, _ := got["messages"].([]any)
	if len(msgs) != 5 {
		t.Fatalf("expected system + 4 messages, got %d", len(msgs))
	}
	roles := make([]string, 0, len(msgs))
	for _, raw := range msgs {
		roles = append(roles, raw.(map[string]any)["role"].(string))
	}
	if strings.Join(roles, ",") != "system,user,assistant,tool,user" {
		t.Fatalf("unexpected roles: %v", roles)
	}
	toolMsg := msgs[3].(map[string]any)
	if toolMsg["tool_call_id"] != "call_0" {
		t.Fatalf("tool message lost its call id: %v", toolMsg)
	}
	assistant := msgs[2].(map[string]any)
	if calls, _ := assistant["tool_calls"].([]any); len(calls) != 1 {
		t.Fatalf("assistant message lost its tool call: %v", assistant)
	}
}

func TestOpenAIClientTextReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello!"}}]}`))
	}))
	defer srv.Close()

	resp, err := llm.NewOpenAIClient(srv.URL, "", "").Complete(context.Background(), domain.ModelRequest{
		Messages: []*domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "Hello!" || len(resp.ToolCalls) != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestOpenAIClientErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		},
		"no choices": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		},
	}

	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			_, err := llm.NewOpenAIClient(srv.URL, "k", "m").Complete(context.Background(), domain.ModelRequest{
				Messages: []*domain.Message{{Role: domain.RoleUser, Content: "hi"}},
			})
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

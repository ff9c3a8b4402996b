package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/PabloGalante/todo-agent/internal/adapters/http"
	"github.com/PabloGalante/todo-agent/internal/adapters/llm"
	"github.com/PabloGalante/todo-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/todo-agent/internal/app/agentflow"
	"github.com/PabloGalante/todo-agent/internal/app/conversation"
	"github.com/PabloGalante/todo-agent/internal/app/tasks"
	"github.com/PabloGalante/todo-agent/internal/app/tools"
	"github.com/PabloGalante/todo-agent/internal/domain"
)

func newTestServer(t *testing.T, model domain.ModelClient) http.Handler {
	t.Helper()

	taskSvc := tasks.NewService(memory.NewTaskStore())
	reg, err := tools.NewTaskRegistry(taskSvc)
	if err != nil {
		t.Fatalf("NewTaskRegistry failed: %v", err)
	}

	messages := memory.NewMessageStore()
	disp := agentflow.NewDispatcher(model, reg, messages)
	convSvc := conversation.NewService(memory.NewConversationStore(), messages, disp)

	return httpadapter.NewServer(convSvc, taskSvc, httpadapter.Options{})
}

func do(t *testing.T, srv http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(httpadapter.UserHeader, user)
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

type task struct {
	ID          int64  `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func TestHealthzAndRoot(t *testing.T) {
	srv := newTestServer(t, llm.NewMockModel())

	if w := do(t, srv, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w := do(t, srv, http.MethodGet, "/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if msg := decodeBody[map[string]string](t, w)["message"]; msg == "" {
		t.Fatal("expected banner message")
	}

	if w := do(t, srv, http.MethodGet, "/nope", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestTaskCRUD(t *testing.T) {
	srv := newTestServer(t, llm.NewMockModel())

	w := do(t, srv, http.MethodPost, "/api/tasks/", "", map[string]any{"title": "Buy groceries", "description": "Milk, eggs"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decodeBody[task](t, w)
	if created.ID != 1 || created.UserID != "test_user" || created.Completed {
		t.Fatalf("unexpected task %+v", created)
	}

	if w := do(t, srv, http.MethodPost, "/api/tasks/", "", map[string]any{"title": "  "}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank title, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodPost, "/api/tasks/", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", w.Code)
	}

	_ = do(t, srv, http.MethodPost, "/api/tasks", "", map[string]any{"title": "Walk dog"})

	w = do(t, srv, http.MethodGet, "/api/tasks/1", "", nil)
	if w.Code != http.StatusOK || decodeBody[task](t, w).Title != "Buy groceries" {
		t.Fatalf("unexpected get: %d %s", w.Code, w.Body.String())
	}

	w = do(t, srv, http.MethodPut, "/api/tasks/1", "", map[string]any{"description": "Milk only"})
	updated := decodeBody[task](t, w)
	if w.Code != http.StatusOK || updated.Title != "Buy groceries" || updated.Description != "Milk only" {
		t.Fatalf("unexpected update: %d %+v", w.Code, updated)
	}

	w = do(t, srv, http.MethodPatch, "/api/tasks/1/complete", "", nil)
	if w.Code != http.StatusOK || !decodeBody[task](t, w).Completed {
		t.Fatalf("unexpected complete: %d %s", w.Code, w.Body.String())
	}

	pending := decodeBody[[]task](t, do(t, srv, http.MethodGet, "/api/tasks/?status_filter=pending", "", nil))
	completed := decodeBody[[]task](t, do(t, srv, http.MethodGet, "/api/tasks/?status_filter=completed", "", nil))
	all := decodeBody[[]task](t, do(t, srv, http.MethodGet, "/api/tasks/", "", nil))
	if len(pending) != 1 || pending[0].Title != "Walk dog" {
		t.Fatalf("unexpected pending %+v", pending)
	}
	if len(completed) != 1 || completed[0].ID != 1 {
		t.Fatalf("unexpected completed %+v", completed)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(all))
	}

	if w := do(t, srv, http.MethodDelete, "/api/tasks/1", "", nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodDelete, "/api/tasks/1", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestTaskErrors(t *testing.T) {
	srv := newTestServer(t, llm.NewMockModel())
	_ = do(t, srv, http.MethodPost, "/api/tasks/", "alice", map[string]any{"title": "private"})

	cases := []struct {
		name   string
		method string
		path   string
		user   string
		want   int
	}{
		{"foreign task", http.MethodGet, "/api/tasks/1", "bob", http.StatusNotFound},
		{"foreign complete", http.MethodPatch, "/api/tasks/1/complete", "bob", http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/tasks/abc", "alice", http.StatusBadRequest},
		{"unknown sub path", http.MethodGet, "/api/tasks/1/other", "alice", http.StatusNotFound},
		{"wrong method", http.MethodPost, "/api/tasks/1", "alice", http.StatusMethodNotAllowed},
		{"complete needs patch", http.MethodGet, "/api/tasks/1/complete", "alice", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(t, srv, tc.method, tc.path, tc.user, nil); w.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}

	if got := decodeBody[[]task](t, do(t, srv, http.MethodGet, "/api/tasks/", "bob", nil)); len(got) != 0 {
		t.Fatalf("bob should see no tasks, got %+v", got)
	}
}

func TestChatCreatesTaskAndConversation(t *testing.T) {
	srv := newTestServer(t, llm.NewMockModel())

	w := do(t, srv, http.MethodPost, "/api/chat/", "u1", map[string]any{"message": "Add a task to buy milk"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody[map[string]string](t, w)
	if resp["response"] != "I've added 'buy milk' to your list." || resp["conversation_id"] == "" {
		t.Fatalf("unexpected chat response %+v", resp)
	}

	got := decodeBody[[]task](t, do(t, srv, http.MethodGet, "/api/tasks/", "u1", nil))
	if len(got) != 1 || got[0].Title != "buy milk" {
		t.Fatalf("chat should create the task, got %+v", got)
	}

	w = do(t, srv, http.MethodGet, "/api/conversations/"+resp["conversation_id"], "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	timeline := decodeBody[struct {
		Messages []struct {
			Role       string `json:"role"`
			ToolCallID string `json:"tool_call_id"`
			ToolCall   *struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"tool_call"`
		} `json:"messages"`
	}](t, w)
	if len(timeline.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(timeline.Messages))
	}
	call := timeline.Messages[1].ToolCall
	if call == nil || call.Name != "create_task_tool" || timeline.Messages[2].ToolCallID != call.ID {
		t.Fatalf("tool traffic not exposed: %+v", timeline.Messages)
	}

	if w := do(t, srv, http.MethodGet, "/api/conversations/"+resp["conversation_id"], "u2", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other user, got %d", w.Code)
	}

	list := decodeBody[[]map[string]any](t, do(t, srv, http.MethodGet, "/api/conversations/", "u1", nil))
	if len(list) != 1 || list[0]["id"] != resp["conversation_id"] {
		t.Fatalf("unexpected conversation list %+v", list)
	}
}

func TestChatErrors(t *testing.T) {
	srv := newTestServer(t, llm.NewScriptedModel(llm.Fail(errors.New("quota"))))

	if w := do(t, srv, http.MethodPost, "/api/chat/", "", map[string]any{"message": ""}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty message, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodGet, "/api/chat/", "", nil); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodPost, "/api/chat/", "", map[string]any{"message": "hi"}); w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on model failure, got %d", w.Code)
	}
}

func TestCORSAndRequestID(t *testing.T) {
	srv := newTestServer(t, llm.NewMockModel())

	w := do(t, srv, http.MethodOptions, "/api/tasks/", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, PATCH, DELETE, OPTIONS" {
		t.Fatalf("unexpected methods header %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected wildcard origin by default")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(httpadapter.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Header().Get(httpadapter.RequestIDHeader) != "req-123" {
		t.Fatalf("request id not echoed: %q", rec.Header().Get(httpadapter.RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get(httpadapter.RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}
}

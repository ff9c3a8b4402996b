package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/PabloGalante/todo-agent/internal/app/conversation"
	"github.com/PabloGalante/todo-agent/internal/app/tasks"
	"github.com/PabloGalante/todo-agent/internal/domain"
	"github.com/PabloGalante/todo-agent/internal/observability"
)

// UserHeader names the caller. Requests without it act as Options.DefaultUserID.
const UserHeader = "X-User-ID"

type Options struct {
	DefaultUserID string
	CORSOrigin    string
}

type Server struct {
	conv        *conversation.Service
	tasks       *tasks.Service
	defaultUser domain.UserID
}

func NewServer(conv *conversation.Service, taskSvc *tasks.Service, opts Options) http.Handler {
	if opts.DefaultUserID == "" {
		opts.DefaultUserID = "test_user"
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}

	s := &Server{
		conv:        conv,
		tasks:       taskSvc,
		defaultUser: domain.UserID(opts.DefaultUserID),
	}
	mux := http.NewServeMux()

	// / → banner, /healthz → liveness
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/healthz", s.handleHealthz)

	// /api/tasks/                 → GET: list, POST: create
	// /api/tasks/{id}             → GET, PUT, DELETE
	// /api/tasks/{id}/complete    → PATCH
	mux.HandleFunc("/api/tasks", s.handleTasks)
	mux.HandleFunc("/api/tasks/", s.handleTasks)

	// /api/chat/ → POST: one assistant turn
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/chat/", s.handleChat)

	// /api/conversations/      → GET: list
	// /api/conversations/{id}  → GET: conversation + messages
	mux.HandleFunc("/api/conversations", s.handleConversations)
	mux.HandleFunc("/api/conversations/", s.handleConversations)

	return chainMiddlewares(mux,
		withCORS(opts.CORSOrigin),
		withLogging,
		withRequestID,
	)
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		notFound(w, "not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Todo API is running!",
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathParts splits what follows prefix, ignoring a trailing slash:
// "/api/tasks/3/complete" with prefix "/api/tasks" → ["3", "complete"].
func pathParts(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// userFrom returns the caller's user id.
func (s *Server) userFrom(r *http.Request) domain.UserID {
	if v := strings.TrimSpace(r.Header.Get(UserHeader)); v != "" {
		return domain.UserID(v)
	}
	return s.defaultUser
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}

// writeError maps domain errors to status codes. Only validation messages
// are echoed back; everything else gets a generic body.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		badRequest(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		notFound(w, notFoundMsg)
	case errors.Is(err, domain.ErrModelService):
		observability.LoggerFromContext(r.Context()).Error("model service failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "the assistant is unavailable, please try again",
		})
	default:
		observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
}

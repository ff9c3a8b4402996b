package httpadapter

import (
	"net/http"
	"strconv"
	"time"

	"github.com/PabloGalante/todo-agent/internal/app/tasks"
	"github.com/PabloGalante/todo-agent/internal/domain"
)

const taskNotFound = "Task not found"

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// updateTaskRequest only touches the fields that are present.
type updateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

type taskResponse struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          int64(t.ID),
		UserID:      string(t.UserID),
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ─────────────────────────────────────────────
// Routing
// ─────────────────────────────────────────────

// /api/tasks, /api/tasks/{id} or /api/tasks/{id}/complete
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/tasks")

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			s.handleListTasks(w, r)
		case http.MethodPost:
			s.handleCreateTask(w, r)
		default:
			methodNotAllowed(w)
		}
		return
	}

	n, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		badRequest(w, "task id must be an integer")
		return
	}
	id := domain.TaskID(n)

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetTask(w, r, id)
		case http.MethodPut:
			s.handleUpdateTask(w, r, id)
		case http.MethodDelete:
			s.handleDeleteTask(w, r, id)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "complete" {
		if r.Method != http.MethodPatch {
			methodNotAllowed(w)
			return
		}
		s.handleCompleteTask(w, r, id)
		return
	}

	notFound(w, "not found")
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter := domain.ParseTaskFilter(r.URL.Query().Get("status_filter"))

	list, err := s.tasks.ListTasks(r.Context(), s.userFrom(r), filter)
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}

	out := make([]taskResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTaskResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	task, err := s.tasks.CreateTask(r.Context(), s.userFrom(r), req.Title, req.Description)
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request, id domain.TaskID) {
	task, err := s.tasks.GetTask(r.Context(), s.userFrom(r), id)
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, id domain.TaskID) {
	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	task, err := s.tasks.UpdateTask(r.Context(), s.userFrom(r), id, tasks.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, id domain.TaskID) {
	if err := s.tasks.DeleteTask(r.Context(), s.userFrom(r), id); err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request, id domain.TaskID) {
	task, err := s.tasks.CompleteTask(r.Context(), s.userFrom(r), id)
	if err != nil {
		writeError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

// TaskStore is an in-memory implementation of domain.TaskStore.
// It is NOT persistent and is only suitable for development / local mode.
type TaskStore struct {
	mu     sync.RWMutex
	nextID domain.TaskID
	tasks  map[domain.TaskID]*domain.Task
}

// NewTaskStore creates a new in-memory TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[domain.TaskID]*domain.Task),
	}
}

func (s *TaskStore) CreateTask(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	task.ID = s.nextID

	t := *task
	s.tasks[task.ID] = &t
	return nil
}

func (s *TaskStore) GetTask(_ context.Context, userID domain.UserID, id domain.TaskID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.lookup(userID, id)
	if !ok {
		return nil, notFound(id)
	}
	c := *t
	return &c, nil
}

// ListTasks returns the user's tasks in creation order.
func (s *TaskStore) ListTasks(_ context.Context, userID domain.UserID, filter domain.TaskFilter) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.Task{}
	for _, t := range s.tasks {
		if t.UserID == userID && filter.Matches(t.Completed) {
			c := *t
			out = append(out, &c)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *TaskStore) UpdateTask(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(task.UserID, task.ID); !ok {
		return notFound(task.ID)
	}

	t := *task
	s.tasks[task.ID] = &t
	return nil
}

func (s *TaskStore) DeleteTask(_ context.Context, userID domain.UserID, id domain.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(userID, id); !ok {
		return notFound(id)
	}
	delete(s.tasks, id)
	return nil
}

// lookup must be called with mu held.
func (s *TaskStore) lookup(userID domain.UserID, id domain.TaskID) (*domain.Task, bool) {
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, false
	}
	return t, true
}

func notFound(id domain.TaskID) error {
	return fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
}

package tools

import (
	"context"
	"fmt"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

// ToolContext brings metadata of the call to the tool.
// UserID is the authenticated caller, never a value taken from the model.
type ToolContext struct {
	UserID         domain.UserID
	ConversationID domain.ConversationID
	RequestID      string
}

// Kind enumerates the tools the assistant supports.
type Kind int

const (
	KindListTasks Kind = iota
	KindCreateTask
	KindCompleteTask
	KindDeleteTask

	kindCount
)

// AllKinds returns every supported tool kind.
func AllKinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) String() string {
	switch k {
	case KindListTasks:
		return "list_tasks"
	case KindCreateTask:
		return "create_task"
	case KindCompleteTask:
		return "complete_task"
	case KindDeleteTask:
		return "delete_task"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Executor runs a tool with arguments that already passed schema validation.
type Executor func(ctx context.Context, tctx ToolContext, args map[string]any) (map[string]any, error)

// Descriptor binds a tool name, its parameter schema and its executable.
// The schema sent to the model and the one used for validation are the same value.
type Descriptor struct {
	Kind        Kind
	Name        string
	Description string
	Parameters  *domain.Schema
	// Defaults are applied to missing arguments before validation.
	Defaults map[string]any
	Execute  Executor
}

// Spec is the model-facing view of the descriptor.
func (d *Descriptor) Spec() domain.ToolSpec {
	return domain.ToolSpec{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  d.Parameters,
	}
}

// Error is a tool failure the model is allowed to see.
// Message is shown verbatim; Err classifies it (domain.ErrNotFound, domain.ErrValidation).
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func notFoundf(format string, args ...any) error {
	return &Error{Err: domain.ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidf(format string, args ...any) error {
	return &Error{Err: domain.ErrValidation, Message: fmt.Sprintf(format, args...)}
}

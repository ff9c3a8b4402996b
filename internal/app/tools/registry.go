package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/PabloGalante/todo-agent/internal/domain"
	"github.com/PabloGalante/todo-agent/internal/observability"
)

// UserIDArg is the argument every tool receives with the caller's id.
const UserIDArg = "user_id"

// Registry maps tool names to descriptors. It is immutable after construction
// and safe for concurrent use.
type Registry struct {
	ordered []*entry
	byName  map[string]*entry
}

type entry struct {
	desc   *Descriptor
	schema *jsonschema.Schema
}

// NewRegistry builds a registry from the given descriptors. Names must be
// unique and every parameter schema must compile.
func NewRegistry(descs ...*Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]*entry, len(descs))}

	for _, d := range descs {
		if d == nil || d.Name == "" {
			return nil, fmt.Errorf("tool descriptor without name")
		}
		if d.Execute == nil {
			return nil, fmt.Errorf("tool %s: missing executor", d.Name)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("tool %s registered twice", d.Name)
		}

		schema, err := compileSchema(d.Name, d.Parameters)
		if err != nil {
			return nil, err
		}

		e := &entry{desc: d, schema: schema}
		r.ordered = append(r.ordered, e)
		r.byName[d.Name] = e
	}
	return r, nil
}

// Resolve returns the descriptor registered under name.
func (r *Registry) Resolve(name string) (*Descriptor, error) {
	e, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return e.desc, nil
}

func (r *Registry) lookup(name string) (*entry, error) {
	e, ok := r.byName[name]
	if !ok {
		return nil, notFoundf("Unknown tool: %s", name)
	}
	return e, nil
}

// Specs returns the model-facing tool list in registration order.
func (r *Registry) Specs() []domain.ToolSpec {
	out := make([]domain.ToolSpec, 0, len(r.ordered))
	for _, e := range r.ordered {
		out = append(out, e.desc.Spec())
	}
	return out
}

// Invoke resolves call.Name, normalizes and validates the arguments and runs
// the tool. The user_id argument is always replaced by tctx.UserID.
func (r *Registry) Invoke(ctx context.Context, tctx ToolContext, call domain.ToolCall) (map[string]any, error) {
	e, err := r.lookup(call.Name)
	if err != nil {
		return nil, err
	}

	args, err := parseArguments(call.Arguments)
	if err != nil {
		return nil, invalidf("Invalid arguments for %s: %v", call.Name, err)
	}

	if claimed, ok := args[UserIDArg]; ok && claimed != string(tctx.UserID) {
		observability.LoggerFromContext(ctx).Warn("overriding model supplied user id",
			"tool", call.Name,
			"tool_call_id", call.ID,
			"user_id", tctx.UserID)
	}
	args[UserIDArg] = string(tctx.UserID)

	for k, v := range e.desc.Defaults {
		if _, ok := args[k]; !ok {
			args[k] = v
		}
	}

	if err := e.schema.Validate(args); err != nil {
		return nil, invalidf("Invalid arguments for %s: %s", call.Name, describeValidation(err))
	}

	return e.desc.Execute(ctx, tctx, args)
}

func parseArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object")
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

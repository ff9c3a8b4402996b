package agentflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/todo-agent/internal/app/tools"
	"github.com/PabloGalante/todo-agent/internal/domain"
	"github.com/PabloGalante/todo-agent/internal/observability"
)

// Dispatcher runs one conversational turn: at most two model rounds with the
// tools requested in the first round executed in between.
type Dispatcher struct {
	model    domain.ModelClient
	registry *tools.Registry
	messages domain.MessageStore
	system   string
	now      func() time.Time
	newID    func() string
}

type Option func(*Dispatcher)

// WithSystemPrompt replaces SystemPrompt.
func WithSystemPrompt(p string) Option {
	return func(d *Dispatcher) { d.system = p }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithIDGenerator replaces the uuid based id generator, for tests.
func WithIDGenerator(newID func() string) Option {
	return func(d *Dispatcher) { d.newID = newID }
}

func NewDispatcher(model domain.ModelClient, registry *tools.Registry, messages domain.MessageStore, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		model:    model,
		registry: registry,
		messages: messages,
		system:   SystemPrompt,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result is the outcome of a completed turn.
type Result struct {
	Reply string
	// Appended holds every message persisted during the turn, in order.
	Appended []*domain.Message
	// Invocations is the number of tools executed.
	Invocations int
	// Dropped counts tool requests of the final round that were not executed.
	Dropped int
}

// Run executes one turn for conv. The user message is persisted before the
// first model call; messages persisted before a failure are kept.
func (d *Dispatcher) Run(ctx context.Context, conv *domain.Conversation, text string) (*Result, error) {
	log := observability.LoggerFromContext(ctx).With(
		"conversation_id", conv.ID,
		"user_id", conv.UserID,
	)

	t := &turn{d: d, conv: conv, res: &Result{}}

	// BUILDING_REQUEST
	history, err := d.messages.GetMessagesByConversation(ctx, conv.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	t.msgs = answeredHistory(log, history)

	if err := t.append(ctx, &domain.Message{Role: domain.RoleUser, Content: text}); err != nil {
		return nil, err
	}

	// AWAITING_MODEL
	first, err := t.complete(ctx, log, 1)
	if err != nil {
		return nil, err
	}

	if len(first.ToolCalls) == 0 {
		if first.Text == "" {
			return nil, fmt.Errorf("%w: empty response", domain.ErrModelService)
		}
		return t.finish(ctx, log, first.Text)
	}

	// EXECUTING_TOOLS
	tctx := tools.ToolContext{
		UserID:         conv.UserID,
		ConversationID: conv.ID,
		RequestID:      observability.RequestIDFromContext(ctx),
	}
	seen := make(map[string]bool, len(first.ToolCalls))

	for i, call := range first.ToolCalls {
		if call.ID == "" || seen[call.ID] {
			call.ID = "call_" + d.newID()
		}
		seen[call.ID] = true

		content := ""
		if i == 0 {
			content = first.Text
		}
		reqCall := call

		// Request and result are stored together so history never holds an
		// unanswered request.
		result := d.execute(ctx, log, tctx, call)
		if err := t.append(ctx,
			&domain.Message{
				Role:     domain.RoleAssistant,
				Content:  content,
				ToolCall: &reqCall,
			},
			&domain.Message{
				Role:       domain.RoleTool,
				Content:    encodeResult(result),
				ToolCallID: call.ID,
				ToolName:   call.Name,
			},
		); err != nil {
			return nil, err
		}
		t.res.Invocations++
	}

	// AWAITING_MODEL_2
	second, err := t.complete(ctx, log, 2)
	if err != nil {
		return nil, err
	}

	reply := second.Text
	if len(second.ToolCalls) > 0 {
		t.res.Dropped = len(second.ToolCalls)
		log.Warn("ignoring tool calls requested in final round", "count", len(second.ToolCalls))
		if reply == "" {
			reply = fallbackReply
		}
	}
	if reply == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrModelService)
	}

	// DONE
	return t.finish(ctx, log, reply)
}

// execute never fails: errors become a result carrying an "error" key so the
// model can react to them.
func (d *Dispatcher) execute(ctx context.Context, log *slog.Logger, tctx tools.ToolContext, call domain.ToolCall) map[string]any {
	start := d.now()

	out, err := d.registry.Invoke(ctx, tctx, call)
	if err != nil {
		var te *tools.Error
		if errors.As(err, &te) {
			log.Info("tool returned error", "tool", call.Name, "tool_call_id", call.ID, "error", te.Message)
			return map[string]any{"error": te.Message}
		}
		log.Error("tool execution failed", "tool", call.Name, "tool_call_id", call.ID, "error", err)
		return map[string]any{"error": fmt.Sprintf("Tool %s failed to run.", call.Name)}
	}

	log.Info("tool executed",
		"tool", call.Name,
		"tool_call_id", call.ID,
		"elapsed_ms", d.now().Sub(start).Milliseconds())

	if out == nil {
		out = map[string]any{}
	}
	return out
}

func encodeResult(result map[string]any) string {
	data, err := json.Marshal(result)
	if err != nil {
		return `{"error":"tool result could not be encoded"}`
	}
	return string(data)
}

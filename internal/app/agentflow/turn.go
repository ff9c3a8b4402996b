package agentflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

// turn carries the state of one Run call.
type turn struct {
	d    *Dispatcher
	conv *domain.Conversation
	msgs []*domain.Message // history plus everything appended in this turn
	res  *Result
}

// append persists msgs in one write and adds them to the running request.
func (t *turn) append(ctx context.Context, msgs ...*domain.Message) error {
	for _, msg := range msgs {
		msg.ID = domain.MessageID(t.d.newID())
		msg.ConversationID = t.conv.ID
		msg.CreatedAt = t.d.now()
	}

	if err := t.d.messages.AppendMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("append %s message: %w", msgs[0].Role, err)
	}

	t.msgs = append(t.msgs, msgs...)
	t.res.Appended = append(t.res.Appended, msgs...)
	return nil
}

// answeredHistory drops tool requests without a result and results without a
// request. Stores written before requests and results were paired may still
// hold either, and the model rejects both.
func answeredHistory(log *slog.Logger, history []*domain.Message) []*domain.Message {
	requested := map[string]bool{}
	answered := map[string]bool{}
	for _, m := range history {
		switch {
		case m.Role == domain.RoleAssistant && m.ToolCall != nil:
			requested[m.ToolCall.ID] = true
		case m.Role == domain.RoleTool && requested[m.ToolCallID]:
			answered[m.ToolCallID] = true
		}
	}

	out := make([]*domain.Message, 0, len(history)+4)
	dropped := 0
	for _, m := range history {
		switch {
		case m.Role == domain.RoleAssistant && m.ToolCall != nil && !answered[m.ToolCall.ID]:
			dropped++
			if m.Content == "" {
				continue
			}
			text := *m
			text.ToolCall = nil
			m = &text
		case m.Role == domain.RoleTool && !answered[m.ToolCallID]:
			dropped++
			continue
		}
		out = append(out, m)
	}

	if dropped > 0 {
		log.Warn("dropped unpaired tool messages from history", "count", dropped)
	}
	return out
}

func (t *turn) complete(ctx context.Context, log *slog.Logger, round int) (*domain.ModelResponse, error) {
	start := t.d.now()

	resp, err := t.d.model.Complete(ctx, domain.ModelRequest{
		System:     t.d.system,
		Messages:   t.msgs,
		Tools:      t.d.registry.Specs(),
		ToolChoice: domain.ToolChoiceAuto,
	})
	if err != nil {
		log.Error("model call failed", "round", round, "error", err)
		return nil, fmt.Errorf("%w: round %d: %w", domain.ErrModelService, round, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: round %d: nil response", domain.ErrModelService, round)
	}

	log.Info("model round completed",
		"round", round,
		"tool_calls", len(resp.ToolCalls),
		"elapsed_ms", t.d.now().Sub(start).Milliseconds())
	return resp, nil
}

func (t *turn) finish(ctx context.Context, log *slog.Logger, reply string) (*Result, error) {
	if err := t.append(ctx, &domain.Message{Role: domain.RoleAssistant, Content: reply}); err != nil {
		return nil, err
	}
	t.res.Reply = reply

	log.Info("turn completed",
		"invocations", t.res.Invocations,
		"messages_appended", len(t.res.Appended))
	return t.res, nil
}

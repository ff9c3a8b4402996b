package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

// ScriptedStep is one canned answer of a ScriptedModel.
type ScriptedStep struct {
	Response *domain.ModelResponse
	Err      error
}

// ScriptedModel replays canned responses in order and records every request.
// It is meant for tests.
type ScriptedModel struct {
	mu       sync.Mutex
	steps    []ScriptedStep
	requests []domain.ModelRequest
}

func NewScriptedModel(steps ...ScriptedStep) *ScriptedModel {
	return &ScriptedModel{steps: steps}
}

// Reply is a step answering with plain text.
func Reply(text string) ScriptedStep {
	return ScriptedStep{Response: &domain.ModelResponse{Text: text}}
}

// Call is a step requesting the given tool invocations.
func Call(calls ...domain.ToolCall) ScriptedStep {
	return ScriptedStep{Response: &domain.ModelResponse{ToolCalls: calls}}
}

// Fail is a step returning err.
func Fail(err error) ScriptedStep {
	return ScriptedStep{Err: err}
}

func (m *ScriptedModel) Complete(_ context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := req
	snapshot.Messages = append([]*domain.Message(nil), req.Messages...)
	m.requests = append(m.requests, snapshot)

	if len(m.steps) == 0 {
		return nil, fmt.Errorf("scripted model: no step left for request %d", len(m.requests))
	}
	step := m.steps[0]
	m.steps = m.steps[1:]

	if step.Err != nil {
		return nil, step.Err
	}
	resp := *step.Response
	resp.ToolCalls = append([]domain.ToolCall(nil), step.Response.ToolCalls...)
	return &resp, nil
}

// Requests returns the requests seen so far.
func (m *ScriptedModel) Requests() []domain.ModelRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ModelRequest(nil), m.requests...)
}

// Remaining reports how many steps have not been consumed.
func (m *ScriptedModel) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.steps)
}

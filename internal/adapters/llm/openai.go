package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient implements domain.ModelClient for OpenAI-compatible chat
// completion APIs (OpenAI, Ollama, vLLM, LiteLLM, ...).
type OpenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

type openaiRequest struct {
	Model      string          `json:"model"`
	Messages   []openaiMessage `json:"messages"`
	Tools      []openaiTool    `json:"tools,omitempty"`
	ToolChoice string          `json:"tool_choice,omitempty"`
}

type openaiMessage struct {
	Role       string           `json:"role"`
	Content    *string          `json:"content"`
	ToolCalls  []openaiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	Name       string           `json:"name,omitempty"`
}

type openaiTool struct {
	Type     string         `json:"type"`
	Function openaiFunction `json:"function"`
}

type openaiFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  *domain.Schema `json:"parameters,omitempty"`
}

type openaiToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function openaiToolCallFunc `json:"function"`
}

type openaiToolCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
}

type openaiChoice struct {
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// Complete implements domain.ModelClient.
func (c *OpenAIClient) Complete(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	data, err := c.doRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	var resp openaiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response has no choices")
	}

	msg := resp.Choices[0].Message
	out := &domain.ModelResponse{}
	if msg.Content != nil {
		out.Text = *msg.Content
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

func (c *OpenAIClient) buildRequest(req domain.ModelRequest) openaiRequest {
	out := openaiRequest{Model: c.model}

	if req.System != "" {
		out.Messages = append(out.Messages, openaiMessage{Role: "system", Content: strPtr(req.System)})
	}

	for _, m := range req.Messages {
		switch m.Role {
		case domain.RoleUser:
			out.Messages = append(out.Messages, openaiMessage{Role: "user", Content: strPtr(m.Content)})

		case domain.RoleAssistant:
			msg := openaiMessage{Role: "assistant"}
			if m.Content != "" || m.ToolCall == nil {
				msg.Content = strPtr(m.Content)
			}
			if m.ToolCall != nil {
				msg.ToolCalls = []openaiToolCall{{
					ID:   m.ToolCall.ID,
					Type: "function",
					Function: openaiToolCallFunc{
						Name:      m.ToolCall.Name,
						Arguments: m.ToolCall.Arguments,
					},
				}}
			}
			out.Messages = append(out.Messages, msg)

		case domain.RoleTool:
			out.Messages = append(out.Messages, openaiMessage{
				Role:       "tool",
				Content:    strPtr(m.Content),
				ToolCallID: m.ToolCallID,
				Name:       m.ToolName,
			})
		}
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, openaiTool{
			Type: "function",
			Function: openaiFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	if len(out.Tools) > 0 {
		out.ToolChoice = string(req.ToolChoice)
		if out.ToolChoice == "" {
			out.ToolChoice = string(domain.ToolChoiceAuto)
		}
	}

	return out
}

func (c *OpenAIClient) doRequest(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := string(data)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, fmt.Errorf("openai API error %d: %s", resp.StatusCode, snippet)
	}
	return data, nil
}

func strPtr(s string) *string { return &s }

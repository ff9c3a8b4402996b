package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GenAIClient implements domain.ModelClient on top of Gemini, either through
// Vertex AI or the Gemini API.
type GenAIClient struct {
	client    *genai.Client
	modelName string
}

// NewVertexClient creates a ModelClient based on Vertex AI (Gemini).
func NewVertexClient(ctx context.Context, projectID, location, modelName string) (*GenAIClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("vertex: project and location must be set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return newGenAIClient(client, modelName), nil
}

// NewGeminiClient creates a ModelClient that talks to the Gemini API with an API key.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key must be set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return newGenAIClient(client, modelName), nil
}

func newGenAIClient(client *genai.Client, modelName string) *GenAIClient {
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	return &GenAIClient{client: client, modelName: modelName}
}

// Complete implements domain.ModelClient.
func (v *GenAIClient) Complete(ctx context.Context, req domain.ModelRequest) (*domain.ModelResponse, error) {
	contents := buildContents(req.Messages)

	temp := float32(0.2)
	outputTokens := int32(2048)

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: outputTokens,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		cfg.Tools = []*genai.Tool{buildTool(req.Tools)}
		cfg.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: functionCallingMode(req.ToolChoice)},
		}
	}

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai generate content: %w", err)
	}

	out := &domain.ModelResponse{}
	for _, fc := range res.FunctionCalls() {
		out.ToolCalls = append(out.ToolCalls, domain.ToolCall{
			ID:        fc.ID,
			Name:      fc.Name,
			Arguments: encodeArguments(fc.Args),
		})
	}
	// Text is only read when there is something besides function calls.
	if len(out.ToolCalls) == 0 || hasTextPart(res) {
		out.Text = res.Text()
	}

	return out, nil
}

func functionCallingMode(choice domain.ToolChoice) genai.FunctionCallingConfigMode {
	if choice == domain.ToolChoiceNone {
		return genai.FunctionCallingConfigModeNone
	}
	return genai.FunctionCallingConfigModeAuto
}

func hasTextPart(res *genai.GenerateContentResponse) bool {
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return false
	}
	for _, p := range res.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" && !p.Thought {
			return true
		}
	}
	return false
}

// buildContents maps the conversation to Gemini contents. Tool requests become
// function call parts of the model, tool results function responses of the
// user. Adjacent contents of the same role are merged.
func buildContents(msgs []*domain.Message) []*genai.Content {
	var contents []*genai.Content

	add := func(role genai.Role, parts ...*genai.Part) {
		if n := len(contents); n > 0 && contents[n-1].Role == string(role) {
			contents[n-1].Parts = append(contents[n-1].Parts, parts...)
			return
		}
		contents = append(contents, &genai.Content{Role: string(role), Parts: parts})
	}

	for _, m := range msgs {
		switch m.Role {
		case domain.RoleUser:
			add(genai.RoleUser, genai.NewPartFromText(m.Content))

		case domain.RoleAssistant:
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			if m.ToolCall != nil {
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   m.ToolCall.ID,
					Name: m.ToolCall.Name,
					Args: decodeArguments(m.ToolCall.Arguments),
				}})
			}
			if len(parts) > 0 {
				add(genai.RoleModel, parts...)
			}

		case domain.RoleTool:
			add(genai.RoleUser, &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       m.ToolCallID,
				Name:     m.ToolName,
				Response: toolResultPayload(m.Content),
			}})
		}
	}

	return contents
}

func buildTool(specs []domain.ToolSpec) *genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, s := range specs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  toGenAISchema(s.Parameters),
		})
	}
	return &genai.Tool{FunctionDeclarations: decls}
}

func toGenAISchema(s *domain.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toGenAISchema(p)
		}
	}
	return out
}

func genaiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeString
	}
}

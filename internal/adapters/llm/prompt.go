package llm

import (
	"encoding/json"
	"strings"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

// decodeArguments turns the serialized arguments of a tool call into a map.
// Malformed input yields an empty map; validation happens in the registry.
func decodeArguments(raw string) map[string]any {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args
	}
	_ = json.Unmarshal([]byte(raw), &args)
	return args
}

// encodeArguments serializes model supplied arguments.
func encodeArguments(args map[string]any) string {
	if args == nil {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// toolResultPayload decodes the content of a tool message. Providers that
// expect a structured response get {"output": content} for non-object payloads.
func toolResultPayload(content string) map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(content), &out); err == nil && out != nil {
		return out
	}
	return map[string]any{"output": content}
}

// lastTurnToolResults returns the tool messages that follow the latest user
// message, in order.
func lastTurnToolResults(msgs []*domain.Message) []*domain.Message {
	start := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == domain.RoleUser {
			start = i + 1
			break
		}
	}

	var out []*domain.Message
	for _, m := range msgs[start:] {
		if m.Role == domain.RoleTool {
			out = append(out, m)
		}
	}
	return out
}

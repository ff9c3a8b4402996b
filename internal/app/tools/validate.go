package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/PabloGalante/todo-agent/internal/domain"
)

func compileSchema(name string, params *domain.Schema) (*jsonschema.Schema, error) {
	if params == nil {
		params = &domain.Schema{Type: "object"}
	}

	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("tool %s: marshal schema: %w", name, err)
	}

	url := "mem://tools/" + name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("tool %s: add schema: %w", name, err)
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("tool %s: compile schema: %w", name, err)
	}
	return schema, nil
}

// describeValidation flattens a jsonschema error into a short sentence the
// model can act on.
func describeValidation(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}

	var msgs []string
	collectLeafErrors(ve, &msgs)
	if len(msgs) == 0 {
		return ve.Message
	}
	return strings.Join(msgs, "; ")
}

func collectLeafErrors(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := strings.TrimPrefix(ve.InstanceLocation, "/")
		if loc == "" {
			*out = append(*out, ve.Message)
		} else {
			*out = append(*out, loc+": "+ve.Message)
		}
		return
	}
	for _, c := range ve.Causes {
		collectLeafErrors(c, out)
	}
}

package router

import (
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// FieldType is the JSON schema type of a tool argument.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldInteger FieldType = "integer"
)

// Field describes one argument of a tool: its type, whether it is required,
// and the default, bounds and enum applied during validation.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool

	// Default is applied when the argument is omitted. A nil Default means
	// an omitted optional argument stays absent, which handlers use to tell
	// "not provided" from "provided empty".
	Default any

	// Min and Max bound integer arguments (inclusive) when non-nil.
	Min *int64
	Max *int64

	// Enum restricts string arguments to the listed values when non-empty.
	Enum []string
}

// ToolDefinition is one entry of the tool catalog: the name and description
// advertised to the host plus the argument schema enforced on dispatch.
type ToolDefinition struct {
	Name        string
	Description string
	Fields      []Field
}

// MCPTool converts the definition into the mcp-go tool declaration.
// Defaults, bounds and enums are enforced by Validate and stated in the
// property descriptions.
func (d ToolDefinition) MCPTool() mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description)}

	for _, f := range d.Fields {
		var propOpts []mcp.PropertyOption
		if f.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		propOpts = append(propOpts, mcp.Description(f.schemaDescription()))

		switch f.Type {
		case FieldInteger:
			opts = append(opts, mcp.WithNumber(f.Name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(f.Name, propOpts...))
		}
	}

	return mcp.NewTool(d.Name, opts...)
}

// schemaDescription appends the validation constraints to the field's prose
// description so hosts see them even though they are enforced server-side.
func (f Field) schemaDescription() string {
	desc := f.Description

	var notes []string
	if f.Default != nil {
		notes = append(notes, fmt.Sprintf("default: %v", f.Default))
	}
	if f.Min != nil && f.Max != nil {
		notes = append(notes, fmt.Sprintf("range: %d-%d", *f.Min, *f.Max))
	}
	if len(f.Enum) > 0 {
		notes = append(notes, "one of: "+strings.Join(f.Enum, ", "))
	}

	if len(notes) > 0 {
		desc = fmt.Sprintf("%s (%s)", desc, strings.Join(notes, ", "))
	}

	return desc
}

// Validate checks args against the schema and returns the normalized
// argument map: defaults applied, integers coerced to int64. It fails on the
// first offending field.
func (d ToolDefinition) Validate(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(d.Fields))

	for _, f := range d.Fields {
		raw, ok := args[f.Name]
		if !ok || raw == nil {
			if f.Required {
				return nil, &ValidationError{Tool: d.Name, Field: f.Name, Reason: "required argument is missing"}
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}

		switch f.Type {
		case FieldString:
			s, ok := raw.(string)
			if !ok {
				return nil, &ValidationError{Tool: d.Name, Field: f.Name, Reason: fmt.Sprintf("must be a string, got %T", raw)}
			}
			if f.Required && s == "" {
				return nil, &ValidationError{Tool: d.Name, Field: f.Name, Reason: "required argument is empty"}
			}
			if len(f.Enum) > 0 && !contains(f.Enum, s) {
				return nil, &ValidationError{Tool: d.Name, Field: f.Name, Reason: fmt.Sprintf("must be one of %s, got %q", strings.Join(f.Enum, ", "), s)}
			}
			out[f.Name] = s

		case FieldInteger:
			n, ok := toNumber(raw)
			if !ok || n != math.Trunc(n) {
				return nil, &ValidationError{Tool: d.Name, Field: f.Name, Reason: fmt.Sprintf("must be an integer, got %v", raw)}
			}
			v := int64(n)
			if f.Min != nil && v < *f.Min {
				return nil, &ValidationError{Tool: d.Name, Field: f.Name, Reason: fmt.Sprintf("must be at least %d, got %d", *f.Min, v)}
			}
			if f.Max != nil && v > *f.Max {
				return nil, &ValidationError{Tool: d.Name, Field: f.Name, Reason: fmt.Sprintf("must be at most %d, got %d", *f.Max, v)}
			}
			out[f.Name] = v
		}
	}

	return out, nil
}

// toNumber accepts the numeric representations JSON decoding can produce.
func toNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Registry holds the tool catalog in a stable order.
type Registry struct {
	defs   []ToolDefinition
	byName map[string]int
}

// NewRegistry creates a registry from the given definitions. Catalog order
// is the argument order.
func NewRegistry(defs ...ToolDefinition) *Registry {
	byName := make(map[string]int, len(defs))
	for i, d := range defs {
		byName[d.Name] = i
	}

	return &Registry{defs: defs, byName: byName}
}

// All returns the definitions in catalog order.
func (r *Registry) All() []ToolDefinition {
	return r.defs
}

// Names returns the tool names in catalog order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.defs))
	for i, d := range r.defs {
		names[i] = d.Name
	}
	return names
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (ToolDefinition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return ToolDefinition{}, false
	}
	return r.defs[i], true
}

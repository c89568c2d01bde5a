package router

import (
	"fmt"
	"strings"
)

// ValidationError indicates tool arguments that failed schema validation.
// No remote call is made when validation fails.
type ValidationError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// UnknownToolError indicates a dispatch against a name the registry does not
// know. Known carries every registered tool name for the failure envelope.
type UnknownToolError struct {
	Name  string
	Known []string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q (available: %s)", e.Name, strings.Join(e.Known, ", "))
}

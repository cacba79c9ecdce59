package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError is a core description error tied to the offending field.
type CompileError struct {
	Field   string    // dotted path, e.g. section.fuel.region[0].material
	Message string
	Pos     token.Pos // zero when CUE has no position for the value
}

func (e *CompileError) Error() string {
	var b strings.Builder
	if e.Pos.IsValid() {
		fmt.Fprintf(&b, "%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	b.WriteString(e.Field)
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// formatCUEError reduces a CUE evaluation error to its first problem,
// reported under the "cue" field with that problem's position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	ce := &CompileError{Field: "cue", Message: err.Error()}
	list := errors.Errors(err)
	if len(list) == 0 {
		return ce
	}

	first := list[0]
	ce.Message = first.Error()
	if more := len(list) - 1; more > 0 {
		ce.Message += fmt.Sprintf(" (and %d more)", more)
	}
	if pos := errors.Positions(first); len(pos) > 0 {
		ce.Pos = pos[0]
	}
	return ce
}

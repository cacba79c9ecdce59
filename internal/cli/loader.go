package cli

import (
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/hexcore/internal/compiler"
	"github.com/roach88/hexcore/internal/model"
)

// LoadError represents an error that occurred while loading a core package.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCore loads and compiles the CUE core package in dir. Failures are
// returned as *LoadError with a CLI error code.
func LoadCore(dir string) (*model.Core, error) {
	c, err := compiler.CompileDir(dir)
	if err != nil {
		return nil, convertLoadError(err)
	}
	return c, nil
}

func convertLoadError(err error) *LoadError {
	var compileErr *compiler.CompileError
	hasPos := errors.As(err, &compileErr)

	switch {
	case errors.Is(err, compiler.ErrNotFound):
		return &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	case errors.Is(err, compiler.ErrNoFiles):
		return &LoadError{Code: ErrCodeNoFiles, Message: err.Error()}
	case errors.Is(err, compiler.ErrLoad):
		return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	case errors.Is(err, compiler.ErrBuild):
		le := &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
		if hasPos {
			le.Message = compileErr.Message
			le.Pos = compileErr.Pos
		}
		return le
	case hasPos:
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	default:
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error

	// Core description errors
	ErrCodeSchema   = "E100" // Schema violation
	ErrCodeCore     = "E101" // core block
	ErrCodeMaterial = "E102" // material block
	ErrCodeSection  = "E103" // section block
	ErrCodeAssembly = "E104" // assembly block
	ErrCodeLattice  = "E105" // lattice block

	// Pipeline errors
	ErrCodeStructural = "E201" // structural violation (model.IsStructural)
	ErrCodeConfig     = "E301" // configuration error (model.IsConfig)
	ErrCodeStore      = "E401" // build ledger error
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	head, _, _ := strings.Cut(field, ".")
	head, _, _ = strings.Cut(head, "[")
	switch head {
	case "cue":
		return ErrCodeSchema
	case "core":
		return ErrCodeCore
	case "material":
		return ErrCodeMaterial
	case "section":
		return ErrCodeSection
	case "assembly":
		return ErrCodeAssembly
	case "lattice":
		return ErrCodeLattice
	default:
		return ErrCodeGeneric
	}
}

// describeError maps any command error to (code, message, details).
func describeError(err error) (string, string, any) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		if loadErr.Pos.IsValid() {
			return loadErr.Code, loadErr.Message, map[string]any{
				"file":   loadErr.Pos.Filename(),
				"line":   loadErr.Pos.Line(),
				"column": loadErr.Pos.Column(),
			}
		}
		return loadErr.Code, loadErr.Message, nil
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code, coded.Error(), nil
	}

	var coreErr *model.CoreError
	if errors.As(err, &coreErr) {
		code := ErrCodeStructural
		if coreErr.Config() {
			code = ErrCodeConfig
		}
		details := map[string]any{"code": string(coreErr.Code)}
		if coreErr.Subject != "" {
			details["subject"] = coreErr.Subject
		}
		return code, err.Error(), details
	}

	return ErrCodeGeneric, err.Error(), nil
}

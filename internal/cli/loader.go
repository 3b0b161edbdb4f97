package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/mlmdq/internal/filterir"
	"github.com/roach88/mlmdq/internal/filterspec"
	"github.com/roach88/mlmdq/internal/querysql"
	"github.com/roach88/mlmdq/internal/resolver"
)

// LoadResult is a filter file decoded and resolved against its record kind.
type LoadResult struct {
	Path   string
	Format filterspec.Format
	Kind   filterir.RecordKind

	// Filter is the tree as decoded from the file. Neighbor references are
	// still unresolved; this is the form the store caches by.
	Filter filterir.Expr

	// Resolved has every column checked against the kind's attributes and
	// neighbors.
	Resolved filterir.Expr

	Fingerprint string
	Warnings    []string
}

// LoadError represents an error that occurred while loading a filter file.
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

// LoadFilter reads, decodes and resolves a filter file. Every failure is
// returned as a *LoadError carrying an error code.
func LoadFilter(path string) (*LoadResult, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("filter file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing filter file: %v", err)}
	}

	format, err := filterspec.FormatForPath(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeUnsupportedFormat, Message: err.Error()}
	}

	filter, err := filterspec.LoadFile(path)
	if err != nil {
		return nil, convertDecodeError(err)
	}

	resolved, err := resolver.Resolve(filter.Kind, filter.Where)
	if err != nil {
		return nil, &LoadError{Code: MapErrorToCode(err), Message: err.Error()}
	}

	fingerprint, err := filterir.Fingerprint(filter.Kind, filter.Where)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("fingerprinting filter: %v", err)}
	}

	return &LoadResult{
		Path:        path,
		Format:      format,
		Kind:        filter.Kind,
		Filter:      filter.Where,
		Resolved:    resolved,
		Fingerprint: fingerprint,
		Warnings:    filterir.Validate(resolved).Warnings,
	}, nil
}

// convertDecodeError converts a filterspec error to a LoadError with position info.
func convertDecodeError(err error) *LoadError {
	var decodeErr *filterspec.DecodeError
	if errors.As(err, &decodeErr) {
		return &LoadError{
			Code:    ErrCodeDecodeFailed,
			Message: fmt.Sprintf("%s: %s", decodeErr.Path, decodeErr.Message),
			Pos:     decodeErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric           = "E001" // Generic/unknown error
	ErrCodeInvalidFlag       = "E002" // Bad flag value
	ErrCodeUnsupportedFormat = "E003" // Unknown filter file extension
	ErrCodeDecodeFailed      = "E004" // Filter document malformed
	ErrCodeNotFound          = "E005" // Path not found
	ErrCodeStoreFailed       = "E006" // Metadata store could not be opened
	ErrCodeWriteFailed       = "E007" // File write error
	ErrCodeQueryFailed       = "E008" // Query against the store failed

	// Resolution errors
	ErrCodeUnknownAttribute = "E101" // Column is not an attribute of the kind
	ErrCodeUnknownNeighbor  = "E102" // Neighbor prefix not valid for the kind
	ErrCodeUnknownField     = "E103" // Neighbor has no such field
	ErrCodeUnknownKind      = "E104" // Record kind outside the declared set

	// Compilation errors
	ErrCodeUnsupportedNeighbor = "E111" // Struct column without a known prefix
	ErrCodeInvalidRelationship = "E112" // Relationship not valid for the kind
	ErrCodeMalformedExpr       = "E113" // Nil node or unknown node type
)

// MapErrorToCode maps a resolver or compiler error to an error code.
func MapErrorToCode(err error) string {
	switch {
	case errors.Is(err, resolver.ErrUnknownAttribute):
		return ErrCodeUnknownAttribute
	case errors.Is(err, resolver.ErrUnknownNeighbor):
		return ErrCodeUnknownNeighbor
	case errors.Is(err, resolver.ErrUnknownField):
		return ErrCodeUnknownField
	case errors.Is(err, querysql.ErrUnknownRecordKind):
		return ErrCodeUnknownKind
	case errors.Is(err, querysql.ErrUnsupportedNeighbor):
		return ErrCodeUnsupportedNeighbor
	case errors.Is(err, querysql.ErrInvalidRelationship):
		return ErrCodeInvalidRelationship
	case errors.Is(err, querysql.ErrMalformedExpr):
		return ErrCodeMalformedExpr
	default:
		return ErrCodeGeneric
	}
}

// loadFailure reports a LoadFilter error through the formatter and returns
// the command-level exit error.
func loadFailure(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		if loadErr.Pos.IsValid() {
			return outputError(formatter, loadErr.Code, loadErr.Message, positionDetails(loadErr.Pos))
		}
		return outputError(formatter, loadErr.Code, loadErr.Message, nil)
	}
	return outputError(formatter, ErrCodeGeneric, err.Error(), nil)
}

// positionDetails describes a CUE position.
func positionDetails(pos token.Pos) map[string]any {
	return map[string]any{
		"file":   pos.Filename(),
		"line":   pos.Line(),
		"column": pos.Column(),
	}
}

// outputError outputs a single error. Errors are command-level (exit code 2).
func outputError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputStoreError reports a store failure and keeps err as the cause of
// the returned ExitError.
func outputStoreError(formatter *OutputFormatter, action string, err error) error {
	message := fmt.Sprintf("%s store: %v", action, err)
	_ = formatter.Error(ErrCodeStoreFailed, message, nil)
	return WrapExitError(ExitCommandError, ErrCodeStoreFailed+": "+action+" store", err)
}

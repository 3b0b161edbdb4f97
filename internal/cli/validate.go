package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Kind        string   `json:"kind"`
	Fingerprint string   `json:"fingerprint"`
	Warnings    []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <filter-file>",
		Short: "Validate a filter without compiling it",
		Long: `Decode a filter document and resolve every column against the
attributes and neighbors of its record kind.

Structural problems that would still compile (a NULL compared with =, a
neighbor used as a value) are reported as warnings and fail validation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, err := LoadFilter(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	formatter.VerboseLog("Loaded %s filter from %s (%s)", loaded.Kind, path, loaded.Format)
	formatter.VerboseLog("Fingerprint: %s", loaded.Fingerprint)

	result := ValidationResult{
		Valid:       len(loaded.Warnings) == 0,
		Kind:        loaded.Kind.String(),
		Fingerprint: loaded.Fingerprint,
		Warnings:    loaded.Warnings,
	}

	if !result.Valid {
		return outputValidationWarnings(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Filter valid (%s)\n", result.Kind)
	return nil
}

// outputValidationWarnings outputs structural warnings. Warnings are
// validation failures (exit code 1).
func outputValidationWarnings(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation found %d warning(s)", len(result.Warnings)))
	}

	fmt.Fprintf(formatter.Writer, "✗ Filter has %d warning(s) (%s)\n\n", len(result.Warnings), result.Kind)
	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  ⚠ %s\n", w)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation found %d warning(s)", len(result.Warnings)))
}

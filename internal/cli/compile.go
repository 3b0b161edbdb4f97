package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/mlmdq/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Dialect   string
	Statement bool
	Output    string // output file path
}

// CompilationResult holds the compiled clauses of one filter.
type CompilationResult struct {
	Kind        string   `json:"kind"`
	Dialect     string   `json:"dialect"`
	Fingerprint string   `json:"fingerprint"`
	From        string   `json:"from"`
	Where       string   `json:"where"`
	Joins       int      `json:"joins"`
	Statement   string   `json:"statement,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <filter-file>",
		Short: "Compile a filter to SQL FROM and WHERE clauses",
		Long: `Compile a filter document to the FROM and WHERE clauses of a query
over the record kind it names.

The FROM clause starts with the kind's table aliased as table_0 and adds
one join per distinct neighbor the filter mentions. With --statement the
clauses are assembled into a complete SELECT of record ids.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dialect, "dialect", "mysql", fmt.Sprintf("SQL dialect %v", querysql.Dialects))
	cmd.Flags().BoolVar(&opts.Statement, "statement", false, "print a complete SELECT statement")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the statement to a file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	dialect, err := querysql.ParseDialect(opts.Dialect)
	if err != nil {
		return outputError(formatter, ErrCodeInvalidFlag, err.Error(), nil)
	}

	loaded, err := LoadFilter(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	formatter.VerboseLog("Loaded %s filter from %s (%s)", loaded.Kind, path, loaded.Format)
	for _, w := range loaded.Warnings {
		formatter.VerboseLog("Warning: %s", w)
	}

	clauses, err := querysql.Compile(loaded.Kind, loaded.Resolved, querysql.WithDialect(dialect))
	if err != nil {
		return outputError(formatter, MapErrorToCode(err), err.Error(), nil)
	}

	slog.Debug("filter compiled",
		"trace_id", formatter.TraceID,
		"kind", loaded.Kind.String(),
		"dialect", dialect.String(),
		"joins", clauses.Joins,
	)

	result := &CompilationResult{
		Kind:        loaded.Kind.String(),
		Dialect:     dialect.String(),
		Fingerprint: loaded.Fingerprint,
		From:        clauses.From,
		Where:       clauses.Where,
		Joins:       clauses.Joins,
		Warnings:    loaded.Warnings,
	}
	if opts.Statement || opts.Output != "" {
		result.Statement = clauses.Statement(querysql.BaseAlias + ".id")
	}

	// Write to file if --output specified
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(result.Statement+"\n"), 0644); err != nil {
			return outputError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, opts *CompileOptions) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled %s filter: %d join(s), %s dialect\n\n",
		result.Kind, result.Joins, result.Dialect)

	if opts.Statement {
		fmt.Fprintln(formatter.Writer, result.Statement)
	} else {
		fmt.Fprintln(formatter.Writer, "FROM:")
		fmt.Fprintln(formatter.Writer, result.From)
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer, "WHERE:")
		fmt.Fprintln(formatter.Writer, result.Where)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(formatter.Writer)
		for _, w := range result.Warnings {
			fmt.Fprintf(formatter.Writer, "⚠ %s\n", w)
		}
	}

	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote statement to %s\n", opts.Output)
	}

	return nil
}

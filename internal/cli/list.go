package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/mlmdq/internal/querysql"
	"github.com/roach88/mlmdq/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Limit      uint64
	Offset     uint64
	OrderBy    string
	Desc       bool
	Candidates []int
}

// ListResult holds the ids matched by a filter.
type ListResult struct {
	Kind  string  `json:"kind"`
	IDs   []int64 `json:"ids"`
	Count int     `json:"count"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <db> <filter-file>",
		Short: "List the ids of records matching a filter",
		Long: `Run a filter against a SQLite metadata store and print the ids of the
matching records of the filter's kind.

Results are distinct and ordered by --order-by (id, create_time or
last_update_time) with id as the tie breaker. --candidate restricts the
search to the given ids.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Limit, "limit", 0, "maximum number of ids (0 for no limit)")
	cmd.Flags().Uint64Var(&opts.Offset, "offset", 0, "number of ids to skip")
	cmd.Flags().StringVar(&opts.OrderBy, "order-by", "id", fmt.Sprintf("order field %v", querysql.OrderFields))
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "order descending")
	cmd.Flags().IntSliceVar(&opts.Candidates, "candidate", nil, "restrict to these ids (repeatable)")

	return cmd
}

func runList(opts *ListOptions, dbPath, filterPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	orderBy, err := querysql.ParseOrderField(opts.OrderBy)
	if err != nil {
		return outputError(formatter, ErrCodeInvalidFlag, err.Error(), nil)
	}

	// Verify database exists; Open would create an empty one.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return outputError(formatter, ErrCodeNotFound, fmt.Sprintf("database not found: %s", dbPath), nil)
	}

	loaded, err := LoadFilter(filterPath)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %s filter from %s (%s)", loaded.Kind, filterPath, loaded.Format)

	s, err := store.Open(dbPath)
	if err != nil {
		return outputStoreError(formatter, "opening", err)
	}
	defer s.Close()

	listOpts := querysql.ListOptions{
		CandidateIDs: candidateIDs(cmd, opts.Candidates),
		OrderBy:      orderBy,
		Desc:         opts.Desc,
		Limit:        opts.Limit,
		Offset:       opts.Offset,
	}

	ids, err := s.ListIDs(cmd.Context(), loaded.Kind, loaded.Filter, listOpts)
	if err != nil {
		return outputError(formatter, ErrCodeQueryFailed, err.Error(), nil)
	}

	slog.Debug("listed ids",
		"trace_id", formatter.TraceID,
		"kind", loaded.Kind.String(),
		"fingerprint", loaded.Fingerprint,
		"count", len(ids),
	)

	return outputListSuccess(formatter, ListResult{
		Kind:  loaded.Kind.String(),
		IDs:   ids,
		Count: len(ids),
	})
}

// candidateIDs returns nil when --candidate is absent.
func candidateIDs(cmd *cobra.Command, ids []int) []int64 {
	if !cmd.Flags().Changed("candidate") {
		return nil
	}
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

// outputListSuccess outputs matched ids, one per line in text mode.
func outputListSuccess(formatter *OutputFormatter, result ListResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, id := range result.IDs {
		fmt.Fprintln(formatter.Writer, id)
	}
	fmt.Fprintf(formatter.GetErrWriter(), "✓ %d %s(s) matched\n", result.Count, result.Kind)
	return nil
}

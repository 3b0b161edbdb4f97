package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/mlmdq/internal/filterir"
	"github.com/roach88/mlmdq/internal/querysql"
	"github.com/roach88/mlmdq/internal/resolver"
)

// ListArtifactIDs returns the ids of artifacts matching filter.
func (s *Store) ListArtifactIDs(ctx context.Context, filter filterir.Expr, opts querysql.ListOptions) ([]int64, error) {
	return s.ListIDs(ctx, filterir.Artifact, filter, opts)
}

// ListExecutionIDs returns the ids of executions matching filter.
func (s *Store) ListExecutionIDs(ctx context.Context, filter filterir.Expr, opts querysql.ListOptions) ([]int64, error) {
	return s.ListIDs(ctx, filterir.Execution, filter, opts)
}

// ListContextIDs returns the ids of contexts matching filter.
func (s *Store) ListContextIDs(ctx context.Context, filter filterir.Expr, opts querysql.ListOptions) ([]int64, error) {
	return s.ListIDs(ctx, filterir.Context, filter, opts)
}

// ListIDs resolves and compiles filter for kind, then returns the ids of the
// matching records ordered per opts.
//
// filter may be unresolved (as decoded from a filter document). A filter
// that fails resolution or compilation returns an error without touching
// the database.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListIDs(ctx context.Context, kind filterir.RecordKind, filter filterir.Expr, opts querysql.ListOptions) ([]int64, error) {
	clauses, err := s.Compile(kind, filter)
	if err != nil {
		return nil, err
	}

	stmt, args, err := querysql.BuildListIDsQuery(clauses, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", kind, err)
	}

	slog.Debug("listing ids",
		"kind", kind.String(),
		"joins", clauses.Joins,
		"limit", opts.Limit,
		"offset", opts.Offset,
	)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", kind, err)
	}
	defer rows.Close()

	orderedByID := opts.OrderBy == querysql.OrderByID
	ids := []int64{}
	for rows.Next() {
		var id int64
		if orderedByID {
			err = rows.Scan(&id)
		} else {
			// The order column is selected alongside the id.
			var orderValue any
			err = rows.Scan(&id, &orderValue)
		}
		if err != nil {
			return nil, fmt.Errorf("scan %s id: %w", kind, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s ids: %w", kind, err)
	}

	return ids, nil
}

// Compile returns the SQLite clauses for filter, reusing an earlier
// compilation of the same filter when one is cached.
func (s *Store) Compile(kind filterir.RecordKind, filter filterir.Expr) (querysql.Clauses, error) {
	label := kind.String()

	fingerprint, err := filterir.Fingerprint(kind, filter)
	if err != nil {
		filterCompileErrorCounter.WithLabelValues(label).Inc()
		return querysql.Clauses{}, fmt.Errorf("compile %s filter: %w", kind, err)
	}

	if clauses, ok := s.clauses.Get(fingerprint); ok {
		filterCacheHitCounter.WithLabelValues(label).Inc()
		return clauses, nil
	}

	resolved, err := resolver.Resolve(kind, filter)
	if err != nil {
		filterCompileErrorCounter.WithLabelValues(label).Inc()
		slog.Warn("filter resolution failed", "kind", label, "error", err)
		return querysql.Clauses{}, fmt.Errorf("resolve %s filter: %w", kind, err)
	}

	if result := filterir.Validate(resolved); !result.OK {
		slog.Warn("filter has structural problems",
			"kind", label,
			"fingerprint", fingerprint,
			"warnings", result.Warnings,
		)
	}

	clauses, err := querysql.Compile(kind, resolved, querysql.WithDialect(querysql.DialectSQLite))
	if err != nil {
		filterCompileErrorCounter.WithLabelValues(label).Inc()
		return querysql.Clauses{}, err
	}

	filterCompileCounter.WithLabelValues(label).Inc()
	s.clauses.Add(fingerprint, clauses)

	slog.Debug("filter compiled",
		"kind", label,
		"fingerprint", fingerprint,
		"joins", clauses.Joins,
	)

	return clauses, nil
}

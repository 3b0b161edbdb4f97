package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/mlmdq/internal/filterir"
)

// Option configures a FilterQueryBuilder.
type Option func(*builderOptions)

type builderOptions struct {
	dialect Dialect
}

// WithDialect selects the quoting dialect. The default is DialectMySQL.
func WithDialect(d Dialect) Option {
	return func(o *builderOptions) {
		o.dialect = d
	}
}

type phase int

const (
	phaseFresh phase = iota
	phaseTranslated
	phaseFailed
)

// FilterQueryBuilder compiles one filter for one record kind.
//
// Usage:
//
//	b, err := NewFilterQueryBuilder(filterir.Artifact)
//	if err := b.Translate(expr); err != nil { ... }
//	from, _ := b.GetFromClause()
//	where, _ := b.GetWhereClause()
//
// A builder is single use: Translate runs once, after which the clauses can
// be read any number of times.
type FilterQueryBuilder struct {
	catalog  Catalog
	dialect  Dialect
	registry *AliasRegistry

	phase phase
	where string
	err   error
}

// NewFilterQueryBuilder returns a builder for kind with a fresh alias registry.
func NewFilterQueryBuilder(kind filterir.RecordKind, opts ...Option) (*FilterQueryBuilder, error) {
	o := builderOptions{dialect: DialectMySQL}
	for _, opt := range opts {
		opt(&o)
	}

	catalog, err := NewCatalog(kind, o.dialect)
	if err != nil {
		return nil, err
	}

	return &FilterQueryBuilder{
		catalog:  catalog,
		dialect:  o.dialect,
		registry: NewAliasRegistry(),
	}, nil
}

// Kind returns the record kind being compiled.
func (b *FilterQueryBuilder) Kind() filterir.RecordKind {
	return b.catalog.Kind()
}

// Registry exposes the alias bookkeeping, mainly for tests and diagnostics.
func (b *FilterQueryBuilder) Registry() *AliasRegistry {
	return b.registry
}

// Translate renders e as the WHERE clause and records every neighbor concept
// it mentions. On error the builder is unusable: no partial clause is ever
// returned.
func (b *FilterQueryBuilder) Translate(e filterir.Expr) error {
	if b.phase != phaseFresh {
		return ErrAlreadyTranslated
	}

	t := &translator{catalog: b.catalog, dialect: b.dialect, registry: b.registry}
	where, err := t.render(e)
	if err != nil {
		b.phase = phaseFailed
		b.err = fmt.Errorf("translate %s filter: %w", b.catalog.Kind(), err)
		return b.err
	}

	b.where = where
	b.phase = phaseTranslated
	return nil
}

// GetWhereClause returns the rendered predicate, without the WHERE keyword.
func (b *FilterQueryBuilder) GetWhereClause() (string, error) {
	if err := b.ready(); err != nil {
		return "", err
	}
	return b.where, nil
}

// GetFromClause renders the base table and one join per bound alias,
// without the FROM keyword.
//
// Order: base table, type join, then context, property, custom property,
// parent context, child context and event joins, each category in
// first-mention order.
func (b *FilterQueryBuilder) GetFromClause() (string, error) {
	if err := b.ready(); err != nil {
		return "", err
	}

	base, _ := b.registry.Alias(BaseAttribute, "")
	base = b.dialect.QuoteIdentifier(base)

	var sb strings.Builder
	sb.WriteString(b.catalog.BaseTable(base))

	// The type table is joined only when the predicate reads the type.
	if b.registry.HasAlias(TypeJoin, "") {
		alias, _ := b.registry.Alias(TypeJoin, "")
		join, err := b.catalog.Join(TypeJoin, base, b.dialect.QuoteIdentifier(alias), "")
		if err != nil {
			return "", fmt.Errorf("assemble %s filter: %w", b.catalog.Kind(), err)
		}
		sb.WriteString(join)
	}

	for _, rel := range joinOrder {
		for _, key := range b.registry.Keys(rel) {
			alias, _ := b.registry.Alias(rel, key)
			join, err := b.catalog.Join(rel, base, b.dialect.QuoteIdentifier(alias), key)
			if err != nil {
				return "", fmt.Errorf("assemble %s filter: %w", b.catalog.Kind(), err)
			}
			sb.WriteString(join)
		}
	}

	return sb.String(), nil
}

func (b *FilterQueryBuilder) ready() error {
	switch b.phase {
	case phaseFresh:
		return ErrNotTranslated
	case phaseFailed:
		return b.err
	default:
		return nil
	}
}

// Clauses is the output of a compilation.
type Clauses struct {
	Kind  filterir.RecordKind
	From  string
	Where string
	// Joins is the number of join fragments in From.
	Joins int
}

// Statement renders SELECT <selectList> FROM <From> WHERE <Where>.
func (c Clauses) Statement(selectList string) string {
	return "SELECT " + selectList + " FROM " + c.From + "WHERE " + c.Where
}

// Compile translates e for kind and assembles both clauses.
// On error the returned Clauses is empty.
func Compile(kind filterir.RecordKind, e filterir.Expr, opts ...Option) (Clauses, error) {
	b, err := NewFilterQueryBuilder(kind, opts...)
	if err != nil {
		return Clauses{}, err
	}
	if err := b.Translate(e); err != nil {
		return Clauses{}, err
	}

	from, err := b.GetFromClause()
	if err != nil {
		return Clauses{}, err
	}

	return Clauses{
		Kind:  kind,
		From:  from,
		Where: b.where,
		Joins: b.registry.Len() - 1,
	}, nil
}

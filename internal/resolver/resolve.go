package resolver

import (
	"errors"
	"fmt"

	"github.com/roach88/mlmdq/internal/filterir"
	"github.com/roach88/mlmdq/internal/querysql"
)

var (
	// ErrUnknownAttribute is returned for a bare column that is not a
	// direct attribute of the record kind.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrUnknownNeighbor is returned for a neighbor column whose prefix is
	// not recognized or whose relationship does not exist for the kind.
	ErrUnknownNeighbor = errors.New("unknown neighbor")

	// ErrUnknownField is returned for a field the neighbor does not expose,
	// and for field access on something that is not a neighbor.
	ErrUnknownField = errors.New("unknown field")
)

// Resolve checks every column reference in e against kind and returns a
// copy with neighbor columns typed as filterir.Struct. The input tree is
// not modified. Resolution stops at the first unresolvable reference.
func Resolve(kind filterir.RecordKind, e filterir.Expr) (filterir.Expr, error) {
	catalog, err := querysql.NewCatalog(kind, querysql.DialectMySQL)
	if err != nil {
		return nil, err
	}
	r := &resolver{kind: kind, catalog: catalog}
	return r.resolve(e)
}

type resolver struct {
	kind    filterir.RecordKind
	catalog querysql.Catalog
}

func (r *resolver) resolve(e filterir.Expr) (filterir.Expr, error) {
	e = filterir.Unwrap(e)
	if e == nil {
		return nil, fmt.Errorf("%w: nil node", querysql.ErrMalformedExpr)
	}

	switch n := e.(type) {
	case filterir.Column:
		return r.resolveAttribute(n)
	case filterir.Field:
		return r.resolveField(n)
	case filterir.Literal:
		return n, nil
	case filterir.Compare:
		left, err := r.resolve(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := r.resolve(n.Right)
		if err != nil {
			return nil, err
		}
		return filterir.Compare{Op: n.Op, Left: left, Right: right}, nil
	case filterir.And:
		terms, err := r.resolveAll(n.Terms)
		if err != nil {
			return nil, err
		}
		return filterir.And{Terms: terms}, nil
	case filterir.Or:
		terms, err := r.resolveAll(n.Terms)
		if err != nil {
			return nil, err
		}
		return filterir.Or{Terms: terms}, nil
	case filterir.Not:
		term, err := r.resolve(n.Term)
		if err != nil {
			return nil, err
		}
		return filterir.Not{Term: term}, nil
	case filterir.IsNull:
		term, err := r.resolve(n.Term)
		if err != nil {
			return nil, err
		}
		return filterir.IsNull{Term: term, Negated: n.Negated}, nil
	case filterir.In:
		term, err := r.resolve(n.Term)
		if err != nil {
			return nil, err
		}
		values, err := r.resolveAll(n.Values)
		if err != nil {
			return nil, err
		}
		return filterir.In{Term: term, Values: values, Negated: n.Negated}, nil
	default:
		return nil, fmt.Errorf("%w: unknown node type %T", querysql.ErrMalformedExpr, e)
	}
}

func (r *resolver) resolveAll(terms []filterir.Expr) ([]filterir.Expr, error) {
	if terms == nil {
		return nil, nil
	}
	out := make([]filterir.Expr, 0, len(terms))
	for _, t := range terms {
		resolved, err := r.resolve(t)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

// resolveAttribute handles a column that is not under a field access.
func (r *resolver) resolveAttribute(c filterir.Column) (filterir.Expr, error) {
	if isAttribute(r.kind, c.Name) {
		return filterir.Column{Name: c.Name, Type: filterir.Scalar}, nil
	}
	if _, _, err := querysql.ClassifyNeighbor(c.Name); err == nil {
		return nil, fmt.Errorf("%w: neighbor %q is read without a field", ErrUnknownField, c.Name)
	}
	return nil, fmt.Errorf("%w: %q is not one of the %s", ErrUnknownAttribute, c.Name, describe(r.kind))
}

func (r *resolver) resolveField(f filterir.Field) (filterir.Expr, error) {
	col, ok := filterir.Unwrap(f.Of).(filterir.Column)
	if !ok {
		return nil, fmt.Errorf("%w: %q is read from %T, not a neighbor column", ErrUnknownField, f.Name, f.Of)
	}
	if isAttribute(r.kind, col.Name) {
		return nil, fmt.Errorf("%w: attribute %q has no field %q", ErrUnknownField, col.Name, f.Name)
	}

	rel, _, err := querysql.ClassifyNeighbor(col.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownNeighbor, err)
	}
	if !r.catalog.Supports(rel) {
		return nil, fmt.Errorf("%w: %q: %s records have no %s neighbors", ErrUnknownNeighbor, col.Name, r.kind, rel)
	}
	if !isNeighborField(rel, f.Name) {
		return nil, fmt.Errorf("%w: %s neighbor %q has no field %q (fields: %v)",
			ErrUnknownField, rel, col.Name, f.Name, NeighborFields(rel))
	}

	return filterir.Field{
		Of:   filterir.Column{Name: col.Name, Type: filterir.Struct},
		Name: f.Name,
	}, nil
}

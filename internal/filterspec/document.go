package filterspec

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"

	"github.com/roach88/mlmdq/internal/filterir"
	"github.com/roach88/mlmdq/internal/ir"
)

// Document is the decoded form of a filter file.
type Document struct {
	// Kind is the record kind being filtered: artifact, execution or context.
	Kind string `yaml:"kind" json:"kind"`

	// Where is the predicate. A missing predicate matches every record.
	Where *Node `yaml:"where,omitempty" json:"where,omitempty"`
}

// Node is one predicate. Exactly one of And, Or, Not or Column is set.
type Node struct {
	And []Node `yaml:"and,omitempty" json:"and,omitempty"`
	Or  []Node `yaml:"or,omitempty" json:"or,omitempty"`
	Not *Node  `yaml:"not,omitempty" json:"not,omitempty"`

	// Column is an attribute name or "<neighbor>.<field>".
	Column string `yaml:"column,omitempty" json:"column,omitempty"`
	Op     string `yaml:"op,omitempty" json:"op,omitempty"`
	Value  any    `yaml:"value,omitempty" json:"value,omitempty"`
}

// Filter is a decoded document ready for resolution.
type Filter struct {
	Kind  filterir.RecordKind
	Where filterir.Expr
}

// opKind groups operators by the shape of their value.
type opKind int

const (
	opCompare opKind = iota
	opIn
	opNull
)

type operator struct {
	kind    opKind
	compare filterir.CompareOp
	negated bool
}

var operators = map[string]operator{
	"=":           {kind: opCompare, compare: filterir.OpEq},
	"==":          {kind: opCompare, compare: filterir.OpEq},
	"eq":          {kind: opCompare, compare: filterir.OpEq},
	"!=":          {kind: opCompare, compare: filterir.OpNe},
	"<>":          {kind: opCompare, compare: filterir.OpNe},
	"ne":          {kind: opCompare, compare: filterir.OpNe},
	"<":           {kind: opCompare, compare: filterir.OpLt},
	"lt":          {kind: opCompare, compare: filterir.OpLt},
	"<=":          {kind: opCompare, compare: filterir.OpLe},
	"le":          {kind: opCompare, compare: filterir.OpLe},
	">":           {kind: opCompare, compare: filterir.OpGt},
	"gt":          {kind: opCompare, compare: filterir.OpGt},
	">=":          {kind: opCompare, compare: filterir.OpGe},
	"ge":          {kind: opCompare, compare: filterir.OpGe},
	"like":        {kind: opCompare, compare: filterir.OpLike},
	"not like":    {kind: opCompare, compare: filterir.OpNotLike},
	"in":          {kind: opIn},
	"not in":      {kind: opIn, negated: true},
	"is null":     {kind: opNull},
	"is not null": {kind: opNull, negated: true},
}

// Decode converts a document into an unresolved filter.
func Decode(doc Document) (*Filter, error) {
	if strings.TrimSpace(doc.Kind) == "" {
		return nil, decodeErrorf("kind", "kind is required")
	}
	kind, err := filterir.ParseRecordKind(doc.Kind)
	if err != nil {
		return nil, decodeErrorf("kind", "%v", err)
	}

	if doc.Where == nil {
		return &Filter{Kind: kind, Where: filterir.AllOf()}, nil
	}

	where, err := decodeNode(*doc.Where, "where")
	if err != nil {
		return nil, err
	}
	return &Filter{Kind: kind, Where: where}, nil
}

func decodeNode(n Node, path string) (filterir.Expr, error) {
	set := 0
	if n.And != nil {
		set++
	}
	if n.Or != nil {
		set++
	}
	if n.Not != nil {
		set++
	}
	if n.Column != "" {
		set++
	}
	switch {
	case set == 0:
		return nil, decodeErrorf(path, "node needs one of and, or, not or column")
	case set > 1:
		return nil, decodeErrorf(path, "node mixes and, or, not and column; nest them instead")
	}

	switch {
	case n.And != nil:
		if n.Op != "" || n.Value != nil {
			return nil, decodeErrorf(path, "and takes no op or value")
		}
		terms, err := decodeNodes(n.And, path+".and")
		if err != nil {
			return nil, err
		}
		return filterir.AllOf(terms...), nil
	case n.Or != nil:
		if n.Op != "" || n.Value != nil {
			return nil, decodeErrorf(path, "or takes no op or value")
		}
		terms, err := decodeNodes(n.Or, path+".or")
		if err != nil {
			return nil, err
		}
		return filterir.AnyOf(terms...), nil
	case n.Not != nil:
		if n.Op != "" || n.Value != nil {
			return nil, decodeErrorf(path, "not takes no op or value")
		}
		term, err := decodeNode(*n.Not, path+".not")
		if err != nil {
			return nil, err
		}
		return filterir.Not{Term: term}, nil
	default:
		return decodePredicate(n, path)
	}
}

func decodeNodes(nodes []Node, path string) ([]filterir.Expr, error) {
	var terms []filterir.Expr
	for i, n := range nodes {
		term, err := decodeNode(n, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, nil
}

// normalizeOp case-folds an operator name, folds full-width forms to ASCII
// and collapses runs of whitespace.
func normalizeOp(op string) string {
	folded := cases.Fold().String(width.Fold.String(op))
	return strings.Join(strings.Fields(folded), " ")
}

func decodePredicate(n Node, path string) (filterir.Expr, error) {
	column, err := decodeColumn(n.Column, path+".column")
	if err != nil {
		return nil, err
	}

	opName := normalizeOp(n.Op)
	op, ok := operators[opName]
	if !ok {
		return nil, decodeErrorf(path+".op", "unknown operator %q", n.Op)
	}

	switch op.kind {
	case opNull:
		if n.Value != nil {
			return nil, decodeErrorf(path+".value", "%s takes no value", opName)
		}
		return filterir.IsNull{Term: column, Negated: op.negated}, nil

	case opIn:
		items, isList := n.Value.([]any)
		if !isList {
			items = []any{n.Value}
		}
		values := make([]filterir.Expr, 0, len(items))
		for i, item := range items {
			v, err := decodeScalar(item, fmt.Sprintf("%s.value[%d]", path, i))
			if err != nil {
				return nil, err
			}
			values = append(values, filterir.Lit(v))
		}
		return filterir.In{Term: column, Values: values, Negated: op.negated}, nil

	default:
		v, err := decodeScalar(n.Value, path+".value")
		if err != nil {
			return nil, err
		}
		return filterir.Cmp(column, op.compare, filterir.Lit(v)), nil
	}
}

// decodeColumn splits "neighbor.field" into a field access. The neighbor
// column stays scalar typed until resolution.
func decodeColumn(text, path string) (filterir.Expr, error) {
	parts := strings.Split(strings.TrimSpace(text), ".")
	for _, p := range parts {
		if p == "" {
			return nil, decodeErrorf(path, "malformed column %q", text)
		}
	}

	switch len(parts) {
	case 1:
		return filterir.Attr(parts[0]), nil
	case 2:
		return filterir.Field{Of: filterir.Attr(parts[0]), Name: parts[1]}, nil
	default:
		return nil, decodeErrorf(path, "column %q has more than one field access", text)
	}
}

func decodeScalar(raw any, path string) (ir.Value, error) {
	if raw == nil {
		return nil, decodeErrorf(path, "value is required; use op \"is null\" to test for NULL")
	}
	v, err := ir.FromAny(raw)
	if err != nil {
		return nil, decodeErrorf(path, "%v", err)
	}
	if _, isList := v.(ir.List); isList {
		return nil, decodeErrorf(path, "list values are only allowed with in and not in")
	}
	return v, nil
}

package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/mlmdq/internal/filterir"
	"github.com/roach88/mlmdq/internal/ir"
)

// TypeAttribute is the scalar pseudo attribute that reads the record's type
// name through the type join.
const TypeAttribute = "type"

// neighborPrefix maps a struct column name prefix to its relationship.
type neighborPrefix struct {
	prefix string
	kind   RelationshipKind
	// keyByName keys the concept by the name after the prefix instead of
	// the full column name, so every mention of one property shares a join.
	keyByName bool
}

var neighborPrefixes = []neighborPrefix{
	{prefix: "contexts_", kind: ContextJoin},
	{prefix: "properties_", kind: PropertyJoin, keyByName: true},
	{prefix: "custom_properties_", kind: CustomPropertyJoin, keyByName: true},
	{prefix: "parent_contexts_", kind: ParentContextJoin},
	{prefix: "child_contexts_", kind: ChildContextJoin},
	{prefix: "events_", kind: EventJoin},
}

// ClassifyNeighbor maps a neighbor column name to its relationship kind and
// concept key.
func ClassifyNeighbor(name string) (RelationshipKind, string, error) {
	for _, p := range neighborPrefixes {
		if !strings.HasPrefix(name, p.prefix) {
			continue
		}
		if !p.keyByName {
			return p.kind, name, nil
		}
		key := strings.TrimPrefix(name, p.prefix)
		if key == "" {
			return 0, "", fmt.Errorf("%w: %q names no property", ErrUnsupportedNeighbor, name)
		}
		return p.kind, key, nil
	}
	return 0, "", fmt.Errorf("%w: %q", ErrUnsupportedNeighbor, name)
}

// translator renders predicate trees as SQL text, binding aliases as it goes.
type translator struct {
	catalog  Catalog
	dialect  Dialect
	registry *AliasRegistry
}

// render returns the SQL text of e.
func (t *translator) render(e filterir.Expr) (string, error) {
	e = filterir.Unwrap(e)
	if e == nil {
		return "", fmt.Errorf("%w: nil node", ErrMalformedExpr)
	}

	switch n := e.(type) {
	case filterir.Column:
		return t.renderColumn(n)
	case filterir.Field:
		of, err := t.operand(n.Of)
		if err != nil {
			return "", err
		}
		return of + "." + t.dialect.QuoteIdentifier(n.Name), nil
	case filterir.Literal:
		return t.renderLiteral(n.Value)
	case filterir.Compare:
		left, err := t.operand(n.Left)
		if err != nil {
			return "", err
		}
		right, err := t.operand(n.Right)
		if err != nil {
			return "", err
		}
		return left + " " + n.Op.SQL() + " " + right, nil
	case filterir.And:
		return t.renderJunction(n.Terms, " AND ", "TRUE")
	case filterir.Or:
		return t.renderJunction(n.Terms, " OR ", "FALSE")
	case filterir.Not:
		term, err := t.render(n.Term)
		if err != nil {
			return "", err
		}
		return "NOT (" + term + ")", nil
	case filterir.IsNull:
		term, err := t.operand(n.Term)
		if err != nil {
			return "", err
		}
		if n.Negated {
			return term + " IS NOT NULL", nil
		}
		return term + " IS NULL", nil
	case filterir.In:
		return t.renderIn(n)
	default:
		return "", fmt.Errorf("%w: unknown node type %T", ErrMalformedExpr, e)
	}
}

// renderColumn resolves a column reference to alias-qualified text.
func (t *translator) renderColumn(c filterir.Column) (string, error) {
	if c.Type == filterir.Struct {
		kind, key, err := ClassifyNeighbor(c.Name)
		if err != nil {
			return "", err
		}
		if !t.catalog.Supports(kind) {
			return "", fmt.Errorf("%w: %q (%s) on %s", ErrInvalidRelationship, c.Name, kind, t.catalog.Kind())
		}
		// The field part (.name, .double_value) is rendered by Field.
		return t.dialect.QuoteIdentifier(t.registry.GetOrCreateAlias(kind, key)), nil
	}

	if c.Name == TypeAttribute {
		alias := t.registry.GetOrCreateAlias(TypeJoin, "")
		return t.dialect.QuoteIdentifier(alias) + "." + t.dialect.QuoteIdentifier(TypeAttribute), nil
	}

	alias := t.registry.GetOrCreateAlias(BaseAttribute, "")
	return t.dialect.QuoteIdentifier(alias) + "." + t.dialect.QuoteIdentifier(c.Name), nil
}

func (t *translator) renderLiteral(v ir.Value) (string, error) {
	switch val := v.(type) {
	case ir.Null:
		return "NULL", nil
	case ir.String:
		return t.dialect.QuoteString(string(val)), nil
	case ir.Int:
		return strconv.FormatInt(int64(val), 10), nil
	case ir.Double:
		return ir.FormatDouble(val), nil
	case ir.Bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case ir.List:
		items, err := t.renderLiteralList(val)
		if err != nil {
			return "", err
		}
		return "(" + strings.Join(items, ", ") + ")", nil
	case nil:
		return "", fmt.Errorf("%w: literal without value", ErrMalformedExpr)
	default:
		return "", fmt.Errorf("%w: unknown literal type %T", ErrMalformedExpr, v)
	}
}

func (t *translator) renderLiteralList(list ir.List) ([]string, error) {
	items := make([]string, 0, len(list))
	for _, v := range list {
		item, err := t.renderLiteral(v)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// renderJunction joins terms with sep; compound terms are parenthesized.
func (t *translator) renderJunction(terms []filterir.Expr, sep, empty string) (string, error) {
	if len(terms) == 0 {
		return empty, nil
	}

	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		part, err := t.render(term)
		if err != nil {
			return "", err
		}
		if isJunction(term) {
			part = "(" + part + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, sep), nil
}

func (t *translator) renderIn(n filterir.In) (string, error) {
	term, err := t.operand(n.Term)
	if err != nil {
		return "", err
	}

	var items []string
	for _, v := range n.Values {
		// A list literal among the values is spliced in element by element.
		if lit, ok := filterir.Unwrap(v).(filterir.Literal); ok {
			if list, isList := lit.Value.(ir.List); isList {
				listItems, err := t.renderLiteralList(list)
				if err != nil {
					return "", err
				}
				items = append(items, listItems...)
				continue
			}
		}
		item, err := t.operand(v)
		if err != nil {
			return "", err
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		// x IN () is not valid SQL; membership in nothing is false.
		if n.Negated {
			return "TRUE", nil
		}
		return "FALSE", nil
	}

	op := " IN ("
	if n.Negated {
		op = " NOT IN ("
	}
	return term + op + strings.Join(items, ", ") + ")", nil
}

// operand renders e for use inside a comparison, parenthesizing anything
// that is itself a predicate.
func (t *translator) operand(e filterir.Expr) (string, error) {
	text, err := t.render(e)
	if err != nil {
		return "", err
	}
	switch filterir.Unwrap(e).(type) {
	case filterir.Compare, filterir.And, filterir.Or, filterir.Not, filterir.IsNull, filterir.In:
		return "(" + text + ")", nil
	default:
		return text, nil
	}
}

func isJunction(e filterir.Expr) bool {
	switch filterir.Unwrap(e).(type) {
	case filterir.And, filterir.Or:
		return true
	default:
		return false
	}
}

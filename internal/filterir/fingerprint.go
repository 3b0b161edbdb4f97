package filterir

import (
	"fmt"

	"github.com/roach88/mlmdq/internal/ir"
)

// Fingerprint returns a content-addressed identity for a filter compiled
// against a record kind. Two trees share a fingerprint only if they have the
// same shape and byte-identical names and literals, which is what the
// compiler's output depends on; the store caches compiled clauses by it.
func Fingerprint(kind RecordKind, e Expr) (string, error) {
	tree, err := encode(e)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	canonical, err := ir.MarshalCanonical(map[string]any{
		"kind":  kind.String(),
		"where": tree,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	return ir.HashWithDomain(ir.DomainFilter, canonical), nil
}

// encode converts a tree into the generic map form MarshalCanonical accepts.
func encode(e Expr) (any, error) {
	e = Unwrap(e)
	if e == nil {
		return nil, fmt.Errorf("nil expression node")
	}

	switch n := e.(type) {
	case Column:
		return map[string]any{"column": n.Name, "type": n.Type.String()}, nil
	case Field:
		of, err := encode(n.Of)
		if err != nil {
			return nil, err
		}
		return map[string]any{"field": n.Name, "of": of}, nil
	case Literal:
		if n.Value == nil {
			return nil, fmt.Errorf("literal with nil value")
		}
		return map[string]any{"value": n.Value}, nil
	case Compare:
		left, err := encode(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := encode(n.Right)
		if err != nil {
			return nil, err
		}
		return map[string]any{"op": n.Op.SQL(), "left": left, "right": right}, nil
	case And:
		terms, err := encodeAll(n.Terms)
		if err != nil {
			return nil, err
		}
		return map[string]any{"and": terms}, nil
	case Or:
		terms, err := encodeAll(n.Terms)
		if err != nil {
			return nil, err
		}
		return map[string]any{"or": terms}, nil
	case Not:
		term, err := encode(n.Term)
		if err != nil {
			return nil, err
		}
		return map[string]any{"not": term}, nil
	case IsNull:
		term, err := encode(n.Term)
		if err != nil {
			return nil, err
		}
		return map[string]any{"is_null": term, "negated": n.Negated}, nil
	case In:
		term, err := encode(n.Term)
		if err != nil {
			return nil, err
		}
		values, err := encodeAll(n.Values)
		if err != nil {
			return nil, err
		}
		return map[string]any{"in": term, "values": values, "negated": n.Negated}, nil
	default:
		return nil, fmt.Errorf("unknown expression type: %T", e)
	}
}

func encodeAll(terms []Expr) ([]any, error) {
	out := make([]any, len(terms))
	for i, t := range terms {
		enc, err := encode(t)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = enc
	}
	return out, nil
}

package filterir

import (
	"fmt"

	"github.com/roach88/mlmdq/internal/ir"
)

// ValidationResult contains the structural analysis of a predicate tree.
//
// Structural problems do not stop compilation by themselves; the compiler
// renders whatever it is given. Warnings point at trees that will produce
// SQL the caller almost certainly did not mean (a bare neighbor alias used
// as a value, a NULL compared with =).
type ValidationResult struct {
	// OK is true when no warnings were produced.
	OK bool

	// Warnings lists structural problems in traversal order.
	Warnings []string
}

// Validate walks the tree and reports structural problems.
//
// Rules:
//  1. No nil nodes
//  2. Columns have names
//  3. Struct columns are only used through Field
//  4. Field is only applied to struct columns
//  5. List literals only appear as In values
//  6. NULL is tested with IsNull, not compared
//
// Validate is a pure function with no side effects.
func Validate(e Expr) ValidationResult {
	v := &validator{warnings: []string{}}
	v.validate(e, false)

	return ValidationResult{
		OK:       len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

// validate checks a node. underField is true when e is the Of of a Field.
func (v *validator) validate(e Expr, underField bool) {
	e = Unwrap(e)
	if e == nil {
		v.addWarning("nil expression node")
		return
	}

	switch n := e.(type) {
	case Column:
		if n.Name == "" {
			v.addWarning("column with empty name")
		}
		if n.Type == Struct && !underField {
			v.addWarning("neighbor column %q used without a field access", n.Name)
		}
	case Field:
		if n.Name == "" {
			v.addWarning("field access with empty name")
		}
		if col, ok := Unwrap(n.Of).(Column); ok && col.Type != Struct {
			v.addWarning("field %q read from scalar column %q", n.Name, col.Name)
		}
		v.validate(n.Of, true)
	case Literal:
		v.validateLiteral(n, false)
	case Compare:
		v.validate(n.Left, false)
		v.validate(n.Right, false)
		if isNullLiteral(n.Left) || isNullLiteral(n.Right) {
			v.addWarning("comparison %s against NULL is never true; use IsNull", n.Op)
		}
	case And:
		for _, t := range n.Terms {
			v.validate(t, false)
		}
	case Or:
		for _, t := range n.Terms {
			v.validate(t, false)
		}
	case Not:
		v.validate(n.Term, false)
	case IsNull:
		v.validate(n.Term, false)
	case In:
		v.validate(n.Term, false)
		for _, val := range n.Values {
			if lit, ok := Unwrap(val).(Literal); ok {
				v.validateLiteral(lit, true)
				continue
			}
			v.validate(val, false)
		}
	default:
		v.addWarning("unknown expression type: %T", e)
	}
}

func (v *validator) validateLiteral(l Literal, inList bool) {
	if l.Value == nil {
		v.addWarning("literal with nil value")
		return
	}
	if _, isList := l.Value.(ir.List); isList && !inList {
		v.addWarning("list literal outside of IN")
	}
}

func isNullLiteral(e Expr) bool {
	lit, ok := Unwrap(e).(Literal)
	if !ok {
		return false
	}
	_, isNull := lit.Value.(ir.Null)
	return isNull
}

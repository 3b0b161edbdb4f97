package filterir

import (
	"fmt"

	"github.com/roach88/mlmdq/internal/ir"
)

// Expr is a node of a resolved filter predicate.
//
// This is a sealed interface - only types in this package implement it.
//
// Node types:
//   - Column: attribute or neighbor reference
//   - Field: field access on a neighbor (struct) column
//   - Literal: constant value
//   - Compare: binary comparison
//   - And, Or, Not: boolean connectives
//   - IsNull: IS [NOT] NULL test
//   - In: [NOT] IN list membership
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// ColumnType is the declared type of a column reference.
type ColumnType int

const (
	// Scalar columns are direct attributes of the filtered record.
	Scalar ColumnType = iota
	// Struct columns denote a neighbor concept reached through a join.
	Struct
)

func (t ColumnType) String() string {
	if t == Struct {
		return "struct"
	}
	return "scalar"
}

// Column references an attribute (Scalar) or a neighbor concept (Struct).
//
// Example:
//
//	Column{Name: "uri"}                                    // table_0.uri
//	Column{Name: "type"}                                   // table_1.type
//	Column{Name: "contexts_pipeline", Type: Struct}        // table_2
type Column struct {
	Name string
	Type ColumnType
}

func (Column) exprNode() {}

// Field reads a named field of a struct-typed expression.
//
// Example:
//
//	Field{Of: Column{Name: "contexts_pipeline", Type: Struct}, Name: "name"}
//
// Renders as:
//
//	table_2.name
type Field struct {
	Of   Expr
	Name string
}

func (Field) exprNode() {}

// Literal is a constant value.
type Literal struct {
	Value ir.Value
}

func (Literal) exprNode() {}

// CompareOp is a binary comparison operator.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLike
	OpNotLike
)

// SQL returns the operator's SQL spelling.
func (op CompareOp) SQL() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLike:
		return "LIKE"
	case OpNotLike:
		return "NOT LIKE"
	default:
		return fmt.Sprintf("CompareOp(%d)", int(op))
	}
}

func (op CompareOp) String() string {
	return op.SQL()
}

// Compare is a binary comparison.
//
// Semantics:
//
//	<left> <op> <right>
type Compare struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

func (Compare) exprNode() {}

// And is a conjunction. An empty And is always true.
type And struct {
	Terms []Expr
}

func (And) exprNode() {}

// Or is a disjunction. An empty Or is always false.
type Or struct {
	Terms []Expr
}

func (Or) exprNode() {}

// Not negates its term.
type Not struct {
	Term Expr
}

func (Not) exprNode() {}

// IsNull tests a term for NULL (IS NOT NULL when Negated).
type IsNull struct {
	Term    Expr
	Negated bool
}

func (IsNull) exprNode() {}

// In tests list membership (NOT IN when Negated).
type In struct {
	Term    Expr
	Values  []Expr
	Negated bool
}

func (In) exprNode() {}

// Unwrap dereferences pointer nodes so walkers only switch on value forms.
// A nil pointer unwraps to nil.
func Unwrap(e Expr) Expr {
	switch n := e.(type) {
	case *Column:
		if n == nil {
			return nil
		}
		return *n
	case *Field:
		if n == nil {
			return nil
		}
		return *n
	case *Literal:
		if n == nil {
			return nil
		}
		return *n
	case *Compare:
		if n == nil {
			return nil
		}
		return *n
	case *And:
		if n == nil {
			return nil
		}
		return *n
	case *Or:
		if n == nil {
			return nil
		}
		return *n
	case *Not:
		if n == nil {
			return nil
		}
		return *n
	case *IsNull:
		if n == nil {
			return nil
		}
		return *n
	case *In:
		if n == nil {
			return nil
		}
		return *n
	default:
		return e
	}
}

// Convenience constructors, mostly for tests and hand-built filters.

// Attr returns a scalar column reference.
func Attr(name string) Column {
	return Column{Name: name}
}

// Neighbor returns field access on a struct column, e.g.
// Neighbor("properties_accuracy", "double_value").
func Neighbor(column, field string) Field {
	return Field{Of: Column{Name: column, Type: Struct}, Name: field}
}

// Lit wraps a value as a literal node.
func Lit(v ir.Value) Literal {
	return Literal{Value: v}
}

// Cmp builds a comparison node.
func Cmp(left Expr, op CompareOp, right Expr) Compare {
	return Compare{Op: op, Left: left, Right: right}
}

// AllOf builds a conjunction.
func AllOf(terms ...Expr) And {
	return And{Terms: terms}
}

// AnyOf builds a disjunction.
func AnyOf(terms ...Expr) Or {
	return Or{Terms: terms}
}

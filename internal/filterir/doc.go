// Package filterir defines the resolved predicate tree that the filter-query
// compiler consumes.
//
// The tree is produced by a resolver (see internal/resolver) from a filter
// document and handed to internal/querysql, which turns it into a FROM and a
// WHERE clause:
//
//	[filter document] → [resolver] → [filterir.Expr] → [querysql] → FROM / WHERE
//
// NEIGHBOR COLUMNS:
//
// A Column whose Type is Struct denotes a neighbor concept of the record
// being filtered rather than one of its own attributes. Its name carries a
// relationship prefix:
//
//	contexts_<name>           contexts the artifact/execution belongs to
//	properties_<name>         declared property <name>
//	custom_properties_<name>  custom property <name>
//	parent_contexts_<name>    parents of a context
//	child_contexts_<name>     children of a context
//	events_<name>             events touching the artifact/execution
//
// The fields of a neighbor are read through Field:
//
//	Field{Of: Column{Name: "properties_accuracy", Type: Struct}, Name: "double_value"}
//
// The scalar column named "type" is the type-name pseudo attribute.
//
// SEALED INTERFACES:
//
// Expr is sealed with a marker method so that only types in this package can
// implement it, which keeps type switches in the compiler exhaustive. Both
// value and pointer forms of every node are accepted; walkers call Unwrap to
// normalize pointers first.
package filterir

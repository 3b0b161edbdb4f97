// Package querysql compiles a resolved filter predicate (filterir.Expr) into
// the FROM and WHERE clauses of a SQL statement over the metadata tables.
//
// Compilation has exactly two phases, run once per FilterQueryBuilder:
//
//  1. Translate walks the predicate left to right, renders it as WHERE text
//     and records every neighbor concept it meets in an AliasRegistry.
//  2. GetFromClause renders the base table followed by one join per alias
//     the registry handed out, in a fixed category order.
//
// Identical neighbor mentions (same relationship, same key) share one alias
// and one join; distinct mentions never share an alias. Alias numbering
// follows first-mention order, so the same tree always compiles to the same
// text.
//
// A builder is single use and not safe for concurrent use. Compile many
// filters in parallel by giving each goroutine its own builder.
package querysql

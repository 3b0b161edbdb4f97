// Package resolver turns a parsed filter into one the query compiler accepts.
//
// Filter documents name columns by text only. The resolver checks every
// direct attribute against the record kind's attribute set, marks neighbor
// columns as struct typed, and checks that the neighbor relationship and
// the field read from it exist for the record kind. The compiler trusts
// this: it only classifies struct columns, it never re-checks attributes.
package resolver

package resolver

import (
	"fmt"
	"slices"

	"github.com/roach88/mlmdq/internal/filterir"
	"github.com/roach88/mlmdq/internal/querysql"
)

// Attributes common to every record kind. "type" is the pseudo attribute
// read through the type join.
var commonAttributes = []string{
	"id",
	"type_id",
	"name",
	"external_id",
	"create_time_since_epoch",
	"last_update_time_since_epoch",
	querysql.TypeAttribute,
}

var kindAttributes = map[filterir.RecordKind][]string{
	filterir.Artifact:  {"uri", "state"},
	filterir.Execution: {"last_known_state"},
	filterir.Context:   nil,
}

// neighborFields lists the fields each join exposes.
var neighborFields = map[querysql.RelationshipKind][]string{
	querysql.ContextJoin: {
		"id", "name", "type", "create_time_since_epoch", "last_update_time_since_epoch",
	},
	querysql.PropertyJoin:       {"int_value", "double_value", "string_value"},
	querysql.CustomPropertyJoin: {"int_value", "double_value", "string_value"},
	querysql.ParentContextJoin:  {"id", "name", "type"},
	querysql.ChildContextJoin:   {"id", "name", "type"},
	querysql.EventJoin: {
		"id", "artifact_id", "execution_id", "type", "milliseconds_since_epoch",
	},
}

// Attributes returns the sorted direct attributes of kind.
func Attributes(kind filterir.RecordKind) []string {
	attrs := append(slices.Clone(commonAttributes), kindAttributes[kind]...)
	slices.Sort(attrs)
	return attrs
}

// NeighborFields returns the fields readable from a neighbor of rel.
func NeighborFields(rel querysql.RelationshipKind) []string {
	return slices.Clone(neighborFields[rel])
}

func isAttribute(kind filterir.RecordKind, name string) bool {
	return slices.Contains(commonAttributes, name) || slices.Contains(kindAttributes[kind], name)
}

func isNeighborField(rel querysql.RelationshipKind, name string) bool {
	return slices.Contains(neighborFields[rel], name)
}

func describe(kind filterir.RecordKind) string {
	return fmt.Sprintf("%s attributes %v", kind, Attributes(kind))
}

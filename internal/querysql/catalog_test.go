package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mlmdq/internal/filterir"
)

func mustCatalog(t *testing.T, kind filterir.RecordKind, d Dialect) Catalog {
	t.Helper()
	c, err := NewCatalog(kind, d)
	require.NoError(t, err)
	return c
}

func TestCatalog_BaseTable(t *testing.T) {
	assert.Equal(t, "Artifact AS table_0 ", mustCatalog(t, filterir.Artifact, DialectMySQL).BaseTable("table_0"))
	assert.Equal(t, "Execution AS table_0 ", mustCatalog(t, filterir.Execution, DialectMySQL).BaseTable("table_0"))
	assert.Equal(t, "Context AS table_0 ", mustCatalog(t, filterir.Context, DialectMySQL).BaseTable("table_0"))
}

func TestCatalog_UnknownKind(t *testing.T) {
	_, err := NewCatalog(filterir.RecordKind(9), DialectMySQL)
	require.ErrorIs(t, err, ErrUnknownRecordKind)
}

func TestCatalog_Supports(t *testing.T) {
	tests := []struct {
		kind filterir.RecordKind
		rel  RelationshipKind
		want bool
	}{
		{filterir.Artifact, TypeJoin, true},
		{filterir.Artifact, ContextJoin, true},
		{filterir.Artifact, PropertyJoin, true},
		{filterir.Artifact, CustomPropertyJoin, true},
		{filterir.Artifact, ParentContextJoin, false},
		{filterir.Artifact, ChildContextJoin, false},
		{filterir.Artifact, EventJoin, true},
		{filterir.Execution, ContextJoin, true},
		{filterir.Execution, EventJoin, true},
		{filterir.Execution, ParentContextJoin, false},
		{filterir.Context, TypeJoin, true},
		{filterir.Context, ContextJoin, false},
		{filterir.Context, PropertyJoin, true},
		{filterir.Context, ParentContextJoin, true},
		{filterir.Context, ChildContextJoin, true},
		{filterir.Context, EventJoin, false},
		{filterir.Artifact, BaseAttribute, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.rel.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, mustCatalog(t, tt.kind, DialectMySQL).Supports(tt.rel))
		})
	}
}

func TestCatalog_TypeJoinUsesTypeKind(t *testing.T) {
	artifact, err := mustCatalog(t, filterir.Artifact, DialectMySQL).Join(TypeJoin, "table_0", "table_1", "")
	require.NoError(t, err)
	assert.Contains(t, artifact, "WHERE Type.type_kind = 1")
	assert.Contains(t, artifact, ") AS table_1 ON table_0.type_id = table_1.type_id ")

	execution, err := mustCatalog(t, filterir.Execution, DialectMySQL).Join(TypeJoin, "table_0", "table_1", "")
	require.NoError(t, err)
	assert.Contains(t, execution, "WHERE Type.type_kind = 0")

	context, err := mustCatalog(t, filterir.Context, DialectMySQL).Join(TypeJoin, "table_0", "table_1", "")
	require.NoError(t, err)
	assert.Contains(t, context, "WHERE Type.type_kind = 2")
}

func TestCatalog_ContextJoinEdgeTable(t *testing.T) {
	artifact, err := mustCatalog(t, filterir.Artifact, DialectMySQL).Join(ContextJoin, "table_0", "table_1", "contexts_a")
	require.NoError(t, err)
	assert.Contains(t, artifact, "JOIN Attribution ON Context.id = Attribution.context_id")
	assert.Contains(t, artifact, ") AS table_1 ON table_0.id = table_1.artifact_id ")
	assert.NotContains(t, artifact, "Association")

	execution, err := mustCatalog(t, filterir.Execution, DialectMySQL).Join(ContextJoin, "table_0", "table_1", "contexts_a")
	require.NoError(t, err)
	assert.Contains(t, execution, "JOIN Association ON Context.id = Association.context_id")
	assert.Contains(t, execution, ") AS table_1 ON table_0.id = table_1.execution_id ")
	assert.NotContains(t, execution, "Attribution")
}

func TestCatalog_HierarchyOrientation(t *testing.T) {
	c := mustCatalog(t, filterir.Context, DialectMySQL)

	parent, err := c.Join(ParentContextJoin, "table_0", "table_1", "parent_contexts_a")
	require.NoError(t, err)
	assert.Contains(t, parent, "JOIN ParentContext ON Context.id = ParentContext.parent_context_id")
	assert.Contains(t, parent, ") AS table_1 ON table_0.id = table_1.child_context_id ")

	child, err := c.Join(ChildContextJoin, "table_0", "table_2", "child_contexts_a")
	require.NoError(t, err)
	assert.Contains(t, child, "JOIN ParentContext ON Context.id = ParentContext.context_id")
	assert.Contains(t, child, ") AS table_2 ON table_0.id = table_2.parent_context_id ")
}

func TestCatalog_PropertyJoin(t *testing.T) {
	tests := []struct {
		kind   filterir.RecordKind
		table  string
		column string
	}{
		{filterir.Artifact, "ArtifactProperty", "artifact_id"},
		{filterir.Execution, "ExecutionProperty", "execution_id"},
		{filterir.Context, "ContextProperty", "context_id"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			c := mustCatalog(t, tt.kind, DialectMySQL)

			declared, err := c.Join(PropertyJoin, "table_0", "table_1", "accuracy")
			require.NoError(t, err)
			assert.Contains(t, declared, "FROM "+tt.table+` WHERE name = "accuracy" AND is_custom_property = false`)
			assert.Contains(t, declared, ") AS table_1 ON table_0.id = table_1."+tt.column+" ")

			custom, err := c.Join(CustomPropertyJoin, "table_0", "table_2", "owner")
			require.NoError(t, err)
			assert.Contains(t, custom, "FROM "+tt.table+` WHERE name = "owner" AND is_custom_property = true`)
		})
	}
}

func TestCatalog_PropertyNameEscaped(t *testing.T) {
	mysql, err := mustCatalog(t, filterir.Artifact, DialectMySQL).Join(PropertyJoin, "table_0", "table_1", `x" OR "1"="1`)
	require.NoError(t, err)
	assert.Contains(t, mysql, `WHERE name = "x\" OR \"1\"=\"1" AND`)

	sqlite, err := mustCatalog(t, filterir.Artifact, DialectSQLite).Join(PropertyJoin, "table_0", "table_1", `it's`)
	require.NoError(t, err)
	assert.Contains(t, sqlite, `WHERE name = 'it''s' AND`)
}

func TestCatalog_EventJoin(t *testing.T) {
	artifact, err := mustCatalog(t, filterir.Artifact, DialectMySQL).Join(EventJoin, "table_0", "table_3", "events_0")
	require.NoError(t, err)
	assert.Equal(t, "\nJOIN Event AS table_3 ON table_0.id = table_3.artifact_id ", artifact)

	execution, err := mustCatalog(t, filterir.Execution, DialectMySQL).Join(EventJoin, "table_0", "table_3", "events_0")
	require.NoError(t, err)
	assert.Equal(t, "\nJOIN Event AS table_3 ON table_0.id = table_3.execution_id ", execution)
}

func TestCatalog_InvalidJoins(t *testing.T) {
	tests := []struct {
		kind filterir.RecordKind
		rel  RelationshipKind
	}{
		{filterir.Context, ContextJoin},
		{filterir.Context, EventJoin},
		{filterir.Artifact, ParentContextJoin},
		{filterir.Execution, ChildContextJoin},
		{filterir.Artifact, BaseAttribute},
		{filterir.Artifact, RelationshipKind(99)},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.rel.String(), func(t *testing.T) {
			join, err := mustCatalog(t, tt.kind, DialectMySQL).Join(tt.rel, "table_0", "table_1", "k")
			require.ErrorIs(t, err, ErrInvalidRelationship)
			assert.Empty(t, join)
		})
	}
}

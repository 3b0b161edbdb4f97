package store

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mlmdq/internal/filterir"
	"github.com/roach88/mlmdq/internal/ir"
	"github.com/roach88/mlmdq/internal/querysql"
	"github.com/roach88/mlmdq/internal/resolver"
)

// field builds an unresolved neighbor field access, as decoded from a filter document.
func field(column, name string) filterir.Field {
	return filterir.Field{Of: filterir.Attr(column), Name: name}
}

func eq(left filterir.Expr, v ir.Value) filterir.Compare {
	return filterir.Cmp(left, filterir.OpEq, filterir.Lit(v))
}

func TestListArtifactIDs(t *testing.T) {
	s := createTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()

	tests := []struct {
		name     string
		filter   filterir.Expr
		opts     querysql.ListOptions
		expected []int64
	}{
		{
			name:     "direct attribute",
			filter:   eq(filterir.Attr("uri"), ir.String("gs://models/2")),
			expected: []int64{f.model2},
		},
		{
			name:     "like",
			filter:   filterir.Cmp(filterir.Attr("uri"), filterir.OpLike, filterir.Lit(ir.String("gs://models/%"))),
			expected: []int64{f.model1, f.model2},
		},
		{
			name:     "type name",
			filter:   eq(filterir.Attr("type"), ir.String("Dataset")),
			expected: []int64{f.dataset},
		},
		{
			name:     "property",
			filter:   filterir.Cmp(field("properties_accuracy", "double_value"), filterir.OpGt, filterir.Lit(ir.Double(0.9))),
			expected: []int64{f.model1},
		},
		{
			name:     "custom property",
			filter:   eq(field("custom_properties_owner", "string_value"), ir.String("bob")),
			expected: []int64{f.model2},
		},
		{
			name:     "property and custom property share nothing",
			filter:   eq(field("properties_owner", "string_value"), ir.String("bob")),
			expected: []int64{},
		},
		{
			name: "context and custom property",
			filter: filterir.AllOf(
				eq(field("contexts_p", "name"), ir.String("p1")),
				eq(field("custom_properties_owner", "string_value"), ir.String("alice")),
			),
			expected: []int64{f.model1},
		},
		{
			name:     "events are deduplicated",
			filter:   eq(field("events_0", "type"), ir.Int(int64(EventOutput))),
			expected: []int64{f.model1, f.model2},
		},
		{
			name:     "input events",
			filter:   eq(field("events_0", "type"), ir.Int(int64(EventInput))),
			expected: []int64{f.dataset},
		},
		{
			name:     "match all",
			filter:   filterir.AllOf(),
			expected: []int64{f.model1, f.model2, f.dataset},
		},
		{
			name:     "ordered by create time descending",
			filter:   filterir.AllOf(),
			opts:     querysql.ListOptions{OrderBy: querysql.OrderByCreateTime, Desc: true},
			expected: []int64{f.model2, f.dataset, f.model1},
		},
		{
			name:     "paged",
			filter:   eq(filterir.Attr("type"), ir.String("Model")),
			opts:     querysql.ListOptions{Limit: 1, Offset: 1},
			expected: []int64{f.model2},
		},
		{
			name:     "candidate ids",
			filter:   eq(filterir.Attr("type"), ir.String("Model")),
			opts:     querysql.ListOptions{CandidateIDs: []int64{f.model2, f.dataset}},
			expected: []int64{f.model2},
		},
		{
			name:     "empty candidate set",
			filter:   filterir.AllOf(),
			opts:     querysql.ListOptions{CandidateIDs: []int64{}},
			expected: []int64{},
		},
		{
			name: "negated disjunction",
			filter: filterir.Not{Term: filterir.AnyOf(
				eq(filterir.Attr("type"), ir.String("Dataset")),
				eq(filterir.Attr("name"), ir.String("model-1")),
			)},
			expected: []int64{f.model2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := s.ListArtifactIDs(ctx, tt.filter, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestListExecutionIDs(t *testing.T) {
	s := createTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()

	ids, err := s.ListExecutionIDs(ctx, eq(field("contexts_run", "name"), ir.String("r1")), querysql.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.train}, ids)

	ids, err = s.ListExecutionIDs(ctx, eq(field("contexts_run", "name"), ir.String("r2")), querysql.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = s.ListExecutionIDs(ctx, eq(filterir.Attr("last_known_state"), ir.Int(3)), querysql.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.train}, ids)
}

func TestListContextIDs(t *testing.T) {
	s := createTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()

	children, err := s.ListContextIDs(ctx, eq(field("parent_contexts_p", "name"), ir.String("p1")), querysql.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.r1, f.r2}, children)

	parents, err := s.ListContextIDs(ctx, eq(field("child_contexts_c", "name"), ir.String("r2")), querysql.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.p1}, parents)

	noted, err := s.ListContextIDs(ctx, filterir.IsNull{Term: field("custom_properties_note", "string_value"), Negated: true}, querysql.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.r2}, noted)
}

func TestListIDs_RejectsInvalidFilters(t *testing.T) {
	s := createTestStore(t)
	seedFixture(t, s)
	ctx := context.Background()

	_, err := s.ListContextIDs(ctx, eq(field("contexts_c", "name"), ir.String("p1")), querysql.ListOptions{})
	require.ErrorIs(t, err, resolver.ErrUnknownNeighbor)

	_, err = s.ListArtifactIDs(ctx, eq(filterir.Attr("colour"), ir.String("red")), querysql.ListOptions{})
	require.ErrorIs(t, err, resolver.ErrUnknownAttribute)

	_, err = s.ListArtifactIDs(ctx, filterir.AllOf(nil), querysql.ListOptions{})
	require.Error(t, err)
}

func TestCompile_CachesByFingerprint(t *testing.T) {
	s := createTestStore(t)
	label := filterir.Execution.String()

	filter := func() filterir.Expr {
		return eq(field("custom_properties_cache_test", "int_value"), ir.Int(1))
	}

	compiles := testutil.ToFloat64(filterCompileCounter.WithLabelValues(label))
	hits := testutil.ToFloat64(filterCacheHitCounter.WithLabelValues(label))

	first, err := s.Compile(filterir.Execution, filter())
	require.NoError(t, err)
	second, err := s.Compile(filterir.Execution, filter())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.clauses.Len())
	assert.Equal(t, compiles+1, testutil.ToFloat64(filterCompileCounter.WithLabelValues(label)))
	assert.Equal(t, hits+1, testutil.ToFloat64(filterCacheHitCounter.WithLabelValues(label)))

	assert.Contains(t, first.From, "name = 'cache_test' AND is_custom_property = true")
}

func TestCompile_FailuresAreNotCached(t *testing.T) {
	s := createTestStore(t)
	label := filterir.Context.String()
	failures := testutil.ToFloat64(filterCompileErrorCounter.WithLabelValues(label))

	for i := 0; i < 2; i++ {
		_, err := s.Compile(filterir.Context, eq(field("events_e", "type"), ir.Int(1)))
		require.Error(t, err)
	}

	assert.Equal(t, 0, s.clauses.Len())
	assert.Equal(t, failures+2, testutil.ToFloat64(filterCompileErrorCounter.WithLabelValues(label)))
}

func TestCompile_CacheEvicts(t *testing.T) {
	s := createTestStore(t, WithCacheSize(2))

	for _, uri := range []string{"a", "b", "c"} {
		_, err := s.Compile(filterir.Artifact, eq(filterir.Attr("uri"), ir.String(uri)))
		require.NoError(t, err)
	}

	assert.Equal(t, 2, s.clauses.Len())
}

func TestCompile_DistinctFiltersGetDistinctEntries(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	must := checker{t}

	typeID := must.id(s.PutType(ctx, "Model", filterir.Artifact))
	decomposed := must.id(s.PutArtifact(ctx, Artifact{TypeID: typeID, URI: "cafe\u0301"}))

	// Precomposed "é" does not match the stored decomposed form...
	ids, err := s.ListArtifactIDs(ctx, eq(filterir.Attr("uri"), ir.String("caf\u00e9")), querysql.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, ids)

	// ...and compiling it first must not shadow the decomposed filter.
	ids, err = s.ListArtifactIDs(ctx, eq(filterir.Attr("uri"), ir.String("cafe\u0301")), querysql.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int64{decomposed}, ids)

	pairs := []struct {
		name string
		a, b filterir.Expr
	}{
		{
			"invalid bytes",
			eq(filterir.Attr("uri"), ir.String("\xff")),
			eq(filterir.Attr("uri"), ir.String("\xfe")),
		},
		{
			"property name forms",
			eq(field("properties_caf\u00e9", "int_value"), ir.Int(1)),
			eq(field("properties_cafe\u0301", "int_value"), ir.Int(1)),
		},
	}

	for _, p := range pairs {
		t.Run(p.name, func(t *testing.T) {
			first, err := s.Compile(filterir.Artifact, p.a)
			require.NoError(t, err)
			second, err := s.Compile(filterir.Artifact, p.b)
			require.NoError(t, err)

			assert.NotEqual(t, first, second)
		})
	}

	assert.Equal(t, 6, s.clauses.Len())
}

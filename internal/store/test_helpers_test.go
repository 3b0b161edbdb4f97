package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/mlmdq/internal/filterir"
	"github.com/roach88/mlmdq/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// checker fails the test on write errors.
type checker struct {
	t *testing.T
}

func (c checker) id(id int64, err error) int64 {
	c.t.Helper()
	if err != nil {
		c.t.Fatalf("write failed: %v", err)
	}
	return id
}

func (c checker) ok(err error) {
	c.t.Helper()
	if err != nil {
		c.t.Fatalf("write failed: %v", err)
	}
}

// fixture is a small lineage graph:
//
//	pipeline p1 ── child runs r1, r2
//	r1 ── associated execution train (Trainer)
//	dataset ──input──▶ train ──output──▶ model1, model2
//	p1 ── attributed artifacts model1, model2
type fixture struct {
	model1, model2, dataset int64
	train                   int64
	p1, r1, r2              int64
}

func seedFixture(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()
	must := checker{t}

	modelType := must.id(s.PutType(ctx, "Model", filterir.Artifact))
	datasetType := must.id(s.PutType(ctx, "Dataset", filterir.Artifact))
	trainerType := must.id(s.PutType(ctx, "Trainer", filterir.Execution))
	pipelineType := must.id(s.PutType(ctx, "Pipeline", filterir.Context))
	runType := must.id(s.PutType(ctx, "Run", filterir.Context))

	var f fixture
	f.model1 = must.id(s.PutArtifact(ctx, Artifact{
		TypeID:           modelType,
		URI:              "gs://models/1",
		Name:             "model-1",
		CreateTime:       1000,
		Properties:       Properties{"accuracy": ir.Double(0.95)},
		CustomProperties: Properties{"owner": ir.String("alice")},
	}))
	f.model2 = must.id(s.PutArtifact(ctx, Artifact{
		TypeID:           modelType,
		URI:              "gs://models/2",
		Name:             "model-2",
		CreateTime:       3000,
		Properties:       Properties{"accuracy": ir.Double(0.5)},
		CustomProperties: Properties{"owner": ir.String("bob")},
	}))
	f.dataset = must.id(s.PutArtifact(ctx, Artifact{
		TypeID:     datasetType,
		URI:        "gs://data/train.csv",
		CreateTime: 2000,
		Properties: Properties{"rows": ir.Int(1200)},
	}))

	f.train = must.id(s.PutExecution(ctx, Execution{
		TypeID:         trainerType,
		Name:           "train",
		LastKnownState: 3,
	}))

	f.p1 = must.id(s.PutContext(ctx, Context{TypeID: pipelineType, Name: "p1"}))
	f.r1 = must.id(s.PutContext(ctx, Context{TypeID: runType, Name: "r1"}))
	f.r2 = must.id(s.PutContext(ctx, Context{
		TypeID:           runType,
		Name:             "r2",
		CustomProperties: Properties{"note": ir.String("rerun")},
	}))

	must.ok(s.PutParentContext(ctx, f.p1, f.r1))
	must.ok(s.PutParentContext(ctx, f.p1, f.r2))
	must.ok(s.PutAssociation(ctx, f.r1, f.train))
	must.ok(s.PutAttribution(ctx, f.p1, f.model1))
	must.ok(s.PutAttribution(ctx, f.p1, f.model2))

	must.id(s.PutEvent(ctx, Event{ArtifactID: f.dataset, ExecutionID: f.train, Type: EventInput}))
	must.id(s.PutEvent(ctx, Event{ArtifactID: f.model1, ExecutionID: f.train, Type: EventOutput}))
	must.id(s.PutEvent(ctx, Event{ArtifactID: f.model2, ExecutionID: f.train, Type: EventOutput}))

	return f
}

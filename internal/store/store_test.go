package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/mlmdq/internal/filterir"
	"github.com/roach88/mlmdq/internal/ir"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{
		"Type", "Artifact", "ArtifactProperty", "Execution", "ExecutionProperty",
		"Context", "ContextProperty", "ParentContext", "Attribution", "Association", "Event",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}

	for _, tt := range tests {
		if err := s.verifyPragma(tt.name, tt.expected); err != nil {
			t.Error(err)
		}
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := s.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	s.Close()

	if _, err := Open(path); err == nil {
		t.Fatal("Open() should fail for a newer schema version")
	}
}

func TestOpen_InvalidCacheSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	if _, err := Open(path, WithCacheSize(0)); err == nil {
		t.Fatal("Open() should fail with a zero cache size")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on empty store failed: %v", err)
	}
}

func TestPutType_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.PutType(ctx, "Model", filterir.Artifact)
	if err != nil {
		t.Fatalf("PutType() failed: %v", err)
	}
	second, err := s.PutType(ctx, "Model", filterir.Artifact)
	if err != nil {
		t.Fatalf("second PutType() failed: %v", err)
	}
	if first != second {
		t.Errorf("PutType() ids differ: %d != %d", first, second)
	}

	// Same name, different kind is a different type.
	other, err := s.PutType(ctx, "Model", filterir.Context)
	if err != nil {
		t.Fatalf("PutType() for context failed: %v", err)
	}
	if other == first {
		t.Error("types of different kinds share an id")
	}

	var kind int
	if err := s.db.QueryRow("SELECT type_kind FROM Type WHERE id = ?", other).Scan(&kind); err != nil {
		t.Fatalf("query type: %v", err)
	}
	if kind != 2 {
		t.Errorf("type_kind = %d, want 2", kind)
	}
}

func TestPutType_Validation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.PutType(ctx, "", filterir.Artifact); err == nil {
		t.Error("PutType() with empty name should fail")
	}
	if _, err := s.PutType(ctx, "X", filterir.RecordKind(7)); err == nil {
		t.Error("PutType() with unknown kind should fail")
	}
}

func TestPutArtifact_Properties(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	must := checker{t}

	typeID := must.id(s.PutType(ctx, "Model", filterir.Artifact))
	id := must.id(s.PutArtifact(ctx, Artifact{
		TypeID:     typeID,
		URI:        "gs://m",
		CreateTime: 42,
		Properties: Properties{
			"layers":   ir.Int(12),
			"accuracy": ir.Double(0.5),
		},
		CustomProperties: Properties{"layers": ir.String("twelve")},
	}))

	rows, err := s.db.Query(`
		SELECT name, is_custom_property, int_value, double_value, string_value
		FROM ArtifactProperty WHERE artifact_id = ?
		ORDER BY is_custom_property, name`, id)
	if err != nil {
		t.Fatalf("query properties: %v", err)
	}
	defer rows.Close()

	type row struct {
		name   string
		custom bool
		i      *int64
		d      *float64
		s      *string
	}
	var got []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.name, &r.custom, &r.i, &r.d, &r.s); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, r)
	}

	if len(got) != 3 {
		t.Fatalf("got %d property rows, want 3", len(got))
	}
	if got[0].name != "accuracy" || got[0].custom || got[0].d == nil || *got[0].d != 0.5 || got[0].i != nil {
		t.Errorf("accuracy row = %+v", got[0])
	}
	if got[1].name != "layers" || got[1].custom || got[1].i == nil || *got[1].i != 12 {
		t.Errorf("layers row = %+v", got[1])
	}
	if got[2].name != "layers" || !got[2].custom || got[2].s == nil || *got[2].s != "twelve" {
		t.Errorf("custom layers row = %+v", got[2])
	}

	var create, update int64
	if err := s.db.QueryRow("SELECT create_time_since_epoch, last_update_time_since_epoch FROM Artifact WHERE id = ?", id).Scan(&create, &update); err != nil {
		t.Fatalf("query artifact: %v", err)
	}
	if create != 42 || update != 42 {
		t.Errorf("times = (%d, %d), want (42, 42)", create, update)
	}
}

func TestPutArtifact_RejectsUnsupportedProperty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	must := checker{t}

	typeID := must.id(s.PutType(ctx, "Model", filterir.Artifact))
	_, err := s.PutArtifact(ctx, Artifact{
		TypeID:     typeID,
		Properties: Properties{"ok": ir.Bool(true)},
	})
	if err == nil {
		t.Fatal("PutArtifact() with a bool property should fail")
	}

	// The transaction rolled back: no artifact row was left behind.
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM Artifact").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("artifact count = %d, want 0", count)
	}
}

func TestPutArtifact_DefaultTimes(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	must := checker{t}

	original := nowMillis
	nowMillis = func() int64 { return 777 }
	t.Cleanup(func() { nowMillis = original })

	typeID := must.id(s.PutType(ctx, "Model", filterir.Artifact))
	id := must.id(s.PutArtifact(ctx, Artifact{TypeID: typeID}))

	var create, update int64
	if err := s.db.QueryRow("SELECT create_time_since_epoch, last_update_time_since_epoch FROM Artifact WHERE id = ?", id).Scan(&create, &update); err != nil {
		t.Fatalf("query artifact: %v", err)
	}
	if create != 777 || update != 777 {
		t.Errorf("times = (%d, %d), want (777, 777)", create, update)
	}
}

func TestPutContext_RequiresName(t *testing.T) {
	s := createTestStore(t)
	if _, err := s.PutContext(context.Background(), Context{TypeID: 1}); err == nil {
		t.Error("PutContext() without name should fail")
	}
}

func TestLinks_Idempotent(t *testing.T) {
	s := createTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()

	if err := s.PutAttribution(ctx, f.p1, f.model1); err != nil {
		t.Errorf("repeated PutAttribution() failed: %v", err)
	}
	if err := s.PutAssociation(ctx, f.r1, f.train); err != nil {
		t.Errorf("repeated PutAssociation() failed: %v", err)
	}
	if err := s.PutParentContext(ctx, f.p1, f.r1); err != nil {
		t.Errorf("repeated PutParentContext() failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM Attribution").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("attribution count = %d, want 2", count)
	}
}

func TestPutParentContext_RejectsSelfParent(t *testing.T) {
	s := createTestStore(t)
	f := seedFixture(t, s)

	if err := s.PutParentContext(context.Background(), f.p1, f.p1); err == nil {
		t.Error("PutParentContext() with itself as parent should fail")
	}
}

func TestPutEvent_ForeignKeys(t *testing.T) {
	s := createTestStore(t)

	_, err := s.PutEvent(context.Background(), Event{ArtifactID: 99, ExecutionID: 98, Type: EventInput})
	if err == nil {
		t.Error("PutEvent() referencing missing records should fail")
	}
}

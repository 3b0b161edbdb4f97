package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/mlmdq/internal/filterir"
	"github.com/roach88/mlmdq/internal/ir"
)

// nowMillis supplies default record times.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// PutType stores a type for the given record kind and returns its id.
// Storing an existing (name, kind) pair returns the existing id.
func (s *Store) PutType(ctx context.Context, name string, kind filterir.RecordKind) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("put type: name is required")
	}
	if !kind.Valid() {
		return 0, fmt.Errorf("put type: unknown record kind %d", int(kind))
	}

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := sq.Select("id").
			From("Type").
			Where(sq.Eq{"name": name, "type_kind": kind.TypeKind()}).
			RunWith(tx).
			QueryRowContext(ctx).
			Scan(&id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		res, err := sq.Insert("Type").
			Columns("name", "type_kind").
			Values(name, kind.TypeKind()).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("put type %q: %w", name, err)
	}
	return id, nil
}

// PutArtifact inserts an artifact with its properties and returns its id.
func (s *Store) PutArtifact(ctx context.Context, a Artifact) (int64, error) {
	create, update := recordTimes(a.CreateTime, a.LastUpdateTime)

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := sq.Insert("Artifact").
			Columns("type_id", "uri", "state", "name", "external_id",
				"create_time_since_epoch", "last_update_time_since_epoch").
			Values(a.TypeID, nullString(a.URI), a.State, nullString(a.Name), nullString(a.ExternalID),
				create, update).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		return writeProperties(ctx, tx, "ArtifactProperty", "artifact_id", id, a.Properties, a.CustomProperties)
	})
	if err != nil {
		return 0, fmt.Errorf("put artifact: %w", err)
	}
	return id, nil
}

// PutExecution inserts an execution with its properties and returns its id.
func (s *Store) PutExecution(ctx context.Context, e Execution) (int64, error) {
	create, update := recordTimes(e.CreateTime, e.LastUpdateTime)

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := sq.Insert("Execution").
			Columns("type_id", "last_known_state", "name", "external_id",
				"create_time_since_epoch", "last_update_time_since_epoch").
			Values(e.TypeID, e.LastKnownState, nullString(e.Name), nullString(e.ExternalID),
				create, update).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		return writeProperties(ctx, tx, "ExecutionProperty", "execution_id", id, e.Properties, e.CustomProperties)
	})
	if err != nil {
		return 0, fmt.Errorf("put execution: %w", err)
	}
	return id, nil
}

// PutContext inserts a context with its properties and returns its id.
func (s *Store) PutContext(ctx context.Context, c Context) (int64, error) {
	if c.Name == "" {
		return 0, fmt.Errorf("put context: name is required")
	}
	create, update := recordTimes(c.CreateTime, c.LastUpdateTime)

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := sq.Insert("Context").
			Columns("type_id", "name", "external_id",
				"create_time_since_epoch", "last_update_time_since_epoch").
			Values(c.TypeID, c.Name, nullString(c.ExternalID), create, update).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		return writeProperties(ctx, tx, "ContextProperty", "context_id", id, c.Properties, c.CustomProperties)
	})
	if err != nil {
		return 0, fmt.Errorf("put context %q: %w", c.Name, err)
	}
	return id, nil
}

// PutAttribution links an artifact to a context. Existing links are kept.
func (s *Store) PutAttribution(ctx context.Context, contextID, artifactID int64) error {
	_, err := s.stbl.Insert("Attribution").
		Options("OR IGNORE").
		Columns("context_id", "artifact_id").
		Values(contextID, artifactID).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("put attribution: %w", err)
	}
	return nil
}

// PutAssociation links an execution to a context. Existing links are kept.
func (s *Store) PutAssociation(ctx context.Context, contextID, executionID int64) error {
	_, err := s.stbl.Insert("Association").
		Options("OR IGNORE").
		Columns("context_id", "execution_id").
		Values(contextID, executionID).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("put association: %w", err)
	}
	return nil
}

// PutParentContext makes parentID a parent of childID.
func (s *Store) PutParentContext(ctx context.Context, parentID, childID int64) error {
	if parentID == childID {
		return fmt.Errorf("put parent context: context %d cannot be its own parent", childID)
	}
	_, err := s.stbl.Insert("ParentContext").
		Options("OR IGNORE").
		Columns("context_id", "parent_context_id").
		Values(childID, parentID).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("put parent context: %w", err)
	}
	return nil
}

// PutEvent records an event and returns its id.
func (s *Store) PutEvent(ctx context.Context, e Event) (int64, error) {
	t := e.Time
	if t == 0 {
		t = nowMillis()
	}

	res, err := s.stbl.Insert("Event").
		Columns("artifact_id", "execution_id", "type", "milliseconds_since_epoch").
		Values(e.ArtifactID, e.ExecutionID, int(e.Type), t).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("put event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("put event: %w", err)
	}
	return id, nil
}

// writeProperties inserts both property maps, in name order.
func writeProperties(ctx context.Context, tx *sql.Tx, table, idColumn string, id int64, props, custom Properties) error {
	if len(props) == 0 && len(custom) == 0 {
		return nil
	}

	insert := sq.Insert(table).
		Columns(idColumn, "name", "is_custom_property", "int_value", "double_value", "string_value")

	for _, set := range []struct {
		props  Properties
		custom bool
	}{{props, false}, {custom, true}} {
		names := make([]string, 0, len(set.props))
		for name := range set.props {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			if name == "" {
				return fmt.Errorf("property with empty name")
			}
			intValue, doubleValue, stringValue, err := propertyColumns(set.props[name])
			if err != nil {
				return fmt.Errorf("property %q: %w", name, err)
			}
			insert = insert.Values(id, name, set.custom, intValue, doubleValue, stringValue)
		}
	}

	if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	return nil
}

// propertyColumns spreads a value over the int, double and string columns.
func propertyColumns(v ir.Value) (intValue, doubleValue, stringValue any, err error) {
	switch val := v.(type) {
	case ir.Int:
		return int64(val), nil, nil, nil
	case ir.Double:
		return nil, float64(val), nil, nil
	case ir.String:
		return nil, nil, string(val), nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported property value type %T", v)
	}
}

func recordTimes(create, update int64) (int64, int64) {
	if create == 0 {
		create = nowMillis()
	}
	if update == 0 {
		update = create
	}
	return create, update
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

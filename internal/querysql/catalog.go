package querysql

import (
	"fmt"

	"github.com/roach88/mlmdq/internal/filterir"
)

// Join templates. %[1]s is the base alias, %[2]s the join alias.
// Property templates take %[3]s, the quoted property name literal, and
// %[4]t, the is_custom_property flag. The type template takes %[3]d, the
// type_kind discriminant.
const (
	typeJoinTemplate = `
JOIN (
  SELECT Type.id as type_id, Type.name as type
  FROM Type
  WHERE Type.type_kind = %[3]d
) AS %[2]s ON %[1]s.type_id = %[2]s.type_id `

	contextJoinViaAttributionTemplate = `
JOIN (
  SELECT Context.id, Context.name,
         Type.name as type,
         Attribution.artifact_id,
         Context.create_time_since_epoch,
         Context.last_update_time_since_epoch
  FROM Context
       JOIN Type ON Context.type_id = Type.id
       JOIN Attribution ON Context.id = Attribution.context_id
) AS %[2]s ON %[1]s.id = %[2]s.artifact_id `

	contextJoinViaAssociationTemplate = `
JOIN (
  SELECT Context.id, Context.name,
         Type.name as type,
         Association.execution_id,
         Context.create_time_since_epoch,
         Context.last_update_time_since_epoch
  FROM Context
       JOIN Type ON Context.type_id = Type.id
       JOIN Association ON Context.id = Association.context_id
) AS %[2]s ON %[1]s.id = %[2]s.execution_id `

	// Neighbor rows are parents of the base row.
	parentContextJoinTemplate = `
JOIN (
  SELECT Context.id, Context.name,
         Type.name as type,
         ParentContext.context_id as child_context_id
  FROM Context
       JOIN Type ON Context.type_id = Type.id
       JOIN ParentContext ON Context.id = ParentContext.parent_context_id
) AS %[2]s ON %[1]s.id = %[2]s.child_context_id `

	// Neighbor rows are children of the base row.
	childContextJoinTemplate = `
JOIN (
  SELECT Context.id, Context.name,
         Type.name as type,
         ParentContext.parent_context_id as parent_context_id
  FROM Context
       JOIN Type ON Context.type_id = Type.id
       JOIN ParentContext ON Context.id = ParentContext.context_id
) AS %[2]s ON %[1]s.id = %[2]s.parent_context_id `

	artifactPropertyJoinTemplate = `
JOIN (
  SELECT artifact_id, int_value, double_value, string_value
  FROM ArtifactProperty WHERE name = %[3]s AND is_custom_property = %[4]t
) AS %[2]s ON %[1]s.id = %[2]s.artifact_id `

	executionPropertyJoinTemplate = `
JOIN (
  SELECT execution_id, int_value, double_value, string_value
  FROM ExecutionProperty WHERE name = %[3]s AND is_custom_property = %[4]t
) AS %[2]s ON %[1]s.id = %[2]s.execution_id `

	contextPropertyJoinTemplate = `
JOIN (
  SELECT context_id, int_value, double_value, string_value
  FROM ContextProperty WHERE name = %[3]s AND is_custom_property = %[4]t
) AS %[2]s ON %[1]s.id = %[2]s.context_id `

	artifactEventJoinTemplate = `
JOIN Event AS %[2]s ON %[1]s.id = %[2]s.artifact_id `

	executionEventJoinTemplate = `
JOIN Event AS %[2]s ON %[1]s.id = %[2]s.execution_id `
)

// Catalog renders FROM-clause fragments for one record kind in one dialect.
// All join text in the package comes from here.
type Catalog struct {
	kind    filterir.RecordKind
	dialect Dialect
}

// NewCatalog returns the catalog for kind. It fails for undeclared kinds.
func NewCatalog(kind filterir.RecordKind, dialect Dialect) (Catalog, error) {
	if !kind.Valid() {
		return Catalog{}, fmt.Errorf("%w: %d", ErrUnknownRecordKind, int(kind))
	}
	return Catalog{kind: kind, dialect: dialect}, nil
}

// Kind returns the record kind the catalog renders for.
func (c Catalog) Kind() filterir.RecordKind {
	return c.kind
}

// TableName returns the record kind's base table.
func (c Catalog) TableName() string {
	switch c.kind {
	case filterir.Artifact:
		return "Artifact"
	case filterir.Execution:
		return "Execution"
	case filterir.Context:
		return "Context"
	default:
		panic(fmt.Sprintf("querysql: unknown record kind %d", int(c.kind)))
	}
}

// BaseTable renders the base table aliased to base.
func (c Catalog) BaseTable(base string) string {
	return c.TableName() + " AS " + base + " "
}

// Supports reports whether rel is a valid relationship for the catalog's kind.
func (c Catalog) Supports(rel RelationshipKind) bool {
	_, err := c.template(rel)
	return err == nil
}

// Join renders the join fragment for rel. key is the concept key the alias
// was bound under; for property joins it is the property name.
func (c Catalog) Join(rel RelationshipKind, base, alias, key string) (string, error) {
	tmpl, err := c.template(rel)
	if err != nil {
		return "", err
	}

	switch rel {
	case TypeJoin:
		return fmt.Sprintf(tmpl, base, alias, c.kind.TypeKind()), nil
	case PropertyJoin:
		return fmt.Sprintf(tmpl, base, alias, c.dialect.QuoteString(key), false), nil
	case CustomPropertyJoin:
		return fmt.Sprintf(tmpl, base, alias, c.dialect.QuoteString(key), true), nil
	default:
		return fmt.Sprintf(tmpl, base, alias), nil
	}
}

// template looks up the join template for (kind, rel).
func (c Catalog) template(rel RelationshipKind) (string, error) {
	switch rel {
	case BaseAttribute:
		return "", fmt.Errorf("%w: %s needs no join", ErrInvalidRelationship, rel)
	case TypeJoin:
		return typeJoinTemplate, nil
	case ContextJoin:
		return c.contextJoinTemplate()
	case PropertyJoin, CustomPropertyJoin:
		return c.propertyJoinTemplate(), nil
	case ParentContextJoin, ChildContextJoin:
		return c.hierarchyJoinTemplate(rel)
	case EventJoin:
		return c.eventJoinTemplate()
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRelationship, rel)
	}
}

func (c Catalog) contextJoinTemplate() (string, error) {
	switch c.kind {
	case filterir.Artifact:
		return contextJoinViaAttributionTemplate, nil
	case filterir.Execution:
		return contextJoinViaAssociationTemplate, nil
	case filterir.Context:
		return "", c.invalid(ContextJoin)
	default:
		panic(fmt.Sprintf("querysql: unknown record kind %d", int(c.kind)))
	}
}

func (c Catalog) propertyJoinTemplate() string {
	switch c.kind {
	case filterir.Artifact:
		return artifactPropertyJoinTemplate
	case filterir.Execution:
		return executionPropertyJoinTemplate
	case filterir.Context:
		return contextPropertyJoinTemplate
	default:
		panic(fmt.Sprintf("querysql: unknown record kind %d", int(c.kind)))
	}
}

func (c Catalog) hierarchyJoinTemplate(rel RelationshipKind) (string, error) {
	switch c.kind {
	case filterir.Artifact, filterir.Execution:
		return "", c.invalid(rel)
	case filterir.Context:
		if rel == ParentContextJoin {
			return parentContextJoinTemplate, nil
		}
		return childContextJoinTemplate, nil
	default:
		panic(fmt.Sprintf("querysql: unknown record kind %d", int(c.kind)))
	}
}

func (c Catalog) eventJoinTemplate() (string, error) {
	switch c.kind {
	case filterir.Artifact:
		return artifactEventJoinTemplate, nil
	case filterir.Execution:
		return executionEventJoinTemplate, nil
	case filterir.Context:
		return "", c.invalid(EventJoin)
	default:
		panic(fmt.Sprintf("querysql: unknown record kind %d", int(c.kind)))
	}
}

func (c Catalog) invalid(rel RelationshipKind) error {
	return fmt.Errorf("%w: %s join on %s", ErrInvalidRelationship, rel, c.kind)
}

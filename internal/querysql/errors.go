package querysql

import "errors"

var (
	// ErrUnsupportedNeighbor is returned when a struct-typed column carries a
	// name with no recognized relationship prefix. Compilation is aborted.
	ErrUnsupportedNeighbor = errors.New("unsupported neighbor reference")

	// ErrInvalidRelationship is returned when a relationship does not exist
	// for the record kind being compiled (contexts of a context, events of a
	// context, parents of an artifact). The resolver should never produce
	// such a reference, so this indicates a resolution bug.
	ErrInvalidRelationship = errors.New("relationship not valid for record kind")

	// ErrMalformedExpr is returned for nil nodes and unknown node types.
	ErrMalformedExpr = errors.New("malformed filter expression")

	// ErrUnknownRecordKind is returned for a RecordKind outside the declared set.
	ErrUnknownRecordKind = errors.New("unknown record kind")

	// ErrNotTranslated is returned when clauses are requested before Translate.
	ErrNotTranslated = errors.New("filter not translated yet")

	// ErrAlreadyTranslated is returned when Translate is called twice.
	ErrAlreadyTranslated = errors.New("filter already translated")
)

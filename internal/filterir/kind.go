package filterir

import (
	"fmt"
	"strings"
)

// RecordKind identifies which of the three record tables a filter applies to.
type RecordKind int

const (
	Artifact RecordKind = iota
	Execution
	Context
)

// RecordKinds lists every kind in declaration order.
var RecordKinds = []RecordKind{Artifact, Execution, Context}

// String returns the lower-case kind name used in filter documents and CLI flags.
func (k RecordKind) String() string {
	switch k {
	case Artifact:
		return "artifact"
	case Execution:
		return "execution"
	case Context:
		return "context"
	default:
		return fmt.Sprintf("RecordKind(%d)", int(k))
	}
}

// TypeKind returns the type_kind discriminant persisted in the Type table
// for types of this record kind.
func (k RecordKind) TypeKind() int {
	switch k {
	case Execution:
		return 0
	case Artifact:
		return 1
	case Context:
		return 2
	default:
		panic(fmt.Sprintf("filterir: unknown record kind %d", int(k)))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k RecordKind) Valid() bool {
	return k >= Artifact && k <= Context
}

// ParseRecordKind parses a kind name, case-insensitively. Plural forms are
// accepted ("artifacts").
func ParseRecordKind(s string) (RecordKind, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "artifact":
		return Artifact, nil
	case "execution":
		return Execution, nil
	case "context":
		return Context, nil
	default:
		return 0, fmt.Errorf("unknown record kind %q: must be one of artifact, execution, context", s)
	}
}

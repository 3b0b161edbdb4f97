package querysql

import (
	"fmt"
	"strconv"
)

// RelationshipKind is the category of concept a column reference resolves to.
// Every kind except BaseAttribute needs a join.
type RelationshipKind int

const (
	BaseAttribute RelationshipKind = iota
	TypeJoin
	ContextJoin
	PropertyJoin
	CustomPropertyJoin
	ParentContextJoin
	ChildContextJoin
	EventJoin
)

// joinOrder is the order in which keyed join categories appear in the FROM
// clause, after the type join.
var joinOrder = []RelationshipKind{
	ContextJoin,
	PropertyJoin,
	CustomPropertyJoin,
	ParentContextJoin,
	ChildContextJoin,
	EventJoin,
}

func (k RelationshipKind) String() string {
	switch k {
	case BaseAttribute:
		return "attribute"
	case TypeJoin:
		return "type"
	case ContextJoin:
		return "context"
	case PropertyJoin:
		return "property"
	case CustomPropertyJoin:
		return "custom property"
	case ParentContextJoin:
		return "parent context"
	case ChildContextJoin:
		return "child context"
	case EventJoin:
		return "event"
	default:
		return fmt.Sprintf("RelationshipKind(%d)", int(k))
	}
}

const (
	// AliasPrefix starts every generated table alias.
	AliasPrefix = "table_"
	// BaseAlias is the alias of the filtered record's own table.
	BaseAlias = AliasPrefix + "0"
)

// AliasRegistry hands out table aliases per (relationship kind, concept key).
//
// The first request for a pair mints AliasPrefix + the next counter value;
// later requests for the same pair return the same alias. The counter is
// shared by all kinds, so aliases are unique across the whole statement.
// The base alias is bound at construction so the base table is always part
// of the FROM clause.
type AliasRegistry struct {
	aliases map[RelationshipKind]map[string]string
	order   map[RelationshipKind][]string
	counter int
}

// NewAliasRegistry returns a registry with only the base alias bound.
func NewAliasRegistry() *AliasRegistry {
	r := &AliasRegistry{
		aliases: make(map[RelationshipKind]map[string]string),
		order:   make(map[RelationshipKind][]string),
	}
	r.bind(BaseAttribute, "", BaseAlias)
	return r
}

// GetOrCreateAlias returns the alias bound to (kind, key), binding a fresh
// one on first use.
func (r *AliasRegistry) GetOrCreateAlias(kind RelationshipKind, key string) string {
	if alias, ok := r.aliases[kind][key]; ok {
		return alias
	}
	r.counter++
	alias := AliasPrefix + strconv.Itoa(r.counter)
	r.bind(kind, key, alias)
	return alias
}

// HasAlias reports whether (kind, key) has been bound.
func (r *AliasRegistry) HasAlias(kind RelationshipKind, key string) bool {
	_, ok := r.aliases[kind][key]
	return ok
}

// Alias returns the alias bound to (kind, key) without binding one.
func (r *AliasRegistry) Alias(kind RelationshipKind, key string) (string, bool) {
	alias, ok := r.aliases[kind][key]
	return alias, ok
}

// Keys returns the concept keys bound under kind, in first-mention order.
func (r *AliasRegistry) Keys(kind RelationshipKind) []string {
	keys := r.order[kind]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Len returns the number of bound aliases, base alias included.
func (r *AliasRegistry) Len() int {
	n := 0
	for _, keys := range r.order {
		n += len(keys)
	}
	return n
}

func (r *AliasRegistry) bind(kind RelationshipKind, key, alias string) {
	if r.aliases[kind] == nil {
		r.aliases[kind] = make(map[string]string)
	}
	r.aliases[kind][key] = alias
	r.order[kind] = append(r.order[kind], key)
}

package querysql

import (
	"fmt"
	"regexp"
	"strings"
)

// Dialect selects the quoting rules used for identifiers and string literals.
// Both sides of the generated statement (templates and predicate text) use
// the same dialect.
type Dialect int

const (
	// DialectMySQL quotes strings with double quotes and backslash escapes,
	// and identifiers with backquotes. This is also what ZetaSQL emits.
	DialectMySQL Dialect = iota
	// DialectSQLite quotes strings with single quotes (doubling embedded
	// quotes). SQLite treats double-quoted text as an identifier first.
	DialectSQLite
)

// Dialects lists the accepted dialect names.
var Dialects = []string{"mysql", "sqlite"}

func (d Dialect) String() string {
	switch d {
	case DialectMySQL:
		return "mysql"
	case DialectSQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// ParseDialect parses a dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql", "zetasql":
		return DialectMySQL, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q: must be one of %v", s, Dialects)
	}
}

var plainIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedKeywords are words that can never appear as bare identifiers.
var reservedKeywords = map[string]struct{}{
	"ALL": {}, "AND": {}, "ANY": {}, "ARRAY": {}, "AS": {}, "ASC": {},
	"AT": {}, "BETWEEN": {}, "BY": {}, "CASE": {}, "CAST": {}, "COLLATE": {},
	"CONTAINS": {}, "CREATE": {}, "CROSS": {}, "CUBE": {}, "CURRENT": {},
	"DEFAULT": {}, "DEFINE": {}, "DESC": {}, "DISTINCT": {}, "ELSE": {},
	"END": {}, "ENUM": {}, "ESCAPE": {}, "EXCEPT": {}, "EXCLUDE": {},
	"EXISTS": {}, "EXTRACT": {}, "FALSE": {}, "FETCH": {}, "FOLLOWING": {},
	"FOR": {}, "FROM": {}, "FULL": {}, "GROUP": {}, "GROUPING": {},
	"GROUPS": {}, "HASH": {}, "HAVING": {}, "IF": {}, "IGNORE": {}, "IN": {},
	"INDEX": {}, "INNER": {}, "INTERSECT": {}, "INTERVAL": {}, "INTO": {},
	"IS": {}, "JOIN": {}, "KEY": {}, "LATERAL": {}, "LEFT": {}, "LIKE": {},
	"LIMIT": {}, "LOOKUP": {}, "MERGE": {}, "NATURAL": {}, "NEW": {}, "NO": {},
	"NOT": {}, "NULL": {}, "NULLS": {}, "OF": {}, "ON": {}, "OR": {},
	"ORDER": {}, "OUTER": {}, "OVER": {}, "PARTITION": {}, "PRECEDING": {},
	"PROTO": {}, "RANGE": {}, "RECURSIVE": {}, "RESPECT": {}, "RIGHT": {},
	"ROLLUP": {}, "ROWS": {}, "SELECT": {}, "SET": {}, "SOME": {},
	"STRUCT": {}, "TABLE": {}, "TABLESAMPLE": {}, "THEN": {}, "TO": {},
	"TREAT": {}, "TRUE": {}, "UNBOUNDED": {}, "UNION": {}, "UNNEST": {},
	"USING": {}, "WHEN": {}, "WHERE": {}, "WINDOW": {}, "WITH": {},
	"WITHIN": {},
}

// QuoteIdentifier returns name unchanged when it is a plain, non-reserved
// identifier and backquoted otherwise. Both dialects accept backquotes.
func (d Dialect) QuoteIdentifier(name string) string {
	if plainIdentifier.MatchString(name) {
		if _, reserved := reservedKeywords[strings.ToUpper(name)]; !reserved {
			return name
		}
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

var mysqlStringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\x00", `\0`,
)

// QuoteString renders s as a string literal.
func (d Dialect) QuoteString(s string) string {
	switch d {
	case DialectSQLite:
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	default:
		return `"` + mysqlStringEscaper.Replace(s) + `"`
	}
}

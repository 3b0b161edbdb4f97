package querysql

import (
	"fmt"
	"math"
	"strings"

	"github.com/Masterminds/squirrel"
)

// OrderField is the column a list of ids is ordered by.
type OrderField int

const (
	OrderByID OrderField = iota
	OrderByCreateTime
	OrderByLastUpdateTime
)

// OrderFields lists the accepted order field names.
var OrderFields = []string{"id", "create_time", "last_update_time"}

func (f OrderField) column() string {
	switch f {
	case OrderByCreateTime:
		return "create_time_since_epoch"
	case OrderByLastUpdateTime:
		return "last_update_time_since_epoch"
	default:
		return "id"
	}
}

func (f OrderField) String() string {
	switch f {
	case OrderByCreateTime:
		return "create_time"
	case OrderByLastUpdateTime:
		return "last_update_time"
	default:
		return "id"
	}
}

// ParseOrderField parses an order field name.
func ParseOrderField(s string) (OrderField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "id":
		return OrderByID, nil
	case "create_time", "create_time_since_epoch":
		return OrderByCreateTime, nil
	case "last_update_time", "last_update_time_since_epoch":
		return OrderByLastUpdateTime, nil
	default:
		return 0, fmt.Errorf("unknown order field %q: must be one of %v", s, OrderFields)
	}
}

// ListOptions controls which matching ids are returned and in what order.
type ListOptions struct {
	// CandidateIDs restricts the result to these ids. nil means no
	// restriction; an empty non-nil slice matches nothing.
	CandidateIDs []int64
	OrderBy      OrderField
	Desc         bool
	// Limit caps the number of ids; 0 means no cap.
	Limit  uint64
	Offset uint64
}

// BuildListIDsQuery wraps compiled clauses into a statement selecting the
// distinct ids of matching records. The id is always the final ORDER BY
// key so pages are stable.
func BuildListIDsQuery(c Clauses, opts ListOptions) (string, []any, error) {
	if c.From == "" || c.Where == "" {
		return "", nil, fmt.Errorf("build list query: %w", ErrNotTranslated)
	}

	idColumn := BaseAlias + ".id"
	direction := "ASC"
	if opts.Desc {
		direction = "DESC"
	}

	columns := []string{idColumn}
	orderBy := []string{idColumn + " " + direction}
	if opts.OrderBy != OrderByID {
		orderColumn := BaseAlias + "." + opts.OrderBy.column()
		columns = append(columns, orderColumn)
		orderBy = append([]string{orderColumn + " " + direction}, orderBy...)
	}

	// Joins against contexts and events can repeat a base row.
	q := squirrel.Select(columns...).
		Distinct().
		From(strings.TrimSpace(c.From)).
		Where("(" + c.Where + ")").
		OrderBy(orderBy...)

	if opts.CandidateIDs != nil {
		q = q.Where(squirrel.Eq{idColumn: opts.CandidateIDs})
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	} else if opts.Offset > 0 {
		// OFFSET requires LIMIT in SQLite and MySQL.
		q = q.Limit(math.MaxInt64)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build list query: %w", err)
	}
	return stmt, args, nil
}

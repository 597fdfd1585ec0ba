// Package query builds WHERE clauses with positional placeholders for the
// portal's list endpoints. Filter values arrive as raw query strings and
// are parsed leniently: a value that does not parse contributes no
// condition rather than failing the request.
package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Builder accumulates SQL conditions and their arguments.
type Builder struct {
	conds []string
	args  []interface{}
}

func New() *Builder {
	return &Builder{}
}

// Eq adds an equality condition. Empty values are skipped.
func (b *Builder) Eq(col, value string) *Builder {
	if value == "" {
		return b
	}
	b.args = append(b.args, value)
	b.conds = append(b.conds, fmt.Sprintf("%s = $%d", col, len(b.args)))
	return b
}

// EqUUID adds an equality condition on a uuid column. Values that are not
// valid uuids are skipped.
func (b *Builder) EqUUID(col, value string) *Builder {
	if value == "" {
		return b
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return b
	}
	b.args = append(b.args, id)
	b.conds = append(b.conds, fmt.Sprintf("%s = $%d", col, len(b.args)))
	return b
}

// EqBool adds an equality condition on a boolean column. Values that are
// not valid booleans are skipped.
func (b *Builder) EqBool(col, value string) *Builder {
	if value == "" {
		return b
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return b
	}
	b.args = append(b.args, v)
	b.conds = append(b.conds, fmt.Sprintf("%s = $%d", col, len(b.args)))
	return b
}

// ILike adds a case-insensitive substring match. Empty values are skipped.
func (b *Builder) ILike(col, value string) *Builder {
	if value == "" {
		return b
	}
	b.args = append(b.args, "%"+value+"%")
	b.conds = append(b.conds, fmt.Sprintf("%s ILIKE $%d", col, len(b.args)))
	return b
}

// GteNum adds a >= condition on a numeric column. Unparseable values are skipped.
func (b *Builder) GteNum(col, raw string) *Builder {
	return b.numCond(col, ">=", raw)
}

// LteNum adds a <= condition on a numeric column. Unparseable values are skipped.
func (b *Builder) LteNum(col, raw string) *Builder {
	return b.numCond(col, "<=", raw)
}

func (b *Builder) numCond(col, op, raw string) *Builder {
	if raw == "" {
		return b
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return b
	}
	b.args = append(b.args, v)
	b.conds = append(b.conds, fmt.Sprintf("%s %s $%d", col, op, len(b.args)))
	return b
}

// GteTime adds a >= condition on a timestamp column. Accepts RFC 3339
// timestamps or plain dates; anything else is skipped.
func (b *Builder) GteTime(col, raw string) *Builder {
	return b.timeCond(col, ">=", raw)
}

// LteTime adds a <= condition on a timestamp column.
func (b *Builder) LteTime(col, raw string) *Builder {
	return b.timeCond(col, "<=", raw)
}

func (b *Builder) timeCond(col, op, raw string) *Builder {
	if raw == "" {
		return b
	}
	t, err := parseTime(raw)
	if err != nil {
		return b
	}
	b.args = append(b.args, t)
	b.conds = append(b.conds, fmt.Sprintf("%s %s $%d", col, op, len(b.args)))
	return b
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// AnyUUID restricts col to the given id set via = ANY($n). Callers must
// short-circuit before building the query when the set is empty.
func (b *Builder) AnyUUID(col string, ids []uuid.UUID) *Builder {
	b.args = append(b.args, ids)
	b.conds = append(b.conds, fmt.Sprintf("%s = ANY($%d)", col, len(b.args)))
	return b
}

// Where renders the accumulated conditions as a WHERE clause with a
// leading space, or an empty string when no condition was added.
func (b *Builder) Where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// Args returns the accumulated positional arguments in order.
func (b *Builder) Args() []interface{} {
	return b.args
}

// Empty reports whether no condition was added.
func (b *Builder) Empty() bool {
	return len(b.conds) == 0
}

// Page renders a LIMIT/OFFSET clause. Values are normalized, never
// interpolated from request strings directly.
func Page(limit, offset int) string {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
}

package storage

import (
	"strconv"
	"strings"

	"msgboard/internal/model"
)

// dialect carries the SQL spelling differences between backends.
type dialect struct {
	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string
	// ts is the quoted timestamp column; Postgres treats a bare
	// timestamp as a type keyword in expressions.
	ts string
}

var (
	postgresDialect = dialect{
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		ts:          `"timestamp"`,
	}
	mysqlDialect = dialect{
		placeholder: func(int) string { return "?" },
		ts:          "`timestamp`",
	}
	sqliteDialect = dialect{
		placeholder: func(int) string { return "?" },
		ts:          `"timestamp"`,
	}
)

// selectQuery renders the read for tr. Bounds are strict on both sides.
func (d dialect) selectQuery(tr model.TimeRange) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if tr.Before != nil {
		args = append(args, *tr.Before)
		conds = append(conds, d.ts+" < "+d.placeholder(len(args)))
	}
	if tr.After != nil {
		args = append(args, *tr.After)
		conds = append(conds, d.ts+" > "+d.placeholder(len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT username, message, ")
	b.WriteString(d.ts)
	b.WriteString(" FROM messages")
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY id ASC")
	return b.String(), args
}

func (d dialect) insertQuery() string {
	return "INSERT INTO messages (username, message) VALUES (" +
		d.placeholder(1) + ", " + d.placeholder(2) + ")"
}

func (d dialect) timestampByIDQuery() string {
	return "SELECT " + d.ts + " FROM messages WHERE id = " + d.placeholder(1)
}

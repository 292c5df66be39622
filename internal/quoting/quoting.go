// Package quoting escapes identifiers and string literals for the
// supported dialects.
package quoting

import "strings"

// Style is the character a dialect wraps identifiers in.
type Style rune

const (
	// ANSI double quotes, used by PostgreSQL and SQLite.
	ANSI Style = '"'
	// MySQL backticks.
	MySQL Style = '`'
)

// Ident quotes a table, column or CTE name. An embedded quote character is
// doubled, so any name (mixed case included) round-trips.
func (s Style) Ident(name string) string {
	q := string(s)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// String renders s as a single-quoted SQL string. Backslashes are doubled
// for MySQL, whose default mode treats them as escapes.
//
// SECURITY: inline strings are meant for printed SQL. Anything sent to a
// database should go through bind parameters.
func String(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

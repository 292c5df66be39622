// Package db opens database connections for the supported engines and runs
// compiled statements against them. It backs the ctesh command and the
// database-backed scenario tests.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/bawdo/gosbeecte/managers"
	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/visitors"
)

// Supported engine names.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

var driverName = map[string]string{
	Postgres: "pgx",
	MySQL:    "mysql",
	SQLite:   "sqlite",
}

// MaxRows caps the number of rows a Query reads.
const MaxRows = 1000

// ErrUnknownEngine is returned for engine names outside Postgres, MySQL and SQLite.
var ErrUnknownEngine = errors.New("db: unknown engine")

// Statement is anything that compiles to SQL plus bind parameters.
type Statement interface {
	ToSQL(v nodes.Visitor) (string, []any, error)
}

// Conn is an open database handle bound to the dialect visitor of its engine.
type Conn struct {
	db      *sql.DB
	dsn     string
	engine  string
	visitor nodes.Visitor
}

// ValidEngine reports whether engine names a supported engine.
func ValidEngine(engine string) bool {
	_, ok := driverName[engine]
	return ok
}

// NewVisitor returns the dialect visitor for engine. Bind parameters are
// collected when parameterize is set; otherwise literals are inlined.
func NewVisitor(engine string, parameterize bool) (nodes.Visitor, error) {
	opt := visitors.WithoutParams()
	if parameterize {
		opt = visitors.WithParams()
	}
	switch engine {
	case Postgres:
		return visitors.NewPostgresVisitor(opt), nil
	case MySQL:
		return visitors.NewMySQLVisitor(opt), nil
	case SQLite:
		return visitors.NewSQLiteVisitor(opt), nil
	default:
		return nil, errors.Wrapf(ErrUnknownEngine, "%q", engine)
	}
}

// Open connects to dsn with the driver for engine and verifies the
// connection. Statements run through the connection are always compiled
// with bind parameters.
func Open(ctx context.Context, engine, dsn string) (*Conn, error) {
	driver, ok := driverName[engine]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEngine, "%q", engine)
	}
	v, err := NewVisitor(engine, true)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	if engine == SQLite {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping")
	}
	return &Conn{db: db, dsn: dsn, engine: engine, visitor: v}, nil
}

// Close closes the underlying database.
func (c *Conn) Close() error {
	return c.db.Close()
}

// Engine returns the engine name the connection was opened with.
func (c *Conn) Engine() string { return c.engine }

// DSN returns the connection string with any password masked.
func (c *Conn) DSN() string { return SanitizeDSN(c.dsn) }

// Visitor returns the parameterizing dialect visitor for the connection.
// It is reset by every compile and must not be shared across goroutines.
func (c *Conn) Visitor() nodes.Visitor { return c.visitor }

// Exec runs a statement that returns no rows.
func (c *Conn) Exec(ctx context.Context, query string, params ...any) error {
	if _, err := c.db.ExecContext(ctx, query, params...); err != nil {
		return errors.Wrapf(err, "exec %q", query)
	}
	return nil
}

// Compile renders stmt for the connection's dialect.
func (c *Conn) Compile(stmt Statement) (string, []any, error) {
	return stmt.ToSQL(c.visitor)
}

// Run compiles stmt and reads its rows. A statement known to match nothing
// yields an empty result without touching the database.
func (c *Conn) Run(ctx context.Context, stmt Statement) (*Result, error) {
	query, params, err := c.Compile(stmt)
	if errors.Is(err, managers.ErrEmptyResultSet) {
		res := &Result{}
		if oc, ok := stmt.(interface{ OutputColumns() []string }); ok {
			res.Columns = oc.OutputColumns()
		}
		return res, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}
	return c.Query(ctx, query, params...)
}

// ExecStatement compiles stmt and executes it, returning the number of
// rows it affected.
func (c *Conn) ExecStatement(ctx context.Context, stmt Statement) (int64, error) {
	query, params, err := c.Compile(stmt)
	if err != nil {
		return 0, errors.Wrap(err, "compile")
	}
	res, err := c.db.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, errors.Wrapf(err, "exec %q", query)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	return n, nil
}

// Query runs a raw query and reads up to MaxRows rows.
func (c *Conn) Query(ctx context.Context, query string, params ...any) (*Result, error) {
	rows, err := c.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, errors.Wrapf(err, "query %q", query)
	}
	defer func() { _ = rows.Close() }()
	return readRows(rows)
}

// Tables lists the user tables of the connected database.
func (c *Conn) Tables(ctx context.Context) ([]string, error) {
	var query string
	switch c.engine {
	case Postgres:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name"
	case MySQL:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
	default:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	}
	res, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return res.Column(0), nil
}

// Result holds rows read as strings; SQL NULL reads as "NULL".
type Result struct {
	Columns   []string
	Rows      [][]string
	Truncated bool
}

// Column returns the i-th value of every row.
func (r *Result) Column(i int) []string {
	out := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		out = append(out, row[i])
	}
	return out
}

// Map returns the rows keyed by the value of the first column, mapped to the
// value of the named column.
func (r *Result) Map(column string) map[string]string {
	idx := -1
	for i, c := range r.Columns {
		if c == column {
			idx = i
		}
	}
	out := make(map[string]string, len(r.Rows))
	if idx < 0 {
		return out
	}
	for _, row := range r.Rows {
		out[row[0]] = row[idx]
	}
	return out
}

// String renders the result as an ASCII table.
func (r *Result) String() string {
	s := formatTable(r.Columns, r.Rows)
	if r.Truncated {
		s += fmt.Sprintf("(truncated at %d rows)\n", MaxRows)
	}
	return s
}

func readRows(rows *sql.Rows) (*Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "columns")
	}

	res := &Result{Columns: columns}
	for rows.Next() {
		if len(res.Rows) >= MaxRows {
			res.Truncated = true
			break
		}
		vals := make([]sql.NullString, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "scan")
		}
		row := make([]string, len(columns))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows")
	}
	return res, nil
}

func formatTable(columns []string, rows [][]string) string {
	if len(columns) == 0 {
		return "(0 rows)\n"
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	sep := buildSeparator(widths)
	b.WriteString(sep)
	writeRow(&b, columns, widths)
	b.WriteString(sep)
	for _, row := range rows {
		writeRow(&b, row, widths)
	}
	b.WriteString(sep)

	if n := len(rows); n == 1 {
		b.WriteString("(1 row)\n")
	} else {
		fmt.Fprintf(&b, "(%d rows)\n", n)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	b.WriteByte('|')
	for i, cell := range cells {
		fmt.Fprintf(b, " %-*s |", widths[i], cell)
	}
	b.WriteByte('\n')
}

func buildSeparator(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}

// SanitizeDSN masks the password in URL-style and MySQL-style DSNs.
func SanitizeDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err == nil && u.Scheme != "" && u.User != nil {
		if _, hasPass := u.User.Password(); hasPass {
			// Rebuilt by hand so the mask is not percent-encoded.
			masked := u.Scheme + "://" + u.User.Username() + ":****@" + u.Host + u.Path
			if u.RawQuery != "" {
				masked += "?" + u.RawQuery
			}
			return masked
		}
		return dsn
	}

	// user:pass@tcp(host)/db
	if at := strings.Index(dsn, "@"); at > 0 {
		userPass := dsn[:at]
		if colon := strings.Index(userPass, ":"); colon >= 0 {
			return userPass[:colon+1] + "****" + dsn[at:]
		}
	}
	return dsn
}

// Package gosbeecte builds SQL statements with common table expressions.
//
// This package re-exports the commonly used types and functions of its
// subpackages. Import them directly for the full API:
//   - github.com/bawdo/gosbeecte/cte (CTEs and the queries carrying them)
//   - github.com/bawdo/gosbeecte/managers (statement builders)
//   - github.com/bawdo/gosbeecte/nodes (AST nodes)
//   - github.com/bawdo/gosbeecte/visitors (SQL generation)
//   - github.com/bawdo/gosbeecte/plugins (query transformers)
package gosbeecte

import (
	"github.com/bawdo/gosbeecte/cte"
	"github.com/bawdo/gosbeecte/managers"
	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/visitors"
)

// --- CTE Types ---

// CTE is a named subquery attached to statements with Query.With.
type CTE = cte.CTE

// Query is a statement together with the CTEs attached to it.
type Query = cte.Query

// Body is the query a CTE is defined by.
type Body = cte.Body

// Cycle configures the CYCLE clause of a recursive CTE.
type Cycle = cte.Cycle

// --- CTE Constructors ---

// Select starts a SELECT query over from.
func Select(from nodes.Node) *cte.Query {
	return cte.Select(from)
}

// NewCTE creates a CTE from body.
func NewCTE(body cte.Body, opts ...cte.Option) *cte.CTE {
	return cte.New(body, opts...)
}

// Recursive creates a CTE whose body refers to the CTE itself.
func Recursive(build func(c *cte.CTE) (cte.Body, error), opts ...cte.Option) (*cte.CTE, error) {
	return cte.Recursive(build, opts...)
}

// Raw creates a CTE body written as SQL with "?" bind markers.
func Raw(sql string, params []any, columns ...cte.RawColumn) *cte.Raw {
	return cte.NewRaw(sql, params, columns...)
}

// --- CTE Options ---

// Named sets the CTE name.
func Named(name string) cte.Option { return cte.Named(name) }

// Materialized renders the CTE as AS MATERIALIZED.
func Materialized() cte.Option { return cte.Materialized() }

// DetectCycles adds a CYCLE clause to a recursive CTE.
func DetectCycles(cycle cte.Cycle) cte.Option { return cte.DetectCycles(cycle) }

// RenameCollisions renames colliding CTEs of the right-hand side of a set
// operation instead of failing.
func RenameCollisions() cte.CombineOption { return cte.RenameCollisions() }

// --- Errors ---

var (
	ErrNameCollision        = cte.ErrNameCollision
	ErrRecursiveNotReady    = cte.ErrRecursiveNotReady
	ErrCircularReference    = cte.ErrCircularReference
	ErrDoubleAttachment     = cte.ErrDoubleAttachment
	ErrUnsupportedStatement = cte.ErrUnsupportedStatement
	ErrEmptyResultSet       = cte.ErrEmptyResultSet
)

// --- Statement Builders ---

// NewUpdate creates an UpdateManager for the given table. Hand it to
// Query.Update to give it the query's CTEs.
func NewUpdate(table nodes.Node) *managers.UpdateManager {
	return managers.NewUpdateManager(table)
}

// NewDelete creates a DeleteManager for the given table.
func NewDelete(from nodes.Node) *managers.DeleteManager {
	return managers.NewDeleteManager(from)
}

// --- Core Nodes ---

// Table represents a SQL table reference.
type Table = nodes.Table

// Node is the base interface all AST nodes implement.
type Node = nodes.Node

// NewTable creates a table reference.
func NewTable(name string) *nodes.Table {
	return nodes.NewTable(name)
}

// NewTableWithKey creates a table reference whose primary key column is
// key. Col("pk") on a CTE over the table renders that column.
func NewTableWithKey(name, key string) *nodes.Table {
	return nodes.NewTableWithKey(name, key)
}

// Literal creates a SQL literal node.
func Literal(value any) nodes.Node {
	return nodes.Literal(value)
}

// Count creates a COUNT(expr) aggregate.
func Count(expr nodes.Node) *nodes.AggregateNode {
	return nodes.Count(expr)
}

// Sum creates a SUM(expr) aggregate.
func Sum(expr nodes.Node) *nodes.AggregateNode {
	return nodes.Sum(expr)
}

// Star creates an unqualified star (*).
func Star() *nodes.StarNode {
	return nodes.Star()
}

// --- Visitors ---

// NewSQLiteVisitor creates a SQLite visitor.
func NewSQLiteVisitor(opts ...visitors.Option) *visitors.SQLiteVisitor {
	return visitors.NewSQLiteVisitor(opts...)
}

// NewPostgresVisitor creates a PostgreSQL visitor.
func NewPostgresVisitor(opts ...visitors.Option) *visitors.PostgresVisitor {
	return visitors.NewPostgresVisitor(opts...)
}

// NewMySQLVisitor creates a MySQL visitor.
func NewMySQLVisitor(opts ...visitors.Option) *visitors.MySQLVisitor {
	return visitors.NewMySQLVisitor(opts...)
}

// WithParams makes a visitor collect bind parameters.
func WithParams() visitors.Option {
	return visitors.WithParams()
}

// WithoutParams makes a visitor render literals inline.
//
// WARNING: inlined values are escaped but not bound. Use it for debugging
// or trusted values only.
func WithoutParams() visitors.Option {
	return visitors.WithoutParams()
}

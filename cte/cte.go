// Package cte adds common table expressions to gosbee queries.
//
// A CTE wraps a query body under a name. Its columns are referenced with
// Col, it is joined into other queries with Join, selected from with
// Queryset, and rendered in front of a statement once attached with
// Query.With:
//
//	totals := cte.New(cte.Select(orders).
//		Project(orders.Col("region_id"), nodes.Sum(orders.Col("amount")).As("total")).
//		Group(orders.Col("region_id")))
//	q, err := totals.Join(cte.Select(orders), orders.Col("region_id").Eq(totals.Col("region_id")))
//	sql, params, err := q.With(totals).ToSQL(visitors.NewPostgresVisitor())
package cte

import (
	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/managers"
	"github.com/bawdo/gosbeecte/nodes"
)

// DefaultName is the name given to CTEs created without Named.
const DefaultName = "cte"

// Body is the query a CTE is defined by. *Query and *Raw implement it.
type Body interface {
	// Compiler returns a compiler rendering the body with v.
	Compiler(v nodes.Visitor, opts managers.CompileOptions) managers.Compiler

	// ResolveRef resolves an output column name to its defining expression.
	ResolveRef(name string) (nodes.Node, error)

	// OutputColumns lists the names of the body's output columns.
	OutputColumns() []string

	// RelabeledBody returns a copy with CTE relation names rewritten.
	RelabeledBody(changes map[string]string) Body
}

// CTE is a named subquery. A CTE may be attached to and joined into any
// number of statements; it is never modified once its body is set.
type CTE struct {
	name         string
	body         Body
	materialized bool
	cycle        *Cycle

	// building is set while a recursive body is being constructed, so the
	// CTE can be joined before it has a body.
	building bool
}

// Option configures a CTE.
type Option func(*CTE)

// Named sets the CTE name. The name must not clash with any other relation
// in the statements the CTE ends up in.
func Named(name string) Option {
	return func(c *CTE) {
		c.name = name
	}
}

// Materialized renders the CTE as AS MATERIALIZED.
func Materialized() Option {
	return func(c *CTE) {
		c.materialized = true
	}
}

// DetectCycles adds a CYCLE clause. Unset fields of cycle take their
// defaults (see Cycle).
func DetectCycles(cycle Cycle) Option {
	return func(c *CTE) {
		cy := cycle.withDefaults()
		c.cycle = &cy
	}
}

// New creates a CTE from body.
func New(body Body, opts ...Option) *CTE {
	c := &CTE{name: DefaultName, body: body}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Recursive creates a CTE whose body refers to the CTE itself. build is
// called with the CTE shell; it typically returns a base case combined with
// UnionAll and a recursive case that joins the shell. Columns of the shell
// can be used in expressions but cannot be resolved until build returns.
func Recursive(build func(c *CTE) (Body, error), opts ...Option) (*CTE, error) {
	c := New(nil, opts...)
	c.building = true
	body, err := build(c)
	c.building = false
	if err != nil {
		return nil, errors.Wrapf(err, "cte: building recursive CTE %q", c.name)
	}
	if body == nil {
		return nil, errors.Wrapf(ErrRecursiveNotReady, "builder of %q returned no body", c.name)
	}
	c.body = body
	return c, nil
}

// Name returns the CTE name.
func (c *CTE) Name() string { return c.name }

// Body returns the CTE body, nil while a recursive CTE is being built.
func (c *CTE) Body() Body { return c.body }

// IsMaterialized reports whether the CTE renders as AS MATERIALIZED.
func (c *CTE) IsMaterialized() bool { return c.materialized }

// Cycle returns the cycle detection settings, nil when disabled.
func (c *CTE) Cycle() *Cycle { return c.cycle }

func (c *CTE) String() string { return "<CTE " + c.name + ">" }

// Col returns a reference to an output column of the CTE, qualified by the
// CTE name. The reference is resolved against the body when rendered.
func (c *CTE) Col(name string) *nodes.CTEColumn {
	return nodes.NewCTEColumn(c, c.name, name)
}

// TypedCol is Col with an explicit output type. Use it for columns of a
// recursive CTE that must be coerced before the body exists.
func (c *CTE) TypedCol(name, typeName string) *nodes.CTEColumn {
	return c.Col(name).Typed(typeName)
}

// Table returns the relation the CTE is visible as.
func (c *CTE) Table() *nodes.Table {
	return &nodes.Table{Name: c.name, CTE: true}
}

// ResolveColumn implements nodes.ColumnSource. Cycle mark and path columns
// resolve to typed columns of the CTE itself; everything else is resolved
// against the body.
func (c *CTE) ResolveColumn(name string) (nodes.Node, error) {
	if c.body == nil {
		return nil, errors.Wrapf(ErrRecursiveNotReady,
			"cannot resolve '%s.%s' in recursive CTE setup. Hint: use TypedCol(%q, <type>)",
			c.name, name, name)
	}
	if cy := c.cycle; cy != nil {
		switch name {
		case cy.MarkColumn:
			return nodes.NewAttribute(c.Table(), name).Typed(cy.markType()), nil
		case cy.PathColumn:
			return nodes.NewAttribute(c.Table(), name).Typed(cy.PathType), nil
		}
	}
	ref, err := c.body.ResolveRef(name)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve '%s.%s'", c.name, name)
	}
	if c.refersTo(ref, name) {
		return nil, errors.Wrapf(ErrCircularReference, "%s.%s = %T", c.name, name, ref)
	}
	for _, child := range nodes.Children(ref) {
		if c.refersTo(child, name) {
			return nil, errors.Wrapf(ErrCircularReference, "%s.%s = %T", c.name, name, ref)
		}
	}
	return ref, nil
}

// refersTo reports whether n is the named column of this CTE.
func (c *CTE) refersTo(n nodes.Node, name string) bool {
	col, ok := n.(*nodes.CTEColumn)
	return ok && col.Source == nodes.ColumnSource(c) && col.Name == name
}

// Queryset returns a query selecting from the CTE. The body's output
// columns are projected as columns of the CTE. The CTE still has to be
// attached with With.
func (c *CTE) Queryset() *Query {
	m := managers.NewSelectManager(c.Table())
	var cols []string
	if c.body != nil {
		cols = c.body.OutputColumns()
	}
	if len(cols) > 0 {
		projections := make([]nodes.Node, len(cols))
		for i, name := range cols {
			projections[i] = c.Col(name)
		}
		m.Select(projections...)
	}
	return NewQuery(m)
}

// relabeled returns a copy of the CTE with its name and body relabeled.
func (c *CTE) relabeled(changes map[string]string) *CTE {
	out := *c
	if to, ok := changes[c.name]; ok {
		out.name = to
	}
	if c.body != nil {
		out.body = c.body.RelabeledBody(changes)
	}
	return &out
}

// node returns the WITH list entry for the CTE with its body already
// compiled to sql.
func (c *CTE) node(sql string) *nodes.CTENode {
	n := &nodes.CTENode{
		Name:         c.name,
		Query:        nodes.NewSqlLiteral(sql),
		Materialized: c.materialized,
	}
	if cy := c.cycle; cy != nil {
		n.Cycle = &nodes.CycleClause{
			Columns:    cy.Columns,
			MarkColumn: cy.MarkColumn,
			MarkTrue:   cy.MarkTrue,
			MarkFalse:  cy.MarkFalse,
			PathColumn: cy.PathColumn,
		}
	}
	return n
}

// Cycle configures the CYCLE clause of a recursive CTE.
//
// The path column is typed as PathType (text by default). Row-typed
// paths are not modelled, so drivers that decode the path as a composite
// array see it as text.
type Cycle struct {
	Columns    []string // tracked columns
	MarkColumn string   // default "is_cycle"
	MarkTrue   any      // default true
	MarkFalse  any      // default false
	PathColumn string   // default "path"
	PathType   string   // default "text"
}

func (cy Cycle) withDefaults() Cycle {
	if cy.MarkColumn == "" {
		cy.MarkColumn = "is_cycle"
	}
	if cy.MarkTrue == nil {
		cy.MarkTrue = true
	}
	if cy.MarkFalse == nil {
		cy.MarkFalse = false
	}
	if cy.PathColumn == "" {
		cy.PathColumn = "path"
	}
	if cy.PathType == "" {
		cy.PathType = "text"
	}
	return cy
}

func (cy Cycle) markType() string {
	if _, ok := cy.MarkTrue.(bool); ok {
		return "boolean"
	}
	return ""
}

package cte

import (
	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/managers"
	"github.com/bawdo/gosbeecte/nodes"
)

// RawColumn declares an output column of a Raw body.
type RawColumn struct {
	Name string
	Type string
}

// Raw is a CTE body written as SQL. Each "?" in SQL is replaced with the
// dialect's bind placeholder for the matching parameter (or the inlined
// value when the visitor does not parameterize). A "?" inside a quoted
// literal or identifier is left alone. Operators spelled with "?", such as
// PostgreSQL's jsonb "?" and "?|", are taken as markers; pass the
// right-hand side of such an operator through a function like
// jsonb_exists instead.
//
// Raw SQL is never relabeled, so a union that would have to rename a CTE
// read by a raw body fails with ErrNameCollision.
//
// SECURITY: SQL is rendered verbatim. Only Params are escaped or bound.
type Raw struct {
	SQL     string
	Params  []any
	Columns []RawColumn
}

// NewRaw creates a raw body with the given output columns.
func NewRaw(sql string, params []any, columns ...RawColumn) *Raw {
	return &Raw{SQL: sql, Params: params, Columns: columns}
}

// Compiler implements Body. A raw body is never elided.
func (r *Raw) Compiler(v nodes.Visitor, _ managers.CompileOptions) managers.Compiler {
	return rawCompiler{raw: r, visitor: v}
}

// ResolveRef returns a typed column with no sub-expressions for a declared
// column.
func (r *Raw) ResolveRef(name string) (nodes.Node, error) {
	for _, c := range r.Columns {
		if c.Name == name {
			return nodes.NewAttribute(nil, c.Name).Typed(c.Type), nil
		}
	}
	return nil, errors.Errorf("raw CTE has no column %q", name)
}

// OutputColumns implements Body.
func (r *Raw) OutputColumns() []string {
	cols := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		cols[i] = c.Name
	}
	return cols
}

// RelabeledBody returns r; raw SQL is not rewritten.
func (r *Raw) RelabeledBody(map[string]string) Body { return r }

type rawCompiler struct {
	raw     *Raw
	visitor nodes.Visitor
}

func (c rawCompiler) AsSQL() (string, []any, error) {
	mark := markParams(c.visitor)
	sql := (&nodes.RawQueryNode{SQL: c.raw.SQL, Binds: c.raw.Params}).Accept(c.visitor)
	if err := renderErr(c.visitor); err != nil {
		return "", nil, err
	}
	return sql, mark.since(), nil
}

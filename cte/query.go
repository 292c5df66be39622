package cte

import (
	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/managers"
	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/plugins"
)

// Query is a statement together with the CTEs attached to it. Chain methods
// return a new Query and leave the receiver untouched; the attached CTEs
// are shared between the copies.
//
// Errors found while chaining (a name collision in With or a set
// operation) are kept on the query and returned by Err, ToSQL and the
// compiler.
type Query struct {
	stmt managers.Statement
	ctes *Registry
	err  error
}

// NewQuery wraps a statement built with the managers package.
func NewQuery(stmt managers.Statement) *Query {
	return &Query{stmt: stmt, ctes: &Registry{}}
}

// Select starts a SELECT query over from.
func Select(from nodes.Node) *Query {
	return NewQuery(managers.NewSelectManager(from))
}

// Statement returns the underlying statement. It must not be modified.
func (q *Query) Statement() managers.Statement { return q.stmt }

// CTEs returns the attached CTEs in WITH order.
func (q *Query) CTEs() []*CTE { return q.ctes.CTEs() }

// Err returns the first error recorded while chaining.
func (q *Query) Err() error { return q.err }

func (q *Query) clone() *Query {
	return &Query{stmt: q.stmt.CloneStatement(), ctes: q.ctes.Clone(), err: q.err}
}

func (q *Query) fail(err error) *Query {
	out := q.clone()
	if out.err == nil {
		out.err = err
	}
	return out
}

// With attaches ctes after the ones already attached. Attaching a CTE that
// is already present moves it to the end of the WITH list.
func (q *Query) With(ctes ...*CTE) *Query {
	out := q.clone()
	if err := out.ctes.Attach(ctes...); err != nil && out.err == nil {
		out.err = err
	}
	return out
}

// Modify applies fn to a copy of the underlying SELECT. On any other
// statement kind (for example after Union) the query records an error
// instead.
func (q *Query) Modify(fn func(m *managers.SelectManager)) *Query {
	out := q.clone()
	sm, ok := out.stmt.(*managers.SelectManager)
	if !ok {
		return q.fail(errors.Errorf("cte: cannot modify a %s query as a SELECT", statementKind(q.stmt)))
	}
	fn(sm)
	return out
}

// Project sets the projection list.
func (q *Query) Project(projections ...nodes.Node) *Query {
	return q.Modify(func(m *managers.SelectManager) { m.Select(projections...) })
}

// Where appends conditions to the WHERE clause.
func (q *Query) Where(conditions ...nodes.Node) *Query {
	return q.Modify(func(m *managers.SelectManager) { m.Where(conditions...) })
}

// Group appends GROUP BY expressions.
func (q *Query) Group(columns ...nodes.Node) *Query {
	return q.Modify(func(m *managers.SelectManager) { m.Group(columns...) })
}

// Having appends HAVING conditions.
func (q *Query) Having(conditions ...nodes.Node) *Query {
	return q.Modify(func(m *managers.SelectManager) { m.Having(conditions...) })
}

// Order appends ORDER BY expressions.
func (q *Query) Order(orderings ...nodes.Node) *Query {
	return q.Modify(func(m *managers.SelectManager) { m.Order(orderings...) })
}

// Limit sets LIMIT.
func (q *Query) Limit(n int) *Query {
	return q.Modify(func(m *managers.SelectManager) { m.Limit(n) })
}

// Distinct enables DISTINCT.
func (q *Query) Distinct() *Query {
	return q.Modify(func(m *managers.SelectManager) { m.Distinct() })
}

// None marks the query as returning no rows.
func (q *Query) None() *Query {
	return q.Modify(func(m *managers.SelectManager) { m.None() })
}

// Use registers a transformer on the underlying SELECT.
func (q *Query) Use(t plugins.Transformer) *Query {
	return q.Modify(func(m *managers.SelectManager) { m.Use(t) })
}

// Explain prefixes the statement with EXPLAIN. The prefix is written in
// front of the WITH clause.
func (q *Query) Explain(options ...string) *Query {
	out := q.clone()
	e, ok := out.stmt.(managers.Explainer)
	if !ok {
		return q.fail(errors.Errorf("cte: EXPLAIN is not supported on a %s query", statementKind(q.stmt)))
	}
	e.SetExplain(&nodes.ExplainNode{Options: options})
	return out
}

// Update turns the attached CTEs over to an UPDATE statement, so the
// statement can refer to them in its SET and WHERE clauses.
func (q *Query) Update(m *managers.UpdateManager) *Query {
	return &Query{stmt: m, ctes: q.ctes.Clone(), err: q.err}
}

// Delete returns m if the query has no CTEs. DELETE statements cannot carry
// a WITH clause here, so a query with CTEs fails with
// ErrUnsupportedStatement.
func (q *Query) Delete(m *managers.DeleteManager) (*managers.DeleteManager, error) {
	if q.err != nil {
		return nil, q.err
	}
	if q.ctes.Len() > 0 {
		return nil, errors.Wrapf(ErrUnsupportedStatement, "DELETE with %d attached CTEs", q.ctes.Len())
	}
	return m, nil
}

// ToSQL renders the query with its WITH clause. The visitor is reset first.
func (q *Query) ToSQL(v nodes.Visitor) (string, []any, error) {
	if p, ok := v.(nodes.Parameterizer); ok {
		p.Reset()
	}
	return q.Compiler(v, managers.DefaultCompileOptions).AsSQL()
}

// Compiler returns the compiler for the query. It implements Body.
func (q *Query) Compiler(v nodes.Visitor, opts managers.CompileOptions) managers.Compiler {
	return &Compiler{Query: q, Visitor: v, Options: opts}
}

// Accept renders the query as a subquery, WITH clause included and empty
// results not elided. Failures are recorded on the visitor.
func (q *Query) Accept(v nodes.Visitor) string {
	sql, _, err := q.Compiler(v, managers.CompileOptions{}).AsSQL()
	if err != nil {
		if r, ok := v.(nodes.ErrorRecorder); ok {
			r.RecordError(err)
		}
	}
	return sql
}

// ResolveRef implements Body.
func (q *Query) ResolveRef(name string) (nodes.Node, error) {
	return q.stmt.ResolveRef(name)
}

// OutputColumns implements Body.
func (q *Query) OutputColumns() []string {
	return q.stmt.OutputColumns()
}

// RelabeledBody implements Body. CTEs attached to the query are relabeled
// too.
func (q *Query) RelabeledBody(changes map[string]string) Body {
	return q.relabeled(changes)
}

// RelabeledClone implements nodes.Relabeler.
func (q *Query) RelabeledClone(changes map[string]string) nodes.Node {
	return q.relabeled(changes)
}

func (q *Query) relabeled(changes map[string]string) *Query {
	out := &Query{stmt: q.stmt.Relabeled(changes), ctes: &Registry{}, err: q.err}
	for _, c := range q.ctes.ctes {
		out.ctes.ctes = append(out.ctes.ctes, c.relabeled(changes))
	}
	return out
}

// IsEmpty reports whether the statement is known to return no rows.
func (q *Query) IsEmpty() bool { return q.stmt.IsEmpty() }

func statementKind(s managers.Statement) string {
	switch s.(type) {
	case *managers.SelectManager:
		return "SELECT"
	case *managers.SetOperationManager:
		return "set operation"
	case *managers.UpdateManager:
		return "UPDATE"
	default:
		return "custom"
	}
}

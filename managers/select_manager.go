// Package managers holds the fluent statement builders. Each manager owns
// a node tree, runs its transformer pipeline on a copy of that tree, and
// renders the result with a dialect visitor:
//
//	sql, params, err := managers.NewSelectManager(orders).
//		Select(orders.Col("region_id"), nodes.Sum(orders.Col("amount")).As("total")).
//		Group(orders.Col("region_id")).
//		ToSQL(visitors.NewPostgresVisitor(visitors.WithParams()))
//
// Select, set-operation and update managers implement Statement, which is
// what the cte package attaches WITH clauses to.
package managers

import (
	"slices"

	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/plugins"
)

// SelectManager builds a SELECT around a SelectCore.
type SelectManager struct {
	treeManager
	Core *nodes.SelectCore
}

// NewSelectManager starts a query over from, which may be nil.
func NewSelectManager(from nodes.Node) *SelectManager {
	return &SelectManager{Core: &nodes.SelectCore{From: from}}
}

// Select replaces the projection list.
func (m *SelectManager) Select(projections ...nodes.Node) *SelectManager {
	m.Core.Projections = projections
	return m
}

// Project is Select.
func (m *SelectManager) Project(projections ...nodes.Node) *SelectManager {
	return m.Select(projections...)
}

// Distinct toggles SELECT DISTINCT; no argument means on.
func (m *SelectManager) Distinct(on ...bool) *SelectManager {
	m.Core.Distinct = len(on) == 0 || on[0]
	return m
}

// Where ANDs conditions onto the WHERE clause.
func (m *SelectManager) Where(conditions ...nodes.Node) *SelectManager {
	m.Core.Wheres = append(m.Core.Wheres, conditions...)
	return m
}

func (m *SelectManager) From(table nodes.Node) *SelectManager {
	m.Core.From = table
	return m
}

// Join adds a join, INNER unless a type is given, and returns a context
// whose On completes it.
func (m *SelectManager) Join(table nodes.Node, joinType ...nodes.JoinType) *JoinContext {
	jt := nodes.InnerJoin
	if len(joinType) > 0 {
		jt = joinType[0]
	}
	j := &nodes.JoinNode{Left: m.Core.From, Right: table, Type: jt}
	m.AddJoin(j)
	return &JoinContext{manager: m, join: j}
}

// OuterJoin is Join with LEFT OUTER JOIN.
func (m *SelectManager) OuterJoin(table nodes.Node) *JoinContext {
	return m.Join(table, nodes.LeftOuterJoin)
}

// CrossJoin adds a join without a condition.
func (m *SelectManager) CrossJoin(table nodes.Node) *SelectManager {
	return m.AddJoin(&nodes.JoinNode{Left: m.Core.From, Right: table, Type: nodes.CrossJoin})
}

// AddJoin appends a prepared join. CTE joins arrive this way.
func (m *SelectManager) AddJoin(join *nodes.JoinNode) *SelectManager {
	m.Core.Joins = append(m.Core.Joins, join)
	return m
}

func (m *SelectManager) Group(columns ...nodes.Node) *SelectManager {
	m.Core.Groups = append(m.Core.Groups, columns...)
	return m
}

// Having ANDs conditions onto the HAVING clause.
func (m *SelectManager) Having(conditions ...nodes.Node) *SelectManager {
	m.Core.Havings = append(m.Core.Havings, conditions...)
	return m
}

// Order appends ORDER BY terms, e.g. col.Desc().
func (m *SelectManager) Order(orderings ...nodes.Node) *SelectManager {
	m.Core.Orders = append(m.Core.Orders, orderings...)
	return m
}

func (m *SelectManager) Limit(n int) *SelectManager {
	m.Core.Limit = nodes.Literal(n)
	return m
}

func (m *SelectManager) Offset(n int) *SelectManager {
	m.Core.Offset = nodes.Literal(n)
	return m
}

// Take is Limit.
func (m *SelectManager) Take(n int) *SelectManager { return m.Limit(n) }

// None marks the query as returning no rows. ToSQL then fails with
// ErrEmptyResultSet; compilers that do not elide render "1 = 0".
func (m *SelectManager) None() *SelectManager {
	m.Core.Empty = true
	return m
}

// Explain prefixes the query with EXPLAIN and the given options.
func (m *SelectManager) Explain(options ...string) *SelectManager {
	m.Core.Explain = &nodes.ExplainNode{Options: options}
	return m
}

// Use registers a transformer, applied at render time.
func (m *SelectManager) Use(t plugins.Transformer) *SelectManager {
	m.addTransformer(t)
	return m
}

func (m *SelectManager) Union(other Statement) *SetOperationManager {
	return NewSetOperationManager(m, other, nodes.Union)
}

func (m *SelectManager) UnionAll(other Statement) *SetOperationManager {
	return NewSetOperationManager(m, other, nodes.UnionAll)
}

func (m *SelectManager) Intersect(other Statement) *SetOperationManager {
	return NewSetOperationManager(m, other, nodes.Intersect)
}

func (m *SelectManager) IntersectAll(other Statement) *SetOperationManager {
	return NewSetOperationManager(m, other, nodes.IntersectAll)
}

func (m *SelectManager) Except(other Statement) *SetOperationManager {
	return NewSetOperationManager(m, other, nodes.Except)
}

func (m *SelectManager) ExceptAll(other Statement) *SetOperationManager {
	return NewSetOperationManager(m, other, nodes.ExceptAll)
}

// render transforms a copy of the core and renders it with v.
func (m *SelectManager) render(v nodes.Visitor, opts CompileOptions) (string, error) {
	if m.Core.Empty && opts.ElideEmpty {
		return "", ErrEmptyResultSet
	}
	core, err := pipeline(m.transformers, m.CloneCore(), plugins.Transformer.TransformSelect)
	if err != nil {
		return "", err
	}
	if opts.stripAliases {
		for i, p := range core.Projections {
			if a, ok := p.(*nodes.AliasNode); ok {
				core.Projections[i] = a.Expr
			}
		}
	}
	return core.Accept(v), nil
}

// ToSQL renders the query with a freshly reset v and returns the bind
// values collected on the way.
func (m *SelectManager) ToSQL(v nodes.Visitor) (string, []any, error) {
	return toSQL(v, func(v nodes.Visitor) (string, error) {
		return m.render(v, DefaultCompileOptions)
	})
}

// Compiler implements Statement.
func (m *SelectManager) Compiler(v nodes.Visitor, opts CompileOptions) Compiler {
	return compilerFunc(func() (string, []any, error) {
		return compile(v, func(v nodes.Visitor) (string, error) {
			return m.render(v, opts)
		})
	})
}

// Accept renders the untransformed core, so a manager can stand in as a
// subquery.
func (m *SelectManager) Accept(v nodes.Visitor) string {
	return m.Core.Accept(v)
}

// As names the query for use as a derived table.
func (m *SelectManager) As(name string) *nodes.TableAlias {
	return &nodes.TableAlias{Relation: m.Core, AliasName: name}
}

// CloneCore copies the core and its clause slices; the nodes themselves
// are shared.
func (m *SelectManager) CloneCore() *nodes.SelectCore {
	c := *m.Core
	c.Projections = slices.Clone(c.Projections)
	c.Wheres = slices.Clone(c.Wheres)
	c.Joins = slices.Clone(c.Joins)
	c.Groups = slices.Clone(c.Groups)
	c.Havings = slices.Clone(c.Havings)
	c.Orders = slices.Clone(c.Orders)
	return &c
}

// Clone copies the manager; the transformer list is copied too.
func (m *SelectManager) Clone() *SelectManager {
	out := &SelectManager{Core: m.CloneCore()}
	out.transformers = slices.Clone(m.transformers)
	return out
}

func (m *SelectManager) CloneStatement() Statement { return m.Clone() }

// ResolveRef looks name up among the projections (alias names first-class)
// and falls back to the FROM relation.
func (m *SelectManager) ResolveRef(name string) (nodes.Node, error) {
	for _, p := range m.Core.Projections {
		if out, ref := outputName(p); out == name {
			return ref, nil
		}
	}
	return resolveOnRelation(m.Core.From, name)
}

// OutputColumns names the projected columns. Stars and unnamed
// expressions contribute nothing.
func (m *SelectManager) OutputColumns() []string {
	var cols []string
	for _, p := range m.Core.Projections {
		if out, _ := outputName(p); out != "" {
			cols = append(cols, out)
		}
	}
	return cols
}

// outputName is the column name a projection exposes and the expression
// behind it.
func outputName(p nodes.Node) (string, nodes.Node) {
	switch n := p.(type) {
	case *nodes.AliasNode:
		return n.Name, n.Expr
	case *nodes.Attribute:
		return n.Name, n
	case *nodes.CTEColumn:
		return n.Name, n
	}
	return "", nil
}

func (m *SelectManager) Relabeled(changes map[string]string) Statement {
	out := &SelectManager{Core: nodes.RelabeledCore(m.Core, changes)}
	out.transformers = m.transformers
	return out
}

// RelabeledClone implements nodes.Relabeler, so a manager used as a
// subquery is relabeled whole.
func (m *SelectManager) RelabeledClone(changes map[string]string) nodes.Node {
	return m.Relabeled(changes)
}

func (m *SelectManager) IsEmpty() bool { return m.Core.Empty }

func (m *SelectManager) JoinNodes() []*nodes.JoinNode { return m.Core.Joins }

func (m *SelectManager) ExplainNode() *nodes.ExplainNode { return m.Core.Explain }

// SetExplain replaces the EXPLAIN prefix; nil removes it.
func (m *SelectManager) SetExplain(e *nodes.ExplainNode) { m.Core.Explain = e }

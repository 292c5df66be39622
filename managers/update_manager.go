package managers

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/plugins"
)

// UpdateManager builds an UPDATE. It implements Statement, so CTEs can
// feed its SET values and WHERE clause.
type UpdateManager struct {
	treeManager
	Statement *nodes.UpdateStatement
}

func NewUpdateManager(table nodes.Node) *UpdateManager {
	return &UpdateManager{
		Statement: &nodes.UpdateStatement{Table: table},
	}
}

// Set appends "col = val". val may be a Go value or any node, such as a
// CTE column or a subquery.
func (m *UpdateManager) Set(col nodes.Node, val any) *UpdateManager {
	m.Statement.Assignments = append(m.Statement.Assignments, &nodes.AssignmentNode{
		Left:  col,
		Right: nodes.Literal(val),
	})
	return m
}

// Where ANDs conditions onto the WHERE clause.
func (m *UpdateManager) Where(conditions ...nodes.Node) *UpdateManager {
	m.Statement.Wheres = append(m.Statement.Wheres, conditions...)
	return m
}

func (m *UpdateManager) Returning(cols ...nodes.Node) *UpdateManager {
	m.Statement.Returning = cols
	return m
}

func (m *UpdateManager) Use(t plugins.Transformer) *UpdateManager {
	m.addTransformer(t)
	return m
}

func (m *UpdateManager) render(v nodes.Visitor) (string, error) {
	if m.Statement.Table == nil {
		return "", errors.New("update has no target table")
	}
	stmt, err := pipeline(m.transformers, m.cloneStatement(), plugins.Transformer.TransformUpdate)
	if err != nil {
		return "", err
	}
	return stmt.Accept(v), nil
}

// ToSQL renders the statement with a freshly reset v.
func (m *UpdateManager) ToSQL(v nodes.Visitor) (string, []any, error) {
	return toSQL(v, m.render)
}

// Compiler returns a compiler sharing v's parameter sequence. Updates are
// never empty, so the options have no effect.
func (m *UpdateManager) Compiler(v nodes.Visitor, _ CompileOptions) Compiler {
	return compilerFunc(func() (string, []any, error) {
		return compile(v, m.render)
	})
}

// Accept implements nodes.Node.
func (m *UpdateManager) Accept(v nodes.Visitor) string {
	return m.Statement.Accept(v)
}

// ResolveRef resolves name against the updated table.
func (m *UpdateManager) ResolveRef(name string) (nodes.Node, error) {
	return resolveOnRelation(m.Statement.Table, name)
}

// OutputColumns returns the names of RETURNING columns.
func (m *UpdateManager) OutputColumns() []string {
	var cols []string
	for _, r := range m.Statement.Returning {
		if a, ok := r.(*nodes.Attribute); ok {
			cols = append(cols, a.Name)
		}
	}
	return cols
}

// Relabeled implements Statement.
func (m *UpdateManager) Relabeled(changes map[string]string) Statement {
	stmt := &nodes.UpdateStatement{
		Table:       nodes.RelabeledClone(m.Statement.Table, changes),
		Assignments: make([]*nodes.AssignmentNode, len(m.Statement.Assignments)),
		Wheres:      make([]nodes.Node, len(m.Statement.Wheres)),
		Returning:   make([]nodes.Node, len(m.Statement.Returning)),
	}
	for i, a := range m.Statement.Assignments {
		stmt.Assignments[i] = &nodes.AssignmentNode{
			Left:  nodes.RelabeledClone(a.Left, changes),
			Right: nodes.RelabeledClone(a.Right, changes),
		}
	}
	for i, w := range m.Statement.Wheres {
		stmt.Wheres[i] = nodes.RelabeledClone(w, changes)
	}
	for i, r := range m.Statement.Returning {
		stmt.Returning[i] = nodes.RelabeledClone(r, changes)
	}
	out := &UpdateManager{Statement: stmt}
	out.transformers = m.transformers
	return out
}

// CloneStatement implements Statement.
func (m *UpdateManager) CloneStatement() Statement {
	out := &UpdateManager{Statement: m.cloneStatement()}
	out.transformers = slices.Clone(m.transformers)
	return out
}

// IsEmpty is always false for updates.
func (m *UpdateManager) IsEmpty() bool { return false }

// JoinNodes returns nil; UPDATE has no join graph.
func (m *UpdateManager) JoinNodes() []*nodes.JoinNode { return nil }

func (m *UpdateManager) cloneStatement() *nodes.UpdateStatement {
	stmt := *m.Statement
	stmt.Assignments = slices.Clone(stmt.Assignments)
	stmt.Wheres = slices.Clone(stmt.Wheres)
	stmt.Returning = slices.Clone(stmt.Returning)
	return &stmt
}

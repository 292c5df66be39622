package managers

import "github.com/bawdo/gosbeecte/nodes"

// SetOperationManager combines two statements with UNION, INTERSECT or
// EXCEPT. Branches that are known to be empty are dropped where the
// operation allows it.
type SetOperationManager struct {
	Left    Statement
	Right   Statement
	Type    nodes.SetOpType
	explain *nodes.ExplainNode
}

// NewSetOperationManager creates a set operation over left and right.
func NewSetOperationManager(left, right Statement, op nodes.SetOpType) *SetOperationManager {
	return &SetOperationManager{Left: left, Right: right, Type: op}
}

// Union chains another UNION onto the combined statement.
func (m *SetOperationManager) Union(other Statement) *SetOperationManager {
	return NewSetOperationManager(m, other, nodes.Union)
}

// UnionAll chains another UNION ALL onto the combined statement.
func (m *SetOperationManager) UnionAll(other Statement) *SetOperationManager {
	return NewSetOperationManager(m, other, nodes.UnionAll)
}

// Explain prefixes the combined statement with EXPLAIN.
func (m *SetOperationManager) Explain(options ...string) *SetOperationManager {
	m.explain = &nodes.ExplainNode{Options: options}
	return m
}

// Accept renders both branches without eliding empty ones, so the manager
// can be embedded as a subquery.
func (m *SetOperationManager) Accept(v nodes.Visitor) string {
	op := &nodes.SetOperationNode{Left: m.Left, Right: m.Right, Type: m.Type}
	if m.explain != nil {
		return m.explain.Accept(v) + " " + op.Accept(v)
	}
	return op.Accept(v)
}

// ToSQL generates SQL with parameters.
func (m *SetOperationManager) ToSQL(v nodes.Visitor) (string, []any, error) {
	return toSQL(v, func(v nodes.Visitor) (string, error) {
		return m.render(v, DefaultCompileOptions)
	})
}

// Compiler returns a compiler for the combined statement.
func (m *SetOperationManager) Compiler(v nodes.Visitor, opts CompileOptions) Compiler {
	return compilerFunc(func() (string, []any, error) {
		return compile(v, func(v nodes.Visitor) (string, error) {
			return m.render(v, opts)
		})
	})
}

func (m *SetOperationManager) render(v nodes.Visitor, opts CompileOptions) (string, error) {
	if opts.ElideEmpty {
		switch keep := m.survivor(); {
		case keep == nil && m.IsEmpty():
			return "", ErrEmptyResultSet
		case keep != nil:
			sql, _, err := keep.Compiler(v, m.leftOptions(opts)).AsSQL()
			return sql, err
		}
	}

	left, _, err := m.Left.Compiler(v, m.leftOptions(opts)).AsSQL()
	if err != nil {
		return "", err
	}
	right, _, err := m.Right.Compiler(v, m.rightOptions(opts)).AsSQL()
	if err != nil {
		return "", err
	}
	op := &nodes.SetOperationNode{
		Left:  nodes.NewSqlLiteral(left),
		Right: nodes.NewSqlLiteral(right),
		Type:  m.Type,
	}
	if m.explain != nil {
		return m.explain.Accept(v) + " " + op.Accept(v), nil
	}
	return op.Accept(v), nil
}

// survivor returns the single branch left over when the other one is empty
// and the operation lets it be dropped. It returns nil when both branches
// must be rendered or the whole operation is empty.
func (m *SetOperationManager) survivor() Statement {
	l, r := m.Left.IsEmpty(), m.Right.IsEmpty()
	switch m.Type {
	case nodes.Union, nodes.UnionAll:
		if l && !r {
			return m.Right
		}
		if r && !l {
			return m.Left
		}
	case nodes.Except, nodes.ExceptAll:
		if r && !l {
			return m.Left
		}
	}
	return nil
}

// leftOptions keeps the leftmost aliases unless this operation is itself
// an inner branch. Branches reached here are never empty while eliding, so
// passing ElideEmpty down only lets nested operations drop their own
// empty branches.
func (m *SetOperationManager) leftOptions(opts CompileOptions) CompileOptions {
	return CompileOptions{
		ElideEmpty:         opts.ElideEmpty,
		StripBranchAliases: opts.StripBranchAliases,
		stripAliases:       opts.stripAliases,
	}
}

func (m *SetOperationManager) rightOptions(opts CompileOptions) CompileOptions {
	return CompileOptions{
		ElideEmpty:         opts.ElideEmpty,
		StripBranchAliases: opts.StripBranchAliases,
		stripAliases:       opts.stripAliases || opts.StripBranchAliases,
	}
}

// IsEmpty applies the set semantics of the operation to the branches.
func (m *SetOperationManager) IsEmpty() bool {
	l, r := m.Left.IsEmpty(), m.Right.IsEmpty()
	switch m.Type {
	case nodes.Intersect, nodes.IntersectAll:
		return l || r
	case nodes.Except, nodes.ExceptAll:
		return l
	default:
		return l && r
	}
}

// ResolveRef resolves against the leftmost branch, which names the columns.
func (m *SetOperationManager) ResolveRef(name string) (nodes.Node, error) {
	return m.Left.ResolveRef(name)
}

// OutputColumns returns the leftmost branch's columns.
func (m *SetOperationManager) OutputColumns() []string {
	return m.Left.OutputColumns()
}

// Relabeled implements Statement.
func (m *SetOperationManager) Relabeled(changes map[string]string) Statement {
	return &SetOperationManager{
		Left:    m.Left.Relabeled(changes),
		Right:   m.Right.Relabeled(changes),
		Type:    m.Type,
		explain: m.explain,
	}
}

// RelabeledClone implements nodes.Relabeler.
func (m *SetOperationManager) RelabeledClone(changes map[string]string) nodes.Node {
	return m.Relabeled(changes)
}

// CloneStatement implements Statement.
func (m *SetOperationManager) CloneStatement() Statement {
	return &SetOperationManager{
		Left:    m.Left.CloneStatement(),
		Right:   m.Right.CloneStatement(),
		Type:    m.Type,
		explain: m.explain,
	}
}

// JoinNodes returns the joins of both branches.
func (m *SetOperationManager) JoinNodes() []*nodes.JoinNode {
	out := append([]*nodes.JoinNode(nil), m.Left.JoinNodes()...)
	return append(out, m.Right.JoinNodes()...)
}

// ExplainNode returns the EXPLAIN prefix, if any.
func (m *SetOperationManager) ExplainNode() *nodes.ExplainNode { return m.explain }

// SetExplain replaces the EXPLAIN prefix; nil removes it.
func (m *SetOperationManager) SetExplain(e *nodes.ExplainNode) { m.explain = e }

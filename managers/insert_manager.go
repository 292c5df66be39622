package managers

import (
	"slices"

	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/plugins"
)

// InsertManager builds a multi-row INSERT ... VALUES. The fixture loader
// and the shell's seed command use it.
type InsertManager struct {
	treeManager
	Statement *nodes.InsertStatement
}

func NewInsertManager(into nodes.Node) *InsertManager {
	return &InsertManager{Statement: &nodes.InsertStatement{Into: into}}
}

// Columns replaces the target column list.
func (m *InsertManager) Columns(cols ...nodes.Node) *InsertManager {
	m.Statement.Columns = cols
	return m
}

// Values appends one row. Go values are wrapped with nodes.Literal.
func (m *InsertManager) Values(vals ...any) *InsertManager {
	row := make([]nodes.Node, len(vals))
	for i, v := range vals {
		row[i] = nodes.Literal(v)
	}
	m.Statement.Values = append(m.Statement.Values, row)
	return m
}

func (m *InsertManager) Use(t plugins.Transformer) *InsertManager {
	m.addTransformer(t)
	return m
}

// ToSQL renders the statement with a freshly reset v.
func (m *InsertManager) ToSQL(v nodes.Visitor) (string, []any, error) {
	return toSQL(v, func(v nodes.Visitor) (string, error) {
		stmt := *m.Statement
		stmt.Columns = slices.Clone(stmt.Columns)
		stmt.Values = make([][]nodes.Node, len(m.Statement.Values))
		for i, row := range m.Statement.Values {
			stmt.Values[i] = slices.Clone(row)
		}
		out, err := pipeline(m.transformers, &stmt, plugins.Transformer.TransformInsert)
		if err != nil {
			return "", err
		}
		return out.Accept(v), nil
	})
}

package managers

import (
	"slices"

	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/plugins"
)

// DeleteManager builds a DELETE. It is not a Statement: DELETE cannot
// carry a WITH clause here.
type DeleteManager struct {
	treeManager
	Statement *nodes.DeleteStatement
}

func NewDeleteManager(from nodes.Node) *DeleteManager {
	return &DeleteManager{Statement: &nodes.DeleteStatement{From: from}}
}

// Where ANDs conditions onto the WHERE clause.
func (m *DeleteManager) Where(conditions ...nodes.Node) *DeleteManager {
	m.Statement.Wheres = append(m.Statement.Wheres, conditions...)
	return m
}

func (m *DeleteManager) Returning(cols ...nodes.Node) *DeleteManager {
	m.Statement.Returning = cols
	return m
}

func (m *DeleteManager) Use(t plugins.Transformer) *DeleteManager {
	m.addTransformer(t)
	return m
}

// ToSQL renders the statement with a freshly reset v.
func (m *DeleteManager) ToSQL(v nodes.Visitor) (string, []any, error) {
	return toSQL(v, func(v nodes.Visitor) (string, error) {
		stmt := *m.Statement
		stmt.Wheres = slices.Clone(stmt.Wheres)
		stmt.Returning = slices.Clone(stmt.Returning)
		out, err := pipeline(m.transformers, &stmt, plugins.Transformer.TransformDelete)
		if err != nil {
			return "", err
		}
		return out.Accept(v), nil
	})
}

package managers

import (
	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/plugins"
)

// treeManager carries the transformer pipeline every manager runs on a
// copy of its tree before rendering.
type treeManager struct {
	transformers []plugins.Transformer
}

func (tm *treeManager) addTransformer(t plugins.Transformer) {
	tm.transformers = append(tm.transformers, t)
}

// Transformers returns the registered pipeline in registration order.
func (tm *treeManager) Transformers() []plugins.Transformer {
	return tm.transformers
}

// pipeline runs stmt through each transformer's hook in turn, stopping at
// the first error.
func pipeline[T any](ts []plugins.Transformer, stmt T, hook func(plugins.Transformer, T) (T, error)) (T, error) {
	for _, t := range ts {
		var err error
		if stmt, err = hook(t, stmt); err != nil {
			return stmt, err
		}
	}
	return stmt, nil
}

// toSQL resets v and compiles a whole statement with it.
func toSQL(v nodes.Visitor, generate func(nodes.Visitor) (string, error)) (string, []any, error) {
	if p, ok := v.(nodes.Parameterizer); ok {
		p.Reset()
	}
	return compile(v, generate)
}

// resolveOnRelation resolves a column name against a FROM relation. "pk"
// maps to the primary key of a table, seen directly or through an alias,
// when one is declared.
func resolveOnRelation(rel nodes.Node, name string) (nodes.Node, error) {
	if rel == nil {
		return nil, errors.Errorf("cannot resolve %q: statement has no FROM relation", name)
	}
	if name != "pk" {
		return nodes.NewAttribute(rel, name), nil
	}
	switch r := rel.(type) {
	case *nodes.Table:
		if r.PrimaryKey != "" {
			return r.Col(r.PrimaryKey), nil
		}
	case *nodes.TableAlias:
		if t, ok := r.Relation.(*nodes.Table); ok && t.PrimaryKey != "" {
			return r.Col(t.PrimaryKey), nil
		}
	}
	return nodes.NewAttribute(rel, name), nil
}

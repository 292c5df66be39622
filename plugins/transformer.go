// Package plugins defines Transformer, the hook managers run on a copy of
// their tree just before rendering.
package plugins

import "github.com/bawdo/gosbeecte/nodes"

// Transformer rewrites a statement before it is rendered. Managers pass a
// copy whose clause slices may be appended to freely; the returned value
// is what gets rendered. An error aborts the render.
//
// Transformers registered on a CTE body run when the WITH clause is
// compiled, so a filter on the body narrows the rows the CTE exposes.
type Transformer interface {
	TransformSelect(core *nodes.SelectCore) (*nodes.SelectCore, error)
	TransformInsert(stmt *nodes.InsertStatement) (*nodes.InsertStatement, error)
	TransformUpdate(stmt *nodes.UpdateStatement) (*nodes.UpdateStatement, error)
	TransformDelete(stmt *nodes.DeleteStatement) (*nodes.DeleteStatement, error)
}

// BaseTransformer passes every statement through unchanged. Embed it and
// override the hooks you need.
type BaseTransformer struct{}

func (BaseTransformer) TransformSelect(c *nodes.SelectCore) (*nodes.SelectCore, error) {
	return c, nil
}

func (BaseTransformer) TransformInsert(s *nodes.InsertStatement) (*nodes.InsertStatement, error) {
	return s, nil
}

func (BaseTransformer) TransformUpdate(s *nodes.UpdateStatement) (*nodes.UpdateStatement, error) {
	return s, nil
}

func (BaseTransformer) TransformDelete(s *nodes.DeleteStatement) (*nodes.DeleteStatement, error) {
	return s, nil
}

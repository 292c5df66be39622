package cte

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/managers"
	"github.com/bawdo/gosbeecte/nodes"
)

// JoinClause describes the join of a CTE into a query.
type JoinClause struct {
	ParentAlias string // relation the CTE is joined to
	TableName   string // CTE name
	TableAlias  string // name the CTE is visible under, TableName unless aliased
	On          nodes.Node
	Type        nodes.JoinType // InnerJoin or LeftOuterJoin
	Nullable    bool           // CTE columns may be NULL in the result
}

// Equal reports whether two joins can be used interchangeably: same table,
// parent, join type and ON condition.
func (j *JoinClause) Equal(other *JoinClause) bool {
	if j == nil || other == nil {
		return j == other
	}
	return j.TableName == other.TableName &&
		j.ParentAlias == other.ParentAlias &&
		j.Type == other.Type &&
		reflect.DeepEqual(j.On, other.On)
}

// Node returns the join node for a query whose FROM relation is parent.
func (j *JoinClause) Node(parent nodes.Node) *nodes.JoinNode {
	var right nodes.Node = &nodes.Table{Name: j.TableName, CTE: true}
	if j.TableAlias != "" && j.TableAlias != j.TableName {
		right = &nodes.TableAlias{Relation: right, AliasName: j.TableAlias}
	}
	return &nodes.JoinNode{Left: parent, Right: right, Type: j.Type, On: j.On}
}

// joinClauseOf rebuilds the clause of an existing join of a CTE table.
// ok is false for joins of anything else.
func joinClauseOf(j *nodes.JoinNode) (jc *JoinClause, ok bool) {
	var tbl *nodes.Table
	alias := ""
	switch r := j.Right.(type) {
	case *nodes.Table:
		tbl = r
		alias = r.Name
	case *nodes.TableAlias:
		tbl, _ = r.Relation.(*nodes.Table)
		alias = r.AliasName
	}
	if tbl == nil || !tbl.CTE {
		return nil, false
	}
	return &JoinClause{
		ParentAlias: nodes.RelationName(j.Left),
		TableName:   tbl.Name,
		TableAlias:  alias,
		On:          j.On,
		Type:        j.Type,
		Nullable:    j.Type != nodes.InnerJoin,
	}, true
}

// Join adds an INNER JOIN of the CTE to target. The conditions are combined
// with AND into the ON clause; they usually compare target columns with
// columns from Col. The CTE is not attached; call With on the result (or on
// a query combining it) for the WITH clause.
func (c *CTE) Join(target *Query, conditions ...nodes.Node) (*Query, error) {
	return c.JoinAs(target, nodes.InnerJoin, conditions...)
}

// LeftJoin is Join with LEFT OUTER JOIN, keeping target rows that have no
// matching CTE row.
func (c *CTE) LeftJoin(target *Query, conditions ...nodes.Node) (*Query, error) {
	return c.JoinAs(target, nodes.LeftOuterJoin, conditions...)
}

// JoinAs joins the CTE into target with the given join type. If target
// already has an identical join it is reused; any other relation named
// like the CTE is a name collision. When the CTE detects cycles and target
// has an explicit projection list, the cycle mark and path columns are
// appended to it.
func (c *CTE) JoinAs(target *Query, joinType nodes.JoinType, conditions ...nodes.Node) (*Query, error) {
	if c.body == nil && !c.building {
		return nil, errors.Wrapf(ErrRecursiveNotReady, "cannot join %q before its body is built", c.name)
	}
	if joinType != nodes.InnerJoin && joinType != nodes.LeftOuterJoin {
		return nil, errors.Errorf("cte: unsupported join type %s for %q", joinType, c.name)
	}
	if len(conditions) == 0 {
		return nil, errors.Errorf("cte: join of %q needs at least one condition", c.name)
	}
	if target.err != nil {
		return target, target.err
	}
	out := target.clone()
	sm, ok := out.stmt.(*managers.SelectManager)
	if !ok {
		return nil, errors.Errorf("cte: cannot join %q into %T", c.name, target.stmt)
	}

	from := sm.Core.From
	if nodes.RelationName(from) == c.name {
		return nil, errors.Wrapf(ErrNameCollision, "%q is the FROM relation of the target query", c.name)
	}
	jc := &JoinClause{
		ParentAlias: nodes.RelationName(from),
		TableName:   c.name,
		TableAlias:  c.name,
		On:          nodes.And(conditions...),
		Type:        joinType,
		Nullable:    joinType != nodes.InnerJoin,
	}
	for _, j := range sm.Core.Joins {
		if nodes.RelationName(j.Right) != c.name {
			continue
		}
		if existing, ok := joinClauseOf(j); ok && existing.Equal(jc) {
			return out, nil
		}
		return nil, errors.Wrapf(ErrNameCollision, "target query already joins a relation named %q", c.name)
	}
	sm.AddJoin(jc.Node(from))

	if cy := c.cycle; cy != nil && len(sm.Core.Projections) > 0 {
		sm.Select(append(sm.Core.Projections, c.Col(cy.MarkColumn), c.Col(cy.PathColumn))...)
	}
	return out, nil
}

package cte

import (
	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/managers"
	"github.com/bawdo/gosbeecte/nodes"
)

// CombineOption configures a set operation between queries.
type CombineOption func(*combineConfig)

type combineConfig struct {
	rename bool
}

// RenameCollisions resolves CTE name collisions between the two sides of a
// set operation by renaming the right-hand CTE (name_2, name_3, ...) and
// relabeling every reference to it on the right-hand side. Without it a
// collision is an ErrNameCollision.
func RenameCollisions() CombineOption {
	return func(c *combineConfig) {
		c.rename = true
	}
}

// Union combines the queries with UNION.
func (q *Query) Union(other *Query, opts ...CombineOption) *Query {
	return q.setOp(other, nodes.Union, opts)
}

// UnionAll combines the queries with UNION ALL.
func (q *Query) UnionAll(other *Query, opts ...CombineOption) *Query {
	return q.setOp(other, nodes.UnionAll, opts)
}

// Intersect combines the queries with INTERSECT.
func (q *Query) Intersect(other *Query, opts ...CombineOption) *Query {
	return q.setOp(other, nodes.Intersect, opts)
}

// IntersectAll combines the queries with INTERSECT ALL.
func (q *Query) IntersectAll(other *Query, opts ...CombineOption) *Query {
	return q.setOp(other, nodes.IntersectAll, opts)
}

// Except combines the queries with EXCEPT.
func (q *Query) Except(other *Query, opts ...CombineOption) *Query {
	return q.setOp(other, nodes.Except, opts)
}

// ExceptAll combines the queries with EXCEPT ALL.
func (q *Query) ExceptAll(other *Query, opts ...CombineOption) *Query {
	return q.setOp(other, nodes.ExceptAll, opts)
}

// setOp hoists the CTEs of both branches onto the combined query; the
// branches themselves are rendered without a WITH clause.
func (q *Query) setOp(other *Query, op nodes.SetOpType, opts []CombineOption) *Query {
	if q.err != nil {
		return q
	}
	if other.err != nil {
		return q.fail(other.err)
	}
	var cfg combineConfig
	for _, o := range opts {
		o(&cfg)
	}

	ctes := q.ctes.Clone()
	changes, err := ctes.MergeFrom(other.ctes, cfg.rename)
	if err != nil {
		return q.fail(errors.Wrapf(err, "%s", op))
	}
	right := other.stmt
	if len(changes) > 0 {
		right = right.Relabeled(changes)
	}
	return &Query{
		stmt: managers.NewSetOperationManager(q.stmt.CloneStatement(), right.CloneStatement(), op),
		ctes: ctes,
	}
}

// Connector joins the filters of two queries in Combine.
type Connector int

const (
	ConnectAnd Connector = iota
	ConnectOr
)

// Combine merges the WHERE clauses of two SELECTs over the same relation
// with AND or OR, keeping the projection of q and adding the joins of other
// that q does not already have. If only one side has CTEs the result takes
// them; if both do, Combine fails with ErrDoubleAttachment. Use a set
// operation to merge queries that both carry CTEs.
func (q *Query) Combine(other *Query, connector Connector) *Query {
	if q.err != nil {
		return q
	}
	if other.err != nil {
		return q.fail(other.err)
	}
	if q.ctes.Len() > 0 && other.ctes.Len() > 0 {
		return q.fail(errors.WithStack(ErrDoubleAttachment))
	}
	left, lok := q.stmt.(*managers.SelectManager)
	right, rok := other.stmt.(*managers.SelectManager)
	if !lok || !rok {
		return q.fail(errors.Errorf("cte: cannot combine a %s query with a %s query",
			statementKind(q.stmt), statementKind(other.stmt)))
	}
	if nodes.TableSourceName(left.Core.From) != nodes.TableSourceName(right.Core.From) {
		return q.fail(errors.Errorf("cte: cannot combine queries over %q and %q",
			nodes.TableSourceName(left.Core.From), nodes.TableSourceName(right.Core.From)))
	}

	out := q.clone()
	if other.ctes.Len() > 0 {
		out.ctes = other.ctes.Clone()
	}
	sm := out.stmt.(*managers.SelectManager)
	for _, j := range right.Core.Joins {
		if !hasJoin(sm.Core.Joins, j) {
			sm.AddJoin(j)
		}
	}

	l, r := nodes.And(left.Core.Wheres...), nodes.And(right.Core.Wheres...)
	switch {
	case l == nil || r == nil:
		// One side is unfiltered: OR matches every row, AND keeps the
		// other side's filter.
		if connector == ConnectOr {
			sm.Core.Wheres = nil
		} else if l == nil {
			sm.Core.Wheres = append([]nodes.Node(nil), right.Core.Wheres...)
		}
	case connector == ConnectOr:
		sm.Core.Wheres = []nodes.Node{nodes.NewGroupingNode(nodes.NewOrNode(
			nodes.NewGroupingNode(l), nodes.NewGroupingNode(r)))}
	default:
		sm.Core.Wheres = append(sm.Core.Wheres, right.Core.Wheres...)
	}
	return out
}

func hasJoin(joins []*nodes.JoinNode, j *nodes.JoinNode) bool {
	for _, existing := range joins {
		if existing == j {
			return true
		}
		a, aok := joinClauseOf(existing)
		b, bok := joinClauseOf(j)
		if aok && bok && a.Equal(b) {
			return true
		}
	}
	return false
}

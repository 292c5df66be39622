package managers

import "github.com/bawdo/gosbeecte/nodes"

// JoinContext is a join waiting for its condition.
type JoinContext struct {
	manager *SelectManager
	join    *nodes.JoinNode
}

// On sets the join condition and hands back the query.
func (jc *JoinContext) On(condition nodes.Node) *SelectManager {
	jc.join.On = condition
	return jc.manager
}

// Using joins on equality of the named columns, present on both sides.
// A column named "pk" resolves to each side's primary key.
func (jc *JoinContext) Using(columns ...string) *SelectManager {
	var conds []nodes.Node
	for _, name := range columns {
		left, lerr := resolveOnRelation(jc.join.Left, name)
		right, rerr := resolveOnRelation(jc.join.Right, name)
		if lerr != nil || rerr != nil {
			continue
		}
		conds = append(conds, nodes.NewComparisonNode(left, right, nodes.OpEq))
	}
	return jc.On(nodes.And(conds...))
}

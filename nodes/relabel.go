package nodes

// RelabeledClone returns a copy of n with every reference to a CTE named in
// changes (old name to new name) renamed. Stored tables keep their names
// even when one matches a key. The input is never mutated.
func RelabeledClone(n Node, changes map[string]string) Node {
	if n == nil || len(changes) == 0 {
		return n
	}
	if r, ok := n.(Relabeler); ok {
		return r.RelabeledClone(changes)
	}
	re := func(child Node) Node { return RelabeledClone(child, changes) }

	switch v := n.(type) {
	case *Table:
		if to, ok := changes[v.Name]; ok && v.CTE {
			return &Table{Name: to, PrimaryKey: v.PrimaryKey, CTE: true}
		}
		return v
	case *TableAlias:
		alias := v.AliasName
		if to, ok := changes[alias]; ok {
			alias = to
		}
		return &TableAlias{Relation: re(v.Relation), AliasName: alias}
	case *StarNode:
		if v.Table == nil {
			return v
		}
		return &StarNode{Table: re(v.Table).(*Table)}
	case *Attribute:
		c := NewAttribute(re(v.Relation), v.Name)
		c.TypeName = v.TypeName
		return c
	case *CTEColumn:
		to, ok := changes[v.Relation]
		if !ok {
			return v
		}
		c := NewCTEColumn(v.Source, to, v.Name)
		c.TypeName = v.TypeName
		return c

	case *ComparisonNode:
		return NewComparisonNode(re(v.Left), re(v.Right), v.Op)
	case *UnaryNode:
		return NewUnaryNode(re(v.Expr), v.Op)
	case *AndNode:
		return NewAndNode(re(v.Left), re(v.Right))
	case *OrNode:
		return NewOrNode(re(v.Left), re(v.Right))
	case *NotNode:
		return NewNotNode(re(v.Expr))
	case *GroupingNode:
		return NewGroupingNode(re(v.Expr))
	case *InNode:
		return NewInNode(re(v.Expr), relabelAll(v.Vals, changes), v.Negate)
	case *BetweenNode:
		return NewBetweenNode(re(v.Expr), re(v.Low), re(v.High), v.Negate)
	case *ExistsNode:
		c := Exists(re(v.Subquery))
		c.Negated = v.Negated
		return c

	case *InfixNode:
		return NewInfixNode(re(v.Left), re(v.Right), v.Op)
	case *AliasNode:
		return NewAliasNode(re(v.Expr), v.Name)
	case *OrderingNode:
		c := NewOrderingNode(re(v.Expr), v.Direction)
		c.Nulls = v.Nulls
		return c
	case *AggregateNode:
		c := NewAggregateNode(v.Func, re(v.Expr))
		c.Distinct = v.Distinct
		c.Filter = re(v.Filter)
		return c
	case *NamedFunctionNode:
		c := NewNamedFunction(v.Name, relabelAll(v.Args, changes)...)
		c.Distinct = v.Distinct
		return c
	case *WindowFuncNode:
		return &WindowFuncNode{Func: v.Func, Args: relabelAll(v.Args, changes)}
	case *OverNode:
		var w *WindowDefinition
		if v.Window != nil {
			w = &WindowDefinition{
				PartitionBy: relabelAll(v.Window.PartitionBy, changes),
				OrderBy:     relabelAll(v.Window.OrderBy, changes),
			}
		}
		return NewOverNode(re(v.Expr), w)

	case *JoinNode:
		return relabelJoin(v, changes)
	case *SetOperationNode:
		return &SetOperationNode{Left: re(v.Left), Right: re(v.Right), Type: v.Type}
	case *SelectCore:
		return RelabeledCore(v, changes)
	case *CTENode:
		c := *v
		if to, ok := changes[v.Name]; ok {
			c.Name = to
		}
		c.Query = re(v.Query)
		return &c
	}
	// Literals, binds, casts and raw SQL name no relations.
	return n
}

// RelabeledCore is RelabeledClone for a SelectCore.
func RelabeledCore(core *SelectCore, changes map[string]string) *SelectCore {
	out := *core
	out.From = RelabeledClone(core.From, changes)
	out.Projections = relabelAll(core.Projections, changes)
	out.Wheres = relabelAll(core.Wheres, changes)
	out.Joins = make([]*JoinNode, len(core.Joins))
	for i, j := range core.Joins {
		out.Joins[i] = relabelJoin(j, changes)
	}
	out.Groups = relabelAll(core.Groups, changes)
	out.Havings = relabelAll(core.Havings, changes)
	out.Orders = relabelAll(core.Orders, changes)
	return &out
}

func relabelJoin(j *JoinNode, changes map[string]string) *JoinNode {
	return &JoinNode{
		Left:  RelabeledClone(j.Left, changes),
		Right: RelabeledClone(j.Right, changes),
		Type:  j.Type,
		On:    RelabeledClone(j.On, changes),
	}
}

func relabelAll(in []Node, changes map[string]string) []Node {
	if in == nil {
		return nil
	}
	out := make([]Node, len(in))
	for i, n := range in {
		out[i] = RelabeledClone(n, changes)
	}
	return out
}

// Children returns the operands of an expression node. Leaves and
// statements have none.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *ComparisonNode:
		return []Node{v.Left, v.Right}
	case *AndNode:
		return []Node{v.Left, v.Right}
	case *OrNode:
		return []Node{v.Left, v.Right}
	case *InfixNode:
		return []Node{v.Left, v.Right}
	case *UnaryNode:
		return []Node{v.Expr}
	case *NotNode:
		return []Node{v.Expr}
	case *GroupingNode:
		return []Node{v.Expr}
	case *AliasNode:
		return []Node{v.Expr}
	case *OrderingNode:
		return []Node{v.Expr}
	case *OverNode:
		return []Node{v.Expr}
	case *InNode:
		return append([]Node{v.Expr}, v.Vals...)
	case *BetweenNode:
		return []Node{v.Expr, v.Low, v.High}
	case *AggregateNode:
		if v.Expr != nil {
			return []Node{v.Expr}
		}
	case *NamedFunctionNode:
		return v.Args
	case *WindowFuncNode:
		return v.Args
	}
	return nil
}

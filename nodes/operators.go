package nodes

// operand gives an expression node the full operator set. Constructors
// call bind so the operators use the node as their left-hand side.
type operand struct {
	Predications
	Arithmetics
	Combinable
}

func (o *operand) bind(self Node) {
	o.Predications.self = self
	o.Arithmetics.self = self
	o.Combinable.self = self
}

// Predications builds conditions with the embedding node on the left.
type Predications struct {
	self Node
}

func (p Predications) compare(op ComparisonOp, val any) *ComparisonNode {
	return NewComparisonNode(p.self, Literal(val), op)
}

// Eq renders "self = val".
func (p Predications) Eq(val any) *ComparisonNode { return p.compare(OpEq, val) }

// NotEq renders "self != val".
func (p Predications) NotEq(val any) *ComparisonNode { return p.compare(OpNotEq, val) }

func (p Predications) Gt(val any) *ComparisonNode   { return p.compare(OpGt, val) }
func (p Predications) GtEq(val any) *ComparisonNode { return p.compare(OpGtEq, val) }
func (p Predications) Lt(val any) *ComparisonNode   { return p.compare(OpLt, val) }
func (p Predications) LtEq(val any) *ComparisonNode { return p.compare(OpLtEq, val) }

// Like matches a pattern; val is bound like any other literal.
func (p Predications) Like(val any) *ComparisonNode    { return p.compare(OpLike, val) }
func (p Predications) NotLike(val any) *ComparisonNode { return p.compare(OpNotLike, val) }

// In renders "self IN (...)". A single query argument becomes a subquery:
//
//	orders.Col("region_id").In(totals.Queryset().Project(totals.Col("region_id")))
func (p Predications) In(vals ...any) *InNode { return NewInNode(p.self, literals(vals), false) }

// NotIn is the negated form of In.
func (p Predications) NotIn(vals ...any) *InNode { return NewInNode(p.self, literals(vals), true) }

// Between renders "self BETWEEN low AND high".
func (p Predications) Between(low, high any) *BetweenNode {
	return NewBetweenNode(p.self, Literal(low), Literal(high), false)
}

// NotBetween is the negated form of Between.
func (p Predications) NotBetween(low, high any) *BetweenNode {
	return NewBetweenNode(p.self, Literal(low), Literal(high), true)
}

func (p Predications) IsNull() *UnaryNode    { return NewUnaryNode(p.self, OpIsNull) }
func (p Predications) IsNotNull() *UnaryNode { return NewUnaryNode(p.self, OpIsNotNull) }

// As names the expression in a projection list.
func (p Predications) As(name string) *AliasNode { return NewAliasNode(p.self, name) }

func (p Predications) Asc() *OrderingNode  { return NewOrderingNode(p.self, Asc) }
func (p Predications) Desc() *OrderingNode { return NewOrderingNode(p.self, Desc) }

func literals(vals []any) []Node {
	out := make([]Node, len(vals))
	for i, v := range vals {
		out[i] = Literal(v)
	}
	return out
}

// Arithmetics builds infix expressions with the embedding node on the left.
type Arithmetics struct {
	self Node
}

func (a Arithmetics) infix(op InfixOp, val any) *InfixNode {
	return NewInfixNode(a.self, Literal(val), op)
}

func (a Arithmetics) Plus(val any) *InfixNode     { return a.infix(OpPlus, val) }
func (a Arithmetics) Minus(val any) *InfixNode    { return a.infix(OpMinus, val) }
func (a Arithmetics) Multiply(val any) *InfixNode { return a.infix(OpMultiply, val) }
func (a Arithmetics) Divide(val any) *InfixNode   { return a.infix(OpDivide, val) }

// Concat joins strings with the standard || operator. Recursive CTEs use
// it to grow a path column.
func (a Arithmetics) Concat(val any) *InfixNode { return a.infix(OpConcat, val) }

// Combinable joins conditions.
type Combinable struct {
	self Node
}

func (c Combinable) And(other Node) *AndNode { return NewAndNode(c.self, other) }

// Or is parenthesised so it can be ANDed with other WHERE conditions.
func (c Combinable) Or(other Node) *GroupingNode {
	return NewGroupingNode(NewOrNode(c.self, other))
}

func (c Combinable) Not() *NotNode { return NewNotNode(c.self) }

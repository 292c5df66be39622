package nodes

// ComparisonOp is a binary comparison operator.
type ComparisonOp int

const (
	OpEq ComparisonOp = iota
	OpNotEq
	OpGt
	OpGtEq
	OpLt
	OpLtEq
	OpLike
	OpNotLike
)

var comparisonSQL = [...]string{
	OpEq:      "=",
	OpNotEq:   "!=",
	OpGt:      ">",
	OpGtEq:    ">=",
	OpLt:      "<",
	OpLtEq:    "<=",
	OpLike:    "LIKE",
	OpNotLike: "NOT LIKE",
}

// String returns the SQL spelling of the operator.
func (op ComparisonOp) String() string { return comparisonSQL[op] }

// ComparisonNode is "Left Op Right".
type ComparisonNode struct {
	Combinable
	Left  Node
	Right Node
	Op    ComparisonOp
}

func (n *ComparisonNode) Accept(v Visitor) string { return v.VisitComparison(n) }

func NewComparisonNode(left, right Node, op ComparisonOp) *ComparisonNode {
	n := &ComparisonNode{Left: left, Right: right, Op: op}
	n.self = n
	return n
}

// UnaryOp is a postfix null test.
type UnaryOp int

const (
	OpIsNull UnaryOp = iota
	OpIsNotNull
)

// UnaryNode is "Expr IS [NOT] NULL".
type UnaryNode struct {
	Combinable
	Expr Node
	Op   UnaryOp
}

func (n *UnaryNode) Accept(v Visitor) string { return v.VisitUnary(n) }

func NewUnaryNode(expr Node, op UnaryOp) *UnaryNode {
	n := &UnaryNode{Expr: expr, Op: op}
	n.self = n
	return n
}

type AndNode struct {
	Combinable
	Left  Node
	Right Node
}

func (n *AndNode) Accept(v Visitor) string { return v.VisitAnd(n) }

func NewAndNode(left, right Node) *AndNode {
	n := &AndNode{Left: left, Right: right}
	n.self = n
	return n
}

// OrNode renders without parentheses; wrap it in a GroupingNode when it is
// combined with other conditions.
type OrNode struct {
	Combinable
	Left  Node
	Right Node
}

func (n *OrNode) Accept(v Visitor) string { return v.VisitOr(n) }

func NewOrNode(left, right Node) *OrNode {
	n := &OrNode{Left: left, Right: right}
	n.self = n
	return n
}

type NotNode struct {
	Combinable
	Expr Node
}

func (n *NotNode) Accept(v Visitor) string { return v.VisitNot(n) }

func NewNotNode(expr Node) *NotNode {
	n := &NotNode{Expr: expr}
	n.self = n
	return n
}

// And folds conditions left to right. No conditions give nil, one gives
// the condition itself.
func And(conditions ...Node) Node {
	var out Node
	for _, c := range conditions {
		if out == nil {
			out = c
			continue
		}
		out = NewAndNode(out, c)
	}
	return out
}

// GroupingNode is a parenthesised expression.
type GroupingNode struct {
	Combinable
	Expr Node
}

func (n *GroupingNode) Accept(v Visitor) string { return v.VisitGrouping(n) }

func NewGroupingNode(expr Node) *GroupingNode {
	g := &GroupingNode{Expr: expr}
	g.self = g
	return g
}

// InNode is "Expr [NOT] IN (Vals...)". A single statement in Vals renders
// as a subquery.
type InNode struct {
	Combinable
	Expr   Node
	Vals   []Node
	Negate bool
}

func (n *InNode) Accept(v Visitor) string { return v.VisitIn(n) }

func NewInNode(expr Node, vals []Node, negate bool) *InNode {
	n := &InNode{Expr: expr, Vals: vals, Negate: negate}
	n.self = n
	return n
}

type BetweenNode struct {
	Combinable
	Expr   Node
	Low    Node
	High   Node
	Negate bool
}

func (n *BetweenNode) Accept(v Visitor) string { return v.VisitBetween(n) }

func NewBetweenNode(expr, low, high Node, negate bool) *BetweenNode {
	n := &BetweenNode{Expr: expr, Low: low, High: high, Negate: negate}
	n.self = n
	return n
}

// ExistsNode is "[NOT] EXISTS (Subquery)".
type ExistsNode struct {
	Combinable
	Subquery Node
	Negated  bool
}

func (n *ExistsNode) Accept(v Visitor) string { return v.VisitExists(n) }

func Exists(subquery Node) *ExistsNode {
	n := &ExistsNode{Subquery: subquery}
	n.self = n
	return n
}

func NotExists(subquery Node) *ExistsNode {
	n := Exists(subquery)
	n.Negated = true
	return n
}

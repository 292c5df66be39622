package nodes

// AggregateFunc is one of the standard aggregates.
type AggregateFunc int

const (
	AggCount AggregateFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

var aggregateSQL = [...]string{
	AggCount: "COUNT",
	AggSum:   "SUM",
	AggAvg:   "AVG",
	AggMin:   "MIN",
	AggMax:   "MAX",
}

func (f AggregateFunc) String() string { return aggregateSQL[f] }

// AggregateNode is an aggregate call. A nil Expr renders as "*".
type AggregateNode struct {
	operand
	Func     AggregateFunc
	Expr     Node
	Distinct bool
	Filter   Node // FILTER (WHERE ...), nil when unused
}

func (n *AggregateNode) Accept(v Visitor) string { return v.VisitAggregate(n) }

func NewAggregateNode(fn AggregateFunc, expr Node) *AggregateNode {
	n := &AggregateNode{Func: fn, Expr: expr}
	n.bind(n)
	return n
}

// Count counts rows when expr is nil.
func Count(expr Node) *AggregateNode { return NewAggregateNode(AggCount, expr) }

func Sum(expr Node) *AggregateNode { return NewAggregateNode(AggSum, expr) }
func Avg(expr Node) *AggregateNode { return NewAggregateNode(AggAvg, expr) }
func Min(expr Node) *AggregateNode { return NewAggregateNode(AggMin, expr) }
func Max(expr Node) *AggregateNode { return NewAggregateNode(AggMax, expr) }

func CountDistinct(expr Node) *AggregateNode {
	n := Count(expr)
	n.Distinct = true
	return n
}

// WithFilter returns a copy restricted to the rows matching condition.
func (n *AggregateNode) WithFilter(condition Node) *AggregateNode {
	out := NewAggregateNode(n.Func, n.Expr)
	out.Distinct = n.Distinct
	out.Filter = condition
	return out
}

// Over turns the aggregate into a window call, e.g. a running total.
func (n *AggregateNode) Over(def *WindowDefinition) *OverNode {
	return NewOverNode(n, def)
}

// WindowFunc is a ranking or offset window function.
type WindowFunc int

const (
	WinRowNumber WindowFunc = iota
	WinRank
	WinDenseRank
	WinLag
	WinLead
)

var windowSQL = [...]string{
	WinRowNumber: "ROW_NUMBER",
	WinRank:      "RANK",
	WinDenseRank: "DENSE_RANK",
	WinLag:       "LAG",
	WinLead:      "LEAD",
}

func (f WindowFunc) String() string { return windowSQL[f] }

// WindowFuncNode is a window function call. It is only valid inside an
// OverNode.
type WindowFuncNode struct {
	Func WindowFunc
	Args []Node
}

func (n *WindowFuncNode) Accept(v Visitor) string { return v.VisitWindowFunction(n) }

func RowNumber() *WindowFuncNode { return &WindowFuncNode{Func: WinRowNumber} }
func Rank() *WindowFuncNode      { return &WindowFuncNode{Func: WinRank} }
func DenseRank() *WindowFuncNode { return &WindowFuncNode{Func: WinDenseRank} }

// Lag reads a value from an earlier row: LAG(expr [, offset [, default]]).
func Lag(args ...Node) *WindowFuncNode { return &WindowFuncNode{Func: WinLag, Args: args} }

// Lead reads a value from a later row.
func Lead(args ...Node) *WindowFuncNode { return &WindowFuncNode{Func: WinLead, Args: args} }

func (n *WindowFuncNode) Over(def *WindowDefinition) *OverNode {
	return NewOverNode(n, def)
}

// WindowDefinition is the "(PARTITION BY ... ORDER BY ...)" of an OVER
// clause. A nil definition renders as "()".
type WindowDefinition struct {
	PartitionBy []Node
	OrderBy     []Node
}

func NewWindowDef() *WindowDefinition { return &WindowDefinition{} }

func (w *WindowDefinition) Partition(cols ...Node) *WindowDefinition {
	w.PartitionBy = cols
	return w
}

func (w *WindowDefinition) Order(orderings ...Node) *WindowDefinition {
	w.OrderBy = orderings
	return w
}

// OverNode is "Expr OVER (window)".
type OverNode struct {
	operand
	Expr   Node // *WindowFuncNode, *AggregateNode or *NamedFunctionNode
	Window *WindowDefinition
}

func (n *OverNode) Accept(v Visitor) string { return v.VisitOver(n) }

func NewOverNode(expr Node, window *WindowDefinition) *OverNode {
	o := &OverNode{Expr: expr, Window: window}
	o.bind(o)
	return o
}

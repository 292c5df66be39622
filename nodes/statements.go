package nodes

// SelectCore holds the clauses of one SELECT. The fluent builder is
// managers.SelectManager.
type SelectCore struct {
	From        Node
	Projections []Node // empty renders as "*"
	Wheres      []Node // ANDed
	Joins       []*JoinNode
	Groups      []Node
	Havings     []Node // ANDed
	Orders      []Node
	Limit       Node
	Offset      Node
	Distinct    bool
	Explain     *ExplainNode
	Empty       bool // known to return no rows
}

func (n *SelectCore) Accept(v Visitor) string { return v.VisitSelectCore(n) }

// SetOpType is a compound-select operator.
type SetOpType int

const (
	Union SetOpType = iota
	UnionAll
	Intersect
	IntersectAll
	Except
	ExceptAll
)

var setOpSQL = [...]string{
	Union:        "UNION",
	UnionAll:     "UNION ALL",
	Intersect:    "INTERSECT",
	IntersectAll: "INTERSECT ALL",
	Except:       "EXCEPT",
	ExceptAll:    "EXCEPT ALL",
}

func (t SetOpType) String() string { return setOpSQL[t] }

// SetOperationNode is "Left Type Right".
type SetOperationNode struct {
	Left  Node
	Right Node
	Type  SetOpType
}

func (n *SetOperationNode) Accept(v Visitor) string { return v.VisitSetOperation(n) }

// AssignmentNode is "column = value" in a SET list.
type AssignmentNode struct {
	Left  Node
	Right Node
}

func (n *AssignmentNode) Accept(v Visitor) string { return v.VisitAssignment(n) }

// InsertStatement is a multi-row INSERT ... VALUES.
type InsertStatement struct {
	Into    Node
	Columns []Node
	Values  [][]Node
}

func (n *InsertStatement) Accept(v Visitor) string { return v.VisitInsertStatement(n) }

type UpdateStatement struct {
	Table       Node
	Assignments []*AssignmentNode
	Wheres      []Node
	Returning   []Node
}

func (n *UpdateStatement) Accept(v Visitor) string { return v.VisitUpdateStatement(n) }

type DeleteStatement struct {
	From      Node
	Wheres    []Node
	Returning []Node
}

func (n *DeleteStatement) Accept(v Visitor) string { return v.VisitDeleteStatement(n) }

// ExplainNode prefixes a statement with EXPLAIN. Options follow the
// keyword verbatim (e.g. "ANALYZE", "QUERY PLAN").
type ExplainNode struct {
	Options []string
}

func (n *ExplainNode) Accept(v Visitor) string { return v.VisitExplain(n) }

// RawQueryNode is hand-written SQL with "?" markers, one per bind. The
// visitor rewrites the markers to its own placeholders.
//
// SECURITY: SQL is emitted verbatim; only Binds are parameterized.
type RawQueryNode struct {
	SQL   string
	Binds []any
}

func (n *RawQueryNode) Accept(v Visitor) string { return v.VisitRawQuery(n) }

package nodes

// LiteralNode is a Go value used in a query. Visitors inline it or turn it
// into a bind parameter.
type LiteralNode struct {
	operand
	Value any
}

func (n *LiteralNode) Accept(v Visitor) string { return v.VisitLiteral(n) }

// Literal wraps val in a LiteralNode. A val that is already a Node is
// returned unchanged, so builders accept columns and values alike.
func Literal(val any) Node {
	if n, ok := val.(Node); ok {
		return n
	}
	lit := &LiteralNode{Value: val}
	lit.bind(lit)
	return lit
}

// SqlLiteral is SQL text emitted verbatim. Binds, when present, are
// appended to the parameter list in parameterized mode.
//
// SECURITY: Raw is never escaped. Keep user input in Binds.
type SqlLiteral struct {
	operand
	Raw   string
	Binds []any
}

func (n *SqlLiteral) Accept(v Visitor) string { return v.VisitSqlLiteral(n) }

func NewSqlLiteral(raw string) *SqlLiteral {
	n := &SqlLiteral{Raw: raw}
	n.bind(n)
	return n
}

// NewBoundSqlLiteral is NewSqlLiteral with bind values for the "?" markers
// already in raw.
func NewBoundSqlLiteral(raw string, binds ...any) *SqlLiteral {
	n := NewSqlLiteral(raw)
	n.Binds = binds
	return n
}

// BindParamNode is a value that is always a placeholder when the visitor
// collects parameters, even where a literal would be inlined.
type BindParamNode struct {
	Value any
}

func (n *BindParamNode) Accept(v Visitor) string { return v.VisitBindParam(n) }

func NewBindParam(value any) *BindParamNode {
	return &BindParamNode{Value: value}
}

// CastedNode is a value rendered as CAST(value AS type). Typed CTE columns
// coerce their comparison values through it.
type CastedNode struct {
	operand
	Value    any
	TypeName string
}

func (n *CastedNode) Accept(v Visitor) string { return v.VisitCasted(n) }

func NewCasted(value any, typeName string) *CastedNode {
	n := &CastedNode{Value: value, TypeName: typeName}
	n.bind(n)
	return n
}

// StarNode is "*", or "table.*" when Table is set.
type StarNode struct {
	Table *Table
}

func (n *StarNode) Accept(v Visitor) string { return v.VisitStar(n) }

func Star() *StarNode { return &StarNode{} }

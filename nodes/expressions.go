package nodes

// Attribute is a column of a table or table alias.
type Attribute struct {
	operand
	Name     string
	Relation Node   // *Table or *TableAlias
	TypeName string // set by Typed; values compared against it are cast
}

func NewAttribute(relation Node, name string) *Attribute {
	a := &Attribute{Name: name, Relation: relation}
	a.bind(a)
	return a
}

func (a *Attribute) Accept(v Visitor) string { return v.VisitAttribute(a) }

// Typed returns a copy of the column carrying a SQL type.
func (a *Attribute) Typed(typeName string) *Attribute {
	c := NewAttribute(a.Relation, a.Name)
	c.TypeName = typeName
	return c
}

// Coerce wraps val for comparison with the column: a CastedNode when the
// column is typed, a plain literal otherwise.
func (a *Attribute) Coerce(val any) Node {
	return coerce(val, a.TypeName)
}

func coerce(val any, typeName string) Node {
	if typeName == "" {
		return Literal(val)
	}
	return NewCasted(val, typeName)
}

// AliasNode is "Expr AS Name" in a projection list. The alias is what a
// CTE exposes its column under.
type AliasNode struct {
	operand
	Expr Node
	Name string
}

func (n *AliasNode) Accept(v Visitor) string { return v.VisitAlias(n) }

func NewAliasNode(expr Node, name string) *AliasNode {
	n := &AliasNode{Expr: expr, Name: name}
	n.bind(n)
	return n
}

// InfixOp is an arithmetic or string operator.
type InfixOp int

const (
	OpPlus InfixOp = iota
	OpMinus
	OpMultiply
	OpDivide
	OpConcat
)

var infixSQL = [...]string{
	OpPlus:     "+",
	OpMinus:    "-",
	OpMultiply: "*",
	OpDivide:   "/",
	OpConcat:   "||",
}

func (op InfixOp) String() string { return infixSQL[op] }

// InfixNode is "Left Op Right". Nested infix operands are parenthesised
// by the visitor.
type InfixNode struct {
	operand
	Left  Node
	Right Node
	Op    InfixOp
}

func (n *InfixNode) Accept(v Visitor) string { return v.VisitInfix(n) }

func NewInfixNode(left, right Node, op InfixOp) *InfixNode {
	n := &InfixNode{Left: left, Right: right, Op: op}
	n.bind(n)
	return n
}

type OrderDirection int

const (
	Asc OrderDirection = iota
	Desc
)

type NullsDirection int

const (
	NullsDefault NullsDirection = iota
	NullsFirst
	NullsLast
)

// OrderingNode is one ORDER BY term.
type OrderingNode struct {
	Combinable
	Expr      Node
	Direction OrderDirection
	Nulls     NullsDirection
}

func (n *OrderingNode) Accept(v Visitor) string { return v.VisitOrdering(n) }

func NewOrderingNode(expr Node, dir OrderDirection) *OrderingNode {
	n := &OrderingNode{Expr: expr, Direction: dir}
	n.self = n
	return n
}

// NullsFirst returns a copy sorting NULLs before other values. LEFT JOINed
// CTE columns are NULL for unmatched rows.
func (n *OrderingNode) NullsFirst() *OrderingNode {
	out := NewOrderingNode(n.Expr, n.Direction)
	out.Nulls = NullsFirst
	return out
}

// NullsLast returns a copy sorting NULLs after other values.
func (n *OrderingNode) NullsLast() *OrderingNode {
	out := NewOrderingNode(n.Expr, n.Direction)
	out.Nulls = NullsLast
	return out
}

// NamedFunctionNode is a scalar function call such as COALESCE(a, b).
type NamedFunctionNode struct {
	operand
	Name     string
	Args     []Node
	Distinct bool
}

func (n *NamedFunctionNode) Accept(v Visitor) string { return v.VisitNamedFunction(n) }

func NewNamedFunction(name string, args ...Node) *NamedFunctionNode {
	n := &NamedFunctionNode{Name: name, Args: args}
	n.bind(n)
	return n
}

// Coalesce is typically used to turn the NULLs of a LEFT JOINed CTE into
// a default.
func Coalesce(args ...Node) *NamedFunctionNode { return NewNamedFunction("COALESCE", args...) }

func Lower(expr Node) *NamedFunctionNode { return NewNamedFunction("LOWER", expr) }
func Upper(expr Node) *NamedFunctionNode { return NewNamedFunction("UPPER", expr) }

// Cast renders CAST(expr AS typeName). The type name is checked by the
// visitor, not escaped.
func Cast(expr Node, typeName string) *NamedFunctionNode {
	return NewNamedFunction("CAST", expr, NewSqlLiteral(typeName))
}

// Over turns the function into a window call.
func (n *NamedFunctionNode) Over(def *WindowDefinition) *OverNode {
	return NewOverNode(n, def)
}

// Package nodes is the syntax tree that visitors render to SQL.
//
// Expression nodes (columns, CTE columns, aggregates, functions, literals)
// embed Predications, Arithmetics and Combinable, so conditions read the
// same whatever the left-hand side is:
//
//	orders := nodes.NewTable("orders")
//	orders.Col("amount").Gt(100).And(orders.Col("region_id").Eq("earth"))
//
// Nodes are plain data. Rendering, quoting and bind parameters belong to
// the visitors package.
package nodes

// Node is implemented by every element of the tree.
type Node interface {
	Accept(visitor Visitor) string
}

// Visitor renders each node kind. Dialects embed a shared base and
// override the kinds whose syntax differs.
type Visitor interface {
	// Relations and leaves.
	VisitTable(node *Table) string
	VisitTableAlias(node *TableAlias) string
	VisitAttribute(node *Attribute) string
	VisitCTEColumn(node *CTEColumn) string
	VisitLiteral(node *LiteralNode) string
	VisitSqlLiteral(node *SqlLiteral) string
	VisitBindParam(node *BindParamNode) string
	VisitCasted(node *CastedNode) string
	VisitStar(node *StarNode) string

	// Conditions.
	VisitComparison(node *ComparisonNode) string
	VisitUnary(node *UnaryNode) string
	VisitAnd(node *AndNode) string
	VisitOr(node *OrNode) string
	VisitNot(node *NotNode) string
	VisitGrouping(node *GroupingNode) string
	VisitIn(node *InNode) string
	VisitBetween(node *BetweenNode) string
	VisitExists(node *ExistsNode) string

	// Computed values.
	VisitInfix(node *InfixNode) string
	VisitAlias(node *AliasNode) string
	VisitOrdering(node *OrderingNode) string
	VisitAggregate(node *AggregateNode) string
	VisitNamedFunction(node *NamedFunctionNode) string
	VisitWindowFunction(node *WindowFuncNode) string
	VisitOver(node *OverNode) string

	// Statements.
	VisitJoin(node *JoinNode) string
	VisitSelectCore(node *SelectCore) string
	VisitSetOperation(node *SetOperationNode) string
	VisitInsertStatement(node *InsertStatement) string
	VisitUpdateStatement(node *UpdateStatement) string
	VisitDeleteStatement(node *DeleteStatement) string
	VisitAssignment(node *AssignmentNode) string
	VisitCTE(node *CTENode) string
	VisitExplain(node *ExplainNode) string
	VisitRawQuery(node *RawQueryNode) string
}

// Parameterizer is implemented by visitors that collect bind values
// instead of inlining them.
type Parameterizer interface {
	Params() []any
	Reset()
}

// ErrorRecorder is implemented by visitors that keep failures found while
// rendering, such as a CTE column that cannot be resolved. Accept has no
// error return, so callers check Err once the tree is rendered.
type ErrorRecorder interface {
	RecordError(err error)
	Err() error
}

// Relabeler is implemented by nodes that copy themselves with relation
// names rewritten. RelabeledClone asks it before walking the node itself.
type Relabeler interface {
	RelabeledClone(changes map[string]string) Node
}

// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"fmt"
	"strings"

	"github.com/bawdo/gosbeecte/nodes"
)

// KindVisitor renders every node as its Go type name ("SelectCore",
// "CTEColumn", ...). Tests use it where only the shape of a call matters,
// not the SQL.
type KindVisitor struct{}

var _ nodes.Visitor = KindVisitor{}

func kind(n nodes.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", n), "*nodes.")
}

func (KindVisitor) VisitTable(n *nodes.Table) string                     { return kind(n) }
func (KindVisitor) VisitTableAlias(n *nodes.TableAlias) string           { return kind(n) }
func (KindVisitor) VisitAttribute(n *nodes.Attribute) string             { return kind(n) }
func (KindVisitor) VisitCTEColumn(n *nodes.CTEColumn) string             { return kind(n) }
func (KindVisitor) VisitLiteral(n *nodes.LiteralNode) string             { return kind(n) }
func (KindVisitor) VisitSqlLiteral(n *nodes.SqlLiteral) string           { return kind(n) }
func (KindVisitor) VisitBindParam(n *nodes.BindParamNode) string         { return kind(n) }
func (KindVisitor) VisitCasted(n *nodes.CastedNode) string               { return kind(n) }
func (KindVisitor) VisitStar(n *nodes.StarNode) string                   { return kind(n) }
func (KindVisitor) VisitComparison(n *nodes.ComparisonNode) string       { return kind(n) }
func (KindVisitor) VisitUnary(n *nodes.UnaryNode) string                 { return kind(n) }
func (KindVisitor) VisitAnd(n *nodes.AndNode) string                     { return kind(n) }
func (KindVisitor) VisitOr(n *nodes.OrNode) string                       { return kind(n) }
func (KindVisitor) VisitNot(n *nodes.NotNode) string                     { return kind(n) }
func (KindVisitor) VisitGrouping(n *nodes.GroupingNode) string           { return kind(n) }
func (KindVisitor) VisitIn(n *nodes.InNode) string                       { return kind(n) }
func (KindVisitor) VisitBetween(n *nodes.BetweenNode) string             { return kind(n) }
func (KindVisitor) VisitExists(n *nodes.ExistsNode) string               { return kind(n) }
func (KindVisitor) VisitInfix(n *nodes.InfixNode) string                 { return kind(n) }
func (KindVisitor) VisitAlias(n *nodes.AliasNode) string                 { return kind(n) }
func (KindVisitor) VisitOrdering(n *nodes.OrderingNode) string           { return kind(n) }
func (KindVisitor) VisitAggregate(n *nodes.AggregateNode) string         { return kind(n) }
func (KindVisitor) VisitNamedFunction(n *nodes.NamedFunctionNode) string { return kind(n) }
func (KindVisitor) VisitWindowFunction(n *nodes.WindowFuncNode) string   { return kind(n) }
func (KindVisitor) VisitOver(n *nodes.OverNode) string                   { return kind(n) }
func (KindVisitor) VisitJoin(n *nodes.JoinNode) string                   { return kind(n) }
func (KindVisitor) VisitSelectCore(n *nodes.SelectCore) string           { return kind(n) }
func (KindVisitor) VisitSetOperation(n *nodes.SetOperationNode) string   { return kind(n) }
func (KindVisitor) VisitInsertStatement(n *nodes.InsertStatement) string { return kind(n) }
func (KindVisitor) VisitUpdateStatement(n *nodes.UpdateStatement) string { return kind(n) }
func (KindVisitor) VisitDeleteStatement(n *nodes.DeleteStatement) string { return kind(n) }
func (KindVisitor) VisitAssignment(n *nodes.AssignmentNode) string       { return kind(n) }
func (KindVisitor) VisitCTE(n *nodes.CTENode) string                     { return kind(n) }
func (KindVisitor) VisitExplain(n *nodes.ExplainNode) string             { return kind(n) }
func (KindVisitor) VisitRawQuery(n *nodes.RawQueryNode) string           { return kind(n) }

// CollectingVisitor is a KindVisitor that also takes part in the bind
// parameter and render-error protocols. Seed Params to check that
// compilers reset or slice them.
type CollectingVisitor struct {
	KindVisitor
	Collected []any
	Failure   error
}

var (
	_ nodes.Parameterizer = (*CollectingVisitor)(nil)
	_ nodes.ErrorRecorder = (*CollectingVisitor)(nil)
)

func (v *CollectingVisitor) Params() []any { return v.Collected }

func (v *CollectingVisitor) Reset() {
	v.Collected = nil
	v.Failure = nil
}

func (v *CollectingVisitor) RecordError(err error) {
	if v.Failure == nil {
		v.Failure = err
	}
}

func (v *CollectingVisitor) Err() error { return v.Failure }

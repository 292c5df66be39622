package visitors

import (
	"strings"

	"github.com/bawdo/gosbeecte/nodes"
)

func (b *baseVisitor) VisitTable(n *nodes.Table) string { return b.quote(n.Name) }

func (b *baseVisitor) VisitTableAlias(n *nodes.TableAlias) string {
	rel := "(" + n.Relation.Accept(b.outer) + ")"
	if t, ok := n.Relation.(*nodes.Table); ok {
		rel = b.quote(t.Name)
	}
	return rel + " AS " + b.quote(n.AliasName)
}

func (b *baseVisitor) VisitAttribute(n *nodes.Attribute) string {
	return b.quote(nodes.RelationName(n.Relation)) + "." + b.quote(n.Name)
}

// VisitCTEColumn resolves the column against its CTE body, so unknown and
// self-referencing columns surface as errors, and qualifies it with the
// name the CTE is visible under. "pk" renders as the key column it
// stands for.
func (b *baseVisitor) VisitCTEColumn(n *nodes.CTEColumn) string {
	name := n.Name
	if n.Source != nil {
		ref, err := n.Source.ResolveColumn(n.Name)
		switch {
		case err != nil:
			b.RecordError(err)
		case n.Name == "pk":
			if a, ok := ref.(*nodes.Attribute); ok {
				name = a.Name
			}
		}
	}
	return b.quote(n.Relation) + "." + b.quote(name)
}

func (b *baseVisitor) VisitStar(n *nodes.StarNode) string {
	if n.Table == nil {
		return "*"
	}
	return b.quote(n.Table.Name) + ".*"
}

func (b *baseVisitor) VisitLiteral(n *nodes.LiteralNode) string { return b.value(n.Value) }

// VisitSqlLiteral emits the raw text. Its binds join the parameter list
// in parameterized mode; the text already carries the markers.
func (b *baseVisitor) VisitSqlLiteral(n *nodes.SqlLiteral) string {
	if b.parameterize {
		b.params = append(b.params, n.Binds...)
	}
	return n.Raw
}

func (b *baseVisitor) VisitBindParam(n *nodes.BindParamNode) string {
	if b.parameterize {
		return b.bind(n.Value)
	}
	return b.constant(n.Value)
}

func (b *baseVisitor) VisitCasted(n *nodes.CastedNode) string {
	val := b.value(n.Value)
	if n.TypeName == "" {
		return val
	}
	return "CAST(" + val + " AS " + b.typeName(n.TypeName) + ")"
}

// --- conditions ---

func (b *baseVisitor) VisitComparison(n *nodes.ComparisonNode) string {
	return n.Left.Accept(b.outer) + " " + n.Op.String() + " " + n.Right.Accept(b.outer)
}

func (b *baseVisitor) VisitUnary(n *nodes.UnaryNode) string {
	if n.Op == nodes.OpIsNotNull {
		return n.Expr.Accept(b.outer) + " IS NOT NULL"
	}
	return n.Expr.Accept(b.outer) + " IS NULL"
}

func (b *baseVisitor) VisitAnd(n *nodes.AndNode) string {
	return n.Left.Accept(b.outer) + " AND " + n.Right.Accept(b.outer)
}

func (b *baseVisitor) VisitOr(n *nodes.OrNode) string {
	return n.Left.Accept(b.outer) + " OR " + n.Right.Accept(b.outer)
}

func (b *baseVisitor) VisitNot(n *nodes.NotNode) string {
	return "NOT (" + n.Expr.Accept(b.outer) + ")"
}

func (b *baseVisitor) VisitGrouping(n *nodes.GroupingNode) string {
	return "(" + n.Expr.Accept(b.outer) + ")"
}

func (b *baseVisitor) VisitIn(n *nodes.InNode) string {
	op := " IN ("
	if n.Negate {
		op = " NOT IN ("
	}
	return n.Expr.Accept(b.outer) + op + b.render(n.Vals, ", ") + ")"
}

func (b *baseVisitor) VisitBetween(n *nodes.BetweenNode) string {
	op := " BETWEEN "
	if n.Negate {
		op = " NOT BETWEEN "
	}
	return n.Expr.Accept(b.outer) + op + n.Low.Accept(b.outer) + " AND " + n.High.Accept(b.outer)
}

func (b *baseVisitor) VisitExists(n *nodes.ExistsNode) string {
	prefix := "EXISTS ("
	if n.Negated {
		prefix = "NOT EXISTS ("
	}
	return prefix + n.Subquery.Accept(b.outer) + ")"
}

// --- computed values ---

// VisitInfix parenthesises nested infix operands so "(a + 1) * 2" keeps
// its grouping.
func (b *baseVisitor) VisitInfix(n *nodes.InfixNode) string {
	return b.operand(n.Left) + " " + n.Op.String() + " " + b.operand(n.Right)
}

func (b *baseVisitor) operand(n nodes.Node) string {
	sql := n.Accept(b.outer)
	if _, nested := n.(*nodes.InfixNode); nested {
		return "(" + sql + ")"
	}
	return sql
}

func (b *baseVisitor) VisitAlias(n *nodes.AliasNode) string {
	return n.Expr.Accept(b.outer) + " AS " + b.quote(n.Name)
}

func (b *baseVisitor) VisitOrdering(n *nodes.OrderingNode) string {
	sql := n.Expr.Accept(b.outer)
	if n.Direction == nodes.Desc {
		sql += " DESC"
	} else {
		sql += " ASC"
	}
	switch n.Nulls {
	case nodes.NullsFirst:
		sql += " NULLS FIRST"
	case nodes.NullsLast:
		sql += " NULLS LAST"
	}
	return sql
}

func (b *baseVisitor) VisitAggregate(n *nodes.AggregateNode) string {
	arg := "*"
	if n.Expr != nil {
		arg = n.Expr.Accept(b.outer)
	}
	if n.Distinct {
		arg = "DISTINCT " + arg
	}
	sql := n.Func.String() + "(" + arg + ")"
	if n.Filter != nil {
		sql += " FILTER (WHERE " + n.Filter.Accept(b.outer) + ")"
	}
	return sql
}

// VisitNamedFunction emits the function name verbatim after checking it is
// a plain identifier. CAST's second argument is its type name.
func (b *baseVisitor) VisitNamedFunction(n *nodes.NamedFunctionNode) string {
	name := b.token("function name", n.Name, "")
	if name == "CAST" && len(n.Args) == 2 {
		return "CAST(" + n.Args[0].Accept(b.outer) + " AS " + n.Args[1].Accept(b.outer) + ")"
	}
	args := b.render(n.Args, ", ")
	if n.Distinct {
		args = "DISTINCT " + args
	}
	return name + "(" + args + ")"
}

func (b *baseVisitor) VisitWindowFunction(n *nodes.WindowFuncNode) string {
	return n.Func.String() + "(" + b.render(n.Args, ", ") + ")"
}

func (b *baseVisitor) VisitOver(n *nodes.OverNode) string {
	var parts []string
	if w := n.Window; w != nil {
		if len(w.PartitionBy) > 0 {
			parts = append(parts, "PARTITION BY "+b.render(w.PartitionBy, ", "))
		}
		if len(w.OrderBy) > 0 {
			parts = append(parts, "ORDER BY "+b.render(w.OrderBy, ", "))
		}
	}
	return n.Expr.Accept(b.outer) + " OVER (" + strings.Join(parts, " ") + ")"
}

package visitors

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/nodes"
)

// alwaysFalse is ANDed into the WHERE clause of a SELECT known to be empty.
var alwaysFalse = nodes.NewSqlLiteral("1 = 0")

func (b *baseVisitor) VisitSelectCore(n *nodes.SelectCore) string {
	var sb strings.Builder
	if n.Explain != nil {
		sb.WriteString(n.Explain.Accept(b.outer) + " ")
	}
	sb.WriteString("SELECT ")
	if n.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(n.Projections) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(b.render(n.Projections, ", "))
	}
	if n.From != nil {
		sb.WriteString(" FROM " + n.From.Accept(b.outer))
	}
	for _, j := range n.Joins {
		sb.WriteString(" " + j.Accept(b.outer))
	}

	wheres := n.Wheres
	if n.Empty {
		wheres = append(wheres[:len(wheres):len(wheres)], alwaysFalse)
	}
	b.clause(&sb, "WHERE", wheres, " AND ")
	b.clause(&sb, "GROUP BY", n.Groups, ", ")
	b.clause(&sb, "HAVING", n.Havings, " AND ")
	b.clause(&sb, "ORDER BY", n.Orders, ", ")
	if n.Limit != nil {
		sb.WriteString(" LIMIT " + n.Limit.Accept(b.outer))
	}
	if n.Offset != nil {
		sb.WriteString(" OFFSET " + n.Offset.Accept(b.outer))
	}
	return sb.String()
}

// clause writes " KEYWORD item sep item ..." when items is non-empty.
func (b *baseVisitor) clause(sb *strings.Builder, keyword string, items []nodes.Node, sep string) {
	if len(items) > 0 {
		sb.WriteString(" " + keyword + " " + b.render(items, sep))
	}
}

// VisitJoin renders the join without its left side, which the enclosing
// FROM clause has already written. Subqueries are parenthesised.
func (b *baseVisitor) VisitJoin(n *nodes.JoinNode) string {
	right := n.Right.Accept(b.outer)
	switch n.Right.(type) {
	case *nodes.SelectCore, *nodes.SetOperationNode:
		right = "(" + right + ")"
	}
	sql := n.Type.String() + " " + right
	if n.On != nil {
		sql += " ON " + n.On.Accept(b.outer)
	}
	return sql
}

func (b *baseVisitor) VisitSetOperation(n *nodes.SetOperationNode) string {
	return "(" + n.Left.Accept(b.outer) + ") " + n.Type.String() + " (" + n.Right.Accept(b.outer) + ")"
}

// VisitCTE renders one WITH list entry. The CYCLE marks are inlined since
// the grammar takes constants there.
func (b *baseVisitor) VisitCTE(n *nodes.CTENode) string {
	var sb strings.Builder
	sb.WriteString(b.quote(n.Name))
	if len(n.Columns) > 0 {
		sb.WriteString(" (" + b.quoteAll(n.Columns) + ")")
	}
	sb.WriteString(" AS ")
	if n.Materialized {
		sb.WriteString("MATERIALIZED ")
	}
	sb.WriteString("(" + n.Query.Accept(b.outer) + ")")
	if c := n.Cycle; c != nil {
		sb.WriteString(" CYCLE " + b.quoteAll(c.Columns))
		sb.WriteString(" SET " + b.quote(c.MarkColumn))
		sb.WriteString(" TO " + b.constant(c.MarkTrue))
		sb.WriteString(" DEFAULT " + b.constant(c.MarkFalse))
		sb.WriteString(" USING " + b.quote(c.PathColumn))
	}
	return sb.String()
}

func (b *baseVisitor) VisitInsertStatement(n *nodes.InsertStatement) string {
	sql := "INSERT INTO " + n.Into.Accept(b.outer)
	if len(n.Columns) > 0 {
		names := make([]string, len(n.Columns))
		for i, c := range n.Columns {
			names[i] = b.target(c)
		}
		sql += " (" + strings.Join(names, ", ") + ")"
	}
	if len(n.Values) > 0 {
		rows := make([]string, len(n.Values))
		for i, row := range n.Values {
			rows[i] = "(" + b.render(row, ", ") + ")"
		}
		sql += " VALUES " + strings.Join(rows, ", ")
	}
	return sql
}

func (b *baseVisitor) VisitUpdateStatement(n *nodes.UpdateStatement) string {
	var sb strings.Builder
	sb.WriteString("UPDATE " + n.Table.Accept(b.outer))
	if len(n.Assignments) > 0 {
		set := make([]string, len(n.Assignments))
		for i, a := range n.Assignments {
			set[i] = a.Accept(b.outer)
		}
		sb.WriteString(" SET " + strings.Join(set, ", "))
	}
	b.clause(&sb, "WHERE", n.Wheres, " AND ")
	b.clause(&sb, "RETURNING", n.Returning, ", ")
	return sb.String()
}

func (b *baseVisitor) VisitDeleteStatement(n *nodes.DeleteStatement) string {
	var sb strings.Builder
	sb.WriteString("DELETE FROM " + n.From.Accept(b.outer))
	b.clause(&sb, "WHERE", n.Wheres, " AND ")
	b.clause(&sb, "RETURNING", n.Returning, ", ")
	return sb.String()
}

// VisitAssignment renders "column = value" with the column unqualified,
// as SET requires.
func (b *baseVisitor) VisitAssignment(n *nodes.AssignmentNode) string {
	return b.target(n.Left) + " = " + n.Right.Accept(b.outer)
}

// target is the bare quoted name of a column being written.
func (b *baseVisitor) target(n nodes.Node) string {
	switch c := n.(type) {
	case *nodes.Attribute:
		return b.quote(c.Name)
	case *nodes.CTEColumn:
		return b.quote(c.Name)
	}
	return n.Accept(b.outer)
}

func (b *baseVisitor) VisitExplain(n *nodes.ExplainNode) string {
	sql := "EXPLAIN"
	for _, o := range n.Options {
		sql += " " + b.token("EXPLAIN option", o, " (),")
	}
	return sql
}

// VisitRawQuery replaces each "?" outside quoted literals and identifiers
// with the next bind, rendered like any other value. A count mismatch is
// recorded.
func (b *baseVisitor) VisitRawQuery(n *nodes.RawQueryNode) string {
	chunks := splitMarkers(n.SQL)
	markers := len(chunks) - 1
	if markers != len(n.Binds) {
		b.RecordError(errors.Errorf("visitors: raw query has %d markers for %d binds", markers, len(n.Binds)))
	}
	var sb strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			if i-1 < len(n.Binds) {
				sb.WriteString(b.value(n.Binds[i-1]))
			} else {
				sb.WriteString("?")
			}
		}
		sb.WriteString(chunk)
	}
	return sb.String()
}

// splitMarkers splits sql on the "?" characters that are not inside '...',
// "..." or `...`. A doubled quote inside a quoted run toggles out and back
// in, so it needs no special case.
func splitMarkers(sql string) []string {
	var chunks []string
	var quote rune
	start := 0
	for i, r := range sql {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '?':
			chunks = append(chunks, sql[start:i])
			start = i + 1
		}
	}
	return append(chunks, sql[start:])
}

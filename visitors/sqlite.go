package visitors

import (
	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/internal/quoting"
	"github.com/bawdo/gosbeecte/nodes"
)

// SQLiteVisitor renders SQLite: "double quoted" identifiers and "?"
// placeholders. Literals are inlined unless WithParams is set.
type SQLiteVisitor struct {
	*baseVisitor
}

func NewSQLiteVisitor(opts ...Option) *SQLiteVisitor {
	v := &SQLiteVisitor{}
	v.baseVisitor = newBase(v, quoting.ANSI, questionMark, opts)
	return v
}

func questionMark(int) string { return "?" }

// VisitSetOperation leaves the operands bare; SQLite rejects a
// parenthesised SELECT on either side of a compound operator.
func (v *SQLiteVisitor) VisitSetOperation(n *nodes.SetOperationNode) string {
	return n.Left.Accept(v) + " " + n.Type.String() + " " + n.Right.Accept(v)
}

// VisitCTE renders the CTE without its CYCLE clause and records
// ErrUnsupported.
func (v *SQLiteVisitor) VisitCTE(n *nodes.CTENode) string {
	if n.Cycle == nil {
		return v.baseVisitor.VisitCTE(n)
	}
	v.RecordError(errors.Wrap(ErrUnsupported, "CYCLE clause on sqlite"))
	c := *n
	c.Cycle = nil
	return v.baseVisitor.VisitCTE(&c)
}

package visitors

import (
	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/internal/quoting"
	"github.com/bawdo/gosbeecte/nodes"
)

// MySQLVisitor renders MySQL 8: `backtick` identifiers and "?"
// placeholders. It starts in parameterized mode; WithoutParams turns that
// off.
type MySQLVisitor struct {
	*baseVisitor
}

func NewMySQLVisitor(opts ...Option) *MySQLVisitor {
	v := &MySQLVisitor{}
	v.baseVisitor = newBase(v, quoting.MySQL, questionMark, append([]Option{WithParams()}, opts...))
	return v
}

// VisitCTE drops MATERIALIZED, which MySQL has no syntax for, and the
// CYCLE clause, which it records as ErrUnsupported.
func (v *MySQLVisitor) VisitCTE(n *nodes.CTENode) string {
	c := *n
	c.Materialized = false
	if c.Cycle != nil {
		v.RecordError(errors.Wrap(ErrUnsupported, "CYCLE clause on mysql"))
		c.Cycle = nil
	}
	return v.baseVisitor.VisitCTE(&c)
}

package visitors

import (
	"strconv"

	"github.com/bawdo/gosbeecte/internal/quoting"
)

// PostgresVisitor renders PostgreSQL: "double quoted" identifiers and
// numbered $n placeholders. Literals are inlined unless WithParams is set.
type PostgresVisitor struct {
	*baseVisitor
}

func NewPostgresVisitor(opts ...Option) *PostgresVisitor {
	v := &PostgresVisitor{}
	v.baseVisitor = newBase(v, quoting.ANSI, func(i int) string { return "$" + strconv.Itoa(i) }, opts)
	return v
}

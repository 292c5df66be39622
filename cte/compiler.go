package cte

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/managers"
	"github.com/bawdo/gosbeecte/nodes"
)

// Compiler renders a Query: the WITH list of its attached CTEs followed by
// the statement. It wraps the statement's own compiler, which is used
// unchanged when no CTE is attached.
//
// All parts are rendered with the same visitor, so bind placeholders are
// numbered across the whole statement and the parameters come out in
// text order: CTE bodies in WITH order, then the statement.
type Compiler struct {
	Query   *Query
	Visitor nodes.Visitor
	Options managers.CompileOptions
}

// AsSQL implements managers.Compiler.
func (c *Compiler) AsSQL() (string, []any, error) {
	q := c.Query
	if q.err != nil {
		return "", nil, q.err
	}
	if q.ctes.Len() == 0 {
		return q.stmt.Compiler(c.Visitor, c.Options).AsSQL()
	}

	mark := markParams(c.Visitor)

	// EXPLAIN goes in front of WITH, so it is taken off a private copy of
	// the statement.
	stmt := q.stmt.CloneStatement()
	var explain *nodes.ExplainNode
	if e, ok := stmt.(managers.Explainer); ok {
		explain = e.ExplainNode()
		e.SetExplain(nil)
	}

	outer := leftJoined(stmt)
	entries := make([]string, 0, q.ctes.Len())
	for _, cte := range q.ctes.ctes {
		if cte.body == nil {
			return "", nil, errors.Wrapf(ErrRecursiveNotReady, "CTE %q has no body", cte.name)
		}
		opts := managers.CompileOptions{
			// A LEFT JOIN needs the relation to exist even when it is empty.
			ElideEmpty:         c.Options.ElideEmpty && !outer[cte.name],
			StripBranchAliases: true,
		}
		sql, _, err := cte.body.Compiler(c.Visitor, opts).AsSQL()
		if errors.Is(err, ErrEmptyResultSet) {
			// The statement is still compiled once so that it reports its own
			// errors; the result is discarded.
			if _, _, baseErr := stmt.Compiler(c.Visitor, c.Options).AsSQL(); baseErr != nil &&
				!errors.Is(baseErr, ErrEmptyResultSet) {
				return "", nil, baseErr
			}
			return "", nil, errors.Wrapf(err, "CTE %q", cte.name)
		}
		if err != nil {
			return "", nil, errors.Wrapf(err, "compiling CTE %q", cte.name)
		}
		entries = append(entries, cte.node(sql).Accept(c.Visitor))
	}

	base, _, err := stmt.Compiler(c.Visitor, c.Options).AsSQL()
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	if explain != nil {
		sb.WriteString(explain.Accept(c.Visitor))
		sb.WriteString(" ")
	}
	// RECURSIVE is always written: it lets a CTE refer to itself or to a CTE
	// listed after it.
	sb.WriteString("WITH RECURSIVE ")
	sb.WriteString(strings.Join(entries, ", "))
	sb.WriteString(" ")
	sb.WriteString(base)

	if err := renderErr(c.Visitor); err != nil {
		return "", nil, err
	}
	return sb.String(), mark.since(), nil
}

// paramMark remembers how many parameters a visitor had collected, so the
// ones added by one render can be told apart.
type paramMark struct {
	p     nodes.Parameterizer
	start int
}

func markParams(v nodes.Visitor) paramMark {
	p, _ := v.(nodes.Parameterizer)
	if p == nil {
		return paramMark{}
	}
	return paramMark{p: p, start: len(p.Params())}
}

func (m paramMark) since() []any {
	if m.p == nil || len(m.p.Params()) == m.start {
		return nil
	}
	return append([]any(nil), m.p.Params()[m.start:]...)
}

func renderErr(v nodes.Visitor) error {
	if r, ok := v.(nodes.ErrorRecorder); ok {
		return r.Err()
	}
	return nil
}

// leftJoined returns the names of relations the statement reaches through
// LEFT OUTER JOIN.
func leftJoined(stmt managers.Statement) map[string]bool {
	out := map[string]bool{}
	for _, j := range stmt.JoinNodes() {
		if j.Type == nodes.LeftOuterJoin {
			if jc, ok := joinClauseOf(j); ok {
				out[jc.TableName] = true
			}
		}
	}
	return out
}

package managers

import (
	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/nodes"
)

// ErrEmptyResultSet is returned when a statement is known to produce no
// rows and the caller allowed the compiler to elide it.
var ErrEmptyResultSet = errors.New("managers: empty result set")

// CompileOptions tune how a statement is compiled.
type CompileOptions struct {
	// ElideEmpty lets a statement that can produce no rows fail with
	// ErrEmptyResultSet instead of rendering an always-false query.
	ElideEmpty bool

	// StripBranchAliases drops column aliases from every branch of a set
	// operation except the leftmost, whose aliases name the result columns.
	StripBranchAliases bool

	// stripAliases applies to the statement itself; set for inner branches.
	stripAliases bool
}

// DefaultCompileOptions are the options ToSQL uses.
var DefaultCompileOptions = CompileOptions{ElideEmpty: true}

// Compiler turns a statement into SQL text and bind parameters.
type Compiler interface {
	AsSQL() (string, []any, error)
}

// Statement is a query the CTE layer can compile, resolve columns against,
// and relabel. Select, set-operation and update managers implement it.
type Statement interface {
	nodes.Node

	// Compiler returns a compiler rendering the statement with v. The visitor
	// is not reset, so several statements can share one parameter sequence.
	Compiler(v nodes.Visitor, opts CompileOptions) Compiler

	// ResolveRef resolves a column name against the statement's output.
	ResolveRef(name string) (nodes.Node, error)

	// OutputColumns lists the names of the selected columns, when known.
	OutputColumns() []string

	// Relabeled returns a copy with relation names rewritten.
	Relabeled(changes map[string]string) Statement

	// CloneStatement returns a copy safe to modify.
	CloneStatement() Statement

	// IsEmpty reports whether the statement is statically known to return no rows.
	IsEmpty() bool

	// JoinNodes returns the joins of the statement's FROM clause.
	JoinNodes() []*nodes.JoinNode
}

// Explainer is implemented by statements that carry an EXPLAIN prefix.
type Explainer interface {
	ExplainNode() *nodes.ExplainNode
	SetExplain(e *nodes.ExplainNode)
}

// compilerFunc adapts a function to the Compiler interface.
type compilerFunc func() (string, []any, error)

func (f compilerFunc) AsSQL() (string, []any, error) { return f() }

// compile runs generate with v without resetting it and returns only the
// parameters appended by this call. Errors recorded by the visitor while
// rendering are reported as the compile error.
func compile(v nodes.Visitor, generate func(nodes.Visitor) (string, error)) (string, []any, error) {
	p, _ := v.(nodes.Parameterizer)
	start := 0
	if p != nil {
		start = len(p.Params())
	}

	sql, err := generate(v)
	if err != nil {
		return "", nil, err
	}
	if r, ok := v.(nodes.ErrorRecorder); ok && r.Err() != nil {
		return "", nil, r.Err()
	}

	if p == nil {
		return sql, nil, nil
	}
	params := p.Params()
	if len(params) == start {
		return sql, nil, nil
	}
	return sql, append([]any(nil), params[start:]...), nil
}

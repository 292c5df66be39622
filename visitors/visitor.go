// Package visitors renders node trees as SQL for PostgreSQL, SQLite and
// MySQL.
//
// A visitor is single-use per statement: call Reset between renders, then
// read Params and Err. Render-time failures (an unresolvable CTE column, an
// unsupported clause, an unsafe type name) never panic; the first one is
// recorded and the managers return it from ToSQL.
package visitors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/internal/quoting"
	"github.com/bawdo/gosbeecte/nodes"
)

var (
	// ErrUnsupported is recorded when a node uses syntax the dialect cannot
	// express.
	ErrUnsupported = errors.New("visitors: unsupported by dialect")

	// ErrUnsafeToken is recorded when a type name, function name or EXPLAIN
	// option would be emitted verbatim but contains characters outside its
	// allowed set.
	ErrUnsafeToken = errors.New("visitors: unsafe SQL token")

	// ErrUnsupportedValue is recorded for literals of a Go type with no
	// inline SQL form.
	ErrUnsupportedValue = errors.New("visitors: unsupported literal value")
)

// Option configures a visitor at construction time.
type Option func(*baseVisitor)

// WithParams renders literals as bind placeholders and collects their
// values, retrievable through Params. MySQL visitors start in this mode.
func WithParams() Option {
	return func(b *baseVisitor) { b.parameterize = true }
}

// WithoutParams inlines literals with string escaping only. Use it for
// logging and debugging, never for statements built from user input.
func WithoutParams() Option {
	return func(b *baseVisitor) { b.parameterize = false }
}

// baseVisitor holds the rendering shared by all dialects. Dialects embed it
// and set outer to themselves, so recursion reaches their overrides.
type baseVisitor struct {
	outer        nodes.Visitor
	ident        quoting.Style
	placeholder  func(position int) string // position is 1-based
	parameterize bool
	params       []any
	err          error
}

func newBase(outer nodes.Visitor, ident quoting.Style, placeholder func(int) string, opts []Option) *baseVisitor {
	b := &baseVisitor{outer: outer, ident: ident, placeholder: placeholder}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Params returns the values bound since the last Reset, in placeholder
// order.
func (b *baseVisitor) Params() []any { return b.params }

// Reset clears bound values and the recorded error.
func (b *baseVisitor) Reset() {
	b.params = nil
	b.err = nil
}

// RecordError keeps the first failure of a render.
func (b *baseVisitor) RecordError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns the first error recorded since the last Reset.
func (b *baseVisitor) Err() error { return b.err }

func (b *baseVisitor) quote(name string) string { return b.ident.Ident(name) }

func (b *baseVisitor) quoteAll(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = b.quote(n)
	}
	return strings.Join(out, ", ")
}

// render renders every node through the outer visitor and joins the
// results with sep.
func (b *baseVisitor) render(list []nodes.Node, sep string) string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.Accept(b.outer)
	}
	return strings.Join(out, sep)
}

// bind appends val to the parameters and returns its placeholder.
func (b *baseVisitor) bind(val any) string {
	b.params = append(b.params, val)
	return b.placeholder(len(b.params))
}

// value renders a Go value: a placeholder in parameterized mode, an
// inline constant otherwise. nil is always NULL.
func (b *baseVisitor) value(val any) string {
	if val == nil {
		return "NULL"
	}
	if b.parameterize {
		return b.bind(val)
	}
	return b.constant(val)
}

// constant renders val inline regardless of mode, for grammar positions
// that reject placeholders (CYCLE ... SET col TO v DEFAULT v).
func (b *baseVisitor) constant(val any) string {
	switch v := val.(type) {
	case nil:
		return "NULL"
	case string:
		return quoting.String(v)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%g", v)
	}
	b.RecordError(errors.Wrapf(ErrUnsupportedValue, "%T", val))
	return "NULL"
}

// token passes s through verbatim when every rune is a letter, a digit,
// or one of extra. Otherwise it records ErrUnsafeToken.
func (b *baseVisitor) token(kind, s, extra string) string {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		case strings.ContainsRune(extra, r):
		default:
			b.RecordError(errors.Wrapf(ErrUnsafeToken, "%s %q", kind, s))
			return ""
		}
	}
	return s
}

func (b *baseVisitor) typeName(s string) string { return b.token("type name", s, " (),") }

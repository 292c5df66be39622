package cte

import (
	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/managers"
)

var (
	// ErrNameCollision is returned when two different CTEs, or a CTE and a
	// relation of the target query, share a name within one statement.
	ErrNameCollision = errors.New("cte: name collision")

	// ErrRecursiveNotReady is returned when a column of a recursive CTE is
	// resolved before its body has been built.
	ErrRecursiveNotReady = errors.New("cte: recursive CTE body not yet defined")

	// ErrCircularReference is returned when a CTE column resolves to an
	// expression that refers back to the same column.
	ErrCircularReference = errors.New("cte: circular reference")

	// ErrDoubleAttachment is returned by Combine when both queries already
	// carry CTEs.
	ErrDoubleAttachment = errors.New("cte: cannot merge queries with CTEs on both sides")

	// ErrUnsupportedStatement is returned for statement kinds that cannot
	// carry a WITH clause (DELETE).
	ErrUnsupportedStatement = errors.New("cte: statement kind does not support CTEs")

	// ErrEmptyResultSet is returned when a CTE body or the base query is
	// known to return no rows. Callers treat it as an empty result.
	ErrEmptyResultSet = managers.ErrEmptyResultSet
)

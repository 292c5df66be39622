package nodes

// CTENode renders one entry of a WITH list: "name" AS [MATERIALIZED] (query) [CYCLE ...].
// The WITH keyword itself is written by whoever assembles the list.
type CTENode struct {
	Name         string
	Query        Node
	Columns      []string // optional column list
	Materialized bool
	Cycle        *CycleClause
}

func (n *CTENode) Accept(v Visitor) string { return v.VisitCTE(n) }

// CycleClause describes the SQL:2011 CYCLE clause of a recursive CTE.
type CycleClause struct {
	Columns    []string // tracked columns
	MarkColumn string   // e.g. "is_cycle"
	MarkTrue   any      // value written to MarkColumn when a cycle is found
	MarkFalse  any
	PathColumn string // e.g. "path"
}

// CTEColumn is a column of a common table expression, qualified by the
// relation name the CTE is visible under. The column is resolved against
// the CTE body at render time through Source.
type CTEColumn struct {
	operand
	Source   ColumnSource
	Relation string // alias of the CTE in the rendering statement
	Name     string
	TypeName string // explicit output type, empty when inferred from the body
}

// ColumnSource resolves a column name against a CTE body.
type ColumnSource interface {
	ResolveColumn(name string) (Node, error)
}

func NewCTEColumn(source ColumnSource, relation, name string) *CTEColumn {
	c := &CTEColumn{Source: source, Relation: relation, Name: name}
	c.bind(c)
	return c
}

func (c *CTEColumn) Accept(v Visitor) string { return v.VisitCTEColumn(c) }

// Typed returns a copy of the column with TypeName set.
func (c *CTEColumn) Typed(typeName string) *CTEColumn {
	out := NewCTEColumn(c.Source, c.Relation, c.Name)
	out.TypeName = typeName
	return out
}

// Coerce wraps val using the column's type, like Attribute.Coerce.
func (c *CTEColumn) Coerce(val any) Node {
	return coerce(val, c.TypeName)
}

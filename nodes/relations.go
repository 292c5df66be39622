package nodes

// Table is a stored table, or the name a CTE is visible under when CTE is
// set. PrimaryKey names the column the "pk" alias stands for.
type Table struct {
	Name       string
	PrimaryKey string
	CTE        bool
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

// NewTableWithKey declares the primary key column, so "pk" resolves on
// queries selecting from the table.
func NewTableWithKey(name, primaryKey string) *Table {
	return &Table{Name: name, PrimaryKey: primaryKey}
}

func (t *Table) Accept(v Visitor) string { return v.VisitTable(t) }

func (t *Table) Col(name string) *Attribute { return NewAttribute(t, name) }

func (t *Table) Alias(name string) *TableAlias {
	return &TableAlias{Relation: t, AliasName: name}
}

// Star is "table".*.
func (t *Table) Star() *StarNode { return &StarNode{Table: t} }

// TableAlias is "relation AS alias"; the relation may be a subquery.
type TableAlias struct {
	Relation  Node
	AliasName string
}

func (ta *TableAlias) Accept(v Visitor) string { return v.VisitTableAlias(ta) }

func (ta *TableAlias) Col(name string) *Attribute { return NewAttribute(ta, name) }

// RelationName is the name columns of n are qualified with: the table name
// or the alias. Other nodes give "".
func RelationName(n Node) string {
	switch r := n.(type) {
	case *Table:
		return r.Name
	case *TableAlias:
		return r.AliasName
	}
	return ""
}

// TableSourceName looks through an alias to the stored table behind it.
// Aliased subqueries give the alias.
func TableSourceName(n Node) string {
	if ta, ok := n.(*TableAlias); ok {
		if tbl, ok := ta.Relation.(*Table); ok {
			return tbl.Name
		}
		return ta.AliasName
	}
	return RelationName(n)
}

// JoinType is the kind of JOIN.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
)

var joinSQL = [...]string{
	InnerJoin:      "INNER JOIN",
	LeftOuterJoin:  "LEFT OUTER JOIN",
	RightOuterJoin: "RIGHT OUTER JOIN",
	FullOuterJoin:  "FULL OUTER JOIN",
	CrossJoin:      "CROSS JOIN",
}

// String returns the SQL keyword of the join.
func (t JoinType) String() string {
	if t < 0 || int(t) >= len(joinSQL) {
		return "JOIN"
	}
	return joinSQL[t]
}

// JoinNode is one JOIN of a FROM clause. On is nil for CROSS JOIN.
type JoinNode struct {
	Left  Node
	Right Node
	Type  JoinType
	On    Node
}

func (n *JoinNode) Accept(v Visitor) string { return v.VisitJoin(n) }

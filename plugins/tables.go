package plugins

import "github.com/bawdo/gosbeecte/nodes"

// TableRef is a stored table a statement reads or writes. Relation is the
// node columns are qualified with (the alias when there is one); Name is
// the table's own name.
type TableRef struct {
	Relation nodes.Node
	Name     string
}

// CollectTables lists the stored tables of a SELECT: the FROM relation and
// every join target. CTE relations are skipped, since the rows they expose
// are whatever their body selects. Aliased subqueries are reported under
// their alias.
func CollectTables(core *nodes.SelectCore) []TableRef {
	var refs []TableRef
	if ref, ok := Ref(core.From); ok {
		refs = append(refs, ref)
	}
	for _, j := range core.Joins {
		if ref, ok := Ref(j.Right); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Ref describes a single relation, reporting false for CTEs and for nodes
// that are not relations at all.
func Ref(n nodes.Node) (TableRef, bool) {
	switch r := n.(type) {
	case *nodes.Table:
		return TableRef{Relation: r, Name: r.Name}, !r.CTE
	case *nodes.TableAlias:
		t, ok := r.Relation.(*nodes.Table)
		if !ok {
			return TableRef{Relation: r, Name: r.AliasName}, true
		}
		return TableRef{Relation: r, Name: t.Name}, !t.CTE
	}
	return TableRef{}, false
}

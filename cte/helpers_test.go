package cte

import (
	"testing"

	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/visitors"
)

var (
	regions = nodes.NewTable("region")
	orders  = nodes.NewTableWithKey("orders", "id")
)

// regionTotals sums order amounts per region.
func regionTotals(opts ...Option) *CTE {
	return New(Select(orders).
		Project(orders.Col("region_id"), nodes.Sum(orders.Col("amount")).As("total")).
		Group(orders.Col("region_id")), opts...)
}

// regionTree walks the region tree from the roots, tracking the path and
// depth of each region.
func regionTree(t *testing.T, opts ...Option) *CTE {
	t.Helper()
	c, err := Recursive(func(c *CTE) (Body, error) {
		base := Select(regions).
			Where(regions.Col("parent_id").IsNull()).
			Project(
				regions.Col("name"),
				regions.Col("name").As("path"),
				nodes.NewAliasNode(nodes.Literal(0), "depth"),
			)
		rec, err := c.Join(Select(regions), regions.Col("parent_id").Eq(c.Col("name")))
		if err != nil {
			return nil, err
		}
		rec = rec.Project(
			regions.Col("name"),
			c.Col("path").Concat(" / ").Concat(regions.Col("name")).As("path"),
			c.Col("depth").Plus(1).As("depth"),
		)
		return base.UnionAll(rec), nil
	}, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func pg() nodes.Visitor { return visitors.NewPostgresVisitor() }

func assertQuerySQL(t *testing.T, v nodes.Visitor, q *Query, expected string) {
	t.Helper()
	got, _, err := q.ToSQL(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

func mustJoin(t *testing.T) func(*Query, error) *Query {
	t.Helper()
	return func(q *Query, err error) *Query {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return q
	}
}

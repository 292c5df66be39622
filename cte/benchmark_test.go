package cte

import (
	"testing"

	"github.com/bawdo/gosbeecte/plugins/softdelete"
	"github.com/bawdo/gosbeecte/visitors"
)

// totalsQuery joins regions to their order totals.
func totalsQuery(b *testing.B) *Query {
	b.Helper()
	totals := regionTotals()
	q, err := totals.Join(Select(regions), regions.Col("name").Eq(totals.Col("region_id")))
	if err != nil {
		b.Fatal(err)
	}
	return q.Project(regions.Col("name"), totals.Col("total")).
		Where(totals.Col("total").Gt(100)).
		Order(totals.Col("total").Desc()).
		With(totals)
}

// BenchmarkJoinedCTE benchmarks a single CTE joined into a select.
func BenchmarkJoinedCTE(b *testing.B) {
	q := totalsQuery(b)
	v := visitors.NewPostgresVisitor()

	b.ResetTimer()
	for b.Loop() {
		_, _, _ = q.ToSQL(v)
	}
}

// BenchmarkParameterizedCTE benchmarks parameterized mode overhead.
func BenchmarkParameterizedCTE(b *testing.B) {
	q := totalsQuery(b)
	v := visitors.NewPostgresVisitor(visitors.WithParams())

	b.ResetTimer()
	for b.Loop() {
		_, _, _ = q.ToSQL(v)
	}
}

// BenchmarkRecursiveCTE benchmarks building and compiling a recursive CTE.
func BenchmarkRecursiveCTE(b *testing.B) {
	v := visitors.NewPostgresVisitor()

	b.ResetTimer()
	for b.Loop() {
		tree, err := Recursive(func(c *CTE) (Body, error) {
			rec, err := c.Join(Select(regions), regions.Col("parent_id").Eq(c.Col("name")))
			if err != nil {
				return nil, err
			}
			base := Select(regions).Where(regions.Col("parent_id").IsNull()).Project(regions.Col("name"))
			return base.UnionAll(rec.Project(regions.Col("name"))), nil
		})
		if err != nil {
			b.Fatal(err)
		}
		_, _, _ = tree.Queryset().With(tree).ToSQL(v)
	}
}

// BenchmarkUnionRenameCollisions benchmarks merging registries with renames.
func BenchmarkUnionRenameCollisions(b *testing.B) {
	left := totalsQuery(b)
	right := totalsQuery(b)
	v := visitors.NewPostgresVisitor()

	b.ResetTimer()
	for b.Loop() {
		_, _, _ = left.Union(right, RenameCollisions()).ToSQL(v)
	}
}

// BenchmarkWithTransformers benchmarks the plugin pipeline cost.
func BenchmarkWithTransformers(b *testing.B) {
	q := totalsQuery(b).Use(softdelete.New(softdelete.WithTables("region")))
	v := visitors.NewPostgresVisitor()

	b.ResetTimer()
	for b.Loop() {
		_, _, _ = q.ToSQL(v)
	}
}

// BenchmarkMySQL benchmarks MySQL dialect output.
func BenchmarkMySQL(b *testing.B) {
	q := totalsQuery(b)
	v := visitors.NewMySQLVisitor()

	b.ResetTimer()
	for b.Loop() {
		_, _, _ = q.ToSQL(v)
	}
}


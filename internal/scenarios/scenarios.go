// Package scenarios holds canned CTE queries over the fixture schema. They
// back the ctesh commands and double as end-to-end checks of the cte
// package against a real database.
package scenarios

import (
	"context"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bawdo/gosbeecte/cte"
	"github.com/bawdo/gosbeecte/internal/db"
	"github.com/bawdo/gosbeecte/managers"
	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/plugins/softdelete"
)

// ErrUnknownScenario is returned by Lookup for a name with no scenario.
var ErrUnknownScenario = errors.New("unknown scenario")

var (
	regions  = nodes.NewTableWithKey("region", "name")
	orders   = nodes.NewTableWithKey("orders", "id")
	keypairs = nodes.NewTableWithKey("keypair", "id")
)

// Scenario is a named statement over the fixture schema.
type Scenario struct {
	Name        string
	Description string
	// Mutates is set for statements that change rows instead of returning
	// them.
	Mutates bool
	Build   func() (*cte.Query, error)
}

// Run builds the scenario and runs it on conn. A mutating scenario yields a
// single "rows_affected" column.
func (s Scenario) Run(ctx context.Context, conn *db.Conn) (*db.Result, error) {
	q, err := s.Build()
	if err != nil {
		return nil, errors.Wrapf(err, "build %s", s.Name)
	}
	if !s.Mutates {
		return conn.Run(ctx, q)
	}
	n, err := conn.ExecStatement(ctx, q)
	if err != nil {
		return nil, err
	}
	return &db.Result{
		Columns: []string{"rows_affected"},
		Rows:    [][]string{{strconv.FormatInt(n, 10)}},
	}, nil
}

var registry = []Scenario{
	{
		Name:        "region-totals",
		Description: "order totals of the regions orbiting the sun, joined from a CTE",
		Build:       regionTotals,
	},
	{
		Name:        "region-rank",
		Description: "regions orbiting the sun ranked by order total with ROW_NUMBER over the CTE",
		Build:       regionRank,
	},
	{
		Name:        "big-regions",
		Description: "every region left joined to the totals of regions with more than 100 ordered",
		Build:       bigRegions,
	},
	{
		Name:        "empty-left-join",
		Description: "regions left joined to a CTE known to be empty",
		Build:       emptyLeftJoin,
	},
	{
		Name:        "region-tree",
		Description: "recursive walk of the region tree, listing regions two levels below a root",
		Build:       regionTree,
	},
	{
		Name:        "region-cycle",
		Description: "recursive region walk with a CYCLE clause (PostgreSQL only)",
		Build:       regionCycle,
	},
	{
		Name:        "keypair-tree",
		Description: "recursive walk of the keypair chain with the depth of each pair",
		Build:       keypairTree,
	},
	{
		Name:        "small-and-large",
		Description: "UNION of two queries whose CTEs share a name, renamed apart",
		Build:       smallAndLarge,
	},
	{
		Name:        "materialized-totals",
		Description: "region totals above 100 read from a MATERIALIZED CTE",
		Build:       materializedTotals,
	},
	{
		Name:        "raw-counts",
		Description: "orders above 10 counted per region by a raw SQL CTE",
		Build:       rawCounts,
	},
	{
		Name:        "live-totals",
		Description: "region totals over orders that are not soft deleted",
		Build:       liveTotals,
	},
	{
		Name:        "double-big-orders",
		Description: "UPDATE doubling the orders of regions with more than 100 ordered",
		Mutates:     true,
		Build:       doubleBigOrders,
	},
}

// All returns every scenario sorted by name.
func All() []Scenario {
	out := append([]Scenario(nil), registry...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the scenario called name.
func Lookup(name string) (Scenario, error) {
	for _, s := range registry {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, errors.Wrapf(ErrUnknownScenario, "%q", name)
}

// totals sums order amounts per region.
func totals(opts ...cte.Option) *cte.CTE {
	return cte.New(cte.Select(orders).
		Project(orders.Col("region_id"), nodes.Sum(orders.Col("amount")).As("total")).
		Group(orders.Col("region_id")), opts...)
}

func regionTotals() (*cte.Query, error) {
	c := totals(cte.Named("totals"))
	q, err := c.Join(cte.Select(regions), regions.Col("name").Eq(c.Col("region_id")))
	if err != nil {
		return nil, err
	}
	return q.With(c).
		Project(regions.Col("name"), regions.Col("parent_id"), c.Col("total")).
		Where(regions.Col("parent_id").Eq("sun")).
		Order(regions.Col("name").Asc()), nil
}

func regionRank() (*cte.Query, error) {
	c := totals(cte.Named("totals"))
	q, err := c.Join(cte.Select(regions), regions.Col("name").Eq(c.Col("region_id")))
	if err != nil {
		return nil, err
	}
	window := nodes.NewWindowDef().
		Partition(regions.Col("parent_id")).
		Order(c.Col("total").Desc())
	return q.With(c).
		Project(
			regions.Col("name"),
			c.Col("total"),
			nodes.RowNumber().Over(window).As("rank"),
		).
		Where(regions.Col("parent_id").Eq("sun")).
		Order(c.Col("total").Desc()), nil
}

func bigRegions() (*cte.Query, error) {
	c := cte.New(cte.Select(orders).
		Project(orders.Col("region_id"), nodes.Sum(orders.Col("amount")).As("total")).
		Group(orders.Col("region_id")).
		Having(nodes.Sum(orders.Col("amount")).Gt(100)), cte.Named("big"))
	q, err := c.LeftJoin(cte.Select(regions), regions.Col("name").Eq(c.Col("region_id")))
	if err != nil {
		return nil, err
	}
	return q.With(c).
		Project(regions.Col("name"), c.Col("total")).
		Order(regions.Col("name").Asc()), nil
}

func emptyLeftJoin() (*cte.Query, error) {
	c := cte.New(cte.Select(orders).
		Project(orders.Col("region_id"), orders.Col("amount")).
		None(), cte.Named("nothing"))
	q, err := c.LeftJoin(cte.Select(regions), regions.Col("name").Eq(c.Col("region_id")))
	if err != nil {
		return nil, err
	}
	return q.With(c).
		Project(regions.Col("name"), c.Col("amount")).
		Order(regions.Col("name").Asc()), nil
}

// tree walks the region tree down from the roots, tracking the path and
// depth of each region. Depth constants are written inline so recursive
// column types stay integer when the statement is parameterized.
func tree(opts ...cte.Option) (*cte.CTE, error) {
	return cte.Recursive(func(c *cte.CTE) (cte.Body, error) {
		base := cte.Select(regions).
			Where(regions.Col("parent_id").IsNull()).
			Project(
				regions.Col("name"),
				regions.Col("name").As("path"),
				nodes.NewSqlLiteral("0").As("depth"),
			)
		rec, err := c.Join(cte.Select(regions), regions.Col("parent_id").Eq(c.Col("name")))
		if err != nil {
			return nil, err
		}
		rec = rec.Project(
			regions.Col("name"),
			c.Col("path").Concat(nodes.NewSqlLiteral("' / '")).Concat(regions.Col("name")).As("path"),
			c.Col("depth").Plus(nodes.NewSqlLiteral("1")).As("depth"),
		)
		return base.UnionAll(rec), nil
	}, append([]cte.Option{cte.Named("tree")}, opts...)...)
}

func regionTree() (*cte.Query, error) {
	c, err := tree()
	if err != nil {
		return nil, err
	}
	return c.Queryset().With(c).
		Where(c.Col("depth").Eq(2)).
		Order(c.Col("name").Asc()), nil
}

func regionCycle() (*cte.Query, error) {
	c, err := tree(cte.DetectCycles(cte.Cycle{Columns: []string{"name"}, PathColumn: "visited"}))
	if err != nil {
		return nil, err
	}
	return c.Queryset().With(c).
		Where(c.Col("is_cycle").Eq(false)).
		Order(c.Col("path").Asc()), nil
}

func keypairTree() (*cte.Query, error) {
	c, err := cte.Recursive(func(c *cte.CTE) (cte.Body, error) {
		base := cte.Select(keypairs).
			Where(keypairs.Col("parent_id").IsNull()).
			Project(
				keypairs.Col("id"),
				keypairs.Col("key"),
				keypairs.Col("value"),
				nodes.NewSqlLiteral("0").As("depth"),
			)
		rec, err := c.Join(cte.Select(keypairs), keypairs.Col("parent_id").Eq(c.Col("id")))
		if err != nil {
			return nil, err
		}
		rec = rec.Project(
			keypairs.Col("id"),
			keypairs.Col("key"),
			keypairs.Col("value"),
			c.Col("depth").Plus(nodes.NewSqlLiteral("1")).As("depth"),
		)
		return base.UnionAll(rec), nil
	}, cte.Named("pairs"))
	if err != nil {
		return nil, err
	}
	return c.Queryset().With(c).Order(c.Col("id").Asc()), nil
}

func smallAndLarge() (*cte.Query, error) {
	small := cte.New(cte.Select(orders).
		Project(orders.Col("region_id")).
		Where(orders.Col("amount").Lt(3)))
	large := cte.New(cte.Select(orders).
		Project(orders.Col("region_id")).
		Where(orders.Col("amount").GtEq(1000)))
	q := small.Queryset().With(small).
		Union(large.Queryset().With(large), cte.RenameCollisions())
	return q, q.Err()
}

func materializedTotals() (*cte.Query, error) {
	c := totals(cte.Named("totals"), cte.Materialized())
	return c.Queryset().With(c).
		Where(c.Col("total").Gt(100)).
		Order(c.Col("region_id").Asc()), nil
}

func rawCounts() (*cte.Query, error) {
	c := cte.New(cte.NewRaw(
		`SELECT region_id, COUNT(*) AS n FROM orders WHERE amount > ? GROUP BY region_id`,
		[]any{10},
		cte.RawColumn{Name: "region_id", Type: "text"},
		cte.RawColumn{Name: "n", Type: "integer"},
	), cte.Named("counts"))
	q, err := c.Join(cte.Select(regions), regions.Col("name").Eq(c.Col("region_id")))
	if err != nil {
		return nil, err
	}
	return q.With(c).
		Project(regions.Col("name"), c.Col("n")).
		Order(regions.Col("name").Asc()), nil
}

func liveTotals() (*cte.Query, error) {
	c := cte.New(cte.Select(orders).
		Use(softdelete.New()).
		Project(orders.Col("region_id"), nodes.Sum(orders.Col("amount")).As("total")).
		Group(orders.Col("region_id")), cte.Named("live"))
	return c.Queryset().With(c).Order(c.Col("region_id").Asc()), nil
}

func doubleBigOrders() (*cte.Query, error) {
	c := totals(cte.Named("totals"))
	big := c.Queryset().
		Project(c.Col("region_id")).
		Where(c.Col("total").Gt(100))
	upd := managers.NewUpdateManager(orders).
		Set(orders.Col("amount"), orders.Col("amount").Multiply(2)).
		Where(orders.Col("region_id").In(big))
	return cte.Select(orders).With(c).Update(upd), nil
}

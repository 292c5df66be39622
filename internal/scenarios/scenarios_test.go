package scenarios

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/gosbeecte/internal/db"
	"github.com/bawdo/gosbeecte/internal/fixtures"
	"github.com/bawdo/gosbeecte/managers"
	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/visitors"
)

func seeded(t *testing.T) *db.Conn {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, db.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	seed, err := fixtures.Default()
	require.NoError(t, err)
	require.NoError(t, seed.Install(ctx, conn))
	return conn
}

func run(t *testing.T, conn *db.Conn, name string) *db.Result {
	t.Helper()
	s, err := Lookup(name)
	require.NoError(t, err)
	res, err := s.Run(context.Background(), conn)
	require.NoError(t, err)
	return res
}

// --- Registry ---

func TestAllIsSortedAndComplete(t *testing.T) {
	t.Parallel()
	all := All()
	require.Len(t, all, len(registry))
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
		assert.NotEmpty(t, s.Description, s.Name)
		assert.NotNil(t, s.Build, s.Name)
	}
	assert.True(t, sort.StringsAreSorted(names))
}

func TestLookupUnknown(t *testing.T) {
	t.Parallel()
	_, err := Lookup("no-such-scenario")
	require.ErrorIs(t, err, ErrUnknownScenario)
}

func TestEveryScenarioCompiles(t *testing.T) {
	t.Parallel()
	for _, s := range All() {
		q, err := s.Build()
		require.NoError(t, err, s.Name)

		_, _, err = q.ToSQL(visitors.NewPostgresVisitor(visitors.WithParams()))
		assert.NoError(t, err, "postgres %s", s.Name)

		_, _, err = q.ToSQL(visitors.NewMySQLVisitor())
		if s.Name == "region-cycle" {
			assert.ErrorIs(t, err, visitors.ErrUnsupported)
			continue
		}
		assert.NoError(t, err, "mysql %s", s.Name)
	}
}

func TestRegionCycleRendersCycleClause(t *testing.T) {
	t.Parallel()
	s, err := Lookup("region-cycle")
	require.NoError(t, err)
	q, err := s.Build()
	require.NoError(t, err)
	sql, params, err := q.ToSQL(visitors.NewPostgresVisitor(visitors.WithParams()))
	require.NoError(t, err)
	assert.Contains(t, sql, `CYCLE "name" SET "is_cycle" TO TRUE DEFAULT FALSE USING "visited"`)
	assert.Contains(t, sql, `WHERE "tree"."is_cycle" = $1`)
	assert.Equal(t, []any{false}, params)
}

// --- Against SQLite ---

func TestRegionTotals(t *testing.T) {
	t.Parallel()
	conn := seeded(t)
	res := run(t, conn, "region-totals")
	require.NotEmpty(t, res.Rows)

	// The same totals computed without a CTE.
	direct := managers.NewSelectManager(regions)
	direct.Join(orders).On(regions.Col("name").Eq(orders.Col("region_id")))
	direct.Select(regions.Col("name"), regions.Col("parent_id"), nodes.Sum(orders.Col("amount")).As("total")).
		Where(regions.Col("parent_id").Eq("sun")).
		Group(regions.Col("name"), regions.Col("parent_id")).
		Order(regions.Col("name").Asc())
	want, err := conn.Run(context.Background(), direct)
	require.NoError(t, err)

	assert.Equal(t, want.Columns, res.Columns)
	assert.Equal(t, want.Rows, res.Rows)
	assert.Equal(t, "126", res.Map("total")["earth"])
}

func TestRegionRank(t *testing.T) {
	t.Parallel()
	res := run(t, seeded(t), "region-rank")
	assert.Equal(t, []string{"earth", "mars", "venus", "mercury"}, res.Column(0))
	assert.Equal(t, []string{"1", "2", "3", "4"}, res.Column(2))
}

func TestBigRegionsKeepsUnmatchedRows(t *testing.T) {
	t.Parallel()
	res := run(t, seeded(t), "big-regions")
	require.Len(t, res.Rows, 11)
	totals := res.Map("total")
	assert.Equal(t, "1000", totals["sun"])
	assert.Equal(t, "2000", totals["proxima centauri"])
	assert.Equal(t, "126", totals["earth"])
	assert.Equal(t, "123", totals["mars"])
	assert.Equal(t, "NULL", totals["moon"])
	assert.Equal(t, "NULL", totals["bernard's star"])
}

func TestEmptyLeftJoin(t *testing.T) {
	t.Parallel()
	res := run(t, seeded(t), "empty-left-join")
	require.Len(t, res.Rows, 11)
	for _, v := range res.Column(1) {
		assert.Equal(t, "NULL", v)
	}
}

func TestRegionTree(t *testing.T) {
	t.Parallel()
	res := run(t, seeded(t), "region-tree")
	assert.Equal(t, []string{"name", "path", "depth"}, res.Columns)
	assert.Equal(t, []string{"deimos", "moon", "phobos"}, res.Column(0))
	assert.Equal(t, "sun / earth / moon", res.Map("path")["moon"])
}

func TestRegionCycleUnsupportedOnSQLite(t *testing.T) {
	t.Parallel()
	s, err := Lookup("region-cycle")
	require.NoError(t, err)
	_, err = s.Run(context.Background(), seeded(t))
	require.ErrorIs(t, err, visitors.ErrUnsupported)
}

func TestKeypairTree(t *testing.T) {
	t.Parallel()
	res := run(t, seeded(t), "keypair-tree")
	assert.Equal(t, [][]string{
		{"1", "level 1", "1", "0"},
		{"2", "level 2", "1", "1"},
		{"3", "level 2", "2", "1"},
		{"4", "level 3", "1", "2"},
	}, res.Rows)
}

func TestSmallAndLarge(t *testing.T) {
	t.Parallel()
	res := run(t, seeded(t), "small-and-large")
	got := res.Column(0)
	sort.Strings(got)
	assert.Equal(t, []string{"moon", "proxima centauri", "sun"}, got)
}

func TestMaterializedTotals(t *testing.T) {
	t.Parallel()
	res := run(t, seeded(t), "materialized-totals")
	assert.Equal(t, []string{"earth", "mars", "proxima centauri", "sun"}, res.Column(0))
}

func TestRawCounts(t *testing.T) {
	t.Parallel()
	res := run(t, seeded(t), "raw-counts")
	assert.Equal(t, map[string]string{
		"earth":              "4",
		"mars":               "3",
		"mercury":            "2",
		"proxima centauri":   "1",
		"proxima centauri b": "2",
		"sun":                "1",
		"venus":              "4",
	}, res.Map("n"))
}

func TestLiveTotalsSkipsDeletedOrders(t *testing.T) {
	t.Parallel()
	conn := seeded(t)
	require.NoError(t, conn.Exec(context.Background(),
		`INSERT INTO orders (id, region_id, amount, user_id, deleted_at) VALUES (?, ?, ?, ?, ?)`,
		23, "mars", 500, 1, "2024-01-01 00:00:00"))

	res := run(t, conn, "live-totals")
	totals := res.Map("total")
	assert.Len(t, totals, 8)
	assert.Equal(t, "123", totals["mars"])
	assert.Equal(t, "6", totals["moon"])
}

func TestDoubleBigOrders(t *testing.T) {
	t.Parallel()
	conn := seeded(t)
	res := run(t, conn, "double-big-orders")
	assert.Equal(t, [][]string{{"9"}}, res.Rows)

	sum, err := conn.Query(context.Background(), `SELECT SUM(amount) FROM orders`)
	require.NoError(t, err)
	assert.Equal(t, []string{"6656"}, sum.Column(0))
}

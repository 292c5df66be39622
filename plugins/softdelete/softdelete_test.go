package softdelete

import (
	"testing"

	"github.com/bawdo/gosbeecte/cte"
	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/visitors"
)

func toSQL(t *testing.T, core *nodes.SelectCore) string {
	t.Helper()
	return core.Accept(visitors.NewPostgresVisitor())
}

func transform(t *testing.T, sd *SoftDelete, core *nodes.SelectCore) string {
	t.Helper()
	result, err := sd.TransformSelect(core)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return toSQL(t, result)
}

func ordersJoinRegions() *nodes.SelectCore {
	orders := nodes.NewTable("orders")
	regions := nodes.NewTable("region")
	return &nodes.SelectCore{
		From: orders,
		Joins: []*nodes.JoinNode{{
			Left:  orders,
			Right: regions,
			Type:  nodes.InnerJoin,
			On:    orders.Col("region_id").Eq(regions.Col("name")),
		}},
	}
}

// --- Default behaviour ---

func TestDefaultColumnDeletedAt(t *testing.T) {
	t.Parallel()
	core := &nodes.SelectCore{From: nodes.NewTable("orders")}

	got := transform(t, New(), core)
	expected := `SELECT * FROM "orders" WHERE "orders"."deleted_at" IS NULL`
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

func TestAppliedToJoinedTables(t *testing.T) {
	t.Parallel()
	got := transform(t, New(WithColumn("removed_at")), ordersJoinRegions())
	expected := `SELECT * FROM "orders" INNER JOIN "region" ON "orders"."region_id" = "region"."name" ` +
		`WHERE "orders"."removed_at" IS NULL AND "region"."removed_at" IS NULL`
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

func TestAppliedToTableAlias(t *testing.T) {
	t.Parallel()
	core := &nodes.SelectCore{From: nodes.NewTable("orders").Alias("o")}

	got := transform(t, New(WithTables("orders")), core)
	expected := `SELECT * FROM "orders" AS "o" WHERE "o"."deleted_at" IS NULL`
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

// --- Table selection ---

func TestWithTablesFiltersToSpecifiedTables(t *testing.T) {
	t.Parallel()
	got := transform(t, New(WithTables("orders")), ordersJoinRegions())
	expected := `SELECT * FROM "orders" INNER JOIN "region" ON "orders"."region_id" = "region"."name" ` +
		`WHERE "orders"."deleted_at" IS NULL`
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

func TestWithTableColumnFallsBackToDefault(t *testing.T) {
	t.Parallel()
	sd := New(
		WithTableColumn("region", "removed_at"),
		WithTables("orders", "region"),
	)
	got := transform(t, sd, ordersJoinRegions())
	expected := `SELECT * FROM "orders" INNER JOIN "region" ON "orders"."region_id" = "region"."name" ` +
		`WHERE "orders"."deleted_at" IS NULL AND "region"."removed_at" IS NULL`
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

func TestNoTablesIsNoOp(t *testing.T) {
	t.Parallel()
	result, err := New().TransformSelect(&nodes.SelectCore{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Wheres) != 0 {
		t.Errorf("expected no wheres, got %d", len(result.Wheres))
	}
}

// --- Common table expressions ---

func TestSkipsJoinedCTE(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	totals := cte.New(cte.Select(orders).Project(orders.Col("region_id")), cte.Named("totals"))

	q, err := totals.Join(cte.Select(orders), orders.Col("region_id").Eq(totals.Col("region_id")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sql, _, err := q.Use(New()).With(totals).ToSQL(visitors.NewPostgresVisitor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `WITH RECURSIVE "totals" AS (SELECT "orders"."region_id" FROM "orders") ` +
		`SELECT * FROM "orders" INNER JOIN "totals" ON "orders"."region_id" = "totals"."region_id" ` +
		`WHERE "orders"."deleted_at" IS NULL`
	if sql != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, sql)
	}
}

func TestFiltersCTEBody(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	body := cte.Select(orders).Project(orders.Col("region_id")).Use(New())
	totals := cte.New(body, cte.Named("totals"))

	sql, _, err := totals.Queryset().With(totals).ToSQL(visitors.NewPostgresVisitor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `WITH RECURSIVE "totals" AS (SELECT "orders"."region_id" FROM "orders" WHERE "orders"."deleted_at" IS NULL) ` +
		`SELECT "totals"."region_id" FROM "totals"`
	if sql != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, sql)
	}
}

func TestCTEAliasIsSkipped(t *testing.T) {
	t.Parallel()
	cteTable := &nodes.Table{Name: "totals", CTE: true}
	core := &nodes.SelectCore{From: cteTable.Alias("t")}

	got := transform(t, New(), core)
	expected := `SELECT * FROM "totals" AS "t"`
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

// --- DML ---

func TestFiltersUpdateTarget(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	stmt := &nodes.UpdateStatement{
		Table:       orders,
		Assignments: []*nodes.AssignmentNode{{Left: orders.Col("amount"), Right: nodes.Literal(0)}},
		Wheres:      []nodes.Node{orders.Col("region_id").Eq("moon")},
	}
	out, err := New().TransformUpdate(stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.Accept(visitors.NewPostgresVisitor())
	expected := `UPDATE "orders" SET "amount" = 0 WHERE "orders"."region_id" = 'moon' AND "orders"."deleted_at" IS NULL`
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

func TestFiltersDeleteTarget(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		sd       *SoftDelete
		expected string
	}{
		{"default", New(), `DELETE FROM "orders" WHERE "orders"."deleted_at" IS NULL`},
		{"per table column", New(WithTableColumn("orders", "archived_at")),
			`DELETE FROM "orders" WHERE "orders"."archived_at" IS NULL`},
		{"other table only", New(WithTables("region")), `DELETE FROM "orders"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := tt.sd.TransformDelete(&nodes.DeleteStatement{From: nodes.NewTable("orders")})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := out.Accept(visitors.NewPostgresVisitor()); got != tt.expected {
				t.Errorf("expected:\n  %s\ngot:\n  %s", tt.expected, got)
			}
		})
	}
}

func TestLeavesInsertAlone(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	stmt := &nodes.InsertStatement{Into: orders, Columns: []nodes.Node{orders.Col("amount")}}
	out, err := New().TransformInsert(stmt)
	if err != nil || out != stmt {
		t.Errorf("expected insert unchanged, got %v, %v", out, err)
	}
}

package managers

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bawdo/gosbeecte/internal/testutil"
	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/plugins"
	"github.com/bawdo/gosbeecte/visitors"
)

func pg() nodes.Visitor { return visitors.NewPostgresVisitor() }

func assertStatementSQL(t *testing.T, v nodes.Visitor, s interface {
	ToSQL(nodes.Visitor) (string, []any, error)
}, expected string) {
	t.Helper()
	got, _, err := s.ToSQL(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != expected {
		t.Errorf("expected:\n  %s\ngot:\n  %s", expected, got)
	}
}

// --- NewSelectManager ---

func TestNewSelectManagerSetsFrom(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	m := NewSelectManager(orders)

	if m.Core.From != orders {
		t.Error("expected From to be the orders table")
	}
	if len(m.Core.Projections) != 0 || len(m.Core.Wheres) != 0 || len(m.Core.Joins) != 0 {
		t.Error("expected an empty core")
	}
}

// --- Building ---

func TestSelectReplacesProjections(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	m := NewSelectManager(orders)

	m.Select(orders.Col("id"))
	m.Project(orders.Col("region_id"), orders.Col("amount"))

	if len(m.Core.Projections) != 2 {
		t.Fatalf("expected 2 projections after replacement, got %d", len(m.Core.Projections))
	}
}

func TestWhereAppendsConditions(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	m := NewSelectManager(orders).
		Where(orders.Col("amount").Gt(10)).
		Where(orders.Col("region_id").Eq("earth"), orders.Col("id").Lt(100))

	if len(m.Core.Wheres) != 3 {
		t.Fatalf("expected 3 wheres, got %d", len(m.Core.Wheres))
	}
}

func TestJoinTypes(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	region := nodes.NewTable("region")
	m := NewSelectManager(orders)

	m.Join(region).On(orders.Col("region_id").Eq(region.Col("name")))
	m.OuterJoin(region.Alias("parent")).On(region.Col("parent_id").Eq(region.Alias("parent").Col("name")))
	m.CrossJoin(nodes.NewTable("users"))

	if len(m.Core.Joins) != 3 {
		t.Fatalf("expected 3 joins, got %d", len(m.Core.Joins))
	}
	if m.Core.Joins[0].Type != nodes.InnerJoin || m.Core.Joins[1].Type != nodes.LeftOuterJoin {
		t.Error("unexpected join types")
	}
	if m.Core.Joins[2].Type != nodes.CrossJoin || m.Core.Joins[2].On != nil {
		t.Error("expected CROSS JOIN without ON")
	}
}

func TestAddJoinAppendsPreparedJoin(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	totals := &nodes.Table{Name: "totals", CTE: true}
	join := &nodes.JoinNode{Left: orders, Right: totals, Type: nodes.InnerJoin,
		On: orders.Col("region_id").Eq(totals.Col("region_id"))}

	m := NewSelectManager(orders).AddJoin(join)
	if len(m.JoinNodes()) != 1 || m.JoinNodes()[0] != join {
		t.Error("expected the prepared join")
	}
	assertStatementSQL(t, pg(), m,
		`SELECT * FROM "orders" INNER JOIN "totals" ON "orders"."region_id" = "totals"."region_id"`)
}

func TestFluentChaining(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	m := NewSelectManager(orders).
		Select(orders.Col("region_id"), nodes.Sum(orders.Col("amount")).As("total")).
		Where(orders.Col("amount").Gt(0)).
		Group(orders.Col("region_id")).
		Having(nodes.Sum(orders.Col("amount")).Gt(100)).
		Order(orders.Col("region_id").Asc()).
		Limit(10).
		Offset(5)

	assertStatementSQL(t, pg(), m,
		`SELECT "orders"."region_id", SUM("orders"."amount") AS "total" FROM "orders" `+
			`WHERE "orders"."amount" > 0 GROUP BY "orders"."region_id" HAVING SUM("orders"."amount") > 100 `+
			`ORDER BY "orders"."region_id" ASC LIMIT 10 OFFSET 5`)
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	m := NewSelectManager(orders).Where(orders.Col("amount").Gt(10)).Use(&countingTransformer{})

	clone := m.Clone()
	clone.Where(orders.Col("id").Eq(1)).Project(orders.Col("id"))

	if len(m.Core.Wheres) != 1 || len(m.Core.Projections) != 0 {
		t.Error("modifying clone affected original")
	}
	if len(clone.Transformers()) != 1 {
		t.Error("expected transformers to be carried")
	}
}

// --- Empty results ---

func TestNoneElidedByToSQL(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	m := NewSelectManager(orders).None()
	if !m.IsEmpty() {
		t.Fatal("expected IsEmpty after None")
	}
	_, _, err := m.ToSQL(pg())
	if !errors.Is(err, ErrEmptyResultSet) {
		t.Errorf("expected ErrEmptyResultSet, got %v", err)
	}
}

func TestNoneRendersFalsePredicateWithoutElision(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	m := NewSelectManager(orders).Where(orders.Col("amount").Gt(10)).None()
	sql, _, err := m.Compiler(pg(), CompileOptions{}).AsSQL()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, sql, `SELECT * FROM "orders" WHERE "orders"."amount" > 10 AND 1 = 0`)
}

// --- EXPLAIN ---

func TestExplainPrefix(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	m := NewSelectManager(orders).Explain("ANALYZE", "VERBOSE")
	if m.ExplainNode() == nil {
		t.Fatal("expected explain node")
	}
	assertStatementSQL(t, pg(), m, `EXPLAIN ANALYZE VERBOSE SELECT * FROM "orders"`)

	m.SetExplain(nil)
	assertStatementSQL(t, pg(), m, `SELECT * FROM "orders"`)
}

// --- Compiler ---

func TestCompilerSharesParameterSequence(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	v := visitors.NewPostgresVisitor(visitors.WithParams())
	a := NewSelectManager(orders).Where(orders.Col("amount").Gt(10))
	b := NewSelectManager(orders).Where(orders.Col("amount").Lt(20))

	sqlA, paramsA, err := a.Compiler(v, DefaultCompileOptions).AsSQL()
	testutil.AssertNoError(t, err)
	sqlB, paramsB, err := b.Compiler(v, DefaultCompileOptions).AsSQL()
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, sqlA, `SELECT * FROM "orders" WHERE "orders"."amount" > $1`)
	testutil.AssertEqual(t, sqlB, `SELECT * FROM "orders" WHERE "orders"."amount" < $2`)
	if !reflect.DeepEqual(paramsA, []any{10}) || !reflect.DeepEqual(paramsB, []any{20}) {
		t.Errorf("expected each compiler to return its own params, got %v and %v", paramsA, paramsB)
	}
}

func TestCompilerStripsAliasesOfInnerBranches(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	m := NewSelectManager(orders).Select(orders.Col("amount").As("total"))
	sql, _, err := m.Compiler(pg(), CompileOptions{stripAliases: true}).AsSQL()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, sql, `SELECT "orders"."amount" FROM "orders"`)
}

func TestCompilerReportsRenderErrors(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	bad := nodes.NewCTEColumn(failingSource{}, "totals", "total")
	m := NewSelectManager(orders).Select(bad)
	_, _, err := m.ToSQL(pg())
	testutil.AssertError(t, err)
}

type failingSource struct{}

func (failingSource) ResolveColumn(name string) (nodes.Node, error) {
	return nil, errors.New("no such column: " + name)
}

// --- Column resolution ---

func TestResolveRefPrefersAliases(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	sum := nodes.Sum(orders.Col("amount"))
	m := NewSelectManager(orders).Select(orders.Col("region_id"), sum.As("total"))

	ref, err := m.ResolveRef("total")
	testutil.AssertNoError(t, err)
	if ref != nodes.Node(sum) {
		t.Errorf("expected the aliased aggregate, got %T", ref)
	}

	ref, err = m.ResolveRef("amount")
	testutil.AssertNoError(t, err)
	testutil.AssertSQL(t, pg(), ref, `"orders"."amount"`)
}

func TestResolveRefPrimaryKey(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTableWithKey("orders", "id")
	ref, err := NewSelectManager(orders).ResolveRef("pk")
	testutil.AssertNoError(t, err)
	testutil.AssertSQL(t, pg(), ref, `"orders"."id"`)

	ref, err = NewSelectManager(orders.Alias("o")).ResolveRef("pk")
	testutil.AssertNoError(t, err)
	testutil.AssertSQL(t, pg(), ref, `"o"."id"`)
}

func TestResolveRefWithoutFrom(t *testing.T) {
	t.Parallel()
	_, err := NewSelectManager(nil).ResolveRef("id")
	testutil.AssertError(t, err)
}

func TestOutputColumns(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	m := NewSelectManager(orders).Select(
		orders.Col("region_id"),
		nodes.Count(nil).As("n"),
		nodes.Star(),
	)
	if !reflect.DeepEqual(m.OutputColumns(), []string{"region_id", "n"}) {
		t.Errorf("unexpected columns %v", m.OutputColumns())
	}
}

// --- Relabeling ---

func TestRelabeledRenamesCTERelations(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	totals := &nodes.Table{Name: "totals", CTE: true}
	m := NewSelectManager(orders).
		Select(orders.Col("id"), totals.Col("total")).
		AddJoin(&nodes.JoinNode{Left: orders, Right: totals, Type: nodes.InnerJoin,
			On: orders.Col("region_id").Eq(totals.Col("region_id"))})

	out := m.Relabeled(map[string]string{"totals": "totals_2", "orders": "x"})
	assertStatementSQL(t, pg(), out.(*SelectManager),
		`SELECT "orders"."id", "totals_2"."total" FROM "orders" `+
			`INNER JOIN "totals_2" ON "orders"."region_id" = "totals_2"."region_id"`)
	assertStatementSQL(t, pg(), m,
		`SELECT "orders"."id", "totals"."total" FROM "orders" `+
			`INNER JOIN "totals" ON "orders"."region_id" = "totals"."region_id"`)
}

// --- Set operations ---

func TestSetOperationTypes(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	a := NewSelectManager(orders)
	b := NewSelectManager(orders)
	tests := []struct {
		op   *SetOperationManager
		want nodes.SetOpType
	}{
		{a.Union(b), nodes.Union},
		{a.UnionAll(b), nodes.UnionAll},
		{a.Intersect(b), nodes.Intersect},
		{a.IntersectAll(b), nodes.IntersectAll},
		{a.Except(b), nodes.Except},
		{a.ExceptAll(b), nodes.ExceptAll},
	}
	for _, tt := range tests {
		if tt.op.Type != tt.want {
			t.Errorf("expected %s, got %s", tt.want, tt.op.Type)
		}
	}
}

// --- Transformer plugin support ---

// countingTransformer appends a where clause and counts invocations.
type countingTransformer struct {
	plugins.BaseTransformer
	called int
}

func (ct *countingTransformer) TransformSelect(core *nodes.SelectCore) (*nodes.SelectCore, error) {
	ct.called++
	col := nodes.NewAttribute(core.From, "injected")
	core.Wheres = append(core.Wheres, col.Eq("by_plugin"))
	return core, nil
}

func (ct *countingTransformer) TransformInsert(stmt *nodes.InsertStatement) (*nodes.InsertStatement, error) {
	ct.called++
	return stmt, nil
}

func (ct *countingTransformer) TransformUpdate(stmt *nodes.UpdateStatement) (*nodes.UpdateStatement, error) {
	ct.called++
	return stmt, nil
}

func (ct *countingTransformer) TransformDelete(stmt *nodes.DeleteStatement) (*nodes.DeleteStatement, error) {
	ct.called++
	col := nodes.NewAttribute(stmt.From, "injected")
	stmt.Wheres = append(stmt.Wheres, col.Eq("by_plugin"))
	return stmt, nil
}

// failingTransformer returns an error.
type failingTransformer struct {
	plugins.BaseTransformer
}

var errPolicy = errors.New("policy violation: access denied")

func (failingTransformer) TransformSelect(*nodes.SelectCore) (*nodes.SelectCore, error) {
	return nil, errPolicy
}

func (failingTransformer) TransformInsert(*nodes.InsertStatement) (*nodes.InsertStatement, error) {
	return nil, errPolicy
}

func (failingTransformer) TransformUpdate(*nodes.UpdateStatement) (*nodes.UpdateStatement, error) {
	return nil, errPolicy
}

func (failingTransformer) TransformDelete(*nodes.DeleteStatement) (*nodes.DeleteStatement, error) {
	return nil, errPolicy
}

func TestTransformerRunsOnCopy(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	ct := &countingTransformer{}
	m := NewSelectManager(orders).Where(orders.Col("amount").Gt(10))
	m.Use(ct)

	assertStatementSQL(t, pg(), m,
		`SELECT * FROM "orders" WHERE "orders"."amount" > 10 AND "orders"."injected" = 'by_plugin'`)
	if ct.called != 1 {
		t.Errorf("expected transformer called once, got %d", ct.called)
	}
	if len(m.Core.Wheres) != 1 {
		t.Errorf("expected original core to have 1 where, got %d", len(m.Core.Wheres))
	}
}

func TestTransformerErrorShortCircuits(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	ct := &countingTransformer{}
	m := NewSelectManager(orders).Use(failingTransformer{}).Use(ct)

	sql, params, err := m.ToSQL(testutil.KindVisitor{})
	if !errors.Is(err, errPolicy) {
		t.Fatalf("expected policy error, got %v", err)
	}
	if sql != "" || params != nil {
		t.Errorf("expected empty result on error, got %q %v", sql, params)
	}
	if ct.called != 0 {
		t.Error("expected second transformer to not be called after first failed")
	}
}

func TestToSQLWithKindVisitor(t *testing.T) {
	t.Parallel()
	m := NewSelectManager(nodes.NewTable("orders"))

	sql, params, err := m.ToSQL(testutil.KindVisitor{})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, sql, "SelectCore")
	if params != nil {
		t.Errorf("expected nil params for non-parameterizer, got %v", params)
	}

	v := &testutil.CollectingVisitor{Collected: []any{"stale"}}
	sql, params, err = m.ToSQL(v)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, sql, "SelectCore")
	if len(params) != 0 {
		t.Errorf("expected empty params after reset, got %v", params)
	}
}

func TestToSQLResetsStaleError(t *testing.T) {
	t.Parallel()
	v := &testutil.CollectingVisitor{}
	v.RecordError(errPolicy)
	// ToSQL resets the visitor first, so a stale error is not reported.
	_, _, err := NewSelectManager(nodes.NewTable("orders")).ToSQL(v)
	testutil.AssertNoError(t, err)
}

// --- Using ---

func TestJoinUsing(t *testing.T) {
	t.Parallel()
	orders := nodes.NewTable("orders")
	totals := &nodes.Table{Name: "totals", CTE: true}
	m := NewSelectManager(orders).Join(totals).Using("region_id")
	assertStatementSQL(t, pg(), m,
		`SELECT * FROM "orders" INNER JOIN "totals" ON "orders"."region_id" = "totals"."region_id"`)

	region := nodes.NewTableWithKey("region", "name")
	parents := nodes.NewTableWithKey("parents", "name")
	m = NewSelectManager(region).OuterJoin(parents).Using("pk", "kind")
	assertStatementSQL(t, pg(), m,
		`SELECT * FROM "region" LEFT OUTER JOIN "parents" ON "region"."name" = "parents"."name" AND "region"."kind" = "parents"."kind"`)
}

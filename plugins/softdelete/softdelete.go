// Package softdelete hides soft-deleted rows by ANDing "column IS NULL"
// for each stored table a statement touches.
//
//	q := cte.Select(orders).Use(softdelete.New())
//	// SELECT * FROM "orders" WHERE "orders"."deleted_at" IS NULL
//
// SELECTs are filtered on their FROM relation and every joined table.
// UPDATE and DELETE are filtered on their target, so rows already deleted
// are neither rewritten nor deleted twice. CTE relations are never
// filtered: register the plugin on the CTE body instead, which narrows
// the rows the CTE is built from.
//
//	body := cte.Select(orders).Use(softdelete.New())
//	totals := cte.New(body, cte.Named("totals"))
//
// The column defaults to deleted_at. WithTables limits the filter to some
// tables; WithTableColumn names a different column for one table and
// limits the filter the same way.
package softdelete

import (
	"github.com/bawdo/gosbeecte/nodes"
	"github.com/bawdo/gosbeecte/plugins"
)

// SoftDelete is the Transformer. Inserts pass through unchanged.
type SoftDelete struct {
	plugins.BaseTransformer
	Column  string
	Columns map[string]string // table name to column, overriding Column
	only    map[string]bool   // nil means every table
}

type Option func(*SoftDelete)

// WithColumn replaces the default column name.
func WithColumn(name string) Option {
	return func(sd *SoftDelete) { sd.Column = name }
}

// WithTables filters only the named tables.
func WithTables(names ...string) Option {
	return func(sd *SoftDelete) {
		for _, n := range names {
			sd.include(n)
		}
	}
}

// WithTableColumn uses column for table, and filters table.
func WithTableColumn(table, column string) Option {
	return func(sd *SoftDelete) {
		if sd.Columns == nil {
			sd.Columns = map[string]string{}
		}
		sd.Columns[table] = column
		sd.include(table)
	}
}

func New(opts ...Option) *SoftDelete {
	sd := &SoftDelete{Column: "deleted_at"}
	for _, o := range opts {
		o(sd)
	}
	return sd
}

func (sd *SoftDelete) include(table string) {
	if sd.only == nil {
		sd.only = map[string]bool{}
	}
	sd.only[table] = true
}

// condition returns the IS NULL test for ref, or nil when ref is not
// filtered.
func (sd *SoftDelete) condition(ref plugins.TableRef) nodes.Node {
	if sd.only != nil && !sd.only[ref.Name] {
		return nil
	}
	col := sd.Column
	if c, ok := sd.Columns[ref.Name]; ok {
		col = c
	}
	return nodes.NewAttribute(ref.Relation, col).IsNull()
}

func (sd *SoftDelete) TransformSelect(core *nodes.SelectCore) (*nodes.SelectCore, error) {
	for _, ref := range plugins.CollectTables(core) {
		if c := sd.condition(ref); c != nil {
			core.Wheres = append(core.Wheres, c)
		}
	}
	return core, nil
}

func (sd *SoftDelete) TransformUpdate(stmt *nodes.UpdateStatement) (*nodes.UpdateStatement, error) {
	if ref, ok := plugins.Ref(stmt.Table); ok {
		if c := sd.condition(ref); c != nil {
			stmt.Wheres = append(stmt.Wheres, c)
		}
	}
	return stmt, nil
}

func (sd *SoftDelete) TransformDelete(stmt *nodes.DeleteStatement) (*nodes.DeleteStatement, error) {
	if ref, ok := plugins.Ref(stmt.From); ok {
		if c := sd.condition(ref); c != nil {
			stmt.Wheres = append(stmt.Wheres, c)
		}
	}
	return stmt, nil
}

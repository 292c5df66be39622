// Package fixtures loads seed data from YAML and installs it into a
// database through the query builder.
package fixtures

import (
	"context"
	_ "embed"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/bawdo/gosbeecte/internal/db"
	"github.com/bawdo/gosbeecte/internal/quoting"
	"github.com/bawdo/gosbeecte/managers"
	"github.com/bawdo/gosbeecte/nodes"
)

//go:embed seed.yaml
var defaultSeed []byte

// Column types understood in seed files.
const (
	TypeInt       = "int"
	TypeString    = "string"
	TypeTimestamp = "timestamp"
)

// ErrInvalidSeed is returned for seed files that do not describe a usable schema.
var ErrInvalidSeed = errors.New("fixtures: invalid seed")

// Seed is a set of tables with their rows.
type Seed struct {
	Tables []*Table `yaml:"tables"`
}

// Table describes one seeded table. Each row lists a value per column, in
// column order.
type Table struct {
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
	Rows    [][]any  `yaml:"rows"`
}

// Column describes a seeded column.
type Column struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	PrimaryKey bool   `yaml:"primary_key"`
	Nullable   bool   `yaml:"nullable"`
}

// Default returns the bundled region/orders dataset.
func Default() (*Seed, error) {
	return Parse(defaultSeed)
}

// Load reads and validates a seed file.
func Load(r io.Reader) (*Seed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read seed")
	}
	return Parse(data)
}

// Parse decodes and validates seed YAML.
func Parse(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "decode seed")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Seed) validate() error {
	if len(s.Tables) == 0 {
		return errors.Wrap(ErrInvalidSeed, "no tables")
	}
	seen := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		if t.Name == "" {
			return errors.Wrap(ErrInvalidSeed, "table without a name")
		}
		if seen[t.Name] {
			return errors.Wrapf(ErrInvalidSeed, "table %q listed twice", t.Name)
		}
		seen[t.Name] = true
		if len(t.Columns) == 0 {
			return errors.Wrapf(ErrInvalidSeed, "table %q has no columns", t.Name)
		}
		for _, c := range t.Columns {
			switch c.Type {
			case TypeInt, TypeString, TypeTimestamp:
			default:
				return errors.Wrapf(ErrInvalidSeed, "column %s.%s has unknown type %q", t.Name, c.Name, c.Type)
			}
		}
		for i, row := range t.Rows {
			if len(row) != len(t.Columns) {
				return errors.Wrapf(ErrInvalidSeed, "table %q row %d has %d values, want %d",
					t.Name, i+1, len(row), len(t.Columns))
			}
		}
	}
	return nil
}

// Table returns the seeded table called name, or nil.
func (s *Seed) Table(name string) *Table {
	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Node returns the builder relation for the table, keyed by its primary key.
func (t *Table) Node() *nodes.Table {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return nodes.NewTableWithKey(t.Name, c.Name)
		}
	}
	return nodes.NewTable(t.Name)
}

// CreateSQL returns the CREATE TABLE statement for engine.
func (t *Table) CreateSQL(engine string) (string, error) {
	quote := quoting.ANSI.Ident
	if engine == db.MySQL {
		quote = quoting.MySQL.Ident
	}

	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		typ, err := sqlType(engine, c.Type)
		if err != nil {
			return "", err
		}
		def := quote(c.Name) + " " + typ
		switch {
		case c.PrimaryKey:
			def += " PRIMARY KEY"
		case !c.Nullable:
			def += " NOT NULL"
		}
		defs[i] = def
	}
	return "CREATE TABLE " + quote(t.Name) + " (" + strings.Join(defs, ", ") + ")", nil
}

func sqlType(engine, typ string) (string, error) {
	switch engine {
	case db.Postgres, db.SQLite, db.MySQL:
	default:
		return "", errors.Wrapf(db.ErrUnknownEngine, "%q", engine)
	}
	switch typ {
	case TypeInt:
		return "INTEGER", nil
	case TypeString:
		if engine == db.MySQL {
			// Indexed MySQL columns need a bounded length.
			return "VARCHAR(64)", nil
		}
		return "TEXT", nil
	default:
		switch engine {
		case db.Postgres:
			return "TIMESTAMP", nil
		case db.MySQL:
			return "DATETIME", nil
		default:
			return "TEXT", nil
		}
	}
}

// Insert returns an InsertManager adding every row of the table, or nil
// when the table has no rows.
func (t *Table) Insert() *managers.InsertManager {
	if len(t.Rows) == 0 {
		return nil
	}
	rel := t.Node()
	cols := make([]nodes.Node, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = rel.Col(c.Name)
	}
	m := managers.NewInsertManager(rel).Columns(cols...)
	for _, row := range t.Rows {
		m.Values(row...)
	}
	return m
}

// Install creates every table of the seed on conn and inserts its rows.
func (s *Seed) Install(ctx context.Context, conn *db.Conn) error {
	for _, t := range s.Tables {
		create, err := t.CreateSQL(conn.Engine())
		if err != nil {
			return err
		}
		if err := conn.Exec(ctx, create); err != nil {
			return errors.Wrapf(err, "create %s", t.Name)
		}
		m := t.Insert()
		if m == nil {
			continue
		}
		query, params, err := m.ToSQL(conn.Visitor())
		if err != nil {
			return errors.Wrapf(err, "compile insert into %s", t.Name)
		}
		if err := conn.Exec(ctx, query, params...); err != nil {
			return errors.Wrapf(err, "seed %s", t.Name)
		}
	}
	return nil
}

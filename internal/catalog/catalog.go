// Package catalog describes the tables the admin table editor may touch.
//
// The catalog of record is read from information_schema at startup and cached
// for the life of the process. A hand-maintained static catalog is kept as the
// fallback for when introspection is unavailable; when both exist the static
// copy is checked against the live schema and any drift fails startup.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	Default    string `json:"default,omitempty"`
	IsPrimary  bool   `json:"is_primary,omitempty"`
	References string `json:"references,omitempty"`
}

type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

func (t Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

// TextColumns lists the columns eligible for substring search.
func (t Table) TextColumns() []string {
	var cols []string
	for _, col := range t.Columns {
		switch col.Type {
		case "text", "varchar", "character varying", "uuid":
			cols = append(cols, col.Name)
		}
	}
	return cols
}

type Catalog struct {
	tables map[string]Table
	order  []string
}

func newCatalog(tables []Table) *Catalog {
	c := &Catalog{tables: make(map[string]Table, len(tables))}
	for _, table := range tables {
		c.tables[table.Name] = table
		c.order = append(c.order, table.Name)
	}
	return c
}

func (c *Catalog) Tables() []Table {
	tables := make([]Table, 0, len(c.order))
	for _, name := range c.order {
		tables = append(tables, c.tables[name])
	}
	return tables
}

func (c *Catalog) Table(name string) (Table, bool) {
	table, ok := c.tables[name]
	return table, ok
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type columnRow struct {
	TableName  string `db:"table_name"`
	ColumnName string `db:"column_name"`
	DataType   string `db:"data_type"`
	IsNullable string `db:"is_nullable"`
	Default    string `db:"column_default"`
}

type keyRow struct {
	TableName  string `db:"table_name"`
	ColumnName string `db:"column_name"`
}

type foreignKeyRow struct {
	TableName     string `db:"table_name"`
	ColumnName    string `db:"column_name"`
	ForeignTable  string `db:"foreign_table_name"`
	ForeignColumn string `db:"foreign_column_name"`
}

// Load introspects the live schema for the public base tables.
func Load(ctx context.Context, db Selecter) (*Catalog, error) {
	var columns []columnRow
	err := db.SelectContext(ctx, &columns, `
		SELECT c.table_name, c.column_name, c.data_type, c.is_nullable,
		       COALESCE(c.column_default, '') AS column_default
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_name = c.table_name AND t.table_schema = c.table_schema
		WHERE c.table_schema = 'public'
		  AND t.table_type = 'BASE TABLE'
		  AND c.table_name <> 'schema_migrations'
		ORDER BY c.table_name, c.ordinal_position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no tables found in live schema")
	}

	var primaryKeys []keyRow
	err = db.SelectContext(ctx, &primaryKeys, `
		SELECT tc.table_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
		WHERE tc.table_schema = 'public' AND tc.constraint_type = 'PRIMARY KEY'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read primary keys: %w", err)
	}

	var foreignKeys []foreignKeyRow
	err = db.SelectContext(ctx, &foreignKeys, `
		SELECT tc.table_name, kcu.column_name,
		       ccu.table_name AS foreign_table_name,
		       ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
		WHERE tc.table_schema = 'public' AND tc.constraint_type = 'FOREIGN KEY'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys: %w", err)
	}

	primary := map[string]bool{}
	for _, key := range primaryKeys {
		primary[key.TableName+"."+key.ColumnName] = true
	}
	references := map[string]string{}
	for _, fk := range foreignKeys {
		references[fk.TableName+"."+fk.ColumnName] = fk.ForeignTable + "." + fk.ForeignColumn
	}

	grouped := map[string][]Column{}
	var order []string
	for _, row := range columns {
		if _, seen := grouped[row.TableName]; !seen {
			order = append(order, row.TableName)
		}
		key := row.TableName + "." + row.ColumnName
		grouped[row.TableName] = append(grouped[row.TableName], Column{
			Name:       row.ColumnName,
			Type:       row.DataType,
			Nullable:   row.IsNullable == "YES",
			Default:    row.Default,
			IsPrimary:  primary[key],
			References: references[key],
		})
	}
	tables := make([]Table, 0, len(order))
	for _, name := range order {
		tables = append(tables, Table{Name: name, Columns: grouped[name]})
	}
	return newCatalog(tables), nil
}

// Verify compares column name sets of the static catalog against the live one.
// A table or column present in one but not the other is drift and an error.
func Verify(live, static *Catalog) error {
	var problems []string
	for _, table := range static.Tables() {
		liveTable, ok := live.Table(table.Name)
		if !ok {
			problems = append(problems, fmt.Sprintf("table %s missing from live schema", table.Name))
			continue
		}
		staticCols := columnNames(table)
		liveCols := columnNames(liveTable)
		for _, col := range staticCols {
			if !liveTable.HasColumn(col) {
				problems = append(problems, fmt.Sprintf("%s.%s missing from live schema", table.Name, col))
			}
		}
		for _, col := range liveCols {
			if !table.HasColumn(col) {
				problems = append(problems, fmt.Sprintf("%s.%s missing from static catalog", table.Name, col))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("catalog drift: %s", strings.Join(problems, "; "))
	}
	return nil
}

func columnNames(table Table) []string {
	names := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		names = append(names, col.Name)
	}
	sort.Strings(names)
	return names
}

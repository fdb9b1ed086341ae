package services

import (
	"context"
	"errors"
	"log"
	"sort"

	"github.com/Ghost247-bot/ulster-sub001/internal/catalog"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrRowNotFound   = errors.New("row not found")
)

type EditorStore interface {
	CountRows(ctx context.Context, table string) (int, error)
	CountFiltered(ctx context.Context, table string, searchCols []string, search string) (int, error)
	SelectRows(ctx context.Context, table string, searchCols []string, search, sortBy, sortOrder string, limit, offset int) ([]map[string]any, error)
	InsertRow(ctx context.Context, table string, columns []string, values []any) error
	UpdateRow(ctx context.Context, table, id string, columns []string, values []any) (int64, error)
	DeleteRow(ctx context.Context, table, id string) (int64, error)
}

// TableEditor is the schema-aware generic browser behind the admin data tool.
// The catalog doubles as the identifier whitelist: table and column names
// never reach SQL unless the catalog knows them.
type TableEditor struct {
	catalog *catalog.Catalog
	store   EditorStore
}

func NewTableEditor(cat *catalog.Catalog, store EditorStore) *TableEditor {
	return &TableEditor{catalog: cat, store: store}
}

type TableSummary struct {
	Name     string           `json:"name"`
	Columns  []catalog.Column `json:"columns"`
	RowCount int              `json:"row_count"`
}

// ListTables returns every catalog table with a best-effort row count. One
// table's failing count must not fail the rest; it just reads as 0.
func (e *TableEditor) ListTables(ctx context.Context) []TableSummary {
	tables := e.catalog.Tables()
	summaries := make([]TableSummary, 0, len(tables))
	for _, table := range tables {
		count, err := e.store.CountRows(ctx, table.Name)
		if err != nil {
			log.Printf("table editor: count for %s failed: %v", table.Name, err)
			count = 0
		}
		summaries = append(summaries, TableSummary{
			Name:     table.Name,
			Columns:  table.Columns,
			RowCount: count,
		})
	}
	return summaries
}

type TableData struct {
	Rows       []map[string]any `json:"rows"`
	TotalCount int              `json:"total_count"`
	HasMore    bool             `json:"has_more"`
}

// GetTableData pages through a table. A search term ORs a case-insensitive
// substring match across every text-typed column; sorting and pagination apply
// after the search filter.
func (e *TableEditor) GetTableData(ctx context.Context, tableName string, page, pageSize int, search, sortBy, sortOrder string) (TableData, error) {
	table, ok := e.catalog.Table(tableName)
	if !ok {
		return TableData{}, ErrUnknownTable
	}
	if sortBy != "" && !table.HasColumn(sortBy) {
		return TableData{}, ErrUnknownColumn
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 25
	}
	var searchCols []string
	if search != "" {
		searchCols = table.TextColumns()
	}
	total, err := e.store.CountFiltered(ctx, tableName, searchCols, search)
	if err != nil {
		return TableData{}, err
	}
	rows, err := e.store.SelectRows(ctx, tableName, searchCols, search, sortBy, sortOrder, pageSize, (page-1)*pageSize)
	if err != nil {
		return TableData{}, err
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return TableData{
		Rows:       rows,
		TotalCount: total,
		HasMore:    total > page*pageSize,
	}, nil
}

func (e *TableEditor) InsertRow(ctx context.Context, tableName string, values map[string]any) error {
	columns, ordered, err := e.orderedValues(tableName, values, false)
	if err != nil {
		return err
	}
	return e.store.InsertRow(ctx, tableName, columns, ordered)
}

func (e *TableEditor) UpdateRow(ctx context.Context, tableName, id string, values map[string]any) error {
	columns, ordered, err := e.orderedValues(tableName, values, true)
	if err != nil {
		return err
	}
	affected, err := e.store.UpdateRow(ctx, tableName, id, columns, ordered)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRowNotFound
	}
	return nil
}

func (e *TableEditor) DeleteRow(ctx context.Context, tableName, id string) error {
	if _, ok := e.catalog.Table(tableName); !ok {
		return ErrUnknownTable
	}
	affected, err := e.store.DeleteRow(ctx, tableName, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRowNotFound
	}
	return nil
}

// orderedValues validates every key against the catalog and returns columns
// and values in a deterministic order. Rows are keyed by "id", so updates drop
// it from the set list.
func (e *TableEditor) orderedValues(tableName string, values map[string]any, dropID bool) ([]string, []any, error) {
	table, ok := e.catalog.Table(tableName)
	if !ok {
		return nil, nil, ErrUnknownTable
	}
	columns := make([]string, 0, len(values))
	for column := range values {
		if dropID && column == "id" {
			continue
		}
		if !table.HasColumn(column) {
			return nil, nil, ErrUnknownColumn
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)
	ordered := make([]any, 0, len(columns))
	for _, column := range columns {
		ordered = append(ordered, values[column])
	}
	return columns, ordered, nil
}

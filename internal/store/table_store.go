package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// TableStore is the generic reader/writer behind the admin table browser. It
// never validates table or column names itself; callers are expected to pass
// identifiers vetted against the schema catalog.
type TableStore struct {
	db *sqlx.DB
}

func NewTableStore(db *sqlx.DB) *TableStore {
	return &TableStore{db: db}
}

// BuildTableSelect assembles a paged select over table. When search is given,
// a case-insensitive substring match is ORed across searchCols. sortBy/sortOrder
// and limit/offset apply after the search filter.
func BuildTableSelect(table string, searchCols []string, search, sortBy, sortOrder string, limit, offset int) (string, []any) {
	query := "SELECT * FROM " + pq.QuoteIdentifier(table)
	var args []any
	query, args = appendSearch(query, args, searchCols, search)
	if sortBy != "" {
		dir := "ASC"
		if strings.EqualFold(sortOrder, "desc") {
			dir = "DESC"
		}
		query += " ORDER BY " + pq.QuoteIdentifier(sortBy) + " " + dir
	}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}

func BuildTableCount(table string, searchCols []string, search string) (string, []any) {
	query := "SELECT COUNT(*) FROM " + pq.QuoteIdentifier(table)
	var args []any
	query, args = appendSearch(query, args, searchCols, search)
	return query, args
}

func appendSearch(query string, args []any, searchCols []string, search string) (string, []any) {
	if search == "" || len(searchCols) == 0 {
		return query, args
	}
	args = append(args, search)
	conds := make([]string, 0, len(searchCols))
	for _, col := range searchCols {
		conds = append(conds, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", pq.QuoteIdentifier(col), len(args)))
	}
	return query + " WHERE (" + strings.Join(conds, " OR ") + ")", args
}

func BuildInsert(table string, columns []string) string {
	quoted := make([]string, 0, len(columns))
	params := make([]string, 0, len(columns))
	for i, col := range columns {
		quoted = append(quoted, pq.QuoteIdentifier(col))
		params = append(params, fmt.Sprintf("$%d", i+1))
	}
	return "INSERT INTO " + pq.QuoteIdentifier(table) +
		" (" + strings.Join(quoted, ", ") + ") VALUES (" + strings.Join(params, ", ") + ")"
}

func BuildUpdate(table string, columns []string) string {
	sets := make([]string, 0, len(columns))
	for i, col := range columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(col), i+1))
	}
	return "UPDATE " + pq.QuoteIdentifier(table) +
		" SET " + strings.Join(sets, ", ") +
		fmt.Sprintf(" WHERE id = $%d", len(columns)+1)
}

func (s *TableStore) CountRows(ctx context.Context, table string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+pq.QuoteIdentifier(table))
	return count, err
}

func (s *TableStore) CountFiltered(ctx context.Context, table string, searchCols []string, search string) (int, error) {
	query, args := BuildTableCount(table, searchCols, search)
	var count int
	err := s.db.GetContext(ctx, &count, query, args...)
	return count, err
}

func (s *TableStore) SelectRows(ctx context.Context, table string, searchCols []string, search, sortBy, sortOrder string, limit, offset int) ([]map[string]any, error) {
	query, args := BuildTableSelect(table, searchCols, search, sortBy, sortOrder, limit, offset)
	return s.queryRows(ctx, query, args)
}

func (s *TableStore) InsertRow(ctx context.Context, table string, columns []string, values []any) error {
	_, err := s.db.ExecContext(ctx, BuildInsert(table, columns), values...)
	return err
}

func (s *TableStore) UpdateRow(ctx context.Context, table, id string, columns []string, values []any) (int64, error) {
	args := append(append([]any{}, values...), id)
	res, err := s.db.ExecContext(ctx, BuildUpdate(table, columns), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TableStore) DeleteRow(ctx context.Context, table, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+pq.QuoteIdentifier(table)+" WHERE id = $1", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExecRaw runs an arbitrary parameterized statement. Row-returning statements
// come back as mapped rows; everything else reports rows affected.
func (s *TableStore) ExecRaw(ctx context.Context, statement string, args []any) ([]map[string]any, error) {
	if returnsRows(statement) {
		return s.queryRows(ctx, statement, args)
	}
	res, err := s.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	return []map[string]any{{"rows_affected": affected}}, nil
}

func returnsRows(statement string) bool {
	trimmed := strings.ToUpper(strings.TrimSpace(statement))
	return strings.HasPrefix(trimmed, "SELECT") ||
		strings.HasPrefix(trimmed, "WITH") ||
		strings.HasPrefix(trimmed, "SHOW") ||
		strings.Contains(trimmed, "RETURNING")
}

func (s *TableStore) queryRows(ctx context.Context, query string, args []any) ([]map[string]any, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]map[string]any, 0)
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		for key, value := range row {
			if b, ok := value.([]byte); ok {
				row[key] = string(b)
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

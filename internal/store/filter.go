package store

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidOrderBy = errors.New("invalid order by column")

// TransactionFilter narrows a transaction query. Zero-valued fields add no
// constraint; present fields are ANDed together. Range bounds are inclusive.
type TransactionFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	AccountID   string
	Type        string
	MinAmount   *int64
	MaxAmount   *int64
	Description string
}

// FetchOptions control ordering and pagination. Ordering and limits are
// applied only when set; OrderBy must be one of the allowed columns.
type FetchOptions struct {
	Limit     int
	Offset    int
	OrderBy   string
	Ascending bool
}

var transactionOrderColumns = map[string]bool{
	"created_at": true,
	"amount":     true,
}

func (f TransactionFilter) apply(conds []string, args []any) ([]string, []any) {
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if f.AccountID != "" {
		args = append(args, f.AccountID)
		conds = append(conds, fmt.Sprintf("account_id = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("transaction_type = $%d", len(args)))
	}
	if f.MinAmount != nil {
		args = append(args, *f.MinAmount)
		conds = append(conds, fmt.Sprintf("amount >= $%d", len(args)))
	}
	if f.MaxAmount != nil {
		args = append(args, *f.MaxAmount)
		conds = append(conds, fmt.Sprintf("amount <= $%d", len(args)))
	}
	if f.Description != "" {
		args = append(args, f.Description)
		conds = append(conds, fmt.Sprintf("description ILIKE '%%' || $%d || '%%'", len(args)))
	}
	return conds, args
}

// apply appends ORDER BY / LIMIT / OFFSET to query. A specified OrderBy gets an
// id tiebreak so paginated reads are stable across pages.
func (o FetchOptions) apply(query string, args []any) (string, []any, error) {
	if o.OrderBy != "" {
		if !transactionOrderColumns[o.OrderBy] {
			return "", nil, ErrInvalidOrderBy
		}
		dir := "DESC"
		if o.Ascending {
			dir = "ASC"
		}
		query += " ORDER BY " + o.OrderBy + " " + dir + ", id " + dir
	}
	if o.Limit > 0 {
		args = append(args, o.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if o.Offset > 0 {
		args = append(args, o.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args, nil
}

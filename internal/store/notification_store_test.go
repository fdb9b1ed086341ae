package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestNotificationStoreMarkReadIsUserScoped(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	db := stubDB{
		execFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			gotQuery = query
			gotArgs = args
			return stubResult{rows: 0}, nil
		},
	}
	s := NewNotificationStore(db)
	affected, err := s.MarkRead(context.Background(), "note-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if affected != 0 {
		t.Fatalf("affected = %d", affected)
	}
	if !strings.Contains(gotQuery, "id = $1 AND user_id = $2") {
		t.Fatalf("mark read must scope by owner: %q", gotQuery)
	}
	if len(gotArgs) != 2 || gotArgs[1] != "user-1" {
		t.Fatalf("args = %v", gotArgs)
	}
}

func TestNotificationStoreListByUserPages(t *testing.T) {
	var gotArgs []any
	db := stubDB{
		selectFn: func(ctx context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "ORDER BY created_at DESC") {
				t.Fatalf("query = %q", query)
			}
			gotArgs = args
			return nil
		},
	}
	s := NewNotificationStore(db)
	if _, err := s.ListByUser(context.Background(), "user-1", 20, 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotArgs) != 3 || gotArgs[1] != 20 || gotArgs[2] != 40 {
		t.Fatalf("args = %v", gotArgs)
	}
}

func TestNotificationStoreCountUnread(t *testing.T) {
	db := stubDB{
		getFn: func(ctx context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "is_read = FALSE") {
				t.Fatalf("query = %q", query)
			}
			*(dest.(*int)) = 3
			return nil
		},
	}
	s := NewNotificationStore(db)
	count, err := s.CountUnread(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d", count)
	}
}

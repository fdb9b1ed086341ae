package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestAccountStoreSetFrozenLeavesAdminFlagAlone(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	db := stubDB{
		execFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			gotQuery = query
			gotArgs = args
			return stubResult{rows: 1}, nil
		},
	}
	s := NewAccountStore(db)
	if err := s.SetFrozen(context.Background(), "acc-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "is_frozen = $1") {
		t.Fatalf("query = %q", gotQuery)
	}
	if strings.Contains(gotQuery, "frozen_by_admin") {
		t.Fatalf("user freeze must not touch frozen_by_admin: %q", gotQuery)
	}
	if len(gotArgs) != 2 || gotArgs[0] != true || gotArgs[1] != "acc-1" {
		t.Fatalf("args = %v", gotArgs)
	}
}

func TestAccountStoreSetAdminFrozenSetsBothFlags(t *testing.T) {
	var gotQuery string
	db := stubDB{
		execFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			gotQuery = query
			return stubResult{rows: 1}, nil
		},
	}
	s := NewAccountStore(db)
	if err := s.SetAdminFrozen(context.Background(), "acc-1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "is_frozen = $1") || !strings.Contains(gotQuery, "frozen_by_admin = $1") {
		t.Fatalf("admin freeze must drive both flags: %q", gotQuery)
	}
}

func TestAccountStoreAdjustBalance(t *testing.T) {
	var gotArgs []any
	tx := stubExecer{
		execFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "balance = balance + $1") {
				t.Fatalf("query = %q", query)
			}
			gotArgs = args
			return stubResult{rows: 1}, nil
		},
	}
	s := NewAccountStore(stubDB{})
	affected, err := s.AdjustBalance(context.Background(), tx, "acc-1", -500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected = %d", affected)
	}
	if gotArgs[0] != int64(-500) || gotArgs[1] != "acc-1" {
		t.Fatalf("args = %v", gotArgs)
	}
}

func TestAccountStoreCreate(t *testing.T) {
	var gotArgs []any
	tx := stubExecer{
		execFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO accounts") {
				t.Fatalf("query = %q", query)
			}
			gotArgs = args
			return stubResult{rows: 1}, nil
		},
	}
	s := NewAccountStore(stubDB{})
	err := s.Create(context.Background(), tx, AccountInput{
		ID:            "acc-1",
		UserID:        "user-1",
		AccountType:   "checking",
		AccountNumber: "100200300",
		RoutingNumber: "021000021",
		Balance:       0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotArgs) != 6 || gotArgs[1] != "user-1" || gotArgs[2] != "checking" {
		t.Fatalf("args = %v", gotArgs)
	}
}

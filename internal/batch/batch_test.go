package batch

import (
	"context"
	"errors"
	"testing"
)

func TestRunExecutesInOrder(t *testing.T) {
	ctx := context.Background()
	var order []string
	err := Run(ctx,
		Step{Name: "a", Run: func(context.Context) error { order = append(order, "a"); return nil }},
		Step{Name: "b", Run: func(context.Context) error { order = append(order, "b"); return nil }},
		Step{Name: "c", Run: func(context.Context) error { order = append(order, "c"); return nil }},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	var order []string
	err := Run(ctx,
		Step{Name: "a", Run: func(context.Context) error { order = append(order, "a"); return nil }},
		Step{Name: "b", Run: func(context.Context) error { order = append(order, "b"); return boom }},
		Step{Name: "c", Run: func(context.Context) error { order = append(order, "c"); return nil }},
	)
	if err == nil {
		t.Fatal("expected error")
	}
	var partial *PartialError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialError, got %T", err)
	}
	if partial.Step != "b" || partial.Applied != 1 {
		t.Fatalf("unexpected partial error: %+v", partial)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped step error, got %v", err)
	}
	if len(order) != 2 || order[1] != "b" {
		t.Fatalf("step c must not run after b fails: %v", order)
	}
}

func TestRunEmpty(t *testing.T) {
	if err := Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	err := Run(ctx, Step{Name: "a", Run: func(context.Context) error { ran = true; return nil }})
	if err == nil {
		t.Fatal("expected error")
	}
	if ran {
		t.Fatal("step must not run after cancellation")
	}
	var partial *PartialError
	if !errors.As(err, &partial) || partial.Applied != 0 {
		t.Fatalf("unexpected error: %v", err)
	}
}

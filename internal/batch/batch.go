// Package batch runs compound write operations as an ordered list of steps.
//
// There is no transaction and no compensating rollback: steps that completed
// before a failure stay applied. Callers receive a PartialError so they can
// tell a clean failure (nothing applied) from a partially applied one.
package batch

import (
	"context"
	"fmt"
)

type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// PartialError reports the first failing step of a batch and how many steps
// were already applied when it failed.
type PartialError struct {
	Step    string
	Applied int
	Err     error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("batch step %q failed after %d applied: %v", e.Step, e.Applied, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// Run executes steps strictly in order, one at a time, stopping at the first
// failure. Later steps are never attempted after a failure.
func Run(ctx context.Context, steps ...Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return &PartialError{Step: step.Name, Applied: i, Err: err}
		}
		if err := step.Run(ctx); err != nil {
			return &PartialError{Step: step.Name, Applied: i, Err: err}
		}
	}
	return nil
}

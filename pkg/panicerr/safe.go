// Package panicerr turns a panic in a long-running worker into an error so
// the process pool can cancel its siblings and shut down cleanly.
package panicerr

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// Safe wraps a function that returns an error, catching any panics and returning them as an error.
func Safe(fn func() error) func() error {
	return func() error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn()
		})
		if err != nil {
			return err
		}
		return catcher.Recovered().AsError()
	}
}

// SafeContext is Safe for context-aware workers. Errors, including a
// recovered panic, are prefixed with name.
func SafeContext(name string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		err := Safe(func() error { return fn(ctx) })()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}

// Worker adapts a worker that only stops when ctx is done.
func Worker(name string, fn func(context.Context)) func(context.Context) error {
	return SafeContext(name, func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
}

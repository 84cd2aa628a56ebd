package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/csgray/pkg/scene"
)

// EvalTimeout is the default limit for one script evaluation.
const EvalTimeout = 5 * time.Second

// ErrSuperseded is returned by an evaluation that finished after a newer
// one had started on the same Engine.
var ErrSuperseded = errors.New("engine: evaluation superseded by a newer script")

// evalResult is what the evaluating goroutine hands back.
type evalResult struct {
	scene  *scene.Scene
	errors []EvalError
	err    error
}

// await blocks until ch delivers or ctx expires. A result from a stale
// generation is dropped in favor of ErrSuperseded. An expired script keeps
// running in its goroutine; its result lands in the buffered channel and is
// never read.
func await(ctx context.Context, ch <-chan evalResult, isCurrent func() bool) (*scene.Scene, []EvalError, error) {
	select {
	case res := <-ch:
		if !isCurrent() {
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("engine: script ran longer than %s", timeoutOf(ctx))
		}
		return nil, nil, fmt.Errorf("engine: %w", ctx.Err())
	}
}

// timeoutOf reports the deadline budget that ctx carried, rounded for display.
func timeoutOf(ctx context.Context) time.Duration {
	if d, ok := ctx.Value(budgetKey{}).(time.Duration); ok {
		return d
	}
	return EvalTimeout
}

type budgetKey struct{}

// withBudget bounds ctx by d and remembers d for error messages.
func withBudget(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = EvalTimeout
	}
	return context.WithTimeout(context.WithValue(ctx, budgetKey{}, d), d)
}

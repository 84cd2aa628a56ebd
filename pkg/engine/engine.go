// Package engine evaluates scene scripts. A script is a zygomys Lisp
// program whose builtins (arb8, rpp, ars, place) add solids to a
// scene.Scene.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/csgray/pkg/kernel"
	"github.com/chazu/csgray/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a mistake in the script: a parse error, a runtime error, a
// builtin rejecting its arguments, or a failed scene validation.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a non-blocking finding about a solid the script built.
type EvalWarning struct {
	Name    string
	Message string
}

// EvalResult bundles the scene with evaluation and validation findings.
type EvalResult struct {
	Scene    *scene.Scene
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine evaluates scripts in fresh zygomys sandboxes. Each evaluation bumps
// a generation counter; only the newest evaluation may deliver a scene.
type Engine struct {
	// Timeout bounds one evaluation. Zero means EvalTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine returns an Engine with the default timeout.
func NewEngine() *Engine {
	return &Engine{Timeout: EvalTimeout}
}

// Evaluate is EvaluateContext without a caller context.
func (e *Engine) Evaluate(source string) (*scene.Scene, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext runs a scene script and returns the scene it built.
// Script mistakes come back as EvalErrors with a nil scene. The error
// result is reserved for timeouts, cancellation, supersession and panics.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*scene.Scene, []EvalError, error) {
	gen := e.next()
	ctx, cancel := withBudget(ctx, e.Timeout)
	defer cancel()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic in script: %v", r)}
			}
		}()
		sc, evalErrs, err := evaluate(source)
		if sc != nil {
			sc.Version = gen
		}
		ch <- evalResult{scene: sc, errors: evalErrs, err: err}
	}()

	return await(ctx, ch, func() bool { return e.current() == gen })
}

// EvaluateFull evaluates source and validates the scene against tol.
// Validation errors join the eval errors; warnings are kept apart.
func (e *Engine) EvaluateFull(ctx context.Context, source string, tol kernel.Tol) (*EvalResult, error) {
	sc, evalErrs, err := e.EvaluateContext(ctx, source)
	if err != nil {
		return nil, err
	}
	res := &EvalResult{Scene: sc, Errors: evalErrs}
	if sc == nil {
		return res, nil
	}

	v := scene.ValidateAll(sc, tol)
	for _, ve := range v.Errors {
		res.Errors = append(res.Errors, EvalError{Message: ve.Error()})
	}
	for _, w := range v.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Name: w.Name, Message: w.Message})
	}
	return res, nil
}

func (e *Engine) next() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) current() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// evaluate runs source in a new sandbox, which has no filesystem or
// syscall access. Blank source is an empty scene.
func evaluate(source string) (*scene.Scene, []EvalError, error) {
	sc := scene.New()
	if strings.TrimSpace(source) == "" {
		return sc, nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, sc)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return sc, nil, nil
}

// Zygomys reports positions as "Error on line N: ..." or "line N: ...".
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// parseZygomysError turns an interpreter error into EvalErrors, pulling out
// the line number when there is one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range linePatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cel

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/stacklok/remap-core/tree"
)

const (
	// DefaultMaxExpressionLength is the maximum allowed length for a
	// condition expression. The limit guards against excessively long
	// expressions from untrusted mapping definitions.
	DefaultMaxExpressionLength = 10000

	// DefaultCostLimit is the default runtime cost limit for condition
	// evaluation.
	DefaultCostLimit = 1000000
)

// Engine compiles condition expressions. It is safe for concurrent use
// from multiple goroutines; the underlying CEL environment is created
// lazily on first compile.
type Engine struct {
	envCache            *envCache
	factory             envFactory
	maxExpressionLength int
	costLimit           uint64
}

// envFactory is a function that creates a CEL environment.
type envFactory func() (*cel.Env, error)

// envCache holds a lazily-initialized CEL environment.
type envCache struct {
	once sync.Once
	env  *cel.Env
	err  error
}

// Activation carries the values a condition can see. Nil fields evaluate
// as null; Vars may be nil when no bindings are in scope.
type Activation struct {
	Source tree.Value
	Target tree.Value
	Vars   map[string]tree.Value
}

// input converts the activation into the variable map CEL evaluates
// against. All three declared variables are always present.
func (a Activation) input() map[string]any {
	vars := make(map[string]any, len(a.Vars))
	for name, v := range a.Vars {
		vars[name] = tree.ToGo(v)
	}
	return map[string]any{
		"source": tree.ToGo(a.Source),
		"target": tree.ToGo(a.Target),
		"vars":   vars,
	}
}

// Condition is a compiled boolean expression ready for evaluation. A
// Condition is immutable and safe for concurrent Eval.
type Condition struct {
	source  string
	program cel.Program
}

// Source returns the original expression source string.
func (c *Condition) Source() string {
	return c.source
}

// NewEngine creates an engine with the source, target and vars variables
// declared dynamically typed. Additional options extend the environment,
// for callers that register custom CEL functions:
//
//	engine := cel.NewEngine(
//	    cel.Function(...),
//	)
func NewEngine(options ...cel.EnvOption) *Engine {
	opts := append([]cel.EnvOption{
		cel.Variable("source", cel.DynType),
		cel.Variable("target", cel.DynType),
		cel.Variable("vars", cel.MapType(cel.StringType, cel.DynType)),
	}, options...)

	return &Engine{
		envCache:            &envCache{},
		maxExpressionLength: DefaultMaxExpressionLength,
		costLimit:           DefaultCostLimit,
		factory: func() (*cel.Env, error) {
			return cel.NewEnv(opts...)
		},
	}
}

// WithMaxExpressionLength sets the maximum allowed expression length.
// Expressions exceeding it are rejected during compilation.
func (e *Engine) WithMaxExpressionLength(maxLen int) *Engine {
	e.maxExpressionLength = maxLen
	return e
}

// WithCostLimit sets the runtime cost limit for condition evaluation.
// Evaluations that exceed it return an error.
func (e *Engine) WithCostLimit(limit uint64) *Engine {
	e.costLimit = limit
	return e
}

// getEnv returns the CEL environment, creating it lazily on first access.
func (e *Engine) getEnv() (*cel.Env, error) {
	e.envCache.once.Do(func() {
		e.envCache.env, e.envCache.err = e.factory()
	})
	return e.envCache.env, e.envCache.err
}

// Compile parses, checks and compiles a condition expression. It returns an
// ExprError carrying per-location details when the expression does not
// parse or does not type check.
func (e *Engine) Compile(expr string) (*Condition, error) {
	if len(expr) > e.maxExpressionLength {
		return nil, fmt.Errorf("%w: expression length %d exceeds maximum of %d",
			ErrExpressionCheck, len(expr), e.maxExpressionLength)
	}

	env, err := e.getEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to get CEL environment: %w", err)
	}

	parsedAst, issues := env.Parse(expr)
	if issues.Err() != nil {
		return nil, newExprError(ErrKindParse, expr, issues)
	}

	checkedAst, issues := env.Check(parsedAst)
	if issues.Err() != nil {
		return nil, newExprError(ErrKindCheck, expr, issues)
	}

	program, err := env.Program(checkedAst, cel.CostLimit(e.costLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program for %q: %w", expr, err)
	}

	return &Condition{
		source:  expr,
		program: program,
	}, nil
}

// Check verifies that an expression is syntactically and semantically valid
// without building a program, for validating mapping definitions up front.
func (e *Engine) Check(expr string) error {
	if len(expr) > e.maxExpressionLength {
		return fmt.Errorf("%w: expression length %d exceeds maximum of %d",
			ErrExpressionCheck, len(expr), e.maxExpressionLength)
	}

	env, err := e.getEnv()
	if err != nil {
		return fmt.Errorf("failed to get CEL environment: %w", err)
	}

	parsedAst, issues := env.Parse(expr)
	if issues.Err() != nil {
		return newExprError(ErrKindParse, expr, issues)
	}

	if _, issues = env.Check(parsedAst); issues.Err() != nil {
		return newExprError(ErrKindCheck, expr, issues)
	}

	return nil
}

// Eval evaluates the condition against the activation. The expression must
// produce a boolean; any other result type fails with ErrInvalidResult.
func (c *Condition) Eval(act Activation) (bool, error) {
	out, _, err := c.program.Eval(act.input())
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrEvaluation, err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: expected bool, got %T", ErrInvalidResult, out.Value())
	}
	return result, nil
}

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"

	"github.com/stacklok/remap-core/pathexpr"
	"github.com/stacklok/remap-core/transform"
	"github.com/stacklok/remap-core/tree"
)

// Combine derives one target field from several source paths through a
// named multi-argument function. Each source resolves to its first match or
// Null, preserving declaration order, so the function always receives
// exactly as many arguments as the rule declares sources.
type Combine struct {
	sources []*pathexpr.Path
	target  *pathexpr.Path
	fn      transform.Function
	chain   *transform.Chain
}

// CombineOption configures a Combine rule at build time.
type CombineOption func(*Combine)

// WithCombineChain post-processes the function result with a transform
// chain.
func WithCombineChain(c *transform.Chain) CombineOption {
	return func(cb *Combine) { cb.chain = c }
}

// NewCombine builds a Combine rule, resolving fnName against funcs eagerly
// and checking the declared arity against the source count.
func NewCombine(sources []string, target, fnName string, funcs *transform.FuncRegistry, opts ...CombineOption) (*Combine, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: combine rule needs at least one source path", ErrInvalidRule)
	}
	if funcs == nil {
		return nil, fmt.Errorf("%w: combine rule needs a function registry", ErrInvalidRule)
	}

	paths := make([]*pathexpr.Path, 0, len(sources))
	for _, s := range sources {
		p, err := compileSource("combine", s)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	tgt, err := compileTarget("combine", target)
	if err != nil {
		return nil, err
	}

	fn, err := funcs.Lookup(fnName)
	if err != nil {
		return nil, fmt.Errorf("%w: combine rule: %v", ErrInvalidRule, err)
	}
	if !fn.AcceptsArity(len(paths)) {
		return nil, fmt.Errorf("%w: function %q does not accept %d arguments", ErrInvalidRule, fnName, len(paths))
	}

	c := &Combine{sources: paths, target: tgt, fn: fn}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Apply implements Rule.
func (c *Combine) Apply(target tree.Value, ectx *Context) (tree.Value, error) {
	args := make([]tree.Value, len(c.sources))
	for i, p := range c.sources {
		args[i] = tree.Clone(resolveFirst(ectx.Source(), p, ectx))
	}

	value := c.fn.Fn(args)
	value = c.chain.Apply(value)

	return pathexpr.Set(target, c.target, value)
}

// Describe implements Rule.
func (c *Combine) Describe() string {
	return fmt.Sprintf("combine %d sources via %s -> %s", len(c.sources), c.fn.Name, c.target)
}

var _ Rule = (*Combine)(nil)

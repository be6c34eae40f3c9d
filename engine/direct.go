// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"

	"github.com/stacklok/remap-core/pathexpr"
	"github.com/stacklok/remap-core/transform"
	"github.com/stacklok/remap-core/tree"
)

// Direct maps one source path to one target path through an optional guard
// and transform chain. A missing source resolves to Null, which still runs
// the chain, so default-producing transformers see it.
type Direct struct {
	source *pathexpr.Path
	target *pathexpr.Path
	guard  Predicate
	chain  *transform.Chain
}

// DirectOption configures a Direct rule at build time.
type DirectOption func(*Direct)

// WithGuard attaches a predicate; the rule is skipped when it yields false.
func WithGuard(p Predicate) DirectOption {
	return func(d *Direct) { d.guard = p }
}

// WithChain attaches a resolved transform chain.
func WithChain(c *transform.Chain) DirectOption {
	return func(d *Direct) { d.chain = c }
}

// NewDirect builds a Direct rule. The source may contain wildcards or a
// leading variable (the first match wins); the target must be concrete.
func NewDirect(source, target string, opts ...DirectOption) (*Direct, error) {
	src, err := compileSource("direct", source)
	if err != nil {
		return nil, err
	}
	tgt, err := compileTarget("direct", target)
	if err != nil {
		return nil, err
	}

	d := &Direct{source: src, target: tgt}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Apply implements Rule.
func (d *Direct) Apply(target tree.Value, ectx *Context) (tree.Value, error) {
	if d.guard != nil {
		ok, err := d.guard(ectx)
		if err != nil {
			return target, fmt.Errorf("evaluating guard: %w", err)
		}
		if !ok {
			ectx.Logger().Debug("guard rejected rule", "rule", d.Describe())
			return target, nil
		}
	}

	// Clone so the target never shares nodes with the source document.
	value := tree.Clone(resolveFirst(ectx.Source(), d.source, ectx))
	value = d.chain.Apply(value)

	updated, err := pathexpr.Set(target, d.target, value)
	if err != nil {
		return target, err
	}
	return updated, nil
}

// Describe implements Rule.
func (d *Direct) Describe() string {
	return fmt.Sprintf("direct %s -> %s", d.source, d.target)
}

var _ Rule = (*Direct)(nil)

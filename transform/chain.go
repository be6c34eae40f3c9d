// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"fmt"

	"github.com/stacklok/remap-core/tree"
)

// Chain is an ordered list of transformers resolved from a registry. A
// Chain is immutable after ResolveChain and safe for concurrent Apply.
type Chain struct {
	names []string
	fns   []Func
}

// ResolveChain resolves each name against reg, eagerly, so that unknown
// names fail when the chain is built rather than when it first runs.
func ResolveChain(reg *Registry, names ...string) (*Chain, error) {
	fns := make([]Func, 0, len(names))
	for _, name := range names {
		fn, err := reg.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("resolving chain: %w", err)
		}
		fns = append(fns, fn)
	}

	kept := make([]string, len(names))
	copy(kept, names)
	return &Chain{names: kept, fns: fns}, nil
}

// NewChain builds a chain directly from functions, for callers that do not
// go through a registry.
func NewChain(fns ...Func) *Chain {
	kept := make([]Func, 0, len(fns))
	for _, fn := range fns {
		if fn != nil {
			kept = append(kept, fn)
		}
	}
	return &Chain{fns: kept}
}

// Apply folds v through the chain left to right. A nil chain or empty chain
// returns the input; a nil input is treated as Null.
func (c *Chain) Apply(v tree.Value) tree.Value {
	if v == nil {
		v = tree.Null{}
	}
	if c == nil {
		return v
	}
	for _, fn := range c.fns {
		v = fn(v)
		if v == nil {
			v = tree.Null{}
		}
	}
	return v
}

// Len returns the number of transformers in the chain.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fns)
}

// Names returns the registry names the chain was resolved from; chains
// built with NewChain have none.
func (c *Chain) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

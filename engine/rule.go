// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"

	"github.com/stacklok/remap-core/pathexpr"
	"github.com/stacklok/remap-core/tree"
)

// Rule is one unit of transformation work. Apply reads the source document
// and bindings from ectx and writes into target through the path resolver,
// returning the updated target root. Implementations must not retain or
// mutate the source.
//
// Rules execute strictly in declaration order; a rule observes every write
// made by the rules before it.
type Rule interface {
	Apply(target tree.Value, ectx *Context) (tree.Value, error)

	// Describe returns a short description for logs and errors.
	Describe() string
}

// Predicate guards rule application. It sees the source document and the
// bindings in scope through ectx.
type Predicate func(ectx *Context) (bool, error)

// compileSource compiles a source path expression for a rule.
func compileSource(kind, expr string) (*pathexpr.Path, error) {
	p, err := pathexpr.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s rule source path: %v", ErrInvalidRule, kind, err)
	}
	return p, nil
}

// compileTarget compiles a target path expression and requires it to be
// concrete, since every rule writes through Set.
func compileTarget(kind, expr string) (*pathexpr.Path, error) {
	p, err := pathexpr.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s rule target path: %v", ErrInvalidRule, kind, err)
	}
	if !p.IsConcrete() {
		return nil, fmt.Errorf("%w: %s rule target path %q must be concrete", ErrInvalidRule, kind, expr)
	}
	return p, nil
}

// resolveFirst returns the first match of p, or Null when p matches
// nothing. Rules that read a single field all share this behavior.
func resolveFirst(root tree.Value, p *pathexpr.Path, binder pathexpr.Binder) tree.Value {
	v, _ := pathexpr.ResolveOne(root, p, binder)
	return v
}

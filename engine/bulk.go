// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"

	"github.com/stacklok/remap-core/pathexpr"
	"github.com/stacklok/remap-core/transform"
	"github.com/stacklok/remap-core/tree"
)

// Bulk copies every match of a wildcard source pattern under a target
// prefix, preserving each match's trailing key segment. An include list
// keeps only the listed concrete paths; an exclude list drops them. The two
// filters are mutually exclusive per rule. An optional transform chain is
// applied uniformly to every surviving value.
type Bulk struct {
	source  *pathexpr.Path
	prefix  *pathexpr.Path
	include map[string]struct{}
	exclude map[string]struct{}
	chain   *transform.Chain
}

// BulkOption configures a Bulk rule at build time.
type BulkOption func(*Bulk)

// WithInclude keeps only the listed concrete source paths (full dotted
// form, as produced by resolution).
func WithInclude(paths ...string) BulkOption {
	return func(b *Bulk) { b.include = pathSet(paths) }
}

// WithExclude drops the listed concrete source paths.
func WithExclude(paths ...string) BulkOption {
	return func(b *Bulk) { b.exclude = pathSet(paths) }
}

// WithBulkChain applies the chain to every copied value.
func WithBulkChain(c *transform.Chain) BulkOption {
	return func(b *Bulk) { b.chain = c }
}

func pathSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

// NewBulk builds a Bulk rule. The source pattern must contain at least one
// wildcard; the target prefix must be concrete. Setting both an include and
// an exclude list is a build-time error.
func NewBulk(source, targetPrefix string, opts ...BulkOption) (*Bulk, error) {
	src, err := compileSource("bulk", source)
	if err != nil {
		return nil, err
	}
	if src.IsConcrete() {
		return nil, fmt.Errorf("%w: bulk rule source %q has no wildcard", ErrInvalidRule, source)
	}
	prefix, err := compileTarget("bulk", targetPrefix)
	if err != nil {
		return nil, err
	}

	b := &Bulk{source: src, prefix: prefix}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.include) > 0 && len(b.exclude) > 0 {
		return nil, fmt.Errorf("%w: bulk rule cannot set both include and exclude lists", ErrInvalidRule)
	}
	return b, nil
}

// Apply implements Rule.
func (b *Bulk) Apply(target tree.Value, ectx *Context) (tree.Value, error) {
	matches := pathexpr.Resolve(ectx.Source(), b.source, ectx)

	for _, m := range matches {
		if !b.keep(m.Path.String()) {
			continue
		}

		value := b.chain.Apply(tree.Clone(m.Value))
		dest := b.prefix.Child(m.Path.LastSegment())

		updated, err := pathexpr.Set(target, dest, value)
		if err != nil {
			return target, err
		}
		target = updated
	}
	return target, nil
}

// keep applies the include or exclude filter to one concrete path.
func (b *Bulk) keep(concrete string) bool {
	if len(b.include) > 0 {
		_, ok := b.include[concrete]
		return ok
	}
	if len(b.exclude) > 0 {
		_, ok := b.exclude[concrete]
		return !ok
	}
	return true
}

// Describe implements Rule.
func (b *Bulk) Describe() string {
	return fmt.Sprintf("bulk %s -> %s", b.source, b.prefix)
}

var _ Rule = (*Bulk)(nil)

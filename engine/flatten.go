// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stacklok/remap-core/pathexpr"
	"github.com/stacklok/remap-core/tree"
)

// ErrDepthExceeded indicates a flatten walk deeper than the rule's limit.
var ErrDepthExceeded = errors.New("flatten depth limit exceeded")

// DefaultFlattenDepth bounds recursion for Flatten rules. Source adapters
// produce acyclic trees, so the limit only catches pathological nesting.
const DefaultFlattenDepth = 64

// Flatten walks the container at the source path and emits one flat target
// field per leaf. The flat key joins the configured prefix and the
// traversal path with the separator: {addr: {city: X}} with prefix "addr"
// and separator "_" emits addr_city = X. Array positions appear as their
// index.
type Flatten struct {
	source    *pathexpr.Path
	base      *pathexpr.Path
	prefix    string
	separator string
	maxDepth  int
}

// FlattenOption configures a Flatten rule at build time.
type FlattenOption func(*Flatten)

// WithPrefix sets the leading key component; empty means none.
func WithPrefix(prefix string) FlattenOption {
	return func(f *Flatten) { f.prefix = prefix }
}

// WithSeparator sets the joining separator. Default is "_".
func WithSeparator(sep string) FlattenOption {
	return func(f *Flatten) { f.separator = sep }
}

// WithMaxDepth overrides DefaultFlattenDepth.
func WithMaxDepth(depth int) FlattenOption {
	return func(f *Flatten) { f.maxDepth = depth }
}

// NewFlatten builds a Flatten rule. source selects the container to walk;
// targetBase selects where flat fields land, with the empty string meaning
// the target root.
func NewFlatten(source, targetBase string, opts ...FlattenOption) (*Flatten, error) {
	src, err := compileSource("flatten", source)
	if err != nil {
		return nil, err
	}
	var base *pathexpr.Path
	if targetBase != "" {
		base, err = compileTarget("flatten", targetBase)
		if err != nil {
			return nil, err
		}
	}

	f := &Flatten{source: src, base: base, separator: "_", maxDepth: DefaultFlattenDepth}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxDepth <= 0 {
		return nil, fmt.Errorf("%w: flatten depth limit must be positive", ErrInvalidRule)
	}
	return f, nil
}

// Apply implements Rule.
func (f *Flatten) Apply(target tree.Value, ectx *Context) (tree.Value, error) {
	source, ok := pathexpr.ResolveOne(ectx.Source(), f.source, ectx)
	if !ok {
		return target, nil
	}
	if !tree.IsContainer(source) {
		return target, nil
	}

	var parts []string
	if f.prefix != "" {
		parts = append(parts, f.prefix)
	}
	return f.walk(target, source, parts, 0)
}

// walk emits leaves depth-first, in document order.
func (f *Flatten) walk(target, node tree.Value, parts []string, depth int) (tree.Value, error) {
	if depth > f.maxDepth {
		return target, fmt.Errorf("%w: beyond %d levels", ErrDepthExceeded, f.maxDepth)
	}

	switch n := node.(type) {
	case *tree.Object:
		for p := n.Oldest(); p != nil; p = p.Next() {
			updated, err := f.walk(target, p.Value, appendPart(parts, p.Key), depth+1)
			if err != nil {
				return target, err
			}
			target = updated
		}
		return target, nil

	case tree.Array:
		for i, e := range n {
			updated, err := f.walk(target, e, appendPart(parts, strconv.Itoa(i)), depth+1)
			if err != nil {
				return target, err
			}
			target = updated
		}
		return target, nil

	default:
		return f.emit(target, node, parts)
	}
}

// emit writes one leaf under its joined flat key.
func (f *Flatten) emit(target, leaf tree.Value, parts []string) (tree.Value, error) {
	if len(parts) == 0 {
		// A bare scalar directly under the source path has no key to land
		// under; Apply filters this case by requiring a container.
		return target, nil
	}
	key := strings.Join(parts, f.separator)

	dest, err := f.destination(key)
	if err != nil {
		return target, err
	}
	return pathexpr.Set(target, dest, tree.Clone(leaf))
}

// destination builds the concrete write path for one flat key.
func (f *Flatten) destination(key string) (*pathexpr.Path, error) {
	seg := pathexpr.Segment{Kind: pathexpr.SegmentKey, Key: key}
	if f.base != nil {
		return f.base.Child(seg), nil
	}
	return pathexpr.New(seg)
}

// Describe implements Rule.
func (f *Flatten) Describe() string {
	return fmt.Sprintf("flatten %s (prefix %q, separator %q)", f.source, f.prefix, f.separator)
}

var _ Rule = (*Flatten)(nil)

// appendPart copies before appending so sibling branches never share a
// backing array.
func appendPart(parts []string, part string) []string {
	next := make([]string, len(parts)+1)
	copy(next, parts)
	next[len(parts)] = part
	return next
}

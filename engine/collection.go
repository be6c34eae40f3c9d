// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"

	"github.com/stacklok/remap-core/pathexpr"
	"github.com/stacklok/remap-core/tree"
)

// Collection iterates a source Array in order. Each element is bound to the
// named variable in a fresh scope, the nested rules run once against a
// fresh target Object, and that object is appended to the Array at the
// target path. Nested rules see the binding; rules outside the iteration do
// not.
type Collection struct {
	source  *pathexpr.Path
	target  *pathexpr.Path
	varName string
	rules   []Rule
}

// NewCollection builds a Collection rule. The target path must be concrete;
// varName is the binding nested rules reference as $varName.
func NewCollection(source, target, varName string, rules []Rule) (*Collection, error) {
	src, err := compileSource("collection", source)
	if err != nil {
		return nil, err
	}
	tgt, err := compileTarget("collection", target)
	if err != nil {
		return nil, err
	}
	if varName == "" {
		return nil, fmt.Errorf("%w: collection rule needs a variable name", ErrInvalidRule)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: collection rule needs at least one nested rule", ErrInvalidRule)
	}

	kept := make([]Rule, len(rules))
	copy(kept, rules)
	return &Collection{source: src, target: tgt, varName: varName, rules: kept}, nil
}

// Apply implements Rule.
func (c *Collection) Apply(target tree.Value, ectx *Context) (tree.Value, error) {
	resolved, ok := pathexpr.ResolveOne(ectx.Source(), c.source, ectx)
	if !ok {
		return target, nil
	}
	source, ok := resolved.(tree.Array)
	if !ok {
		// A present non-array is treated like an absent path: resolution
		// yields nothing to iterate.
		ectx.Logger().Debug("collection source is not an array",
			"rule", c.Describe(), "kind", resolved.Kind().String())
		return target, nil
	}

	for i, element := range source {
		ectx.PushBinding(c.varName, element)
		entry, err := c.applyElement(ectx)
		ectx.PopBinding()
		if err != nil {
			return target, fmt.Errorf("element %d: %w", i, err)
		}

		updated, err := c.appendEntry(target, entry)
		if err != nil {
			return target, fmt.Errorf("element %d: %w", i, err)
		}
		target = updated
	}
	return target, nil
}

// applyElement runs the nested rules against a fresh object for the element
// bound in the current scope.
func (c *Collection) applyElement(ectx *Context) (tree.Value, error) {
	var entry tree.Value = tree.NewObject()
	for _, rule := range c.rules {
		updated, err := rule.Apply(entry, ectx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rule.Describe(), err)
		}
		entry = updated
	}
	return entry, nil
}

// appendEntry appends entry to the Array at the target path, creating it on
// first use. A non-array already at the path is a structural conflict.
func (c *Collection) appendEntry(target, entry tree.Value) (tree.Value, error) {
	var arr tree.Array
	existing, ok := pathexpr.ResolveOne(target, c.target, nil)
	switch {
	case !ok:
		arr = tree.Array{}
	default:
		switch e := existing.(type) {
		case tree.Null:
			arr = tree.Array{}
		case tree.Array:
			arr = e
		default:
			return nil, &pathexpr.ConflictError{
				Path:    c.target.String(),
				Segment: c.target.LastSegment().String(),
				Kind:    existing.Kind(),
			}
		}
	}

	arr = append(arr, entry)
	return pathexpr.Set(target, c.target, arr)
}

// Describe implements Rule.
func (c *Collection) Describe() string {
	return fmt.Sprintf("collection %s as $%s -> %s", c.source, c.varName, c.target)
}

var _ Rule = (*Collection)(nil)

// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"strings"

	"github.com/stacklok/remap-core/pathexpr"
	"github.com/stacklok/remap-core/tree"
)

// Nest groups sibling flat fields whose keys match a wildcard pattern.
//
// With one wildcard, the matched fields become one target Object whose keys
// are the captured suffixes:
//
//	addr_city, addr_zip  + pattern "addr_*"  ->  {city: ..., zip: ...}
//
// With two wildcards, matches are grouped by the outer capture into a
// target Array with one object per distinct outer value, in first-seen
// order; each object carries the outer value under "name" and the inner
// captures as its fields:
//
//	phone_home_number, phone_home_ext, phone_work_number
//	+ pattern "phone_*_*"
//	->  [{name: home, number: ..., ext: ...}, {name: work, number: ...}]
type Nest struct {
	base    *pathexpr.Path
	pattern *keyPattern
	target  *pathexpr.Path
}

// NewNest builds a Nest rule. sourceBase selects the Object whose children
// are scanned; the empty string means the source root. The pattern must
// contain one or two wildcards; the target must be concrete.
func NewNest(sourceBase, pattern, target string) (*Nest, error) {
	var base *pathexpr.Path
	if sourceBase != "" {
		var err error
		base, err = compileSource("nest", sourceBase)
		if err != nil {
			return nil, err
		}
	}
	kp, err := compileKeyPattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: nest rule pattern: %v", ErrInvalidRule, err)
	}
	tgt, err := compileTarget("nest", target)
	if err != nil {
		return nil, err
	}
	return &Nest{base: base, pattern: kp, target: tgt}, nil
}

// Apply implements Rule.
func (n *Nest) Apply(target tree.Value, ectx *Context) (tree.Value, error) {
	source := ectx.Source()
	if n.base != nil {
		resolved, ok := pathexpr.ResolveOne(source, n.base, ectx)
		if !ok {
			return target, nil
		}
		source = resolved
	}
	obj, ok := source.(*tree.Object)
	if !ok {
		return target, nil
	}

	var built tree.Value
	if n.pattern.wildcards() == 1 {
		built = n.nestSingle(obj)
	} else {
		built = n.nestGrouped(obj)
	}
	if built == nil {
		return target, nil
	}

	return pathexpr.Set(target, n.target, built)
}

// nestSingle collects suffix captures into one object.
func (n *Nest) nestSingle(obj *tree.Object) tree.Value {
	out := tree.NewObject()
	for p := obj.Oldest(); p != nil; p = p.Next() {
		caps, ok := n.pattern.match(p.Key)
		if !ok {
			continue
		}
		out.Set(caps[0], tree.Clone(p.Value))
	}
	if out.Len() == 0 {
		return nil
	}
	return out
}

// nestGrouped groups by the outer capture into an array of objects.
func (n *Nest) nestGrouped(obj *tree.Object) tree.Value {
	var order []string
	groups := make(map[string]*tree.Object)

	for p := obj.Oldest(); p != nil; p = p.Next() {
		caps, ok := n.pattern.match(p.Key)
		if !ok {
			continue
		}
		outer, inner := caps[0], caps[1]

		group, exists := groups[outer]
		if !exists {
			group = tree.NewObject()
			group.Set("name", tree.Text(outer))
			groups[outer] = group
			order = append(order, outer)
		}
		group.Set(inner, tree.Clone(p.Value))
	}

	if len(order) == 0 {
		return nil
	}
	out := make(tree.Array, 0, len(order))
	for _, outer := range order {
		out = append(out, groups[outer])
	}
	return out
}

// Describe implements Rule.
func (n *Nest) Describe() string {
	if n.base != nil {
		return fmt.Sprintf("nest %s/%s -> %s", n.base, n.pattern, n.target)
	}
	return fmt.Sprintf("nest %s -> %s", n.pattern, n.target)
}

var _ Rule = (*Nest)(nil)

// keyPattern is a glob over sibling keys with one or two wildcards.
type keyPattern struct {
	raw   string
	parts []string
}

// compileKeyPattern splits a pattern on its wildcards.
func compileKeyPattern(pattern string) (*keyPattern, error) {
	parts := strings.Split(pattern, "*")
	switch len(parts) {
	case 2:
		// one wildcard
	case 3:
		if parts[1] == "" {
			return nil, fmt.Errorf("pattern %q has adjacent wildcards", pattern)
		}
	default:
		return nil, fmt.Errorf("pattern %q must contain one or two wildcards", pattern)
	}
	return &keyPattern{raw: pattern, parts: parts}, nil
}

func (p *keyPattern) wildcards() int { return len(p.parts) - 1 }

// String returns the original pattern.
func (p *keyPattern) String() string { return p.raw }

// match captures the wildcard values from key. Captures must be non-empty.
func (p *keyPattern) match(key string) ([]string, bool) {
	head, tail := p.parts[0], p.parts[len(p.parts)-1]
	if !strings.HasPrefix(key, head) {
		return nil, false
	}
	body := key[len(head):]
	if !strings.HasSuffix(body, tail) || len(body) < len(tail) {
		return nil, false
	}
	body = body[:len(body)-len(tail)]

	if p.wildcards() == 1 {
		if body == "" {
			return nil, false
		}
		return []string{body}, true
	}

	mid := p.parts[1]
	i := strings.Index(body, mid)
	if i <= 0 {
		// Outer capture must be non-empty.
		return nil, false
	}
	outer, inner := body[:i], body[i+len(mid):]
	if inner == "" {
		return nil, false
	}
	return []string{outer, inner}, true
}

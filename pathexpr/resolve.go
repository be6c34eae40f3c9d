// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pathexpr

import (
	"github.com/stacklok/remap-core/tree"
)

// Binder supplies values for variable references during resolution.
// Implementations are provided by the execution layer; a nil Binder leaves
// every variable unbound.
type Binder interface {
	// Lookup returns the value bound to name and whether a binding exists.
	Lookup(name string) (tree.Value, bool)
}

// Match pairs a matched path with the value found there. The path has every
// wildcard replaced by the concrete key or index it matched; a leading
// variable reference is preserved as the anchor.
type Match struct {
	Path  *Path
	Value tree.Value
}

// Resolve evaluates p against root and returns all matches in document
// order. Absent paths, wildcards over non-containers, and unbound variables
// yield zero matches, never an error.
func Resolve(root tree.Value, p *Path, binder Binder) []Match {
	segs := p.segments
	cur := root
	prefix := make([]Segment, 0, len(segs))

	if len(segs) > 0 && segs[0].Kind == SegmentVariable {
		if binder == nil {
			return nil
		}
		bound, ok := binder.Lookup(segs[0].Key)
		if !ok {
			return nil
		}
		cur = bound
		prefix = append(prefix, segs[0])
		segs = segs[1:]
	}

	var out []Match
	walk(cur, segs, prefix, &out)
	return out
}

// ResolveOne returns the first match of p, or (Null, false) when p matches
// nothing.
func ResolveOne(root tree.Value, p *Path, binder Binder) (tree.Value, bool) {
	matches := Resolve(root, p, binder)
	if len(matches) == 0 {
		return tree.Null{}, false
	}
	return matches[0].Value, true
}

func walk(cur tree.Value, segs []Segment, prefix []Segment, out *[]Match) {
	if cur == nil {
		return
	}
	if len(segs) == 0 {
		*out = append(*out, Match{Path: fromSegments(prefix), Value: cur})
		return
	}

	seg := segs[0]
	rest := segs[1:]

	switch seg.Kind {
	case SegmentKey:
		obj, ok := cur.(*tree.Object)
		if !ok {
			return
		}
		child, ok := obj.Get(seg.Key)
		if !ok {
			return
		}
		walk(child, rest, push(prefix, seg), out)

	case SegmentIndex:
		arr, ok := cur.(tree.Array)
		if !ok {
			return
		}
		if seg.Index < 0 || seg.Index >= len(arr) {
			return
		}
		walk(arr[seg.Index], rest, push(prefix, seg), out)

	case SegmentWildcard:
		switch c := cur.(type) {
		case *tree.Object:
			for p := c.Oldest(); p != nil; p = p.Next() {
				walk(p.Value, rest, push(prefix, Segment{Kind: SegmentKey, Key: p.Key}), out)
			}
		case tree.Array:
			for i, e := range c {
				walk(e, rest, push(prefix, Segment{Kind: SegmentIndex, Index: i}), out)
			}
		default:
			// Wildcard over a non-container matches nothing.
		}

	case SegmentVariable:
		// Compile only accepts variables in leading position, which Resolve
		// consumed already.
		return
	}
}

// push copies prefix before appending so sibling wildcard branches never
// share a backing array.
func push(prefix []Segment, seg Segment) []Segment {
	next := make([]Segment, len(prefix)+1)
	copy(next, prefix)
	next[len(prefix)] = seg
	return next
}
